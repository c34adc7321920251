package domain

import "github.com/shopspring/decimal"

// Item is a medicine held in stock. StockQty never goes negative.
type Item struct {
	ID           int64           `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Type         *string         `db:"type" json:"type"`
	Price        decimal.Decimal `db:"price" json:"price"`
	ExpiryDate   *string         `db:"expiry_date" json:"expiryDate"`
	StockQty     int64           `db:"stock_qty" json:"stockQty"`
	ReorderLevel int64           `db:"reorder_level" json:"reorderLevel"`
	SupplierID   *int64          `db:"supplier_id" json:"supplierId"`
	CompanyID    *int64          `db:"company_id" json:"companyId"`
}

type LowStockItem struct {
	ID           int64  `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	StockQty     int64  `db:"stock_qty" json:"stockQty"`
	ReorderLevel int64  `db:"reorder_level" json:"reorderLevel"`
}
