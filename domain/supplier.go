package domain

import "github.com/shopspring/decimal"

type Supplier struct {
	ID      int64   `db:"id" json:"id"`
	Name    string  `db:"name" json:"name"`
	Address *string `db:"address" json:"address"`
	Phone   *string `db:"phone" json:"phone"`
	Email   *string `db:"email" json:"email"`
}

// SuppliedBy links a supplier to an item it supplies, with the supply price.
type SuppliedBy struct {
	ID          int64           `db:"id" json:"id"`
	SupplierID  int64           `db:"supplier_id" json:"supplierId"`
	ItemID      int64           `db:"item_id" json:"itemId"`
	SupplyPrice decimal.Decimal `db:"supply_price" json:"supplyPrice"`
}

type SuppliedItem struct {
	ID          int64           `db:"id" json:"id"`
	SupplyPrice decimal.Decimal `db:"supply_price" json:"supplyPrice"`
	ItemID      int64           `db:"item_id" json:"itemId"`
	ItemName    string          `db:"item_name" json:"itemName"`
	StockQty    int64           `db:"stock_qty" json:"stockQty"`
}
