package domain

import "github.com/shopspring/decimal"

type DailySales struct {
	SaleDate       string          `db:"sale_date" json:"saleDate"`
	TotalPurchases int64           `db:"total_purchases" json:"totalPurchases"`
	TotalQuantity  int64           `db:"total_quantity" json:"totalQuantity"`
	TotalRevenue   decimal.Decimal `db:"total_revenue" json:"totalRevenue"`
	UniqueBuyers   int64           `db:"unique_buyers" json:"uniqueBuyers"`
}

type TopMedicine struct {
	ItemID       int64           `db:"item_id" json:"itemId"`
	ItemName     string          `db:"item_name" json:"itemName"`
	Price        decimal.Decimal `db:"price" json:"price"`
	TotalSold    int64           `db:"total_sold" json:"totalSold"`
	TotalRevenue decimal.Decimal `db:"total_revenue" json:"totalRevenue"`
}

type BuyerStats struct {
	BuyerID        int64           `db:"buyer_id" json:"buyerId"`
	BuyerName      string          `db:"buyer_name" json:"buyerName"`
	Phone          *string         `db:"phone" json:"phone"`
	Address        *string         `db:"address" json:"address"`
	TotalPurchases int64           `db:"total_purchases" json:"totalPurchases"`
	TotalItems     int64           `db:"total_items" json:"totalItems"`
	TotalSpent     decimal.Decimal `db:"total_spent" json:"totalSpent"`
}
