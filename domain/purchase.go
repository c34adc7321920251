package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is an append-only ledger entry. There is no update or delete.
type Purchase struct {
	ID           int64     `db:"id" json:"id"`
	BuyerID      int64     `db:"buyer_id" json:"buyerId"`
	ItemID       int64     `db:"item_id" json:"itemId"`
	Quantity     int64     `db:"quantity" json:"quantity"`
	PurchaseDate time.Time `db:"purchase_date" json:"purchaseDate"`
}

// PurchaseDetail is a purchase joined with its buyer and item, as shown on a bill.
type PurchaseDetail struct {
	PurchaseID   int64           `db:"purchase_id" json:"purchaseId"`
	PurchaseDate time.Time       `db:"purchase_date" json:"purchaseDate"`
	BuyerID      int64           `db:"buyer_id" json:"buyerId"`
	BuyerName    string          `db:"buyer_name" json:"buyerName"`
	BuyerPhone   *string         `db:"buyer_phone" json:"buyerPhone"`
	BuyerAddress *string         `db:"buyer_address" json:"buyerAddress"`
	ItemID       int64           `db:"item_id" json:"itemId"`
	ItemName     string          `db:"item_name" json:"itemName"`
	Price        decimal.Decimal `db:"price" json:"price"`
	Quantity     int64           `db:"quantity" json:"quantity"`
	TotalAmount  decimal.Decimal `db:"-" json:"totalAmount"`
}
