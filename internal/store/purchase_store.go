package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"medshop/m/domain"
)

const purchaseDetailQuery = `
	SELECT p.id AS purchase_id, p.purchase_date,
	       b.id AS buyer_id, b.name AS buyer_name, b.phone AS buyer_phone, b.address AS buyer_address,
	       i.id AS item_id, i.name AS item_name, i.price, p.quantity
	FROM purchases p
	JOIN buyers b ON b.id = p.buyer_id
	JOIN items i ON i.id = p.item_id`

// PurchaseFilter narrows a purchase listing. Zero values are ignored; dates
// are inclusive YYYY-MM-DD bounds on the purchase day.
type PurchaseFilter struct {
	BuyerID   int64
	ItemID    int64
	StartDate string
	EndDate   string
}

type PurchaseStore struct {
	db sqlx.ExtContext
}

func NewPurchaseStore(db sqlx.ExtContext) *PurchaseStore {
	return &PurchaseStore{db: db}
}

// WithTx returns a store bound to tx.
func (s *PurchaseStore) WithTx(tx *sqlx.Tx) *PurchaseStore {
	return &PurchaseStore{db: tx}
}

// Create appends p to the ledger.
func (s *PurchaseStore) Create(ctx context.Context, p *domain.Purchase) (int64, error) {
	id, err := insertReturningID(ctx, s.db, `
		INSERT INTO purchases (buyer_id, item_id, quantity, purchase_date) VALUES (?, ?, ?, ?)`,
		p.BuyerID, p.ItemID, p.Quantity, formatTime(p.PurchaseDate))
	if err != nil {
		return 0, fmt.Errorf("failed to create purchase: %w", err)
	}
	return id, nil
}

func (s *PurchaseStore) GetByID(ctx context.Context, id int64) (*domain.PurchaseDetail, error) {
	detail := &domain.PurchaseDetail{}
	found, err := getOne(ctx, s.db, detail, purchaseDetailQuery+` WHERE p.id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}
	if !found {
		return nil, nil
	}
	fillTotal(detail)
	return detail, nil
}

// List returns purchases matching f, newest first.
func (s *PurchaseStore) List(ctx context.Context, f PurchaseFilter) ([]domain.PurchaseDetail, error) {
	var p predicates
	p.add(f.BuyerID != 0, "b.id = ?", f.BuyerID)
	p.add(f.ItemID != 0, "i.id = ?", f.ItemID)
	p.add(f.StartDate != "", "DATE(p.purchase_date) >= ?", f.StartDate)
	p.add(f.EndDate != "", "DATE(p.purchase_date) <= ?", f.EndDate)

	query := purchaseDetailQuery + p.where() + ` ORDER BY p.purchase_date DESC, p.id DESC`

	details := []domain.PurchaseDetail{}
	if err := sqlx.SelectContext(ctx, s.db, &details, s.db.Rebind(query), p.args...); err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	for i := range details {
		fillTotal(&details[i])
	}
	return details, nil
}

func fillTotal(d *domain.PurchaseDetail) {
	d.Price = money(d.Price)
	d.TotalAmount = money(d.Price.Mul(decimal.NewFromInt(d.Quantity)))
}
