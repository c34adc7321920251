package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"medshop/m/domain"
)

const itemColumns = `id, name, type, price, expiry_date, stock_qty, reorder_level, supplier_id, company_id`

type ItemStore struct {
	db sqlx.ExtContext
}

func NewItemStore(db sqlx.ExtContext) *ItemStore {
	return &ItemStore{db: db}
}

// WithTx returns a store bound to tx.
func (s *ItemStore) WithTx(tx *sqlx.Tx) *ItemStore {
	return &ItemStore{db: tx}
}

func (s *ItemStore) List(ctx context.Context) ([]domain.Item, error) {
	items := []domain.Item{}
	if err := sqlx.SelectContext(ctx, s.db, &items, `SELECT `+itemColumns+` FROM items ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	for i := range items {
		items[i].Price = money(items[i].Price)
	}
	return items, nil
}

func (s *ItemStore) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	item := &domain.Item{}
	found, err := getOne(ctx, s.db, item, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if !found {
		return nil, nil
	}
	item.Price = money(item.Price)
	return item, nil
}

func (s *ItemStore) Create(ctx context.Context, item *domain.Item) (int64, error) {
	id, err := insertReturningID(ctx, s.db, `
		INSERT INTO items (name, type, price, expiry_date, stock_qty, reorder_level, supplier_id, company_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Name, item.Type, item.Price, item.ExpiryDate, item.StockQty, item.ReorderLevel, item.SupplierID, item.CompanyID)
	if err != nil {
		return 0, fmt.Errorf("failed to create item: %w", err)
	}
	return id, nil
}

// SetStock overwrites the stock quantity of an item and returns the rows affected.
func (s *ItemStore) SetStock(ctx context.Context, id, qty int64) (int64, error) {
	n, err := execAffected(ctx, s.db, `UPDATE items SET stock_qty = ? WHERE id = ?`, qty, id)
	if err != nil {
		return 0, fmt.Errorf("failed to update stock: %w", err)
	}
	return n, nil
}

// LowStock lists items at or below their reorder level, lowest stock first.
func (s *ItemStore) LowStock(ctx context.Context) ([]domain.LowStockItem, error) {
	items := []domain.LowStockItem{}
	err := sqlx.SelectContext(ctx, s.db, &items, `
		SELECT id, name, stock_qty, reorder_level FROM items
		WHERE stock_qty <= reorder_level
		ORDER BY stock_qty ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock items: %w", err)
	}
	return items, nil
}

// DecrementStock removes qty units from an item only if at least qty are in
// stock. It reports false when no row qualified: the item is missing or short.
func (s *ItemStore) DecrementStock(ctx context.Context, id, qty int64) (bool, error) {
	n, err := execAffected(ctx, s.db, `
		UPDATE items SET stock_qty = stock_qty - ?
		WHERE id = ? AND stock_qty >= ?`, qty, id, qty)
	if err != nil {
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}
	return n == 1, nil
}

// StockQty returns the current stock of an item and whether the item exists.
func (s *ItemStore) StockQty(ctx context.Context, id int64) (int64, bool, error) {
	var qty int64
	found, err := getOne(ctx, s.db, &qty, `SELECT stock_qty FROM items WHERE id = ?`, id)
	if err != nil {
		return 0, false, fmt.Errorf("failed to read stock: %w", err)
	}
	return qty, found, nil
}
