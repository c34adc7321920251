package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"medshop/m/domain"
)

type SupplierStore struct {
	db sqlx.ExtContext
}

func NewSupplierStore(db sqlx.ExtContext) *SupplierStore {
	return &SupplierStore{db: db}
}

func (s *SupplierStore) List(ctx context.Context) ([]domain.Supplier, error) {
	suppliers := []domain.Supplier{}
	if err := sqlx.SelectContext(ctx, s.db, &suppliers, `SELECT id, name, address, phone, email FROM suppliers ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	return suppliers, nil
}

func (s *SupplierStore) GetByID(ctx context.Context, id int64) (*domain.Supplier, error) {
	supplier := &domain.Supplier{}
	found, err := getOne(ctx, s.db, supplier, `SELECT id, name, address, phone, email FROM suppliers WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}
	if !found {
		return nil, nil
	}
	return supplier, nil
}

func (s *SupplierStore) Create(ctx context.Context, sup *domain.Supplier) (int64, error) {
	id, err := insertReturningID(ctx, s.db, `INSERT INTO suppliers (name, address, phone, email) VALUES (?, ?, ?, ?)`,
		sup.Name, sup.Address, sup.Phone, sup.Email)
	if err != nil {
		return 0, fmt.Errorf("failed to create supplier: %w", err)
	}
	return id, nil
}

func (s *SupplierStore) Update(ctx context.Context, sup *domain.Supplier) (int64, error) {
	n, err := execAffected(ctx, s.db, `UPDATE suppliers SET name = ?, address = ?, phone = ?, email = ? WHERE id = ?`,
		sup.Name, sup.Address, sup.Phone, sup.Email, sup.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to update supplier: %w", err)
	}
	return n, nil
}

// Delete removes a supplier. Its supply links go with it and items it
// supplied keep their stock with no supplier reference.
func (s *SupplierStore) Delete(ctx context.Context, id int64) (int64, error) {
	n, err := execAffected(ctx, s.db, `DELETE FROM suppliers WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete supplier: %w", err)
	}
	return n, nil
}

func (s *SupplierStore) Link(ctx context.Context, link *domain.SuppliedBy) (int64, error) {
	id, err := insertReturningID(ctx, s.db, `INSERT INTO supplied_by (supplier_id, item_id, supply_price) VALUES (?, ?, ?)`,
		link.SupplierID, link.ItemID, link.SupplyPrice)
	if err != nil {
		return 0, fmt.Errorf("failed to link supplier to item: %w", err)
	}
	return id, nil
}

// ListSupplied returns the items a supplier is linked to.
func (s *SupplierStore) ListSupplied(ctx context.Context, supplierID int64) ([]domain.SuppliedItem, error) {
	items := []domain.SuppliedItem{}
	err := sqlx.SelectContext(ctx, s.db, &items, s.db.Rebind(`
		SELECT sb.id, sb.supply_price, i.id AS item_id, i.name AS item_name, i.stock_qty
		FROM supplied_by sb
		JOIN items i ON i.id = sb.item_id
		WHERE sb.supplier_id = ?
		ORDER BY sb.id`), supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to list supplied items: %w", err)
	}
	for i := range items {
		items[i].SupplyPrice = money(items[i].SupplyPrice)
	}
	return items, nil
}

func (s *SupplierStore) Unlink(ctx context.Context, id int64) (int64, error) {
	n, err := execAffected(ctx, s.db, `DELETE FROM supplied_by WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to remove supply link: %w", err)
	}
	return n, nil
}
