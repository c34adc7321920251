package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"medshop/m/domain"
)

type BuyerStore struct {
	db sqlx.ExtContext
}

func NewBuyerStore(db sqlx.ExtContext) *BuyerStore {
	return &BuyerStore{db: db}
}

// WithTx returns a store bound to tx.
func (s *BuyerStore) WithTx(tx *sqlx.Tx) *BuyerStore {
	return &BuyerStore{db: tx}
}

func (s *BuyerStore) List(ctx context.Context) ([]domain.Buyer, error) {
	buyers := []domain.Buyer{}
	if err := sqlx.SelectContext(ctx, s.db, &buyers, `SELECT id, name, phone, address FROM buyers ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list buyers: %w", err)
	}
	return buyers, nil
}

func (s *BuyerStore) GetByID(ctx context.Context, id int64) (*domain.Buyer, error) {
	buyer := &domain.Buyer{}
	found, err := getOne(ctx, s.db, buyer, `SELECT id, name, phone, address FROM buyers WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get buyer: %w", err)
	}
	if !found {
		return nil, nil
	}
	return buyer, nil
}

func (s *BuyerStore) Create(ctx context.Context, name string, phone, address *string) (int64, error) {
	id, err := insertReturningID(ctx, s.db, `INSERT INTO buyers (name, phone, address) VALUES (?, ?, ?)`, name, phone, address)
	if err != nil {
		return 0, fmt.Errorf("failed to create buyer: %w", err)
	}
	return id, nil
}
