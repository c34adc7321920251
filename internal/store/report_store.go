package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"medshop/m/domain"
)

type ReportStore struct {
	db sqlx.ExtContext
}

func NewReportStore(db sqlx.ExtContext) *ReportStore {
	return &ReportStore{db: db}
}

// DailySales aggregates purchases per day within the optional inclusive
// date range, newest day first.
func (s *ReportStore) DailySales(ctx context.Context, startDate, endDate string) ([]domain.DailySales, error) {
	var p predicates
	p.add(startDate != "", "DATE(p.purchase_date) >= ?", startDate)
	p.add(endDate != "", "DATE(p.purchase_date) <= ?", endDate)

	query := `
		SELECT CAST(DATE(p.purchase_date) AS TEXT) AS sale_date,
		       COUNT(DISTINCT p.id) AS total_purchases,
		       SUM(p.quantity) AS total_quantity,
		       SUM(i.price * p.quantity) AS total_revenue,
		       COUNT(DISTINCT p.buyer_id) AS unique_buyers
		FROM purchases p
		JOIN items i ON i.id = p.item_id` + p.where() + `
		GROUP BY DATE(p.purchase_date)
		ORDER BY sale_date DESC`

	rows := []domain.DailySales{}
	if err := sqlx.SelectContext(ctx, s.db, &rows, s.db.Rebind(query), p.args...); err != nil {
		return nil, fmt.Errorf("failed to build sales report: %w", err)
	}
	for i := range rows {
		rows[i].TotalRevenue = money(rows[i].TotalRevenue)
	}
	return rows, nil
}

// TopMedicines ranks items by units sold.
func (s *ReportStore) TopMedicines(ctx context.Context, limit int) ([]domain.TopMedicine, error) {
	rows := []domain.TopMedicine{}
	err := sqlx.SelectContext(ctx, s.db, &rows, s.db.Rebind(`
		SELECT i.id AS item_id, i.name AS item_name, i.price,
		       SUM(p.quantity) AS total_sold,
		       SUM(i.price * p.quantity) AS total_revenue
		FROM purchases p
		JOIN items i ON i.id = p.item_id
		GROUP BY i.id, i.name, i.price
		ORDER BY total_sold DESC, i.id ASC
		LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build top medicines report: %w", err)
	}
	for i := range rows {
		rows[i].Price = money(rows[i].Price)
		rows[i].TotalRevenue = money(rows[i].TotalRevenue)
	}
	return rows, nil
}

// BuyerStats summarises spend for every buyer with at least one purchase,
// biggest spender first.
func (s *ReportStore) BuyerStats(ctx context.Context) ([]domain.BuyerStats, error) {
	rows := []domain.BuyerStats{}
	err := sqlx.SelectContext(ctx, s.db, &rows, `
		SELECT b.id AS buyer_id, b.name AS buyer_name, b.phone, b.address,
		       COUNT(p.id) AS total_purchases,
		       SUM(p.quantity) AS total_items,
		       SUM(i.price * p.quantity) AS total_spent
		FROM buyers b
		JOIN purchases p ON p.buyer_id = b.id
		JOIN items i ON i.id = p.item_id
		GROUP BY b.id, b.name, b.phone, b.address
		ORDER BY total_spent DESC, b.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to build buyer stats: %w", err)
	}
	for i := range rows {
		rows[i].TotalSpent = money(rows[i].TotalSpent)
	}
	return rows, nil
}
