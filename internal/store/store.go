// Package store holds the table-level data access for the shop. Every store
// runs on either a pool or a transaction, so the same queries serve plain
// requests and multi-statement units of work.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// dbTimeLayout is how purchase timestamps are written. Both SQLite DATETIME and
// PostgreSQL TIMESTAMP columns accept it and DATE() extracts the day from it.
const dbTimeLayout = "2006-01-02 15:04:05"

func insertReturningID(ctx context.Context, q sqlx.ExtContext, query string, args ...any) (int64, error) {
	var id int64
	if err := q.QueryRowxContext(ctx, q.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func execAffected(ctx context.Context, q sqlx.ExtContext, query string, args ...any) (int64, error) {
	result, err := q.ExecContext(ctx, q.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// getOne runs a single-row query; a missing row yields (false, nil).
func getOne(ctx context.Context, q sqlx.ExtContext, dest any, query string, args ...any) (bool, error) {
	err := sqlx.GetContext(ctx, q, dest, q.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(dbTimeLayout)
}
