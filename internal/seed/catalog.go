package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Catalog CSV columns, after a header row:
// name,type,price,expiry_date,stock_qty,reorder_level
const catalogColumns = 6

// LoadCatalogFile loads the item catalog at path. See LoadCatalog.
func LoadCatalogFile(ctx context.Context, db *sqlx.DB, path string, logger *slog.Logger) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("unable to open item catalog %s: %w", path, err)
	}
	defer file.Close()
	return LoadCatalog(ctx, db, file, logger)
}

// LoadCatalog inserts every catalog row whose item name is not already
// stocked and returns the number of rows inserted. Malformed rows are logged
// and skipped; the rest commit together.
func LoadCatalog(ctx context.Context, db *sqlx.DB, r io.Reader, logger *slog.Logger) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	// Skip header
	if _, err := reader.Read(); err != nil {
		return 0, fmt.Errorf("unable to read catalog header: %w", err)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("unable to start catalog transaction: %w", err)
	}
	defer tx.Rollback()

	exists, err := tx.PreparexContext(ctx, tx.Rebind(`SELECT COUNT(*) FROM items WHERE name = ?`))
	if err != nil {
		return 0, fmt.Errorf("unable to prepare catalog lookup: %w", err)
	}
	defer exists.Close()

	insert, err := tx.PreparexContext(ctx, tx.Rebind(`
		INSERT INTO items (name, type, price, expiry_date, stock_qty, reorder_level)
		VALUES (?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return 0, fmt.Errorf("unable to prepare catalog insert: %w", err)
	}
	defer insert.Close()

	rows := 0
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			logger.Warn("unable to read catalog row", slog.Int("line", line), slog.Any("error", err))
			continue
		}
		row, err := parseCatalogRow(record)
		if err != nil {
			logger.Warn("skipping catalog row", slog.Int("line", line), slog.Any("error", err))
			continue
		}

		var stocked int
		if err := exists.GetContext(ctx, &stocked, row.name); err != nil {
			return 0, fmt.Errorf("unable to look up catalog item %s: %w", row.name, err)
		}
		if stocked > 0 {
			continue
		}
		if _, err := insert.ExecContext(ctx, row.name, row.itemType, row.price, row.expiry, row.stock, row.reorder); err != nil {
			return 0, fmt.Errorf("unable to insert catalog item %s: %w", row.name, err)
		}
		rows++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("unable to commit catalog: %w", err)
	}
	logger.Info("seeded item catalog", slog.Int("rows", rows))
	return rows, nil
}

type catalogRow struct {
	name     string
	itemType *string
	price    decimal.Decimal
	expiry   *string
	stock    int64
	reorder  int64
}

func parseCatalogRow(record []string) (catalogRow, error) {
	if len(record) < catalogColumns {
		return catalogRow{}, fmt.Errorf("expected %d columns, got %d", catalogColumns, len(record))
	}
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}
	row := catalogRow{name: record[0], price: decimal.Zero, reorder: 5}
	if row.name == "" {
		return catalogRow{}, errors.New("missing name")
	}
	if record[1] != "" {
		row.itemType = &record[1]
	}
	if record[2] != "" {
		p, err := decimal.NewFromString(record[2])
		if err != nil || p.IsNegative() {
			return catalogRow{}, fmt.Errorf("invalid price %q", record[2])
		}
		row.price = p.Round(2)
	}
	if record[3] != "" {
		row.expiry = &record[3]
	}
	if record[4] != "" {
		n, err := strconv.ParseInt(record[4], 10, 64)
		if err != nil || n < 0 {
			return catalogRow{}, fmt.Errorf("invalid stock_qty %q", record[4])
		}
		row.stock = n
	}
	if record[5] != "" {
		n, err := strconv.ParseInt(record[5], 10, 64)
		if err != nil || n < 0 {
			return catalogRow{}, fmt.Errorf("invalid reorder_level %q", record[5])
		}
		row.reorder = n
	}
	return row, nil
}
