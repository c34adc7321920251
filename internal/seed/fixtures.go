package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"medshop/m/domain"
	"medshop/m/internal/store"
)

type fixtureItem struct {
	name     string
	itemType string
	price    int64
	stock    int64
}

var fixtureItems = []fixtureItem{
	{"Paracetamol", "Tablet", 20, 100},
	{"Amoxicillin", "Capsule", 50, 80},
	{"Cetrizine", "Tablet", 15, 60},
	{"Crocin", "Tablet", 25, 90},
	{"Vicks", "Ointment", 30, 40},
	{"Dolo 650", "Tablet", 35, 100},
	{"ORS", "Powder", 10, 120},
	{"Disprin", "Tablet", 12, 75},
	{"Combiflam", "Tablet", 28, 50},
	{"Savlon", "Liquid", 60, 25},
}

type fixtureBuyer struct {
	name  string
	phone string
}

var fixtureBuyers = []fixtureBuyer{
	{"Rohan Patil", "9876543210"},
	{"Sneha Shah", "9822012345"},
}

// Purchases reference fixture items and buyers by position, starting at 1.
type fixturePurchase struct {
	buyer    int
	item     int
	quantity int64
	date     time.Time
}

var fixturePurchases = []fixturePurchase{
	{1, 2, 2, time.Date(2025, 10, 10, 10, 0, 0, 0, time.UTC)},
	{2, 1, 5, time.Date(2025, 10, 12, 10, 0, 0, 0, time.UTC)},
}

// LoadFixtures fills an empty store with the demo shop: ten medicines, two
// buyers and their purchase history. The purchases are recorded as past
// ledger entries and do not change the listed stock. It does nothing when
// items already exist.
func LoadFixtures(ctx context.Context, db *sqlx.DB, logger *slog.Logger) error {
	var existing int
	if err := db.GetContext(ctx, &existing, `SELECT COUNT(*) FROM items`); err != nil {
		return fmt.Errorf("unable to count items: %w", err)
	}
	if existing > 0 {
		logger.Info("fixtures skipped, store already has items", slog.Int("items", existing))
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("unable to start fixture transaction: %w", err)
	}
	defer tx.Rollback()

	items := store.NewItemStore(db).WithTx(tx)
	buyers := store.NewBuyerStore(db).WithTx(tx)
	purchases := store.NewPurchaseStore(db).WithTx(tx)

	itemIDs := make([]int64, len(fixtureItems))
	for i, fi := range fixtureItems {
		itemType := fi.itemType
		id, err := items.Create(ctx, &domain.Item{
			Name:         fi.name,
			Type:         &itemType,
			Price:        decimal.NewFromInt(fi.price),
			StockQty:     fi.stock,
			ReorderLevel: 5,
		})
		if err != nil {
			return err
		}
		itemIDs[i] = id
	}

	buyerIDs := make([]int64, len(fixtureBuyers))
	for i, fb := range fixtureBuyers {
		phone := fb.phone
		id, err := buyers.Create(ctx, fb.name, &phone, nil)
		if err != nil {
			return err
		}
		buyerIDs[i] = id
	}

	for _, fp := range fixturePurchases {
		if _, err := purchases.Create(ctx, &domain.Purchase{
			BuyerID:      buyerIDs[fp.buyer-1],
			ItemID:       itemIDs[fp.item-1],
			Quantity:     fp.quantity,
			PurchaseDate: fp.date,
		}); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("unable to commit fixtures: %w", err)
	}
	logger.Info("loaded fixtures",
		slog.Int("items", len(fixtureItems)),
		slog.Int("buyers", len(fixtureBuyers)),
		slog.Int("purchases", len(fixturePurchases)),
	)
	return nil
}
