package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"medshop/m/domain"
	"medshop/m/internal/database"
	"medshop/m/internal/metrics"
	"medshop/m/internal/store"
)

// NewBuyer carries the details of a buyer registered as part of a purchase.
type NewBuyer struct {
	Name    string
	Phone   *string
	Address *string
}

// PurchaseRequest names an item, a positive quantity and exactly one of an
// existing buyer or a new one.
type PurchaseRequest struct {
	ItemID   int64
	Quantity int64
	BuyerID  int64
	NewBuyer *NewBuyer
}

func (r PurchaseRequest) Validate() error {
	if r.ItemID <= 0 || r.Quantity <= 0 {
		return Invalid("itemId and quantity required")
	}
	if r.NewBuyer != nil {
		if strings.TrimSpace(r.NewBuyer.Name) == "" {
			return Invalid("buyerName required")
		}
		if r.BuyerID != 0 {
			return Invalid("use either buyerId or newBuyer, not both")
		}
		return nil
	}
	if r.BuyerID <= 0 {
		return Invalid("buyerId required or set newBuyer true")
	}
	return nil
}

type PurchaseService struct {
	db             *sqlx.DB
	items          *store.ItemStore
	buyers         *store.BuyerStore
	purchases      *store.PurchaseStore
	logger         *slog.Logger
	acquireTimeout time.Duration
	now            func() time.Time
}

func NewPurchaseService(db *sqlx.DB, logger *slog.Logger, acquireTimeout time.Duration) *PurchaseService {
	return &PurchaseService{
		db:             db,
		items:          store.NewItemStore(db),
		buyers:         store.NewBuyerStore(db),
		purchases:      store.NewPurchaseStore(db),
		logger:         logger,
		acquireTimeout: acquireTimeout,
		now:            time.Now,
	}
}

// RecordPurchase creates the buyer if requested, takes quantity units out of
// stock and appends a purchase row, all in one transaction. Any error leaves
// the store untouched.
func (s *PurchaseService) RecordPurchase(ctx context.Context, req PurchaseRequest) (purchaseID int64, err error) {
	ctx, span := otel.Tracer("medshop").Start(ctx, "RecordPurchase")
	span.SetAttributes(
		attribute.Int64("item.id", req.ItemID),
		attribute.Int64("purchase.quantity", req.Quantity),
	)
	defer func() {
		outcome := Outcome(err)
		metrics.PurchasesTotal.WithLabelValues(outcome).Inc()
		if err != nil {
			span.SetStatus(codes.Error, outcome)
		}
		span.End()
	}()

	if err := req.Validate(); err != nil {
		return 0, err
	}

	conn, err := s.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	tx, err := conn.BeginTxx(ctx, database.TxOptions(s.db))
	if err != nil {
		if database.IsBusy(err) && ctx.Err() == nil {
			s.logger.WarnContext(ctx, "database busy", slog.Any("error", err))
			return 0, ErrUnavailable
		}
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	buyers := s.buyers.WithTx(tx)
	items := s.items.WithTx(tx)

	buyerID := req.BuyerID
	if nb := req.NewBuyer; nb != nil {
		buyerID, err = buyers.Create(ctx, strings.TrimSpace(nb.Name), nb.Phone, nb.Address)
		if err != nil {
			return 0, err
		}
	} else {
		buyer, err := buyers.GetByID(ctx, buyerID)
		if err != nil {
			return 0, err
		}
		if buyer == nil {
			return 0, NotFound("Buyer")
		}
	}

	ok, err := items.DecrementStock(ctx, req.ItemID, req.Quantity)
	if err != nil {
		return 0, err
	}
	if !ok {
		_, found, err := items.StockQty(ctx, req.ItemID)
		if err != nil {
			return 0, err
		}
		if !found {
			return 0, NotFound("Item")
		}
		return 0, ErrInsufficientStock
	}

	purchaseID, err = s.purchases.WithTx(tx).Create(ctx, &domain.Purchase{
		BuyerID:      buyerID,
		ItemID:       req.ItemID,
		Quantity:     req.Quantity,
		PurchaseDate: s.now(),
	})
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit purchase: %w", err)
	}

	s.logger.InfoContext(ctx, "purchase recorded",
		slog.Int64("purchase_id", purchaseID),
		slog.Int64("buyer_id", buyerID),
		slog.Int64("item_id", req.ItemID),
		slog.Int64("quantity", req.Quantity),
	)
	return purchaseID, nil
}

// acquire waits at most acquireTimeout for a pooled connection. The
// connection outlives the wait context so the transaction is bound to ctx only.
func (s *PurchaseService) acquire(ctx context.Context) (*sqlx.Conn, error) {
	waitCtx := ctx
	if s.acquireTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, s.acquireTimeout)
		defer cancel()
	}
	conn, err := s.db.Connx(waitCtx)
	if err != nil {
		if (errors.Is(err, context.DeadlineExceeded) || database.IsBusy(err)) && ctx.Err() == nil {
			s.logger.WarnContext(ctx, "connection pool exhausted", slog.Duration("waited", s.acquireTimeout), slog.Any("error", err))
			return nil, ErrUnavailable
		}
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return conn, nil
}

// Outcome labels err for metrics and traces.
func Outcome(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &verr):
		return "invalid"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
