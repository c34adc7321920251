package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"medshop/m/internal/idempotency"
	"medshop/m/internal/metrics"
	"medshop/m/internal/service"
	"medshop/m/internal/store"
)

// idempotencySettleTimeout bounds the Complete or Release call that follows a
// purchase. It runs detached from the request so a client that hangs up does
// not leave its key stuck in processing.
const idempotencySettleTimeout = 3 * time.Second

type createPurchaseRequest struct {
	ItemID       int64   `json:"itemId"`
	Quantity     int64   `json:"quantity"`
	BuyerID      int64   `json:"buyerId"`
	NewBuyer     bool    `json:"newBuyer"`
	BuyerName    string  `json:"buyerName"`
	BuyerPhone   *string `json:"buyerPhone"`
	BuyerAddress *string `json:"buyerAddress"`
}

func (req createPurchaseRequest) toServiceRequest() service.PurchaseRequest {
	out := service.PurchaseRequest{ItemID: req.ItemID, Quantity: req.Quantity}
	if req.NewBuyer {
		out.NewBuyer = &service.NewBuyer{
			Name:    req.BuyerName,
			Phone:   nullIfEmpty(req.BuyerPhone),
			Address: nullIfEmpty(req.BuyerAddress),
		}
		return out
	}
	out.BuyerID = req.BuyerID
	return out
}

type purchaseResponse struct {
	Message    string `json:"message"`
	PurchaseID int64  `json:"purchaseId"`
}

func (h *Handler) createPurchase(w http.ResponseWriter, r *http.Request) {
	var req createPurchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	key := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
	if key != "" && h.idempotency != nil {
		prior, err := h.idempotency.Reserve(r.Context(), key)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		if prior != nil {
			metrics.IdempotentReplays.Inc()
			respondJSON(w, http.StatusOK, purchaseResponse{Message: "Purchase recorded", PurchaseID: prior.PurchaseID})
			return
		}
	} else {
		key = ""
	}

	id, err := h.recorder.RecordPurchase(r.Context(), req.toServiceRequest())
	if key != "" {
		h.settleIdempotency(r, key, id, err)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, purchaseResponse{Message: "Purchase recorded", PurchaseID: id})
}

// settleIdempotency stores the purchase id under key, or frees key when the
// purchase failed so the client may retry.
func (h *Handler) settleIdempotency(r *http.Request, key string, id int64, purchaseErr error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), idempotencySettleTimeout)
	defer cancel()

	if purchaseErr != nil {
		if err := h.idempotency.Release(ctx, key); err != nil {
			h.logger.WarnContext(ctx, "failed to release idempotency key", slog.Any("error", err))
		}
		return
	}
	if err := h.idempotency.Complete(ctx, key, idempotency.Result{PurchaseID: id}); err != nil {
		h.logger.WarnContext(ctx, "failed to store idempotency result",
			slog.Int64("purchase_id", id),
			slog.Any("error", err),
		)
	}
}

func (h *Handler) getPurchase(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	detail, err := h.purchases.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if detail == nil {
		h.writeError(w, r, service.NotFound("Purchase"))
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f store.PurchaseFilter
	var err error
	if f.BuyerID, err = queryID(q.Get("buyerId"), "buyerId"); err != nil {
		h.writeError(w, r, err)
		return
	}
	if f.ItemID, err = queryID(q.Get("itemId"), "itemId"); err != nil {
		h.writeError(w, r, err)
		return
	}
	if f.StartDate, f.EndDate, err = dateRange(q.Get("startDate"), q.Get("endDate")); err != nil {
		h.writeError(w, r, err)
		return
	}

	purchases, err := h.purchases.List(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, purchases)
}

// queryID parses an optional positive id filter; empty means no filter.
func queryID(raw, name string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, service.Invalid("invalid %s", name)
	}
	return id, nil
}

func dateRange(start, end string) (string, string, error) {
	if start != "" && !validDate(start) {
		return "", "", service.Invalid("startDate must be YYYY-MM-DD")
	}
	if end != "" && !validDate(end) {
		return "", "", service.Invalid("endDate must be YYYY-MM-DD")
	}
	if start != "" && end != "" && start > end {
		return "", "", service.Invalid("startDate must not be after endDate")
	}
	return start, end, nil
}
