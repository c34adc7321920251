package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"medshop/m/domain"
	"medshop/m/internal/service"
)

const dateLayout = "2006-01-02"

type createItemRequest struct {
	Name         string           `json:"name"`
	Type         *string          `json:"type"`
	Price        *decimal.Decimal `json:"price"`
	ExpiryDate   *string          `json:"expiryDate"`
	StockQty     *int64           `json:"stockQty"`
	ReorderLevel *int64           `json:"reorderLevel"`
	SupplierID   *int64           `json:"supplierId"`
	CompanyID    *int64           `json:"companyId"`
}

func (req createItemRequest) toItem() (*domain.Item, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, service.Invalid("name required")
	}
	item := &domain.Item{
		Name:         name,
		Type:         nullIfEmpty(req.Type),
		Price:        decimal.Zero,
		ExpiryDate:   nullIfEmpty(req.ExpiryDate),
		ReorderLevel: 5,
		SupplierID:   req.SupplierID,
		CompanyID:    req.CompanyID,
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, service.Invalid("price must not be negative")
		}
		item.Price = req.Price.Round(2)
	}
	if req.StockQty != nil {
		if *req.StockQty < 0 {
			return nil, service.Invalid("stockQty must not be negative")
		}
		item.StockQty = *req.StockQty
	}
	if req.ReorderLevel != nil {
		if *req.ReorderLevel < 0 {
			return nil, service.Invalid("reorderLevel must not be negative")
		}
		item.ReorderLevel = *req.ReorderLevel
	}
	if item.ExpiryDate != nil && !validDate(*item.ExpiryDate) {
		return nil, service.Invalid("expiryDate must be YYYY-MM-DD")
	}
	return item, nil
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	item, err := h.items.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if item == nil {
		h.writeError(w, r, service.NotFound("Item"))
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	item, err := req.toItem()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if item.SupplierID != nil {
		sup, err := h.suppliers.GetByID(r.Context(), *item.SupplierID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		if sup == nil {
			h.writeError(w, r, service.NotFound("Supplier"))
			return
		}
	}
	id, err := h.items.Create(r.Context(), item)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, createdResponse{Message: "Medicine added", ID: id})
}

type setStockRequest struct {
	StockQty *int64 `json:"stockQty"`
}

func (h *Handler) setStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req setStockRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.StockQty == nil {
		h.writeError(w, r, service.Invalid("stockQty required"))
		return
	}
	if *req.StockQty < 0 {
		h.writeError(w, r, service.Invalid("stockQty must not be negative"))
		return
	}
	n, err := h.items.SetStock(r.Context(), id, *req.StockQty)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respondAffected(w, r, n, "Stock updated", "Item")
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.LowStock(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func nullIfEmpty(val *string) *string {
	if val == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*val)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func validDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}
