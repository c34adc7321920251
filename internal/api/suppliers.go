package api

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"medshop/m/domain"
	"medshop/m/internal/service"
)

type supplierRequest struct {
	Name    string  `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
}

func (req supplierRequest) toSupplier(id int64) (*domain.Supplier, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, service.Invalid("name required")
	}
	return &domain.Supplier{
		ID:      id,
		Name:    name,
		Address: nullIfEmpty(req.Address),
		Phone:   nullIfEmpty(req.Phone),
		Email:   nullIfEmpty(req.Email),
	}, nil
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.suppliers.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, suppliers)
}

func (h *Handler) getSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sup, err := h.suppliers.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if sup == nil {
		h.writeError(w, r, service.NotFound("Supplier"))
		return
	}
	respondJSON(w, http.StatusOK, sup)
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	sup, err := req.toSupplier(0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := h.suppliers.Create(r.Context(), sup)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, createdResponse{Message: "Supplier added", ID: id})
}

func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req supplierRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	sup, err := req.toSupplier(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	n, err := h.suppliers.Update(r.Context(), sup)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respondAffected(w, r, n, "Supplier updated", "Supplier")
}

func (h *Handler) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	n, err := h.suppliers.Delete(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respondAffected(w, r, n, "Supplier deleted", "Supplier")
}

type linkSupplierRequest struct {
	SupplierID  int64            `json:"supplierId"`
	ItemID      int64            `json:"itemId"`
	SupplyPrice *decimal.Decimal `json:"supplyPrice"`
}

func (h *Handler) linkSupplier(w http.ResponseWriter, r *http.Request) {
	var req linkSupplierRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.SupplierID <= 0 || req.ItemID <= 0 {
		h.writeError(w, r, service.Invalid("supplierId and itemId required"))
		return
	}
	link := &domain.SuppliedBy{SupplierID: req.SupplierID, ItemID: req.ItemID, SupplyPrice: decimal.Zero}
	if req.SupplyPrice != nil {
		if req.SupplyPrice.IsNegative() {
			h.writeError(w, r, service.Invalid("supplyPrice must not be negative"))
			return
		}
		link.SupplyPrice = req.SupplyPrice.Round(2)
	}

	ctx := r.Context()
	sup, err := h.suppliers.GetByID(ctx, req.SupplierID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if sup == nil {
		h.writeError(w, r, service.NotFound("Supplier"))
		return
	}
	item, err := h.items.GetByID(ctx, req.ItemID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if item == nil {
		h.writeError(w, r, service.NotFound("Item"))
		return
	}

	id, err := h.suppliers.Link(ctx, link)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, createdResponse{Message: "Linked supplier to item", ID: id})
}

func (h *Handler) listSupplied(w http.ResponseWriter, r *http.Request) {
	supplierID, err := pathID(r, "supplierId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items, err := h.suppliers.ListSupplied(r.Context(), supplierID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) unlinkSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	n, err := h.suppliers.Unlink(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respondAffected(w, r, n, "Link removed", "Supply link")
}
