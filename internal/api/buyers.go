package api

import (
	"net/http"
	"strings"

	"medshop/m/internal/service"
)

type createBuyerRequest struct {
	Name    string  `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

func (h *Handler) listBuyers(w http.ResponseWriter, r *http.Request) {
	buyers, err := h.buyers.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, buyers)
}

func (h *Handler) createBuyer(w http.ResponseWriter, r *http.Request) {
	var req createBuyerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		h.writeError(w, r, service.Invalid("name required"))
		return
	}
	id, err := h.buyers.Create(r.Context(), name, nullIfEmpty(req.Phone), nullIfEmpty(req.Address))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, createdResponse{Message: "Buyer added", ID: id})
}
