package api

import (
	"net/http"
	"strconv"

	"medshop/m/internal/service"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 100
)

func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end, err := dateRange(q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rows, err := h.reports.DailySales(r.Context(), start, end)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) topMedicines(w http.ResponseWriter, r *http.Request) {
	limit := defaultTopLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.writeError(w, r, service.Invalid("limit must be a positive integer"))
			return
		}
		limit = min(n, maxTopLimit)
	}
	rows, err := h.reports.TopMedicines(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) buyerStats(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.BuyerStats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}
