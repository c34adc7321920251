package api

import (
	"net/http"
	"time"

	"medshop/m/internal/service"
)

type ownerLoginRequest struct {
	Password string `json:"password"`
}

type ownerLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ownerLogin exchanges the owner secret for a session token.
func (h *Handler) ownerLogin(w http.ResponseWriter, r *http.Request) {
	var req ownerLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if !h.guard.Authorize(req.Password) {
		h.writeError(w, r, service.ErrUnauthorized)
		return
	}
	token, expiresAt, err := h.tokens.Issue()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ownerLoginResponse{Token: token, ExpiresAt: expiresAt})
}
