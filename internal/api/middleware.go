package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"medshop/m/internal/service"
)

const (
	requestIDHeader      = "X-Request-ID"
	ownerSecretHeader    = "X-Owner-Secret"
	idempotencyKeyHeader = "Idempotency-Key"
)

type ctxKey string

const ctxRequestID ctxKey = "requestID"

// RequestIDFromContext returns the id assigned to the request, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxRequestID).(string)
	return id
}

// requestID keeps a caller supplied X-Request-ID or assigns a fresh UUID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxRequestID, id)))
	})
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		level := slog.LevelInfo
		if ww.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		h.logger.LogAttrs(r.Context(), level, "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", RequestIDFromContext(r.Context())),
		)
	})
}

// requireOwner admits requests carrying a valid owner session token or the
// owner secret itself.
func (h *Handler) requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.ownerAuthorized(r) {
			next.ServeHTTP(w, r)
			return
		}
		h.logger.WarnContext(r.Context(), "owner authorization rejected",
			slog.String("path", r.URL.Path),
			slog.String("request_id", RequestIDFromContext(r.Context())),
		)
		h.writeError(w, r, service.ErrUnauthorized)
	})
}

// ownerAuthorized accepts a valid owner token or, failing that, the owner
// secret header.
func (h *Handler) ownerAuthorized(r *http.Request) bool {
	if raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && h.tokens.Verify(raw) == nil {
		return true
	}
	secret := r.Header.Get(ownerSecretHeader)
	return secret != "" && h.guard.Authorize(secret)
}
