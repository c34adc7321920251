package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"medshop/m/internal/auth"
	"medshop/m/internal/idempotency"
	"medshop/m/internal/metrics"
	"medshop/m/internal/service"
	"medshop/m/internal/store"
	"medshop/m/internal/tracing"
)

// PurchaseRecorder runs the purchase unit of work.
type PurchaseRecorder interface {
	RecordPurchase(ctx context.Context, req service.PurchaseRequest) (int64, error)
}

// IdempotencyStore remembers completed purchase requests by client key.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (*idempotency.Result, error)
	Complete(ctx context.Context, key string, result idempotency.Result) error
	Release(ctx context.Context, key string) error
}

// Options carries the dependencies of a Handler. Idempotency may be nil.
type Options struct {
	DB          *sqlx.DB
	Purchases   PurchaseRecorder
	Guard       *auth.Guard
	Tokens      *auth.Tokens
	Idempotency IdempotencyStore
	Logger      *slog.Logger
	CORSOrigins []string
}

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	db          *sqlx.DB
	items       *store.ItemStore
	buyers      *store.BuyerStore
	purchases   *store.PurchaseStore
	suppliers   *store.SupplierStore
	clinic      *store.ClinicStore
	reports     *store.ReportStore
	recorder    PurchaseRecorder
	guard       *auth.Guard
	tokens      *auth.Tokens
	idempotency IdempotencyStore
	logger      *slog.Logger
	corsOrigins []string
}

// New constructs a Handler.
func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Handler{
		db:          opts.DB,
		items:       store.NewItemStore(opts.DB),
		buyers:      store.NewBuyerStore(opts.DB),
		purchases:   store.NewPurchaseStore(opts.DB),
		suppliers:   store.NewSupplierStore(opts.DB),
		clinic:      store.NewClinicStore(opts.DB),
		reports:     store.NewReportStore(opts.DB),
		recorder:    opts.Purchases,
		guard:       opts.Guard,
		tokens:      opts.Tokens,
		idempotency: opts.Idempotency,
		logger:      logger,
		corsOrigins: origins,
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(tracing.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", ownerSecretHeader, idempotencyKeyHeader, requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/", h.root)
	r.Get("/health", h.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/owner", h.ownerLogin)

	r.Route("/items", func(r chi.Router) {
		r.Get("/", h.listItems)
		r.Get("/lowstock", h.lowStock)
		r.Get("/{id}", h.getItem)
		r.Group(func(owner chi.Router) {
			owner.Use(h.requireOwner)
			owner.Post("/", h.createItem)
			owner.Put("/{id}/stock", h.setStock)
		})
	})

	r.Route("/buyers", func(r chi.Router) {
		r.Get("/", h.listBuyers)
		r.Post("/", h.createBuyer)
	})

	r.Route("/purchases", func(r chi.Router) {
		r.Get("/", h.listPurchases)
		r.Post("/", h.createPurchase)
		r.Get("/{id}", h.getPurchase)
	})

	r.Route("/suppliers", func(r chi.Router) {
		r.Get("/", h.listSuppliers)
		r.Get("/{id}", h.getSupplier)
		r.Group(func(owner chi.Router) {
			owner.Use(h.requireOwner)
			owner.Post("/", h.createSupplier)
			owner.Put("/{id}", h.updateSupplier)
			owner.Delete("/{id}", h.deleteSupplier)
		})
	})

	r.Route("/suppliedby", func(r chi.Router) {
		r.Get("/{supplierId}", h.listSupplied)
		r.Group(func(owner chi.Router) {
			owner.Use(h.requireOwner)
			owner.Post("/", h.linkSupplier)
			owner.Delete("/{id}", h.unlinkSupplier)
		})
	})

	r.Route("/doctors", func(r chi.Router) {
		r.Get("/", h.listDoctors)
		r.Post("/", h.createDoctor)
		r.Put("/{id}", h.updateDoctor)
		r.Delete("/{id}", h.deleteDoctor)
	})

	r.Route("/patients", func(r chi.Router) {
		r.Get("/", h.listPatients)
		r.Post("/", h.createPatient)
		r.Put("/{id}", h.updatePatient)
		r.Delete("/{id}", h.deletePatient)
	})

	r.Route("/consultations", func(r chi.Router) {
		r.Get("/", h.listConsultations)
		r.Post("/", h.createConsultation)
		r.Put("/{id}", h.updateConsultation)
		r.Delete("/{id}", h.deleteConsultation)
	})

	r.Route("/reports", func(r chi.Router) {
		r.Get("/sales", h.salesReport)
		r.Get("/top-medicines", h.topMedicines)
		r.Get("/buyer-stats", h.buyerStats)
	})

	return r
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "Medical shop API"})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		h.logger.ErrorContext(r.Context(), "health check failed", slog.Any("error", err))
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createdResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type affectedResponse struct {
	Message      string `json:"message"`
	AffectedRows int64  `json:"affectedRows"`
}

// respondAffected answers a mutation; nothing affected means the target row
// does not exist.
func (h *Handler) respondAffected(w http.ResponseWriter, r *http.Request, n int64, message, entity string) {
	if n == 0 {
		h.writeError(w, r, service.NotFound(entity))
		return
	}
	respondJSON(w, http.StatusOK, affectedResponse{Message: message, AffectedRows: n})
}

// writeError maps service errors onto HTTP statuses. Storage errors are
// logged and answered with a generic message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, service.ErrUnauthorized):
		respondError(w, http.StatusForbidden, "Unauthorized")
	case errors.Is(err, service.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInsufficientStock):
		respondError(w, http.StatusBadRequest, "Insufficient stock")
	case errors.Is(err, service.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "Service unavailable, try again")
	case errors.Is(err, idempotency.ErrInProgress):
		respondError(w, http.StatusConflict, "A request with this Idempotency-Key is still being processed")
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, service.Invalid("invalid %s", name)
	}
	return id, nil
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return service.Invalid("invalid request body: %v", err)
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
