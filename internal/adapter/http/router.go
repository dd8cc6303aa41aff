package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/bakeops/backledger/internal/adapter/http/handler"
	"github.com/bakeops/backledger/internal/adapter/http/middleware"
	"github.com/bakeops/backledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	EntityHandler    *handler.EntityHandler
	LedgerHandler    *handler.LedgerHandler
	StatementHandler *handler.StatementHandler
	SupplierHandler  *handler.SupplierHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Customers and parties
		r.Route("/entities", func(r chi.Router) {
			r.Post("/", cfg.EntityHandler.Create)
			r.Get("/", cfg.EntityHandler.List)
			r.Get("/{kind}/{id}", cfg.EntityHandler.Get)
			r.Put("/{kind}/{id}/opening-balance", cfg.EntityHandler.SetOpeningBalance)
		})

		// Ledgers
		r.Route("/ledger", func(r chi.Router) {
			r.Post("/", cfg.LedgerHandler.Record)
			r.Get("/consistency", cfg.LedgerHandler.Consistency)
			r.Get("/{kind}/{id}", cfg.LedgerHandler.Get)
			r.Get("/{kind}/{id}/summary", cfg.LedgerHandler.Summary)
			r.Get("/{kind}/{id}/statement.csv", cfg.StatementHandler.Account)
		})

		// Supplier views
		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/summary", cfg.SupplierHandler.List)
			r.Get("/{id}/summary", cfg.SupplierHandler.Summary)
			r.Get("/{id}/statement.csv", cfg.StatementHandler.Supplier)
		})
	})

	return r
}
