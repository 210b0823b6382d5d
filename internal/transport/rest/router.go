package rest

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"

	"github.com/frahmantamala/personal-ledger/internal/auth"
	"github.com/frahmantamala/personal-ledger/internal/category"
	"github.com/frahmantamala/personal-ledger/internal/importer"
	"github.com/frahmantamala/personal-ledger/internal/report"
	"github.com/frahmantamala/personal-ledger/internal/transaction"
	"github.com/frahmantamala/personal-ledger/internal/transport/middleware"
	"github.com/frahmantamala/personal-ledger/internal/transport/swagger"
)

type Handlers struct {
	Auth        *auth.Handler
	Category    *category.Handler
	Transaction *transaction.Handler
	Import      *importer.Handler
	Report      *report.Handler
}

type RouterConfig struct {
	DB             *sql.DB
	Driver         string
	AllowedOrigins string
	RequestTimeout time.Duration
	Spec           *openapi3.T
	// TokenValidator guards the ledger routes when set.
	TokenValidator middleware.TokenValidator
	// HealthChecks are reported next to the database by /health.
	HealthChecks   map[string]Check
	Logger         *slog.Logger
}

func RegisterAllRoutes(router chi.Router, cfg RouterConfig, h Handlers) {
	checks := map[string]Check{"database": DatabaseCheck(cfg.DB, cfg.Driver)}
	for name, check := range cfg.HealthChecks {
		checks[name] = check
	}
	healthHandler := NewHealthHandler(checks)

	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.WithLogger(cfg.Logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware(cfg.Logger))
	router.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	if cfg.Spec != nil {
		router.Get(swagger.SpecPath, swagger.SpecHandler(cfg.Spec))
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)
		r.Get("/ping", healthHandler.Ping)

		if h.Auth != nil {
			r.Post("/auth/login", h.Auth.Login)
		}

		r.Group(func(pr chi.Router) {
			if cfg.TokenValidator != nil {
				pr.Use(middleware.RequireOwner(cfg.TokenValidator, cfg.Logger))
			}

			if h.Category != nil {
				pr.Get("/categories", h.Category.GetCategories)
			}

			if h.Transaction != nil {
				pr.Route("/transactions", func(tr chi.Router) {
					tr.Get("/", h.Transaction.ListTransactions)
					tr.Post("/", h.Transaction.CreateTransaction)
					tr.Get("/balance", h.Transaction.GetBalance)
					if h.Import != nil {
						tr.Post("/import", h.Import.ImportTransactions)
					}
					tr.Delete("/{id}", h.Transaction.DeleteTransaction)
				})
			}

			if h.Report != nil {
				pr.Get("/reports/categories", h.Report.GetCategorySummary)
			}
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"NOT_FOUND","code":"ROUTE_NOT_FOUND","message":"Route not found"}}`))
	})
}
