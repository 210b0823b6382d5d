package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/frahmantamala/personal-ledger/internal"
	"github.com/frahmantamala/personal-ledger/internal/auth"
	"github.com/frahmantamala/personal-ledger/internal/category"
	"github.com/frahmantamala/personal-ledger/internal/importer"
	"github.com/frahmantamala/personal-ledger/internal/report"
	"github.com/frahmantamala/personal-ledger/internal/transaction"
	"github.com/frahmantamala/personal-ledger/internal/transport"
	"github.com/frahmantamala/personal-ledger/internal/transport/rest"
	"github.com/frahmantamala/personal-ledger/internal/transport/swagger"
)

const shutdownTimeout = 30 * time.Second

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startHTTPServer()
	},
}

func startHTTPServer() error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := initializeDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		deps.Close(closeCtx)
	}()

	router, err := setupRoutes(ctx, deps)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps.Logger.Info("Starting HTTP server", "address", addr, "driver", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		deps.Logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		deps.Logger.Error("server stopped with error", "error", err)
		return err
	}

	deps.Logger.Info("Server stopped")
	return nil
}

func setupRoutes(ctx context.Context, deps *Dependencies) (*chi.Mux, error) {
	cfg := deps.Config
	base := transport.NewBaseHandler(deps.Logger)

	sqlDB, err := deps.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	routerCfg := rest.RouterConfig{
		DB:             sqlDB,
		Driver:         cfg.Database.Driver,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
		Logger:         deps.Logger,
	}

	if deps.Forwarder != nil {
		routerCfg.HealthChecks = map[string]rest.Check{
			"event_broker": func(ctx context.Context) (map[string]any, error) {
				return map[string]any{"exchange": cfg.Events.Exchange}, deps.Forwarder.Healthy()
			},
		}
	}

	if cfg.Server.OpenAPIPath != "" {
		doc, err := swagger.LoadSpec(ctx, cfg.Server.OpenAPIPath)
		if err != nil {
			return nil, err
		}
		routerCfg.Spec = doc
	}

	handlers := rest.Handlers{
		Category:    category.NewHandler(base, deps.Categories),
		Transaction: transaction.NewHandler(base, deps.Transactions),
		Import:      importer.NewHandler(base, deps.Pipeline, cfg.Upload),
		Report:      report.NewHandler(base, deps.Reports),
	}

	if cfg.Security.Enabled {
		authService := newAuthService(cfg.Security)
		handlers.Auth = auth.NewHandler(base, authService)
		routerCfg.TokenValidator = authService
	} else {
		deps.Logger.Warn("security disabled; ledger routes are open")
	}

	if err := os.MkdirAll(cfg.Upload.Directory, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, routerCfg, handlers)
	return router, nil
}

func newAuthService(cfg internal.SecurityConfig) *auth.Service {
	return auth.NewService(
		auth.Owner{Username: cfg.OwnerUsername, PasswordHash: cfg.OwnerPasswordHash},
		auth.NewJWTTokenGenerator(cfg.JWTSecret, cfg.AccessTokenDuration),
	)
}
