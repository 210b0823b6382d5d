package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/personal-ledger/internal"
	"github.com/frahmantamala/personal-ledger/internal/auth"
	"github.com/frahmantamala/personal-ledger/internal/category"
	"github.com/frahmantamala/personal-ledger/internal/storage"
	"github.com/frahmantamala/personal-ledger/internal/transaction"
	"github.com/frahmantamala/personal-ledger/internal/transport"
	"github.com/frahmantamala/personal-ledger/internal/transport/rest"
	"github.com/frahmantamala/personal-ledger/internal/transport/swagger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "REST Router Suite")
}

var _ = Describe("Router", func() {
	var (
		router      *chi.Mux
		authService *auth.Service
	)

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		ctx := context.Background()

		db, err := storage.Open(ctx, internal.DatabaseConfig{Driver: internal.DriverSQLite, Source: ":memory:", MaxOpenConns: 1})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { _ = storage.Close(db) })
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())

		hash, err := auth.HashPassword("s3cret", 4)
		Expect(err).NotTo(HaveOccurred())
		authService = auth.NewService(
			auth.Owner{Username: "owner", PasswordHash: hash},
			auth.NewJWTTokenGenerator("0123456789abcdef0123456789abcdef", time.Hour),
		)

		spec, err := swagger.LoadSpec(ctx, "../../../api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())

		base := transport.NewBaseHandler(logger)
		repos := storage.Repositories(db)

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.RouterConfig{
			DB:             sqlDB,
			Driver:         internal.DriverSQLite,
			AllowedOrigins: "*",
			Spec:           spec,
			TokenValidator: authService,
			Logger:         logger,
		}, rest.Handlers{
			Auth:        auth.NewHandler(base, authService),
			Category:    category.NewHandler(base, category.NewService(repos.Categories, logger)),
			Transaction: transaction.NewHandler(base, transaction.NewService(storage.NewUnitOfWork(db), nil, logger)),
		})
	})

	login := func() string {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"owner","password":"s3cret"}`))
		w := serve(req)
		Expect(w.Code).To(Equal(http.StatusOK))
		var tokens auth.AuthTokens
		Expect(json.NewDecoder(w.Body).Decode(&tokens)).To(Succeed())
		return tokens.AccessToken
	}

	It("should answer health checks without a token", func() {
		Expect(serve(httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)).Code).To(Equal(http.StatusOK))

		w := serve(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("X-Request-ID")).NotTo(BeEmpty())
	})

	It("should echo a caller supplied request id", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
		req.Header.Set("X-Request-ID", "req-123")
		Expect(serve(req).Header().Get("X-Request-ID")).To(Equal("req-123"))
	})

	It("should serve the OpenAPI document", func() {
		w := serve(httptest.NewRequest(http.MethodGet, swagger.SpecPath, nil))
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("Personal Ledger API"))
	})

	It("should reject ledger routes without a token", func() {
		w := serve(httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil))
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("should reject wrong credentials", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"owner","password":"nope"}`))
		Expect(serve(req).Code).To(Equal(http.StatusUnauthorized))
	})

	It("should serve ledger routes with a valid token", func() {
		token := login()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(`{"title":"Salary","type":"income","value":"100","category":"Work"}`))
		req.Header.Set("Authorization", "Bearer "+token)
		Expect(serve(req).Code).To(Equal(http.StatusCreated))

		req = httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := serve(req)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("Work"))
	})

	It("should answer JSON 404 for unknown routes", func() {
		w := serve(httptest.NewRequest(http.MethodGet, "/nope", nil))
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(w.Header().Get("Content-Type")).To(Equal("application/json"))
	})
})

var _ = Describe("HealthHandler", func() {
	It("should report unhealthy when any component fails", func() {
		handler := rest.NewHealthHandler(map[string]rest.Check{
			"database": func(ctx context.Context) (map[string]any, error) { return nil, nil },
			"event_broker": func(ctx context.Context) (map[string]any, error) {
				return map[string]any{"exchange": "ledger.events"}, errors.New("amqp connection closed")
			},
		})

		w := httptest.NewRecorder()
		handler.Health(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))

		var resp rest.HealthResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Status).To(Equal(rest.HealthUnhealthy))
		Expect(resp.Components["database"].Status).To(Equal(rest.HealthHealthy))
		Expect(resp.Components["event_broker"].Message).To(Equal("amqp connection closed"))
	})
})
