package transaction_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/frahmantamala/personal-ledger/internal"
	"github.com/frahmantamala/personal-ledger/internal/storage"
	"github.com/frahmantamala/personal-ledger/internal/transaction"
	"github.com/frahmantamala/personal-ledger/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Transaction Handler Integration", func() {
	var (
		db     *gorm.DB
		router chi.Router
	)

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = storage.Open(context.Background(), internal.DatabaseConfig{
			Driver:       internal.DriverSQLite,
			Source:       ":memory:",
			MaxOpenConns: 1,
		})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { _ = storage.Close(db) })

		service := transaction.NewService(storage.NewUnitOfWork(db), nil, slogger)
		handler := transaction.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		router = chi.NewRouter()
		router.Get("/transactions", handler.ListTransactions)
		router.Post("/transactions", handler.CreateTransaction)
		router.Get("/transactions/balance", handler.GetBalance)
		router.Delete("/transactions/{id}", handler.DeleteTransaction)
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("should create a transaction and answer 201", func() {
		w := post(`{"title":"Salary","type":"income","value":5000,"category":"Salary"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var body map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body["title"]).To(Equal("Salary"))
		Expect(body["type"]).To(Equal("income"))
		Expect(body["category"]).To(HaveKeyWithValue("title", "Salary"))
	})

	It("should answer 400 with INSUFFICIENT_FUNDS when the balance is too low", func() {
		w := post(`{"title":"Rent","type":"outcome","value":"10","category":"Housing"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))

		var raw map[string]map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&raw)).To(Succeed())
		Expect(raw["error"]["code"]).To(Equal(string(internal.ErrCodeInsufficientFunds)))
	})

	It("should answer 400 for a malformed body", func() {
		w := post(`{"title":`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should answer 400 with field details for invalid input", func() {
		w := post(`{"title":"","type":"transfer","value":1,"category":"X"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))

		var raw map[string]map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&raw)).To(Succeed())
		Expect(raw["error"]["type"]).To(Equal(string(internal.ErrorTypeValidation)))
		Expect(raw["error"]["details"]).NotTo(BeNil())
	})

	It("should list transactions with the balance", func() {
		Expect(post(`{"title":"Salary","type":"income","value":5000,"category":"Salary"}`).Code).To(Equal(http.StatusCreated))
		Expect(post(`{"title":"Rent","type":"outcome","value":4000,"category":"Housing"}`).Code).To(Equal(http.StatusCreated))

		req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var response transaction.TransactionsResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Transactions).To(HaveLen(2))
		Expect(response.Balance.Total.String()).To(Equal("1000"))
	})

	It("should delete a transaction and answer 204, then 404", func() {
		w := post(`{"title":"Salary","type":"income","value":5000,"category":"Salary"}`)
		var created transaction.Transaction
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())

		del := func() int {
			req := httptest.NewRequest(http.MethodDelete, "/transactions/"+created.ID.String(), nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			return rec.Code
		}
		Expect(del()).To(Equal(http.StatusNoContent))
		Expect(del()).To(Equal(http.StatusNotFound))
	})

	It("should answer 400 for a malformed id", func() {
		req := httptest.NewRequest(http.MethodDelete, "/transactions/not-a-uuid", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should answer 404 for an unknown id", func() {
		req := httptest.NewRequest(http.MethodDelete, "/transactions/"+uuid.NewString(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})
})
