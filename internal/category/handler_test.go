package category_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/frahmantamala/personal-ledger/internal/category"
	categoryPostgres "github.com/frahmantamala/personal-ledger/internal/category/postgres"
	categoryDatamodel "github.com/frahmantamala/personal-ledger/internal/core/datamodel/category"
	"github.com/frahmantamala/personal-ledger/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type failingCategoryService struct{}

func (failingCategoryService) GetAllCategories(ctx context.Context) ([]category.CategoryResponse, error) {
	return nil, errors.New("database unavailable")
}

var _ = Describe("Category Handler Integration", func() {
	var (
		db      *gorm.DB
		repo    category.RepositoryAPI
		service *category.Service
		handler *category.Handler
		slogger *slog.Logger
	)

	BeforeEach(func() {
		var err error
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&categoryDatamodel.Category{})
		Expect(err).NotTo(HaveOccurred())

		repo = categoryPostgres.NewCategoryRepository(db)
		service = category.NewService(repo, slogger)
		baseHandler := &transport.BaseHandler{Logger: slogger}
		handler = category.NewHandler(baseHandler, service)

		err = repo.CreateMany(context.Background(), []*categoryDatamodel.Category{
			category.ToDataModel(category.NewCategory("Salary")),
			category.ToDataModel(category.NewCategory("Food")),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("should handle GET /categories request successfully", func() {
		req := httptest.NewRequest(http.MethodGet, "/categories", nil)
		w := httptest.NewRecorder()

		handler.GetCategories(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var response category.CategoriesResponse
		err := json.NewDecoder(w.Body).Decode(&response)
		Expect(err).NotTo(HaveOccurred())

		Expect(response.Categories).To(HaveLen(2))
		Expect(response.Categories[0].Title).To(Equal("Food"))
		Expect(response.Categories[1].Title).To(Equal("Salary"))
		for _, cat := range response.Categories {
			Expect(cat.ID).NotTo(BeEmpty())
		}
	})

	It("should answer 500 when the service fails", func() {
		failing := category.NewHandler(&transport.BaseHandler{Logger: slogger}, failingCategoryService{})
		req := httptest.NewRequest(http.MethodGet, "/categories", nil)
		w := httptest.NewRecorder()

		failing.GetCategories(w, req)

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
	})
})
