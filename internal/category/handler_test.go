package category_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/smartexpense/internal"
	"github.com/frahmantamala/smartexpense/internal/category"
	categoryPostgres "github.com/frahmantamala/smartexpense/internal/category/postgres"
	categoryDatamodel "github.com/frahmantamala/smartexpense/internal/core/datamodel/category"
	"github.com/frahmantamala/smartexpense/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Category Handler Integration", func() {
	var (
		db      *gorm.DB
		usage   *MockUsage
		router  *chi.Mux
		slogger *slog.Logger
	)

	asAccount := func(req *http.Request, accountID int64) *http.Request {
		return req.WithContext(internal.ContextWithAccountID(req.Context(), accountID))
	}

	BeforeEach(func() {
		var err error
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&categoryDatamodel.Category{})).To(Succeed())

		repo := categoryPostgres.NewCategoryRepository(db)
		usage = &MockUsage{counts: map[int64]int64{}}
		service := category.NewService(repo, usage, slogger)
		handler := category.NewHandler(transport.NewBaseHandler(slogger), service)

		_, err = service.EnsureDefaults(context.Background())
		Expect(err).NotTo(HaveOccurred())

		router = chi.NewRouter()
		router.Get("/categories", handler.GetCategories)
		router.Post("/categories", handler.CreateCategory)
		router.Put("/categories/{id}", handler.RenameCategory)
		router.Delete("/categories/{id}", handler.DeleteCategory)
	})

	It("should handle GET /categories request successfully", func() {
		req := asAccount(httptest.NewRequest(http.MethodGet, "/categories", nil), 1)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var response category.CategoriesResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Categories).To(HaveLen(len(category.DefaultNames)))
		for _, c := range response.Categories {
			Expect(c.Global).To(BeTrue())
			Expect(c.Kind).To(Equal("expense"))
		}
	})

	It("should reject an unknown kind filter", func() {
		req := asAccount(httptest.NewRequest(http.MethodGet, "/categories?kind=loan", nil), 1)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should create, rename and delete an own category", func() {
		req := asAccount(httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"name":"Pets"}`)), 1)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var created category.CategoryResponse
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.Global).To(BeFalse())

		path := "/categories/" + itoa(created.ID)
		req = asAccount(httptest.NewRequest(http.MethodPut, path, strings.NewReader(`{"name":"Animals"}`)), 1)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("Animals"))

		req = asAccount(httptest.NewRequest(http.MethodDelete, path, nil), 1)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusNoContent))
	})

	It("should answer 409 for a duplicate name", func() {
		req := asAccount(httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"name":"bills"}`)), 1)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusConflict))
		var body map[string]map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body["error"]["code"]).To(Equal("DUPLICATE_CATEGORY"))
	})

	It("should answer 409 when deleting a category in use", func() {
		c := &categoryDatamodel.Category{AccountID: owner(1), Name: "Food", Kind: "expense"}
		Expect(db.Create(c).Error).To(Succeed())
		usage.counts[c.ID] = 1

		req := asAccount(httptest.NewRequest(http.MethodDelete, "/categories/"+itoa(c.ID), nil), 1)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(w.Body.String()).To(ContainSubstring("Cannot delete category in use by expenses"))
	})

	It("should answer 400 for a malformed body", func() {
		req := asAccount(httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{`)), 1)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})

var _ = Describe("Category Service on SQLite", func() {
	It("should create the fallback category beside a same-named category of another kind", func() {
		ctx := context.Background()
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&categoryDatamodel.Category{})).To(Succeed())

		service := category.NewService(categoryPostgres.NewCategoryRepository(db), &MockUsage{counts: map[int64]int64{}}, slogger)
		_, err = service.Create(ctx, 3, category.CreateCategoryDTO{Name: "Income"})
		Expect(err).NotTo(HaveOccurred())

		c, err := service.EnsureOwnedOfKind(ctx, 3, category.KindIncome, "Income")
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Name).To(Equal("Income (income)"))
		Expect(c.Kind).To(Equal(category.KindIncome))

		again, err := service.EnsureOwnedOfKind(ctx, 3, category.KindIncome, "Income")
		Expect(err).NotTo(HaveOccurred())
		Expect(again.ID).To(Equal(c.ID))
	})
})
