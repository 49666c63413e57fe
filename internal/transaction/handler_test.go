package transaction_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/frahmantamala/smartexpense/internal"
	"github.com/frahmantamala/smartexpense/internal/budget"
	budgetPostgres "github.com/frahmantamala/smartexpense/internal/budget/postgres"
	"github.com/frahmantamala/smartexpense/internal/category"
	categoryPostgres "github.com/frahmantamala/smartexpense/internal/category/postgres"
	budgetDatamodel "github.com/frahmantamala/smartexpense/internal/core/datamodel/budget"
	categoryDatamodel "github.com/frahmantamala/smartexpense/internal/core/datamodel/category"
	transactionDatamodel "github.com/frahmantamala/smartexpense/internal/core/datamodel/transaction"
	"github.com/frahmantamala/smartexpense/internal/transaction"
	transactionPostgres "github.com/frahmantamala/smartexpense/internal/transaction/postgres"
	"github.com/frahmantamala/smartexpense/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Transaction Handler Integration", func() {
	var (
		db         *gorm.DB
		router     *chi.Mux
		budgetRepo budget.RepositoryAPI
		foodID     int64
	)

	do := func(method, path string, body interface{}, accountID int64) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req = req.WithContext(internal.ContextWithAccountID(req.Context(), accountID))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(
			&categoryDatamodel.Category{},
			&transactionDatamodel.Transaction{},
			&budgetDatamodel.MonthlyBudget{},
			&budgetDatamodel.CategoryBudget{},
		)).To(Succeed())

		txRepo := transactionPostgres.NewTransactionRepository(db)
		categories := category.NewService(categoryPostgres.NewCategoryRepository(db), txRepo, slogger)
		budgetRepo = budgetPostgres.NewBudgetRepository(db)
		evaluator := budget.NewEvaluator(txRepo, budgetRepo, categories, d("0.9"), slogger)
		service := transaction.NewService(txRepo, categories, evaluator, nil, true, slogger)
		handler := transaction.NewHandler(transport.NewBaseHandler(slogger), service)

		food := &categoryDatamodel.Category{AccountID: owner(accountA), Name: "Food", Kind: "expense"}
		Expect(db.Create(food).Error).To(Succeed())
		foodID = food.ID

		router = chi.NewRouter()
		router.Get("/transactions", handler.ListTransactions)
		router.Post("/transactions", handler.CreateTransactions)
		router.Post("/transactions/check", handler.CheckBudget)
		router.Post("/income", handler.AddIncome)
		router.Post("/savings", handler.AddSavings)
		router.Get("/transactions/{id}", handler.GetTransaction)
		router.Put("/transactions/{id}", handler.UpdateTransaction)
		router.Delete("/transactions/{id}", handler.DeleteTransaction)
	})

	batch := func(rows ...map[string]interface{}) map[string]interface{} {
		return map[string]interface{}{"transactions": rows}
	}

	It("should reject expenses without income", func() {
		w := do(http.MethodPost, "/transactions", batch(map[string]interface{}{
			"title": "Lunch", "amount": 10, "category_id": foodID,
		}), accountA)

		Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
		var result transaction.BatchResult
		Expect(json.NewDecoder(w.Body).Decode(&result)).To(Succeed())
		Expect(result.Created).To(Equal(0))
		Expect(result.Errors).To(Equal([]string{"Expense 'Lunch': Amount exceeds available balance. Remaining: 0.00"}))
	})

	It("should record income then admit expenses against it", func() {
		w := do(http.MethodPost, "/income", map[string]interface{}{"title": "Salary", "amount": "1000"}, accountA)
		Expect(w.Code).To(Equal(http.StatusCreated))
		var income transaction.TransactionResponse
		Expect(json.NewDecoder(w.Body).Decode(&income)).To(Succeed())
		Expect(income.Kind).To(Equal("income"))
		Expect(income.Amount).To(Equal("1000.00"))

		w = do(http.MethodPost, "/transactions", batch(
			map[string]interface{}{"title": "Lunch", "amount": "120.5", "category_id": foodID},
			map[string]interface{}{"title": "Rent", "amount": 2000, "category_id": foodID},
		), accountA)
		Expect(w.Code).To(Equal(http.StatusCreated))
		var result transaction.BatchResult
		Expect(json.NewDecoder(w.Body).Decode(&result)).To(Succeed())
		Expect(result.Created).To(Equal(1))
		Expect(result.Errors).To(Equal([]string{"Expense 'Rent': Amount exceeds available balance. Remaining: 879.50"}))

		w = do(http.MethodGet, "/transactions?kind=expense", nil, accountA)
		Expect(w.Code).To(Equal(http.StatusOK))
		var list transaction.TransactionsResponse
		Expect(json.NewDecoder(w.Body).Decode(&list)).To(Succeed())
		Expect(list.Transactions).To(HaveLen(1))
		Expect(list.Transactions[0].Title).To(Equal("Lunch"))
	})

	It("should answer 200 for an empty batch", func() {
		w := do(http.MethodPost, "/transactions", batch(), accountA)
		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("should enforce the category budget", func() {
		do(http.MethodPost, "/income", map[string]interface{}{"title": "Salary", "amount": 5000}, accountA)
		Expect(budgetRepo.UpsertCategoryBudget(context.Background(), &budgetDatamodel.CategoryBudget{
			AccountID: accountA, CategoryID: foodID, Month: time.Now().Format("2006-01"), LimitAmount: d("100"),
		})).To(Succeed())

		w := do(http.MethodPost, "/transactions/check", map[string]interface{}{"amount": 150, "category_id": foodID}, accountA)
		Expect(w.Code).To(Equal(http.StatusOK))
		var check transaction.CheckBudgetResponse
		Expect(json.NewDecoder(w.Body).Decode(&check)).To(Succeed())
		Expect(check.OK).To(BeFalse())
		Expect(check.Message).To(Equal("Adding this expense would exceed your budget for this category. Remaining: 100.00"))
	})

	It("should map CheckBudget validation to 400", func() {
		w := do(http.MethodPost, "/transactions/check", map[string]interface{}{"amount": 10}, accountA)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should default the savings title", func() {
		w := do(http.MethodPost, "/savings", map[string]interface{}{"amount": 50}, accountA)
		Expect(w.Code).To(Equal(http.StatusCreated))
		var saved transaction.TransactionResponse
		Expect(json.NewDecoder(w.Body).Decode(&saved)).To(Succeed())
		Expect(saved.Title).To(Equal("Savings"))
		Expect(saved.Kind).To(Equal("savings"))
	})

	It("should get, update and delete own transactions only", func() {
		w := do(http.MethodPost, "/income", map[string]interface{}{"title": "Salary", "amount": 100, "spent_on": "2025-10-01"}, accountA)
		var income transaction.TransactionResponse
		Expect(json.NewDecoder(w.Body).Decode(&income)).To(Succeed())
		path := fmt.Sprintf("/transactions/%d", income.ID)

		Expect(do(http.MethodGet, path, nil, accountB).Code).To(Equal(http.StatusNotFound))

		w = do(http.MethodGet, path, nil, accountA)
		Expect(w.Code).To(Equal(http.StatusOK))

		w = do(http.MethodPut, path, map[string]interface{}{"title": "October salary"}, accountA)
		Expect(w.Code).To(Equal(http.StatusOK))
		var updated transaction.TransactionResponse
		Expect(json.NewDecoder(w.Body).Decode(&updated)).To(Succeed())
		Expect(updated.Title).To(Equal("October salary"))
		Expect(updated.SpentOn).To(Equal("2025-10-01"))

		Expect(do(http.MethodDelete, path, nil, accountB).Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodDelete, path, nil, accountA).Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodGet, path, nil, accountA).Code).To(Equal(http.StatusNotFound))
	})

	It("should reject malformed ids and bodies", func() {
		Expect(do(http.MethodGet, "/transactions/abc", nil, accountA).Code).To(Equal(http.StatusBadRequest))

		req := httptest.NewRequest(http.MethodPost, "/income", bytes.NewBufferString("{not json"))
		req = req.WithContext(internal.ContextWithAccountID(req.Context(), accountA))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
