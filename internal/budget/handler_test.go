package budget_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/smartexpense/internal"
	"github.com/frahmantamala/smartexpense/internal/budget"
	"github.com/frahmantamala/smartexpense/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

var _ = Describe("Budget Handler", func() {
	var (
		ledger *MockLedger
		router *chi.Mux
	)

	send := func(method, target, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, target, nil)
		} else {
			req = httptest.NewRequest(method, target, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		}
		req = req.WithContext(internal.ContextWithAccountID(req.Context(), accountA))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decodeError := func(w *httptest.ResponseRecorder) errorBody {
		var body errorBody
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		return body
	}

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo := NewMockBudgetRepository()
		ledger = NewMockLedger()
		categories := fixtureCategories()
		evaluator := budget.NewEvaluator(ledger, repo, categories, d("0.9"), slogger)
		service := budget.NewService(repo, categories, evaluator, &MockPublisher{}, slogger)
		handler := budget.NewHandler(transport.NewBaseHandler(slogger), service)

		router = chi.NewRouter()
		router.Get("/budgets/monthly", handler.ListMonthlyBudgets)
		router.Put("/budgets/monthly", handler.SetMonthlyBudget)
		router.Get("/budgets/categories", handler.GetCategoryStatus)
		router.Put("/budgets/categories", handler.SetCategoryBudget)
	})

	Describe("monthly budgets", func() {
		It("should set and list the monthly limit", func() {
			w := send(http.MethodPut, "/budgets/monthly", `{"month":"2025-10","limit_amount":"20000"}`)
			Expect(w.Code).To(Equal(http.StatusOK))

			var saved map[string]interface{}
			Expect(json.NewDecoder(w.Body).Decode(&saved)).To(Succeed())
			Expect(saved["month"]).To(Equal("2025-10"))
			Expect(saved).NotTo(HaveKey("AccountID"))

			w = send(http.MethodGet, "/budgets/monthly", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			var list budget.MonthlyBudgetsResponse
			Expect(json.NewDecoder(w.Body).Decode(&list)).To(Succeed())
			Expect(list.Budgets).To(HaveLen(1))
			Expect(list.Budgets[0].LimitAmount.Equal(d("20000"))).To(BeTrue())
		})

		It("should accept a numeric limit", func() {
			w := send(http.MethodPut, "/budgets/monthly", `{"month":"2025-11","limit_amount":150.75}`)
			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("should reject a malformed body", func() {
			w := send(http.MethodPut, "/budgets/monthly", `{"month":`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeError(w).Error.Code).To(Equal(string(internal.ErrCodeValidationFailed)))
		})

		It("should reject a non-positive limit", func() {
			w := send(http.MethodPut, "/budgets/monthly", `{"month":"2025-10","limit_amount":"0"}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeError(w).Error.Message).To(ContainSubstring("limit_amount must be greater than zero"))
		})
	})

	Describe("category budgets", func() {
		It("should set a category limit and grade it in the status view", func() {
			ledger.Add(accountA, billsID, "950", oct(3))

			w := send(http.MethodPut, "/budgets/categories", `{"category_id":20,"month":"2025-10","limit_amount":"1000"}`)
			Expect(w.Code).To(Equal(http.StatusOK))

			w = send(http.MethodGet, "/budgets/categories?month=2025-10", "")
			Expect(w.Code).To(Equal(http.StatusOK))

			var view budget.StatusViewResponse
			Expect(json.NewDecoder(w.Body).Decode(&view)).To(Succeed())
			Expect(view.Month).To(Equal("2025-10"))

			byName := map[string]budget.CategoryStatus{}
			for _, row := range view.Categories {
				byName[row.Name] = row
			}
			Expect(byName).To(HaveKey("Bills"))
			Expect(byName["Bills"].Status).To(Equal(budget.StatusNear))
			Expect(byName["Bills"].Spent.Equal(d("950"))).To(BeTrue())
			Expect(byName["Shopping"].Status).To(Equal(budget.StatusNone))
			Expect(byName["Shopping"].Limit).To(BeNil())
			Expect(byName).NotTo(HaveKey("Travel"))
		})

		It("should return 404 for a category owned by another account", func() {
			w := send(http.MethodPut, "/budgets/categories", `{"category_id":30,"month":"2025-10","limit_amount":"100"}`)
			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(decodeError(w).Error.Code).To(Equal(string(internal.ErrCodeCategoryNotFound)))
		})

		It("should refuse a limit on a non-expense category", func() {
			w := send(http.MethodPut, "/budgets/categories", `{"category_id":10,"month":"2025-10","limit_amount":"100"}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeError(w).Error.Code).To(Equal(string(internal.ErrCodeInvalidCategory)))
		})

		It("should reject a malformed month query", func() {
			w := send(http.MethodGet, "/budgets/categories?month=October", "")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeError(w).Error.Code).To(Equal(string(internal.ErrCodeInvalidMonth)))
		})
	})
})
