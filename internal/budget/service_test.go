package budget_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"

	"github.com/frahmantamala/smartexpense/internal"
	"github.com/frahmantamala/smartexpense/internal/budget"
	"github.com/frahmantamala/smartexpense/internal/core/events"
	"github.com/frahmantamala/smartexpense/internal/core/money"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// MockPublisher records published events.
type MockPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (m *MockPublisher) Publish(ctx context.Context, event events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := []string{}
	for _, e := range m.events {
		types = append(types, e.EventType())
	}
	return types
}

var _ = Describe("Budget Service", func() {
	var (
		ctx       context.Context
		repo      *MockBudgetRepository
		publisher *MockPublisher
		service   *budget.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = NewMockBudgetRepository()
		publisher = &MockPublisher{}
		categories := fixtureCategories()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		evaluator := budget.NewEvaluator(NewMockLedger(), repo, categories, d("0.9"), logger)
		service = budget.NewService(repo, categories, evaluator, publisher, logger)
	})

	Describe("SetMonthlyBudget", func() {
		It("should create then update the month's limit", func() {
			b, err := service.SetMonthlyBudget(ctx, accountA, budget.SetMonthlyBudgetDTO{Month: "2025-10", LimitAmount: money.Input("20000")})
			Expect(err).NotTo(HaveOccurred())
			Expect(b.LimitAmount.Equal(d("20000"))).To(BeTrue())

			b, err = service.SetMonthlyBudget(ctx, accountA, budget.SetMonthlyBudgetDTO{Month: "2025-10", LimitAmount: money.Input("15000.50")})
			Expect(err).NotTo(HaveOccurred())
			Expect(b.LimitAmount.Equal(d("15000.5"))).To(BeTrue())
			Expect(repo.monthly).To(HaveLen(1))
			Expect(publisher.Types()).To(Equal([]string{events.EventTypeBudgetUpdated, events.EventTypeBudgetUpdated}))
		})

		It("should reject a malformed month", func() {
			_, err := service.SetMonthlyBudget(ctx, accountA, budget.SetMonthlyBudgetDTO{Month: "10-2025", LimitAmount: money.Input("10")})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Details.(internal.ValidationErrors).Errors[0].Code).To(Equal(string(internal.ErrCodeInvalidMonth)))
		})

		It("should reject non-positive and non-numeric limits", func() {
			for _, raw := range []string{"0", "-5", "abc"} {
				_, err := service.SetMonthlyBudget(ctx, accountA, budget.SetMonthlyBudgetDTO{Month: "2025-10", LimitAmount: money.Input(raw)})
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue(), raw)
				Expect(appErr.Details.(internal.ValidationErrors).Errors[0].Code).To(Equal(string(internal.ErrCodeInvalidAmount)), raw)
			}
		})

		It("should wrap repository failures", func() {
			repo.SetShouldFail(true, errors.New("database error"))
			_, err := service.SetMonthlyBudget(ctx, accountA, budget.SetMonthlyBudgetDTO{Month: "2025-10", LimitAmount: money.Input("10")})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(500))
		})
	})

	Describe("ListMonthlyBudgets", func() {
		It("should list newest month first", func() {
			for _, m := range []string{"2025-08", "2025-10", "2025-09"} {
				_, err := service.SetMonthlyBudget(ctx, accountA, budget.SetMonthlyBudgetDTO{Month: m, LimitAmount: money.Input("100")})
				Expect(err).NotTo(HaveOccurred())
			}
			budgets, err := service.ListMonthlyBudgets(ctx, accountA)
			Expect(err).NotTo(HaveOccurred())
			Expect(budgets).To(HaveLen(3))
			Expect(budgets[0].Month).To(Equal("2025-10"))
			Expect(budgets[2].Month).To(Equal("2025-08"))
		})
	})

	Describe("SetCategoryBudget", func() {
		It("should accept own and global expense categories", func() {
			for _, id := range []int64{shoppingID, groceryID} {
				b, err := service.SetCategoryBudget(ctx, accountA, budget.SetCategoryBudgetDTO{CategoryID: id, Month: "2025-10", LimitAmount: money.Input("3000")})
				Expect(err).NotTo(HaveOccurred())
				Expect(b.CategoryID).To(Equal(id))
			}
		})

		It("should refuse income and savings categories", func() {
			_, err := service.SetCategoryBudget(ctx, accountA, budget.SetCategoryBudgetDTO{CategoryID: salaryID, Month: "2025-10", LimitAmount: money.Input("3000")})
			Expect(errors.Is(err, internal.ErrInvalidCategory)).To(BeTrue())
		})

		It("should refuse categories the account cannot see", func() {
			_, err := service.SetCategoryBudget(ctx, accountA, budget.SetCategoryBudgetDTO{CategoryID: otherID, Month: "2025-10", LimitAmount: money.Input("3000")})
			Expect(errors.Is(err, internal.ErrCategoryNotFound)).To(BeTrue())
		})

		It("should require a category", func() {
			_, err := service.SetCategoryBudget(ctx, accountA, budget.SetCategoryBudgetDTO{Month: "2025-10", LimitAmount: money.Input("3000")})
			Expect(err).To(MatchError("category_id is required"))
		})
	})

	Describe("CategoryStatusView", func() {
		It("should default to the current month", func() {
			m, view, err := service.CategoryStatusView(ctx, accountA, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(m.IsZero()).To(BeFalse())
			Expect(view).To(HaveLen(3))
		})

		It("should reject malformed months", func() {
			_, _, err := service.CategoryStatusView(ctx, accountA, "October")
			Expect(errors.Is(err, internal.ErrInvalidMonth)).To(BeTrue())
		})

		It("should reflect saved category budgets", func() {
			_, err := service.SetCategoryBudget(ctx, accountA, budget.SetCategoryBudgetDTO{CategoryID: billsID, Month: "2025-10", LimitAmount: money.Input("500")})
			Expect(err).NotTo(HaveOccurred())

			_, view, err := service.CategoryStatusView(ctx, accountA, "2025-10")
			Expect(err).NotTo(HaveOccurred())
			Expect(view[0].Name).To(Equal("Bills"))
			Expect(view[0].Status).To(Equal(budget.StatusOK))
		})
	})
})
