package budget_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/frahmantamala/smartexpense/internal"
	"github.com/frahmantamala/smartexpense/internal/budget"
	"github.com/frahmantamala/smartexpense/internal/category"
	budgetDatamodel "github.com/frahmantamala/smartexpense/internal/core/datamodel/budget"
	"github.com/frahmantamala/smartexpense/internal/core/month"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func TestBudget(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Budget Suite")
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func owner(id int64) *int64 { return &id }

func oct(day int) time.Time { return time.Date(2025, time.October, day, 0, 0, 0, 0, time.UTC) }

type entry struct {
	accountID  int64
	categoryID int64
	amount     decimal.Decimal
	on         time.Time
}

// MockLedger sums an in-memory list of transactions.
type MockLedger struct {
	kinds      map[int64]category.Kind
	entries    []entry
	shouldFail bool
	failError  error
}

func NewMockLedger() *MockLedger {
	return &MockLedger{kinds: map[int64]category.Kind{}}
}

func (m *MockLedger) SetShouldFail(shouldFail bool, err error) {
	m.shouldFail = shouldFail
	m.failError = err
}

func (m *MockLedger) Add(accountID, categoryID int64, amount string, on time.Time) {
	m.entries = append(m.entries, entry{accountID: accountID, categoryID: categoryID, amount: d(amount), on: on})
}

func (m *MockLedger) SumAmount(ctx context.Context, accountID int64, mo month.Month, kind category.Kind) (decimal.Decimal, error) {
	if m.shouldFail {
		return decimal.Zero, m.failError
	}
	total := decimal.Zero
	for _, e := range m.entries {
		if e.accountID == accountID && month.Of(e.on) == mo && (kind == "" || m.kinds[e.categoryID] == kind) {
			total = total.Add(e.amount)
		}
	}
	return total, nil
}

func (m *MockLedger) SumAmountForCategory(ctx context.Context, accountID, categoryID int64, mo month.Month) (decimal.Decimal, error) {
	if m.shouldFail {
		return decimal.Zero, m.failError
	}
	total := decimal.Zero
	for _, e := range m.entries {
		if e.accountID == accountID && e.categoryID == categoryID && month.Of(e.on) == mo {
			total = total.Add(e.amount)
		}
	}
	return total, nil
}

func (m *MockLedger) SumAmountByCategory(ctx context.Context, accountID int64, mo month.Month) (map[int64]decimal.Decimal, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	out := map[int64]decimal.Decimal{}
	for _, e := range m.entries {
		if e.accountID == accountID && month.Of(e.on) == mo {
			out[e.categoryID] = out[e.categoryID].Add(e.amount)
		}
	}
	return out, nil
}

// MockBudgetRepository implements budget.RepositoryAPI for testing
type MockBudgetRepository struct {
	monthly    map[string]*budgetDatamodel.MonthlyBudget
	byCategory map[string]*budgetDatamodel.CategoryBudget
	nextID     int64
	shouldFail bool
	failError  error
}

func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{
		monthly:    map[string]*budgetDatamodel.MonthlyBudget{},
		byCategory: map[string]*budgetDatamodel.CategoryBudget{},
	}
}

func (m *MockBudgetRepository) SetShouldFail(shouldFail bool, err error) {
	m.shouldFail = shouldFail
	m.failError = err
}

func monthlyKey(accountID int64, mo string) string {
	return fmt.Sprintf("%d/%s", accountID, mo)
}

func categoryKey(accountID, categoryID int64, mo string) string {
	return fmt.Sprintf("%d/%s/%d", accountID, mo, categoryID)
}

func (m *MockBudgetRepository) GetMonthlyBudget(ctx context.Context, accountID int64, mo string) (*budgetDatamodel.MonthlyBudget, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.monthly[monthlyKey(accountID, mo)], nil
}

func (m *MockBudgetRepository) GetCategoryBudget(ctx context.Context, accountID, categoryID int64, mo string) (*budgetDatamodel.CategoryBudget, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.byCategory[categoryKey(accountID, categoryID, mo)], nil
}

func (m *MockBudgetRepository) ListCategoryBudgets(ctx context.Context, accountID int64, mo string) ([]*budgetDatamodel.CategoryBudget, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var out []*budgetDatamodel.CategoryBudget
	for _, b := range m.byCategory {
		if b.AccountID == accountID && b.Month == mo {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *MockBudgetRepository) ListMonthlyBudgets(ctx context.Context, accountID int64) ([]*budgetDatamodel.MonthlyBudget, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var out []*budgetDatamodel.MonthlyBudget
	for _, b := range m.monthly {
		if b.AccountID == accountID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out, nil
}

func (m *MockBudgetRepository) UpsertMonthlyBudget(ctx context.Context, b *budgetDatamodel.MonthlyBudget) error {
	if m.shouldFail {
		return m.failError
	}
	key := monthlyKey(b.AccountID, b.Month)
	if existing, ok := m.monthly[key]; ok {
		existing.LimitAmount = b.LimitAmount
		return nil
	}
	m.nextID++
	b.ID = m.nextID
	m.monthly[key] = b
	return nil
}

func (m *MockBudgetRepository) UpsertCategoryBudget(ctx context.Context, b *budgetDatamodel.CategoryBudget) error {
	if m.shouldFail {
		return m.failError
	}
	key := categoryKey(b.AccountID, b.CategoryID, b.Month)
	if existing, ok := m.byCategory[key]; ok {
		existing.LimitAmount = b.LimitAmount
		return nil
	}
	m.nextID++
	b.ID = m.nextID
	m.byCategory[key] = b
	return nil
}

// MockCategories serves a fixed category list.
type MockCategories struct {
	categories []*category.Category
}

func (m *MockCategories) ListVisible(ctx context.Context, accountID int64, kind category.Kind) ([]*category.Category, error) {
	var out []*category.Category
	for _, c := range m.categories {
		if c.VisibleTo(accountID) && (kind == "" || c.Kind == kind) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockCategories) GetVisible(ctx context.Context, accountID, id int64) (*category.Category, error) {
	for _, c := range m.categories {
		if c.ID == id && c.VisibleTo(accountID) {
			return c, nil
		}
	}
	return nil, internal.ErrCategoryNotFound
}

const (
	accountA int64 = 1
	accountB int64 = 2

	salaryID   int64 = 10
	savingsID  int64 = 11
	billsID    int64 = 20
	shoppingID int64 = 21
	groceryID  int64 = 22
	otherID    int64 = 30
)

func fixtureCategories() *MockCategories {
	return &MockCategories{categories: []*category.Category{
		{ID: salaryID, AccountID: owner(accountA), Name: "Salary", Kind: category.KindIncome},
		{ID: savingsID, AccountID: owner(accountA), Name: "Savings", Kind: category.KindSavings},
		{ID: billsID, AccountID: owner(accountA), Name: "Bills", Kind: category.KindExpense},
		{ID: shoppingID, AccountID: owner(accountA), Name: "Shopping", Kind: category.KindExpense},
		{ID: groceryID, Name: "Groceries", Kind: category.KindExpense},
		{ID: otherID, AccountID: owner(accountB), Name: "Travel", Kind: category.KindExpense},
	}}
}

var _ = Describe("Budget Evaluator", func() {
	var (
		ctx        context.Context
		ledger     *MockLedger
		budgets    *MockBudgetRepository
		categories *MockCategories
		evaluator  *budget.Evaluator
	)

	setCategoryBudget := func(categoryID int64, limit string) {
		Expect(budgets.UpsertCategoryBudget(ctx, &budgetDatamodel.CategoryBudget{
			AccountID: accountA, CategoryID: categoryID, Month: "2025-10", LimitAmount: d(limit),
		})).To(Succeed())
	}

	setMonthlyBudget := func(limit string) {
		Expect(budgets.UpsertMonthlyBudget(ctx, &budgetDatamodel.MonthlyBudget{
			AccountID: accountA, Month: "2025-10", LimitAmount: d(limit),
		})).To(Succeed())
	}

	BeforeEach(func() {
		ctx = context.Background()
		categories = fixtureCategories()
		ledger = NewMockLedger()
		for _, c := range categories.categories {
			ledger.kinds[c.ID] = c.Kind
		}
		budgets = NewMockBudgetRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		evaluator = budget.NewEvaluator(ledger, budgets, categories, d("0.9"), logger)
	})

	Describe("EvaluateAdmission", func() {
		Context("with no budgets configured", func() {
			BeforeEach(func() {
				ledger.Add(accountA, salaryID, "1000", oct(1))
			})

			It("should accept any amount up to the remaining balance", func() {
				for _, amount := range []string{"0.01", "500", "1000"} {
					result, err := evaluator.EvaluateAdmission(ctx, accountA, d(amount), billsID, oct(15))
					Expect(err).NotTo(HaveOccurred())
					Expect(result.Accepted).To(BeTrue(), amount)
					Expect(result.Message).To(Equal("Within budget"))
				}
			})

			It("should reject amounts above the remaining balance with the exact remainder", func() {
				ledger.Add(accountA, billsID, "250.5", oct(2))
				ledger.Add(accountA, savingsID, "100", oct(3))

				result, err := evaluator.EvaluateAdmission(ctx, accountA, d("649.51"), billsID, oct(15))
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Accepted).To(BeFalse())
				Expect(result.Reason).To(Equal(budget.ReasonBalance))
				Expect(result.Remaining.Equal(d("649.5"))).To(BeTrue())
				Expect(result.Message).To(Equal("Amount exceeds available balance. Remaining: 649.50"))
			})

			It("should only count the proposal's month", func() {
				ledger.Add(accountA, billsID, "900", time.Date(2025, time.September, 30, 0, 0, 0, 0, time.UTC))

				result, err := evaluator.EvaluateAdmission(ctx, accountA, d("1000"), billsID, oct(1))
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Accepted).To(BeTrue())
			})

			It("should ignore other accounts' transactions", func() {
				ledger.Add(accountB, otherID, "1000", oct(2))

				result, err := evaluator.EvaluateAdmission(ctx, accountA, d("1000"), billsID, oct(15))
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Accepted).To(BeTrue())
			})
		})

		It("should reject everything when the balance is negative", func() {
			ledger.Add(accountA, billsID, "10", oct(1))

			result, err := evaluator.EvaluateAdmission(ctx, accountA, d("0.01"), billsID, oct(2))
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Reason).To(Equal(budget.ReasonBalance))
			Expect(result.Message).To(Equal("Amount exceeds available balance. Remaining: -10.00"))
		})

		It("should reject non-positive amounts before evaluating", func() {
			ledger.SetShouldFail(true, errors.New("must not be called"))
			for _, amount := range []string{"0", "-1"} {
				_, err := evaluator.EvaluateAdmission(ctx, accountA, d(amount), billsID, oct(1))
				Expect(errors.Is(err, internal.ErrInvalidAmount)).To(BeTrue())
			}
		})

		Context("with a category budget of 1000 and 800 spent", func() {
			BeforeEach(func() {
				ledger.Add(accountA, salaryID, "50000", oct(1))
				ledger.Add(accountA, shoppingID, "800", oct(5))
				setCategoryBudget(shoppingID, "1000")
			})

			It("should accept 150", func() {
				result, err := evaluator.EvaluateAdmission(ctx, accountA, d("150"), shoppingID, oct(10))
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Accepted).To(BeTrue())
			})

			It("should accept exactly the remaining allowance", func() {
				result, err := evaluator.EvaluateAdmission(ctx, accountA, d("200"), shoppingID, oct(10))
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Accepted).To(BeTrue())
			})

			It("should reject 250 reporting 200.00 remaining", func() {
				result, err := evaluator.EvaluateAdmission(ctx, accountA, d("250"), shoppingID, oct(10))
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Accepted).To(BeFalse())
				Expect(result.Reason).To(Equal(budget.ReasonCategory))
				Expect(result.Message).To(Equal("Adding this expense would exceed your budget for this category. Remaining: 200.00"))
			})

			It("should not apply the budget to other categories", func() {
				result, err := evaluator.EvaluateAdmission(ctx, accountA, d("250"), billsID, oct(10))
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Accepted).To(BeTrue())
			})

			It("should not apply the budget to other months", func() {
				ledger.Add(accountA, salaryID, "50000", time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC))
				result, err := evaluator.EvaluateAdmission(ctx, accountA, d("2500"), shoppingID, time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC))
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Accepted).To(BeTrue())
			})

			It("should skip the category check without a category", func() {
				result, err := evaluator.EvaluateAdmission(ctx, accountA, d("250"), 0, oct(10))
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Accepted).To(BeTrue())
			})
		})

		Context("with a monthly budget of 5000 and 4900 spent across categories", func() {
			BeforeEach(func() {
				ledger.Add(accountA, salaryID, "3000", oct(1))
				ledger.Add(accountA, billsID, "1800", oct(2))
				ledger.Add(accountA, groceryID, "100", oct(3))
				setMonthlyBudget("5000")
			})

			It("should accept 50", func() {
				result, err := evaluator.EvaluateAdmission(ctx, accountA, d("50"), billsID, oct(10))
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Accepted).To(BeTrue())
			})

			It("should reject 150 reporting 100.00 remaining", func() {
				result, err := evaluator.EvaluateAdmission(ctx, accountA, d("150"), billsID, oct(10))
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Accepted).To(BeFalse())
				Expect(result.Reason).To(Equal(budget.ReasonMonthly))
				Expect(result.Remaining.Equal(d("100"))).To(BeTrue())
				Expect(result.Message).To(Equal("Adding this expense would exceed your monthly budget. Remaining: 100.00"))
			})
		})

		It("should check the balance before the budgets", func() {
			ledger.Add(accountA, salaryID, "100", oct(1))
			setCategoryBudget(shoppingID, "50")
			setMonthlyBudget("60")

			result, err := evaluator.EvaluateAdmission(ctx, accountA, d("200"), shoppingID, oct(2))
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Reason).To(Equal(budget.ReasonBalance))
		})

		It("should check the category budget before the monthly budget", func() {
			ledger.Add(accountA, salaryID, "1000", oct(1))
			setCategoryBudget(shoppingID, "50")
			setMonthlyBudget("60")

			result, err := evaluator.EvaluateAdmission(ctx, accountA, d("70"), shoppingID, oct(2))
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Reason).To(Equal(budget.ReasonCategory))
		})

		It("should default the date to today", func() {
			ledger.Add(accountA, salaryID, "10", time.Now())

			result, err := evaluator.EvaluateAdmission(ctx, accountA, d("10"), billsID, time.Time{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Accepted).To(BeTrue())
		})

		It("should propagate store failures unchanged", func() {
			storeErr := errors.New("connection refused")
			ledger.SetShouldFail(true, storeErr)

			_, err := evaluator.EvaluateAdmission(ctx, accountA, d("1"), billsID, oct(1))
			Expect(err).To(MatchError(storeErr))
		})
	})

	Describe("CategoryStatusView", func() {
		var m month.Month

		BeforeEach(func() {
			m, _ = month.Parse("2025-10")
			ledger.Add(accountA, salaryID, "50000", oct(1))
			ledger.Add(accountA, billsID, "1800", oct(2))
			ledger.Add(accountA, shoppingID, "2200", oct(3))
			setCategoryBudget(shoppingID, "3000")
		})

		It("should list own and global expense categories ordered by name", func() {
			view, err := evaluator.CategoryStatusView(ctx, accountA, m)
			Expect(err).NotTo(HaveOccurred())

			names := []string{}
			for _, row := range view {
				names = append(names, row.Name)
			}
			Expect(names).To(Equal([]string{"Bills", "Groceries", "Shopping"}))
		})

		It("should grade Shopping at 2200 of 3000 as ok", func() {
			view, err := evaluator.CategoryStatusView(ctx, accountA, m)
			Expect(err).NotTo(HaveOccurred())

			shopping := view[2]
			Expect(shopping.Spent.Equal(d("2200"))).To(BeTrue())
			Expect(shopping.Limit.Equal(d("3000"))).To(BeTrue())
			Expect(shopping.Status).To(Equal(budget.StatusOK))
		})

		It("should report none without a budget", func() {
			view, err := evaluator.CategoryStatusView(ctx, accountA, m)
			Expect(err).NotTo(HaveOccurred())

			Expect(view[0].Status).To(Equal(budget.StatusNone))
			Expect(view[0].Limit).To(BeNil())
			Expect(view[0].Spent.Equal(d("1800"))).To(BeTrue())
			Expect(view[1].Spent.IsZero()).To(BeTrue())
		})

		It("should be idempotent", func() {
			first, err := evaluator.CategoryStatusView(ctx, accountA, m)
			Expect(err).NotTo(HaveOccurred())
			second, err := evaluator.CategoryStatusView(ctx, accountA, m)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
		})

		It("should propagate store failures", func() {
			ledger.SetShouldFail(true, errors.New("boom"))
			_, err := evaluator.CategoryStatusView(ctx, accountA, m)
			Expect(err).To(MatchError("boom"))
		})
	})

	Describe("Grade", func() {
		limit := d("1000")

		DescribeTable("grading boundaries",
			func(spent string, expected budget.Status) {
				Expect(budget.Grade(d(spent), &limit, d("0.9"))).To(Equal(expected))
			},
			Entry("well below", "0", budget.StatusOK),
			Entry("just below near", "899.99", budget.StatusOK),
			Entry("at near", "900", budget.StatusNear),
			Entry("at limit", "1000", budget.StatusNear),
			Entry("just over", "1000.01", budget.StatusOver),
		)

		It("should return none without a limit", func() {
			Expect(budget.Grade(d("5"), nil, d("0.9"))).To(Equal(budget.StatusNone))
		})

		It("should honour a configured threshold", func() {
			Expect(budget.Grade(d("800"), &limit, d("0.8"))).To(Equal(budget.StatusNear))
		})
	})
})
