package budget

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/smartexpense/internal"
	"github.com/frahmantamala/smartexpense/internal/category"
	budgetDatamodel "github.com/frahmantamala/smartexpense/internal/core/datamodel/budget"
	"github.com/frahmantamala/smartexpense/internal/core/month"
	"github.com/shopspring/decimal"
)

// Ledger is the read side of the transaction store. An empty kind sums every kind.
type Ledger interface {
	SumAmount(ctx context.Context, accountID int64, m month.Month, kind category.Kind) (decimal.Decimal, error)
	SumAmountForCategory(ctx context.Context, accountID, categoryID int64, m month.Month) (decimal.Decimal, error)
	SumAmountByCategory(ctx context.Context, accountID int64, m month.Month) (map[int64]decimal.Decimal, error)
}

// Reader looks up budget rows. Missing rows are returned as nil without error.
type Reader interface {
	GetMonthlyBudget(ctx context.Context, accountID int64, m string) (*budgetDatamodel.MonthlyBudget, error)
	GetCategoryBudget(ctx context.Context, accountID, categoryID int64, m string) (*budgetDatamodel.CategoryBudget, error)
	ListCategoryBudgets(ctx context.Context, accountID int64, m string) ([]*budgetDatamodel.CategoryBudget, error)
}

type CategoryLister interface {
	ListVisible(ctx context.Context, accountID int64, kind category.Kind) ([]*category.Category, error)
}

// Evaluator decides whether a proposed transaction fits the account's
// balance and budgets, and grades spending per category. It never writes.
type Evaluator struct {
	ledger     Ledger
	budgets    Reader
	categories CategoryLister
	threshold  decimal.Decimal
	logger     *slog.Logger
}

func NewEvaluator(ledger Ledger, budgets Reader, categories CategoryLister, nearThreshold decimal.Decimal, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		ledger:     ledger,
		budgets:    budgets,
		categories: categories,
		threshold:  nearThreshold,
		logger:     logger,
	}
}

// EvaluateAdmission checks amount against, in order, the month's remaining
// balance, the category budget and the monthly budget, stopping at the first
// violation. categoryID may be zero when there is no category to check. A
// zero date means today.
func (e *Evaluator) EvaluateAdmission(ctx context.Context, accountID int64, amount decimal.Decimal, categoryID int64, date time.Time) (AdmissionResult, error) {
	if !amount.IsPositive() {
		return AdmissionResult{}, errors.ErrInvalidAmount
	}
	if date.IsZero() {
		date = time.Now()
	}
	m := month.Of(date)
	key := m.String()

	income, err := e.ledger.SumAmount(ctx, accountID, m, category.KindIncome)
	if err != nil {
		return AdmissionResult{}, err
	}
	expense, err := e.ledger.SumAmount(ctx, accountID, m, category.KindExpense)
	if err != nil {
		return AdmissionResult{}, err
	}
	savings, err := e.ledger.SumAmount(ctx, accountID, m, category.KindSavings)
	if err != nil {
		return AdmissionResult{}, err
	}
	balance := income.Sub(expense).Sub(savings)
	if amount.GreaterThan(balance) {
		return e.reject(accountID, key, ReasonBalance, amount, balance), nil
	}

	if categoryID != 0 {
		cb, err := e.budgets.GetCategoryBudget(ctx, accountID, categoryID, key)
		if err != nil {
			return AdmissionResult{}, err
		}
		if cb != nil {
			spent, err := e.ledger.SumAmountForCategory(ctx, accountID, categoryID, m)
			if err != nil {
				return AdmissionResult{}, err
			}
			if spent.Add(amount).GreaterThan(cb.LimitAmount) {
				return e.reject(accountID, key, ReasonCategory, amount, cb.LimitAmount.Sub(spent)), nil
			}
		}
	}

	mb, err := e.budgets.GetMonthlyBudget(ctx, accountID, key)
	if err != nil {
		return AdmissionResult{}, err
	}
	if mb != nil {
		// every kind counts towards the monthly ceiling
		total, err := e.ledger.SumAmount(ctx, accountID, m, "")
		if err != nil {
			return AdmissionResult{}, err
		}
		if total.Add(amount).GreaterThan(mb.LimitAmount) {
			return e.reject(accountID, key, ReasonMonthly, amount, mb.LimitAmount.Sub(total)), nil
		}
	}

	return accepted(), nil
}

func (e *Evaluator) reject(accountID int64, m string, reason Reason, amount, remaining decimal.Decimal) AdmissionResult {
	e.logger.Info("admission rejected",
		"account_id", accountID,
		"month", m,
		"reason", reason,
		"amount", amount.String(),
		"remaining", remaining.String())
	return rejected(reason, remaining)
}

// CategoryStatusView grades every expense category visible to the account
// for the month, ordered by name.
func (e *Evaluator) CategoryStatusView(ctx context.Context, accountID int64, m month.Month) ([]CategoryStatus, error) {
	categories, err := e.categories.ListVisible(ctx, accountID, category.KindExpense)
	if err != nil {
		return nil, err
	}
	spentByCategory, err := e.ledger.SumAmountByCategory(ctx, accountID, m)
	if err != nil {
		return nil, err
	}
	rows, err := e.budgets.ListCategoryBudgets(ctx, accountID, m.String())
	if err != nil {
		return nil, err
	}
	limits := make(map[int64]decimal.Decimal, len(rows))
	for _, row := range rows {
		limits[row.CategoryID] = row.LimitAmount
	}

	view := make([]CategoryStatus, 0, len(categories))
	for _, c := range categories {
		status := CategoryStatus{
			CategoryID: c.ID,
			Name:       c.Name,
			Spent:      spentByCategory[c.ID],
		}
		if limit, ok := limits[c.ID]; ok {
			status.Limit = &limit
		}
		status.Status = Grade(status.Spent, status.Limit, e.threshold)
		view = append(view, status)
	}
	return view, nil
}
