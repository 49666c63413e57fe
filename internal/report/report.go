package report

import (
	"time"

	"github.com/frahmantamala/smartexpense/internal/budget"
	"github.com/frahmantamala/smartexpense/internal/core/money"
	"github.com/shopspring/decimal"
)

// SavingsRowName labels tracked savings in the dashboard breakdown.
const SavingsRowName = "Savings"

// Totals are a month's sums per category kind.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Savings decimal.Decimal
}

// Balance is income less expense and savings.
func (t Totals) Balance() decimal.Decimal {
	return t.Income.Sub(t.Expense).Sub(t.Savings)
}

// ReportedSavings prefers tracked savings and otherwise falls back to what
// is left of income after expenses, never below zero.
func (t Totals) ReportedSavings() decimal.Decimal {
	if t.Savings.IsPositive() {
		return t.Savings
	}
	return decimal.Max(decimal.Zero, t.Income.Sub(t.Expense))
}

type BreakdownRow struct {
	Name  string          `db:"name"`
	Total decimal.Decimal `db:"total"`
}

// ExportRow is one transaction line of the CSV export.
type ExportRow struct {
	Title       string          `db:"title"`
	Category    string          `db:"category"`
	Amount      decimal.Decimal `db:"amount"`
	PaymentMode string          `db:"payment_mode"`
	SpentOn     time.Time       `db:"spent_on"`
	Note        *string         `db:"note"`
}

func (r ExportRow) Record() []string {
	note := ""
	if r.Note != nil {
		note = *r.Note
	}
	return []string{r.Title, r.Category, money.Format(r.Amount), r.PaymentMode, r.SpentOn.Format("2006-01-02"), note}
}

// ExportHeader is the first line of every export.
var ExportHeader = []string{"Title", "Category", "Amount", "Payment", "Date", "Note"}

// BudgetAlert compares the month's expenses against the monthly budget.
type BudgetAlert struct {
	Limit  string        `json:"limit"`
	Status budget.Status `json:"status"`
}

type Dashboard struct {
	Month        string         `json:"month"`
	TotalIncome  string         `json:"total_income"`
	TotalExpense string         `json:"total_expense"`
	TotalSavings string         `json:"total_savings"`
	Balance      string         `json:"balance"`
	Categories   []CategoryLine `json:"categories"`
	Budget       *BudgetAlert   `json:"budget,omitempty"`
}

type CategoryLine struct {
	Name  string `json:"name"`
	Total string `json:"total"`
}

type MonthlyReport struct {
	Month   string `json:"month"`
	Expense string `json:"expense"`
	Income  string `json:"income"`
	Savings string `json:"savings"`
}
