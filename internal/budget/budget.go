package budget

import (
	"fmt"
	"time"

	budgetDatamodel "github.com/frahmantamala/smartexpense/internal/core/datamodel/budget"
	"github.com/frahmantamala/smartexpense/internal/core/money"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusOver Status = "over"
	StatusNear Status = "near"
	StatusOK   Status = "ok"
	StatusNone Status = "none"
)

type Reason string

const (
	ReasonBalance  Reason = "exceeds available balance"
	ReasonCategory Reason = "exceeds category budget"
	ReasonMonthly  Reason = "exceeds monthly budget"
)

const AcceptedMessage = "Within budget"

// AdmissionResult is the outcome of checking a proposed transaction. A
// rejection is a normal result, not an error.
type AdmissionResult struct {
	Accepted  bool            `json:"ok"`
	Reason    Reason          `json:"reason,omitempty"`
	Remaining decimal.Decimal `json:"remaining"`
	Message   string          `json:"message"`
}

func accepted() AdmissionResult {
	return AdmissionResult{Accepted: true, Message: AcceptedMessage}
}

func rejected(reason Reason, remaining decimal.Decimal) AdmissionResult {
	var text string
	switch reason {
	case ReasonBalance:
		text = "Amount exceeds available balance"
	case ReasonCategory:
		text = "Adding this expense would exceed your budget for this category"
	case ReasonMonthly:
		text = "Adding this expense would exceed your monthly budget"
	}
	return AdmissionResult{
		Reason:    reason,
		Remaining: remaining,
		Message:   fmt.Sprintf("%s. Remaining: %s", text, money.Format(remaining)),
	}
}

// CategoryStatus is one row of the per-category budget view.
type CategoryStatus struct {
	CategoryID int64            `json:"category_id"`
	Name       string           `json:"name"`
	Limit      *decimal.Decimal `json:"limit"`
	Spent      decimal.Decimal  `json:"spent"`
	Status     Status           `json:"status"`
}

// Grade maps spending against an optional limit. near applies from
// threshold*limit up to and including the limit.
func Grade(spent decimal.Decimal, limit *decimal.Decimal, threshold decimal.Decimal) Status {
	if limit == nil {
		return StatusNone
	}
	switch {
	case spent.GreaterThan(*limit):
		return StatusOver
	case spent.GreaterThanOrEqual(limit.Mul(threshold)):
		return StatusNear
	default:
		return StatusOK
	}
}

type MonthlyBudget struct {
	ID          int64           `json:"id"`
	AccountID   int64           `json:"-"`
	Month       string          `json:"month"`
	LimitAmount decimal.Decimal `json:"limit_amount"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type CategoryBudget struct {
	ID          int64           `json:"id"`
	AccountID   int64           `json:"-"`
	CategoryID  int64           `json:"category_id"`
	Month       string          `json:"month"`
	LimitAmount decimal.Decimal `json:"limit_amount"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func MonthlyFromDataModel(b *budgetDatamodel.MonthlyBudget) *MonthlyBudget {
	return &MonthlyBudget{
		ID:          b.ID,
		AccountID:   b.AccountID,
		Month:       b.Month,
		LimitAmount: b.LimitAmount,
		UpdatedAt:   b.UpdatedAt,
	}
}

func CategoryFromDataModel(b *budgetDatamodel.CategoryBudget) *CategoryBudget {
	return &CategoryBudget{
		ID:          b.ID,
		AccountID:   b.AccountID,
		CategoryID:  b.CategoryID,
		Month:       b.Month,
		LimitAmount: b.LimitAmount,
		UpdatedAt:   b.UpdatedAt,
	}
}
