package budget

import (
	errors "github.com/frahmantamala/smartexpense/internal"
	"github.com/frahmantamala/smartexpense/internal/core/common/validation"
	"github.com/frahmantamala/smartexpense/internal/core/money"
	"github.com/shopspring/decimal"
)

type SetMonthlyBudgetDTO struct {
	Month       string      `json:"month"`
	LimitAmount money.Input `json:"limit_amount"`
}

func (dto SetMonthlyBudgetDTO) Validate() (decimal.Decimal, *errors.AppError) {
	return validateLimit(dto.Month, dto.LimitAmount, nil)
}

type SetCategoryBudgetDTO struct {
	CategoryID  int64       `json:"category_id"`
	Month       string      `json:"month"`
	LimitAmount money.Input `json:"limit_amount"`
}

func (dto SetCategoryBudgetDTO) Validate() (decimal.Decimal, *errors.AppError) {
	return validateLimit(dto.Month, dto.LimitAmount, func(v *validation.ValidationBuilder) {
		v.Field("category_id", dto.CategoryID).Required()
	})
}

func validateLimit(m string, raw money.Input, extra func(*validation.ValidationBuilder)) (decimal.Decimal, *errors.AppError) {
	limit, parseErr := raw.Parse()

	validator := validation.NewValidator()
	validator.Field("month", m).
		Required().
		MonthKey()
	validator.Field("limit_amount", limit).
		Custom(func(interface{}) *errors.AppError {
			if parseErr != nil {
				return errors.NewValidationFieldError("limit_amount", "limit_amount must be a number", errors.ErrCodeInvalidAmount)
			}
			return nil
		}).
		Positive(errors.ErrCodeInvalidAmount)
	if extra != nil {
		extra(validator)
	}
	if err := validator.Validate(); err != nil {
		return decimal.Zero, err
	}
	return limit, nil
}

type MonthlyBudgetsResponse struct {
	Budgets []*MonthlyBudget `json:"budgets"`
}

type StatusViewResponse struct {
	Month      string           `json:"month"`
	Categories []CategoryStatus `json:"categories"`
}
