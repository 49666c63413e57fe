package transaction

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/smartexpense/internal"
	"github.com/frahmantamala/smartexpense/internal/core/common/validation"
	"github.com/frahmantamala/smartexpense/internal/core/money"
	"github.com/frahmantamala/smartexpense/internal/core/month"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidDate    = errors.NewValidationError("Invalid date", errors.ErrCodeInvalidDate)
	ErrAmountRequired = errors.NewValidationError("amount and category_id are required", errors.ErrCodeValidationFailed)
	ErrAmountNotValid = errors.NewValidationError("Invalid amount", errors.ErrCodeInvalidAmount)
)

// CreateTransactionDTO is one candidate row of a batch.
type CreateTransactionDTO struct {
	Title       string      `json:"title"`
	CategoryID  int64       `json:"category_id"`
	Amount      money.Input `json:"amount"`
	PaymentMode string      `json:"payment_mode,omitempty"`
	SpentOn     string      `json:"spent_on,omitempty"`
	Note        *string     `json:"note,omitempty"`
}

// IsBlank reports rows that miss a title, amount or category and are skipped.
func (dto CreateTransactionDTO) IsBlank() bool {
	return strings.TrimSpace(dto.Title) == "" || dto.Amount.IsBlank() || dto.CategoryID == 0
}

type BatchRequest struct {
	Transactions []CreateTransactionDTO `json:"transactions"`
}

type BatchResult struct {
	Created      int                   `json:"created"`
	Transactions []TransactionResponse `json:"transactions"`
	Errors       []string              `json:"errors"`
}

// MovementDTO records income or savings into the account's default category of that kind.
type MovementDTO struct {
	Title       string      `json:"title"`
	Amount      money.Input `json:"amount"`
	PaymentMode string      `json:"payment_mode,omitempty"`
	SpentOn     string      `json:"spent_on,omitempty"`
	Note        *string     `json:"note,omitempty"`
}

func (dto MovementDTO) Validate(titleRequired bool) (decimal.Decimal, time.Time, *errors.AppError) {
	amount, parseErr := dto.Amount.Parse()
	spentOn, dateErr := parseDate(dto.SpentOn)

	validator := validation.NewValidator()
	if titleRequired {
		validator.Field("title", dto.Title).
			Required().
			MaxLength(200)
	} else {
		validator.Field("title", dto.Title).MaxLength(200)
	}
	validator.Field("amount", amount).
		Custom(func(interface{}) *errors.AppError {
			if dto.Amount.IsBlank() {
				return errors.NewValidationFieldError("amount", "amount is required", errors.ErrCodeInvalidAmount)
			}
			if parseErr != nil {
				return errors.NewValidationFieldError("amount", "Invalid amount", errors.ErrCodeInvalidAmount)
			}
			return nil
		}).
		Positive(errors.ErrCodeInvalidAmount)
	validator.Field("spent_on", dto.SpentOn).
		Custom(func(interface{}) *errors.AppError {
			if dateErr != nil {
				return errors.NewValidationFieldError("spent_on", "Invalid date", errors.ErrCodeInvalidDate)
			}
			return nil
		})
	if err := validator.Validate(); err != nil {
		return decimal.Zero, time.Time{}, err
	}
	return amount, spentOn, nil
}

// UpdateTransactionDTO carries the fields to change; nil fields are kept.
type UpdateTransactionDTO struct {
	Title       *string      `json:"title,omitempty"`
	CategoryID  *int64       `json:"category_id,omitempty"`
	Amount      *money.Input `json:"amount,omitempty"`
	PaymentMode *string      `json:"payment_mode,omitempty"`
	SpentOn     *string      `json:"spent_on,omitempty"`
	Note        *string      `json:"note,omitempty"`
}

type CheckBudgetDTO struct {
	Amount     money.Input `json:"amount"`
	CategoryID int64       `json:"category_id"`
	SpentOn    string      `json:"spent_on,omitempty"`
}

type CheckBudgetResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type TransactionResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	CategoryID  int64   `json:"category_id"`
	Kind        string  `json:"kind,omitempty"`
	Amount      string  `json:"amount"`
	PaymentMode string  `json:"payment_mode,omitempty"`
	SpentOn     string  `json:"spent_on"`
	Note        *string `json:"note,omitempty"`
}

type TransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// parseDate reads YYYY-MM-DD; empty means today.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return month.Day(time.Now()), nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, err
	}
	return month.Day(t), nil
}
