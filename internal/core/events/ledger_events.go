package events

import "github.com/shopspring/decimal"

const (
	EventTypeTransactionRecorded = "transaction.recorded"
	EventTypeAdmissionRejected   = "admission.rejected"
	EventTypeBudgetUpdated       = "budget.updated"
)

type TransactionRecordedEvent struct {
	BaseEvent
	TransactionID int64           `json:"transaction_id"`
	AccountID     int64           `json:"account_id"`
	CategoryID    int64           `json:"category_id"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
}

func NewTransactionRecordedEvent(transactionID, accountID, categoryID int64, kind string, amount decimal.Decimal) *TransactionRecordedEvent {
	return &TransactionRecordedEvent{
		BaseEvent: newBaseEvent(EventTypeTransactionRecorded, map[string]interface{}{
			"transaction_id": transactionID,
			"account_id":     accountID,
			"category_id":    categoryID,
			"kind":           kind,
			"amount":         amount.String(),
		}),
		TransactionID: transactionID,
		AccountID:     accountID,
		CategoryID:    categoryID,
		Kind:          kind,
		Amount:        amount,
	}
}

type AdmissionRejectedEvent struct {
	BaseEvent
	AccountID int64           `json:"account_id"`
	Reason    string          `json:"reason"`
	Amount    decimal.Decimal `json:"amount"`
	Remaining decimal.Decimal `json:"remaining"`
}

func NewAdmissionRejectedEvent(accountID int64, reason string, amount, remaining decimal.Decimal) *AdmissionRejectedEvent {
	return &AdmissionRejectedEvent{
		BaseEvent: newBaseEvent(EventTypeAdmissionRejected, map[string]interface{}{
			"account_id": accountID,
			"reason":     reason,
			"amount":     amount.String(),
			"remaining":  remaining.String(),
		}),
		AccountID: accountID,
		Reason:    reason,
		Amount:    amount,
		Remaining: remaining,
	}
}

// BudgetUpdatedEvent is published for both monthly and per-category limits;
// CategoryID is zero for the monthly one.
type BudgetUpdatedEvent struct {
	BaseEvent
	AccountID   int64           `json:"account_id"`
	CategoryID  int64           `json:"category_id,omitempty"`
	Month       string          `json:"month"`
	LimitAmount decimal.Decimal `json:"limit_amount"`
}

func NewBudgetUpdatedEvent(accountID, categoryID int64, month string, limit decimal.Decimal) *BudgetUpdatedEvent {
	return &BudgetUpdatedEvent{
		BaseEvent: newBaseEvent(EventTypeBudgetUpdated, map[string]interface{}{
			"account_id":   accountID,
			"category_id":  categoryID,
			"month":        month,
			"limit_amount": limit.String(),
		}),
		AccountID:   accountID,
		CategoryID:  categoryID,
		Month:       month,
		LimitAmount: limit,
	}
}
