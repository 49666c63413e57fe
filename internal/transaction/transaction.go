package transaction

import (
	"time"

	"github.com/frahmantamala/smartexpense/internal/category"
	transactionDatamodel "github.com/frahmantamala/smartexpense/internal/core/datamodel/transaction"
	"github.com/frahmantamala/smartexpense/internal/core/money"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Transaction is one ledger movement. The category's kind decides whether it
// is an expense, income or savings entry.
type Transaction struct {
	ID          int64
	AccountID   int64
	Title       string
	CategoryID  int64
	Kind        category.Kind
	Amount      decimal.Decimal
	PaymentMode string
	SpentOn     time.Time
	Note        *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *Transaction) OwnedBy(accountID int64) bool {
	return t.AccountID == accountID
}

func (t *Transaction) ToResponse() TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		Title:       t.Title,
		CategoryID:  t.CategoryID,
		Kind:        string(t.Kind),
		Amount:      money.Format(t.Amount),
		PaymentMode: t.PaymentMode,
		SpentOn:     t.SpentOn.Format(dateLayout),
		Note:        t.Note,
	}
}

func ToDataModel(t *Transaction) *transactionDatamodel.Transaction {
	return &transactionDatamodel.Transaction{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Title:       t.Title,
		CategoryID:  t.CategoryID,
		Kind:        string(t.Kind),
		Amount:      t.Amount,
		PaymentMode: t.PaymentMode,
		SpentOn:     t.SpentOn,
		Note:        t.Note,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// FromDataModel converts a stored row. Kind is empty for rows that were not
// read with their category.
func FromDataModel(t *transactionDatamodel.Transaction) *Transaction {
	return &Transaction{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Title:       t.Title,
		CategoryID:  t.CategoryID,
		Kind:        category.Kind(t.Kind),
		Amount:      t.Amount,
		PaymentMode: t.PaymentMode,
		SpentOn:     t.SpentOn,
		Note:        t.Note,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
