package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID          int64           `gorm:"primaryKey"`
	AccountID   int64           `gorm:"column:account_id;not null;index:idx_transactions_account_spent_on"`
	Title       string          `gorm:"column:title;size:200;not null"`
	CategoryID  int64           `gorm:"column:category_id;not null;index"`
	// Kind is read from the joined category and never written.
	Kind        string          `gorm:"column:kind;->;-:migration"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric;not null"`
	PaymentMode string          `gorm:"column:payment_mode;size:50"`
	SpentOn     time.Time       `gorm:"column:spent_on;type:date;not null;index:idx_transactions_account_spent_on"`
	Note        *string         `gorm:"column:note"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Transaction) TableName() string {
	return "transactions"
}
