package budget

import (
	"time"

	"github.com/shopspring/decimal"
)

type MonthlyBudget struct {
	ID          int64           `gorm:"primaryKey"`
	AccountID   int64           `gorm:"column:account_id;not null;uniqueIndex:uq_account_month"`
	Month       string          `gorm:"column:month;size:7;not null;uniqueIndex:uq_account_month"`
	LimitAmount decimal.Decimal `gorm:"column:limit_amount;type:numeric;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (MonthlyBudget) TableName() string {
	return "budgets"
}

type CategoryBudget struct {
	ID          int64           `gorm:"primaryKey"`
	AccountID   int64           `gorm:"column:account_id;not null;uniqueIndex:uq_account_category_month"`
	CategoryID  int64           `gorm:"column:category_id;not null;uniqueIndex:uq_account_category_month"`
	Month       string          `gorm:"column:month;size:7;not null;uniqueIndex:uq_account_category_month"`
	LimitAmount decimal.Decimal `gorm:"column:limit_amount;type:numeric;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (CategoryBudget) TableName() string {
	return "budget_categories"
}
