package category

import "time"

// Category rows with a NULL AccountID are global defaults shared by every account.
type Category struct {
	ID        int64     `gorm:"primaryKey"`
	AccountID *int64    `gorm:"column:account_id;index;uniqueIndex:uq_account_category_name"`
	Name      string    `gorm:"column:name;size:100;not null;uniqueIndex:uq_account_category_name"`
	Kind      string    `gorm:"column:kind;size:20;not null;default:expense"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Category) TableName() string {
	return "categories"
}
