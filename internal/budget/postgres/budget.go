package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/smartexpense/internal/budget"
	budgetDatamodel "github.com/frahmantamala/smartexpense/internal/core/datamodel/budget"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BudgetRepository struct {
	db *gorm.DB
}

func NewBudgetRepository(db *gorm.DB) budget.RepositoryAPI {
	return &BudgetRepository{db: db}
}

func (r *BudgetRepository) GetMonthlyBudget(ctx context.Context, accountID int64, month string) (*budgetDatamodel.MonthlyBudget, error) {
	var b budgetDatamodel.MonthlyBudget
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND month = ?", accountID, month).
		First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *BudgetRepository) ListMonthlyBudgets(ctx context.Context, accountID int64) ([]*budgetDatamodel.MonthlyBudget, error) {
	var budgets []*budgetDatamodel.MonthlyBudget
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("month DESC").
		Find(&budgets).Error
	return budgets, err
}

func (r *BudgetRepository) UpsertMonthlyBudget(ctx context.Context, b *budgetDatamodel.MonthlyBudget) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_id"}, {Name: "month"}},
			DoUpdates: clause.AssignmentColumns([]string{"limit_amount", "updated_at"}),
		}).
		Create(b).Error
}

func (r *BudgetRepository) GetCategoryBudget(ctx context.Context, accountID, categoryID int64, month string) (*budgetDatamodel.CategoryBudget, error) {
	var b budgetDatamodel.CategoryBudget
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND category_id = ? AND month = ?", accountID, categoryID, month).
		First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *BudgetRepository) ListCategoryBudgets(ctx context.Context, accountID int64, month string) ([]*budgetDatamodel.CategoryBudget, error) {
	var budgets []*budgetDatamodel.CategoryBudget
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND month = ?", accountID, month).
		Order("category_id ASC").
		Find(&budgets).Error
	return budgets, err
}

func (r *BudgetRepository) UpsertCategoryBudget(ctx context.Context, b *budgetDatamodel.CategoryBudget) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_id"}, {Name: "category_id"}, {Name: "month"}},
			DoUpdates: clause.AssignmentColumns([]string{"limit_amount", "updated_at"}),
		}).
		Create(b).Error
}
