package postgres

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/frahmantamala/smartexpense/internal/category"
	categoryDatamodel "github.com/frahmantamala/smartexpense/internal/core/datamodel/category"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) category.RepositoryAPI {
	return &CategoryRepository{db: db}
}

// VisibleTo scopes a query to the account's own categories plus the global ones.
func VisibleTo(accountID int64) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("categories.account_id = ? OR categories.account_id IS NULL", accountID)
	}
}

func (r *CategoryRepository) ListVisible(ctx context.Context, accountID int64, kind string) ([]*categoryDatamodel.Category, error) {
	var categories []*categoryDatamodel.Category
	q := r.db.WithContext(ctx).Scopes(VisibleTo(accountID))
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if err := q.Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	// byte order, whatever the database collation
	sort.SliceStable(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*categoryDatamodel.Category, error) {
	var cat categoryDatamodel.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepository) FindVisibleByName(ctx context.Context, accountID int64, name string) ([]*categoryDatamodel.Category, error) {
	var categories []*categoryDatamodel.Category
	err := r.db.WithContext(ctx).
		Scopes(VisibleTo(accountID)).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) FindGlobalByName(ctx context.Context, name string) (*categoryDatamodel.Category, error) {
	var cat categoryDatamodel.Category
	err := r.db.WithContext(ctx).
		Where("account_id IS NULL AND LOWER(name) = ?", strings.ToLower(name)).
		First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepository) FirstOwnedByKind(ctx context.Context, accountID int64, kind string) (*categoryDatamodel.Category, error) {
	var cat categoryDatamodel.Category
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND kind = ?", accountID, kind).
		Order("id ASC").
		First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepository) Create(ctx context.Context, cat *categoryDatamodel.Category) error {
	return r.db.WithContext(ctx).Create(cat).Error
}

func (r *CategoryRepository) Update(ctx context.Context, cat *categoryDatamodel.Category) error {
	return r.db.WithContext(ctx).Save(cat).Error
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&categoryDatamodel.Category{}, id).Error
}
