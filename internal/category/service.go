package category

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/smartexpense/internal"
	categoryDatamodel "github.com/frahmantamala/smartexpense/internal/core/datamodel/category"
)

const maxNameAttempts = 10

type RepositoryAPI interface {
	// ListVisible returns own and global categories ordered by name. An empty
	// kind returns every kind.
	ListVisible(ctx context.Context, accountID int64, kind string) ([]*categoryDatamodel.Category, error)
	GetByID(ctx context.Context, id int64) (*categoryDatamodel.Category, error)
	// FindVisibleByName matches names case-insensitively within own and global categories.
	FindVisibleByName(ctx context.Context, accountID int64, name string) ([]*categoryDatamodel.Category, error)
	FindGlobalByName(ctx context.Context, name string) (*categoryDatamodel.Category, error)
	FirstOwnedByKind(ctx context.Context, accountID int64, kind string) (*categoryDatamodel.Category, error)
	Create(ctx context.Context, category *categoryDatamodel.Category) error
	Update(ctx context.Context, category *categoryDatamodel.Category) error
	Delete(ctx context.Context, id int64) error
}

// UsageCounter reports how many transactions reference a category.
type UsageCounter interface {
	CountByCategory(ctx context.Context, categoryID int64) (int64, error)
}

type Service struct {
	repo   RepositoryAPI
	usage  UsageCounter
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, usage UsageCounter, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		usage:  usage,
		logger: logger,
	}
}

func (s *Service) ListVisible(ctx context.Context, accountID int64, kind Kind) ([]*Category, error) {
	rows, err := s.repo.ListVisible(ctx, accountID, string(kind))
	if err != nil {
		s.logger.Error("failed to list categories", "account_id", accountID, "kind", kind, "error", err)
		return nil, errors.NewInternalError("failed to list categories", err)
	}
	return FromDataModels(rows), nil
}

// GetVisible returns the category when the account may use it.
func (s *Service) GetVisible(ctx context.Context, accountID, id int64) (*Category, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get category", "category_id", id, "error", err)
		return nil, errors.NewInternalError("failed to get category", err)
	}
	if row == nil {
		return nil, errors.ErrCategoryNotFound
	}
	c := FromDataModel(row)
	if !c.VisibleTo(accountID) {
		return nil, errors.ErrCategoryNotFound
	}
	return c, nil
}

func (s *Service) Create(ctx context.Context, accountID int64, dto CreateCategoryDTO) (*Category, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	kind, _ := ParseKind(dto.Kind)

	if err := s.ensureUniqueName(ctx, accountID, 0, dto.Name); err != nil {
		return nil, err
	}

	c := NewCategory(accountID, dto.Name, kind)
	row := ToDataModel(c)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create category", "account_id", accountID, "name", c.Name, "error", err)
		return nil, errors.NewInternalError("failed to create category", err)
	}

	s.logger.Info("category created", "account_id", accountID, "category_id", row.ID, "kind", kind)
	return FromDataModel(row), nil
}

// Rename changes the name of a category the account owns. Global categories
// are read-only.
func (s *Service) Rename(ctx context.Context, accountID, id int64, dto UpdateCategoryDTO) (*Category, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c, err := s.getOwned(ctx, accountID, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, accountID, id, dto.Name); err != nil {
		return nil, err
	}

	c.Rename(dto.Name)
	if err := s.repo.Update(ctx, ToDataModel(c)); err != nil {
		s.logger.Error("failed to rename category", "category_id", id, "error", err)
		return nil, errors.NewInternalError("failed to rename category", err)
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, accountID, id int64) error {
	if _, err := s.getOwned(ctx, accountID, id); err != nil {
		return err
	}

	inUse, err := s.usage.CountByCategory(ctx, id)
	if err != nil {
		s.logger.Error("failed to count category usage", "category_id", id, "error", err)
		return errors.NewInternalError("failed to delete category", err)
	}
	if inUse > 0 {
		return errors.ErrCategoryInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete category", "category_id", id, "error", err)
		return errors.NewInternalError("failed to delete category", err)
	}
	s.logger.Info("category deleted", "account_id", accountID, "category_id", id)
	return nil
}

// EnsureDefaults creates any missing global expense categories and reports
// how many were added.
func (s *Service) EnsureDefaults(ctx context.Context) (int, error) {
	created := 0
	for _, name := range DefaultNames {
		existing, err := s.repo.FindGlobalByName(ctx, name)
		if err != nil {
			return created, errors.NewInternalError("failed to look up default category", err)
		}
		if existing != nil {
			continue
		}
		now := time.Now()
		row := &categoryDatamodel.Category{Name: name, Kind: string(KindExpense), CreatedAt: now, UpdatedAt: now}
		if err := s.repo.Create(ctx, row); err != nil {
			return created, errors.NewInternalError("failed to create default category", err)
		}
		created++
	}
	if created > 0 {
		s.logger.Info("default categories created", "count", created)
	}
	return created, nil
}

// EnsureOwnedOfKind returns the account's oldest category of the kind,
// creating one called fallbackName when none exists.
func (s *Service) EnsureOwnedOfKind(ctx context.Context, accountID int64, kind Kind, fallbackName string) (*Category, error) {
	row, err := s.repo.FirstOwnedByKind(ctx, accountID, string(kind))
	if err != nil {
		return nil, errors.NewInternalError("failed to look up category", err)
	}
	if row != nil {
		return FromDataModel(row), nil
	}

	name, err := s.freeName(ctx, accountID, fallbackName, kind)
	if err != nil {
		return nil, err
	}
	row = ToDataModel(NewCategory(accountID, name, kind))
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create category", "account_id", accountID, "kind", kind, "error", err)
		return nil, errors.NewInternalError("failed to create category", err)
	}
	return FromDataModel(row), nil
}

// freeName picks a name no visible category uses. A clash with a category of
// another kind falls back to "Name (kind)", then "Name (kind) 2" and so on.
func (s *Service) freeName(ctx context.Context, accountID int64, name string, kind Kind) (string, error) {
	candidate := name
	for i := 1; i <= maxNameAttempts; i++ {
		matches, err := s.repo.FindVisibleByName(ctx, accountID, candidate)
		if err != nil {
			s.logger.Error("failed to check category name", "account_id", accountID, "error", err)
			return "", errors.NewInternalError("failed to check category name", err)
		}
		if len(matches) == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s (%s)", name, kind)
		if i > 1 {
			candidate = fmt.Sprintf("%s %d", candidate, i)
		}
	}
	return "", errors.ErrDuplicateCategory
}

func (s *Service) getOwned(ctx context.Context, accountID, id int64) (*Category, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get category", "category_id", id, "error", err)
		return nil, errors.NewInternalError("failed to get category", err)
	}
	if row == nil {
		return nil, errors.ErrCategoryNotFound
	}
	c := FromDataModel(row)
	if !c.OwnedBy(accountID) {
		return nil, errors.ErrCategoryNotFound
	}
	return c, nil
}

func (s *Service) ensureUniqueName(ctx context.Context, accountID, exceptID int64, name string) error {
	matches, err := s.repo.FindVisibleByName(ctx, accountID, name)
	if err != nil {
		s.logger.Error("failed to check category name", "account_id", accountID, "error", err)
		return errors.NewInternalError("failed to check category name", err)
	}
	for _, m := range matches {
		if m.ID != exceptID {
			return errors.ErrDuplicateCategory
		}
	}
	return nil
}
