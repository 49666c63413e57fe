package account

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/smartexpense/internal"
	accountDatamodel "github.com/frahmantamala/smartexpense/internal/core/datamodel/account"
)

// RepositoryAPI returns nil without error for missing rows.
type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*accountDatamodel.Account, error)
	GetByEmail(ctx context.Context, email string) (*accountDatamodel.Account, error)
	Create(ctx context.Context, a *accountDatamodel.Account) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Account, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get account", "account_id", id, "error", err)
		return nil, errors.NewInternalError("failed to get account", err)
	}
	if row == nil {
		return nil, errors.ErrAccountNotFound
	}
	return FromDataModel(row), nil
}

// FindByEmail returns nil when no account uses the address.
func (s *Service) FindByEmail(ctx context.Context, email string) (*Account, error) {
	row, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		s.logger.Error("failed to find account by email", "error", err)
		return nil, errors.NewInternalError("failed to find account", err)
	}
	if row == nil {
		return nil, nil
	}
	return FromDataModel(row), nil
}

// Create stores a new account. The email must not be registered yet.
func (s *Service) Create(ctx context.Context, a *Account) error {
	a.Email = NormalizeEmail(a.Email)

	existing, err := s.FindByEmail(ctx, a.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.ErrEmailTaken
	}

	row := ToDataModel(a)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create account", "error", err)
		return errors.NewInternalError("failed to create account", err)
	}
	a.ID = row.ID
	a.CreatedAt = row.CreatedAt
	a.UpdatedAt = row.UpdatedAt

	s.logger.Info("account created", "account_id", a.ID)
	return nil
}
