package budget

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/smartexpense/internal"
	"github.com/frahmantamala/smartexpense/internal/category"
	budgetDatamodel "github.com/frahmantamala/smartexpense/internal/core/datamodel/budget"
	"github.com/frahmantamala/smartexpense/internal/core/events"
	"github.com/frahmantamala/smartexpense/internal/core/month"
)

type RepositoryAPI interface {
	Reader
	ListMonthlyBudgets(ctx context.Context, accountID int64) ([]*budgetDatamodel.MonthlyBudget, error)
	UpsertMonthlyBudget(ctx context.Context, b *budgetDatamodel.MonthlyBudget) error
	UpsertCategoryBudget(ctx context.Context, b *budgetDatamodel.CategoryBudget) error
}

type CategoryResolver interface {
	GetVisible(ctx context.Context, accountID, id int64) (*category.Category, error)
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service manages budget configuration and exposes the evaluator's views.
type Service struct {
	repo       RepositoryAPI
	categories CategoryResolver
	evaluator  *Evaluator
	bus        Publisher
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, categories CategoryResolver, evaluator *Evaluator, bus Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		evaluator:  evaluator,
		bus:        bus,
		logger:     logger,
	}
}

func (s *Service) SetMonthlyBudget(ctx context.Context, accountID int64, dto SetMonthlyBudgetDTO) (*MonthlyBudget, error) {
	limit, verr := dto.Validate()
	if verr != nil {
		return nil, verr
	}

	now := time.Now()
	row := &budgetDatamodel.MonthlyBudget{
		AccountID:   accountID,
		Month:       dto.Month,
		LimitAmount: limit,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.UpsertMonthlyBudget(ctx, row); err != nil {
		s.logger.Error("failed to save monthly budget", "account_id", accountID, "month", dto.Month, "error", err)
		return nil, errors.NewInternalError("failed to save monthly budget", err)
	}

	saved, err := s.repo.GetMonthlyBudget(ctx, accountID, dto.Month)
	if err != nil || saved == nil {
		return nil, errors.NewInternalError("failed to load monthly budget", err)
	}

	s.logger.Info("monthly budget saved", "account_id", accountID, "month", dto.Month, "limit", limit.String())
	s.publish(ctx, events.NewBudgetUpdatedEvent(accountID, 0, dto.Month, limit))
	return MonthlyFromDataModel(saved), nil
}

func (s *Service) ListMonthlyBudgets(ctx context.Context, accountID int64) ([]*MonthlyBudget, error) {
	rows, err := s.repo.ListMonthlyBudgets(ctx, accountID)
	if err != nil {
		s.logger.Error("failed to list monthly budgets", "account_id", accountID, "error", err)
		return nil, errors.NewInternalError("failed to list monthly budgets", err)
	}
	out := make([]*MonthlyBudget, 0, len(rows))
	for _, row := range rows {
		out = append(out, MonthlyFromDataModel(row))
	}
	return out, nil
}

// GetMonthlyBudget returns nil when no limit is set for the month.
func (s *Service) GetMonthlyBudget(ctx context.Context, accountID int64, m month.Month) (*MonthlyBudget, error) {
	row, err := s.repo.GetMonthlyBudget(ctx, accountID, m.String())
	if err != nil {
		return nil, errors.NewInternalError("failed to load monthly budget", err)
	}
	if row == nil {
		return nil, nil
	}
	return MonthlyFromDataModel(row), nil
}

// SetCategoryBudget sets the limit of a visible expense category.
func (s *Service) SetCategoryBudget(ctx context.Context, accountID int64, dto SetCategoryBudgetDTO) (*CategoryBudget, error) {
	limit, verr := dto.Validate()
	if verr != nil {
		return nil, verr
	}

	c, err := s.categories.GetVisible(ctx, accountID, dto.CategoryID)
	if err != nil {
		return nil, err
	}
	if !c.IsExpense() {
		return nil, errors.ErrInvalidCategory
	}

	now := time.Now()
	row := &budgetDatamodel.CategoryBudget{
		AccountID:   accountID,
		CategoryID:  c.ID,
		Month:       dto.Month,
		LimitAmount: limit,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.UpsertCategoryBudget(ctx, row); err != nil {
		s.logger.Error("failed to save category budget", "account_id", accountID, "category_id", c.ID, "error", err)
		return nil, errors.NewInternalError("failed to save category budget", err)
	}

	saved, err := s.repo.GetCategoryBudget(ctx, accountID, c.ID, dto.Month)
	if err != nil || saved == nil {
		return nil, errors.NewInternalError("failed to load category budget", err)
	}

	s.logger.Info("category budget saved", "account_id", accountID, "category_id", c.ID, "month", dto.Month, "limit", limit.String())
	s.publish(ctx, events.NewBudgetUpdatedEvent(accountID, c.ID, dto.Month, limit))
	return CategoryFromDataModel(saved), nil
}

// CategoryStatusView grades the month given as "YYYY-MM"; empty means the current month.
func (s *Service) CategoryStatusView(ctx context.Context, accountID int64, key string) (month.Month, []CategoryStatus, error) {
	m := month.Current()
	if key != "" {
		parsed, err := month.Parse(key)
		if err != nil {
			return month.Month{}, nil, errors.ErrInvalidMonth
		}
		m = parsed
	}

	view, err := s.evaluator.CategoryStatusView(ctx, accountID, m)
	if err != nil {
		s.logger.Error("failed to build category status view", "account_id", accountID, "month", m.String(), "error", err)
		return m, nil, errors.NewInternalError("failed to build category status view", err)
	}
	return m, view, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
