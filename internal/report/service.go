package report

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"

	errors "github.com/frahmantamala/smartexpense/internal"
	"github.com/frahmantamala/smartexpense/internal/budget"
	"github.com/frahmantamala/smartexpense/internal/core/money"
	"github.com/frahmantamala/smartexpense/internal/core/month"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type RepositoryAPI interface {
	MonthTotals(ctx context.Context, accountID int64, m month.Month) (Totals, error)
	// ExpenseBreakdown sums expense-kind transactions per category name, ordered by name.
	ExpenseBreakdown(ctx context.Context, accountID int64, m month.Month) ([]BreakdownRow, error)
	ExportRows(ctx context.Context, accountID int64) ([]ExportRow, error)
}

type BudgetReader interface {
	GetMonthlyBudget(ctx context.Context, accountID int64, m month.Month) (*budget.MonthlyBudget, error)
}

type Service struct {
	repo          RepositoryAPI
	budgets       BudgetReader
	nearThreshold decimal.Decimal
	logger        *slog.Logger
}

func NewService(repo RepositoryAPI, budgets BudgetReader, nearThreshold decimal.Decimal, logger *slog.Logger) *Service {
	return &Service{
		repo:          repo,
		budgets:       budgets,
		nearThreshold: nearThreshold,
		logger:        logger,
	}
}

// resolveMonth reads a YYYY-MM key; empty means the current month.
func resolveMonth(key string) (month.Month, error) {
	if key == "" {
		return month.Current(), nil
	}
	m, err := month.Parse(key)
	if err != nil {
		return month.Month{}, errors.ErrInvalidMonth
	}
	return m, nil
}

func (s *Service) Dashboard(ctx context.Context, accountID int64, key string) (*Dashboard, error) {
	m, err := resolveMonth(key)
	if err != nil {
		return nil, err
	}

	// the three reads are independent
	var (
		totals Totals
		rows   []BreakdownRow
		mb     *budget.MonthlyBudget
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if totals, err = s.repo.MonthTotals(gctx, accountID, m); err != nil {
			s.logger.Error("failed to load month totals", "account_id", accountID, "month", m.String(), "error", err)
			return errors.NewInternalError("failed to load dashboard", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if rows, err = s.repo.ExpenseBreakdown(gctx, accountID, m); err != nil {
			s.logger.Error("failed to load expense breakdown", "account_id", accountID, "month", m.String(), "error", err)
			return errors.NewInternalError("failed to load dashboard", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		mb, err = s.budgets.GetMonthlyBudget(gctx, accountID, m)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	lines := make([]CategoryLine, 0, len(rows)+1)
	for _, row := range rows {
		lines = append(lines, CategoryLine{Name: row.Name, Total: money.Format(row.Total)})
	}
	if totals.Savings.IsPositive() {
		lines = append(lines, CategoryLine{Name: SavingsRowName, Total: money.Format(totals.Savings)})
	}

	d := &Dashboard{
		Month:        m.String(),
		TotalIncome:  money.Format(totals.Income),
		TotalExpense: money.Format(totals.Expense),
		TotalSavings: money.Format(totals.Savings),
		Balance:      money.Format(totals.Balance()),
		Categories:   lines,
	}

	if mb != nil {
		limit := mb.LimitAmount
		d.Budget = &BudgetAlert{
			Limit:  money.Format(limit),
			Status: budget.Grade(totals.Expense, &limit, s.nearThreshold),
		}
	}
	return d, nil
}

func (s *Service) MonthlyReport(ctx context.Context, accountID int64, key string) (*MonthlyReport, error) {
	m, err := resolveMonth(key)
	if err != nil {
		return nil, err
	}

	totals, err := s.repo.MonthTotals(ctx, accountID, m)
	if err != nil {
		s.logger.Error("failed to load month totals", "account_id", accountID, "month", m.String(), "error", err)
		return nil, errors.NewInternalError("failed to load report", err)
	}
	return &MonthlyReport{
		Month:   m.String(),
		Expense: money.Format(totals.Expense),
		Income:  money.Format(totals.Income),
		Savings: money.Format(totals.ReportedSavings()),
	}, nil
}

// ExportCSV writes every transaction of the account, newest first.
func (s *Service) ExportCSV(ctx context.Context, accountID int64, w io.Writer) error {
	rows, err := s.repo.ExportRows(ctx, accountID)
	if err != nil {
		s.logger.Error("failed to load export rows", "account_id", accountID, "error", err)
		return errors.NewInternalError("failed to export transactions", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	s.logger.Info("transactions exported", "account_id", accountID, "rows", len(rows))
	return nil
}
