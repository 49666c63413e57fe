package cmd

import (
	"fmt"
	"log/slog"

	"github.com/frahmantamala/smartexpense/internal"
	"github.com/frahmantamala/smartexpense/internal/account"
	accountPostgres "github.com/frahmantamala/smartexpense/internal/account/postgres"
	"github.com/frahmantamala/smartexpense/internal/auth"
	"github.com/frahmantamala/smartexpense/internal/budget"
	budgetPostgres "github.com/frahmantamala/smartexpense/internal/budget/postgres"
	"github.com/frahmantamala/smartexpense/internal/category"
	categoryPostgres "github.com/frahmantamala/smartexpense/internal/category/postgres"
	"github.com/frahmantamala/smartexpense/internal/core/events"
	"github.com/frahmantamala/smartexpense/internal/metrics"
	"github.com/frahmantamala/smartexpense/internal/report"
	reportPostgres "github.com/frahmantamala/smartexpense/internal/report/postgres"
	"github.com/frahmantamala/smartexpense/internal/transaction"
	transactionPostgres "github.com/frahmantamala/smartexpense/internal/transaction/postgres"
	"github.com/frahmantamala/smartexpense/internal/transport"
	"github.com/frahmantamala/smartexpense/internal/transport/rest"
)

// Application is the wired service graph behind the server and the seeder.
type Application struct {
	Bus     *events.EventBus
	Metrics *metrics.Collector

	Accounts     *account.Service
	Auth         *auth.Service
	Categories   *category.Service
	Budgets      *budget.Service
	Transactions *transaction.Service
	Reports      *report.Service

	// Ledger writes transactions without admission checks; only the seeder uses it.
	Ledger transaction.RepositoryAPI

	Handlers rest.Handlers
}

func newApplication(cfg *internal.Config, db *Database, logger *slog.Logger) (*Application, error) {
	nearThreshold, err := cfg.Budget.GetNearThreshold()
	if err != nil {
		return nil, fmt.Errorf("budget config: %w", err)
	}

	bus := events.NewEventBus(logger)
	subscribeEventLog(bus, logger)

	var collector *metrics.Collector
	if cfg.Observability.Metrics.Enabled {
		collector = metrics.NewCollector()
		collector.Subscribe(bus)
	}

	txRepo := transactionPostgres.NewTransactionRepository(db.Gorm)
	budgetRepo := budgetPostgres.NewBudgetRepository(db.Gorm)

	accounts := account.NewService(accountPostgres.NewAccountRepository(db.Gorm), logger)
	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(accounts, tokens, cfg.Security.BCryptCost, logger)
	categories := category.NewService(categoryPostgres.NewCategoryRepository(db.Gorm), txRepo, logger)
	evaluator := budget.NewEvaluator(txRepo, budgetRepo, categories, nearThreshold, logger)
	budgets := budget.NewService(budgetRepo, categories, evaluator, bus, logger)
	transactions := transaction.NewService(txRepo, categories, evaluator, bus, cfg.Budget.SerializeAdmissions, logger)
	reports := report.NewService(reportPostgres.NewReportRepository(db.SQLX), budgets, nearThreshold, logger)

	base := transport.NewBaseHandler(logger)

	return &Application{
		Bus:          bus,
		Metrics:      collector,
		Accounts:     accounts,
		Auth:         authService,
		Categories:   categories,
		Budgets:      budgets,
		Transactions: transactions,
		Reports:      reports,
		Ledger:       txRepo,
		Handlers: rest.Handlers{
			Auth:        auth.NewHandler(base, authService),
			Account:     account.NewHandler(base, accounts),
			Category:    category.NewHandler(base, categories),
			Budget:      budget.NewHandler(base, budgets),
			Transaction: transaction.NewHandler(base, transactions),
			Report:      report.NewHandler(base, reports),
		},
	}, nil
}
