package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/frahmantamala/smartexpense/internal"
	"github.com/frahmantamala/smartexpense/internal/auth"
	"github.com/frahmantamala/smartexpense/internal/budget"
	"github.com/frahmantamala/smartexpense/internal/category"
	"github.com/frahmantamala/smartexpense/internal/core/money"
	"github.com/frahmantamala/smartexpense/internal/core/month"
	"github.com/frahmantamala/smartexpense/internal/transaction"
	"github.com/frahmantamala/smartexpense/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const (
	demoEmail    = "demo@smartexpense.local"
	demoName     = "Demo User"
	demoPassword = "password"
	demoBudget   = "20000"
)

var demoCategories = []struct {
	Name string
	Kind category.Kind
}{
	{"Salary", category.KindIncome},
	{"Freelance", category.KindIncome},
	{"Food", category.KindExpense},
	{"Travel", category.KindExpense},
	{"Bills", category.KindExpense},
	{"Shopping", category.KindExpense},
}

var demoTransactions = []struct {
	Title    string
	Category string
	Amount   string
	Payment  string
}{
	{"Monthly Salary", "Salary", "50000", "Bank"},
	{"Side Gig", "Freelance", "6000", "UPI"},
	{"Lunch", "Food", "250", "UPI"},
	{"Cab", "Travel", "320", "Cash"},
	{"Electricity Bill", "Bills", "1800", "Card"},
	{"Shoes", "Shopping", "2200", "Card"},
}

type seedSummary struct {
	Defaults     int
	AccountID    int64
	Skipped      bool
	Transactions int
	Errors       []string
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed default categories and a demo account with a month of sample transactions.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		logger.Init(cfg.Observability.Logging.Format, cfg.Observability.Logging.Level)

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		app, err := newApplication(cfg, db, logger.LoggerWrapper())
		if err != nil {
			log.Fatalf("failed to build application: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = app.Bus.Close(ctx)
		}()

		summary, err := seedDemo(cmd.Context(), app, db, clearData)
		if err != nil {
			log.Fatalf("seed failed: %v", err)
		}

		fmt.Printf("Seeded %d default categories\n", summary.Defaults)
		if summary.Skipped {
			fmt.Println("demo account already exists; use --clear to reseed:", demoEmail)
			return
		}
		fmt.Printf("Seeded demo account %s with %d transactions\n", demoEmail, summary.Transactions)
		for _, e := range summary.Errors {
			fmt.Println("  skipped:", e)
		}
	},
}

func seedDemo(ctx context.Context, app *Application, db *Database, clear bool) (*seedSummary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	summary := &seedSummary{}

	n, err := app.Categories.EnsureDefaults(ctx)
	if err != nil {
		return nil, err
	}
	summary.Defaults = n

	existing, err := app.Accounts.FindByEmail(ctx, demoEmail)
	if err != nil {
		return nil, err
	}
	if existing != nil && clear {
		if err := clearAccount(db, existing.ID); err != nil {
			return nil, err
		}
		existing = nil
	}
	if existing != nil {
		summary.AccountID = existing.ID
		summary.Skipped = true
		return summary, nil
	}

	acc, err := app.Auth.Register(ctx, auth.RegisterDTO{Name: demoName, Email: demoEmail, Password: demoPassword})
	if err != nil {
		return nil, err
	}
	summary.AccountID = acc.ID

	for _, c := range demoCategories {
		_, err := app.Categories.Create(ctx, acc.ID, category.CreateCategoryDTO{Name: c.Name, Kind: string(c.Kind)})
		if err != nil && !stderrors.Is(err, internal.ErrDuplicateCategory) {
			return nil, fmt.Errorf("category %s: %w", c.Name, err)
		}
	}

	visible, err := app.Categories.ListVisible(ctx, acc.ID, "")
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*category.Category, len(visible))
	for _, c := range visible {
		key := strings.ToLower(c.Name)
		// an own category shadows a global one of the same name
		if prev, ok := byName[key]; ok && prev.AccountID != nil {
			continue
		}
		byName[key] = c
	}

	if _, err := app.Budgets.SetMonthlyBudget(ctx, acc.ID, budget.SetMonthlyBudgetDTO{
		Month:       month.Current().String(),
		LimitAmount: money.Input(demoBudget),
	}); err != nil {
		return nil, err
	}

	// demo rows are written straight to the ledger: income alone exceeds the
	// demo monthly limit, which counts every kind
	today := month.Day(time.Now())
	for _, t := range demoTransactions {
		c, ok := byName[strings.ToLower(t.Category)]
		if !ok {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: category %s missing", t.Title, t.Category))
			continue
		}
		row := &transaction.Transaction{
			AccountID:   acc.ID,
			Title:       t.Title,
			CategoryID:  c.ID,
			Kind:        c.Kind,
			Amount:      decimal.RequireFromString(t.Amount),
			PaymentMode: t.Payment,
			SpentOn:     today,
		}
		if err := app.Ledger.Create(ctx, transaction.ToDataModel(row)); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.Title, err)
		}
		summary.Transactions++
	}
	return summary, nil
}

func clearAccount(db *Database, accountID int64) error {
	for _, table := range []string{"transactions", "budget_categories", "budgets", "categories"} {
		if err := db.Gorm.Exec("DELETE FROM "+table+" WHERE account_id = ?", accountID).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return db.Gorm.Exec("DELETE FROM accounts WHERE id = ?", accountID).Error
}
