package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/smartexpense/api"
	"github.com/frahmantamala/smartexpense/internal/account"
	"github.com/frahmantamala/smartexpense/internal/auth"
	"github.com/frahmantamala/smartexpense/internal/budget"
	"github.com/frahmantamala/smartexpense/internal/category"
	"github.com/frahmantamala/smartexpense/internal/metrics"
	"github.com/frahmantamala/smartexpense/internal/report"
	"github.com/frahmantamala/smartexpense/internal/transaction"
	"github.com/frahmantamala/smartexpense/internal/transport/middleware"
	"github.com/frahmantamala/smartexpense/internal/transport/swagger"
	"github.com/go-chi/chi"
)

// Handlers groups everything the router mounts. Nil handlers leave their
// routes unregistered.
type Handlers struct {
	Auth        *auth.Handler
	Account     *account.Handler
	Category    *category.Handler
	Budget      *budget.Handler
	Transaction *transaction.Handler
	Report      *report.Handler
}

type Options struct {
	DB           *sql.DB
	Logger       *slog.Logger
	Metrics      *metrics.Collector
	MetricsPath  string
	CORS         middleware.CORSConfig
	AccessLogged bool
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options) {
	healthHandler := NewHealthHandler(opts.DB)

	router.Use(middleware.CORS(opts.CORS))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(opts.Logger))
	if opts.AccessLogged {
		router.Use(middleware.LoggingMiddleware(opts.Logger))
	}
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware)
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, opts.Metrics.Handler())
	}

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.Spec)
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/register", h.Auth.Register)
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			pr.Use(middleware.AccountContext)

			if h.Account != nil {
				pr.Get("/accounts/me", h.Account.GetCurrentAccount)
			}

			if h.Category != nil {
				pr.Route("/categories", func(cr chi.Router) {
					cr.Get("/", h.Category.GetCategories)
					cr.Post("/", h.Category.CreateCategory)
					cr.Put("/{id}", h.Category.RenameCategory)
					cr.Delete("/{id}", h.Category.DeleteCategory)
				})
			}

			if h.Transaction != nil {
				pr.Route("/transactions", func(tr chi.Router) {
					tr.Get("/", h.Transaction.ListTransactions)
					tr.Post("/", h.Transaction.CreateTransactions)
					tr.Post("/check", h.Transaction.CheckBudget)
					tr.Get("/{id}", h.Transaction.GetTransaction)
					tr.Put("/{id}", h.Transaction.UpdateTransaction)
					tr.Delete("/{id}", h.Transaction.DeleteTransaction)
				})
				pr.Post("/income", h.Transaction.AddIncome)
				pr.Post("/savings", h.Transaction.AddSavings)
			}

			if h.Budget != nil {
				pr.Route("/budgets", func(br chi.Router) {
					br.Get("/monthly", h.Budget.ListMonthlyBudgets)
					br.Put("/monthly", h.Budget.SetMonthlyBudget)
					br.Get("/categories", h.Budget.GetCategoryStatus)
					br.Put("/categories", h.Budget.SetCategoryBudget)
				})
			}

			if h.Report != nil {
				pr.Route("/reports", func(rr chi.Router) {
					rr.Get("/dashboard", h.Report.GetDashboard)
					rr.Get("/monthly", h.Report.GetMonthlyReport)
					rr.Get("/export.csv", h.Report.ExportCSV)
				})
			}
		})
	})
}
