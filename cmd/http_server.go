package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/smartexpense/internal"
	"github.com/frahmantamala/smartexpense/internal/transport/middleware"
	"github.com/frahmantamala/smartexpense/internal/transport/rest"
	"github.com/frahmantamala/smartexpense/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *Database
	App    *Application
	Router *chi.Mux
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	lg := logger.LoggerWrapper()

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	lg.Info("Starting HTTP server", "address", addr, "driver", deps.Config.Database.Driver)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		lg.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			lg.Error("Server shutdown error", "error", err)
		}
		if err := deps.App.Bus.Close(ctx); err != nil {
			lg.Error("Event bus close error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			lg.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			lg.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	lg.Info("Server stopped")
}

func newRouter(cfg *internal.Config, db *Database, app *Application) *chi.Mux {
	router := chi.NewRouter()
	opts := rest.Options{
		DB:           db.SQL,
		Logger:       logger.LoggerWrapper(),
		CORS:         middleware.DefaultCORSConfig(middleware.ParseOrigins(cfg.Server.AllowedOrigins)),
		AccessLogged: true,
	}
	if app.Metrics != nil {
		opts.Metrics = app.Metrics
		opts.MetricsPath = cfg.Observability.Metrics.Path
	}
	rest.RegisterAllRoutes(router, app.Handlers, opts)
	return router
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(config.Observability.Logging.Format, config.Observability.Logging.Level)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app, err := newApplication(config, db, logger.LoggerWrapper())
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	ctx, cancel := internal.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := app.Categories.EnsureDefaults(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ensure default categories: %w", err)
	}

	return &Dependencies{
		Config: config,
		DB:     db,
		App:    app,
		Router: newRouter(config, db, app),
	}, nil
}
