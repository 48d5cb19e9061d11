// Package cmd assembles the application: database, repositories,
// services, controllers and the HTTP server.
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lumapp/marketplace/api"
	"github.com/lumapp/marketplace/api/health"
	apiorder "github.com/lumapp/marketplace/api/order"
	apistore "github.com/lumapp/marketplace/api/store"
	apiuser "github.com/lumapp/marketplace/api/user"
	orderapp "github.com/lumapp/marketplace/application/order"
	storeapp "github.com/lumapp/marketplace/application/store"
	userapp "github.com/lumapp/marketplace/application/user"
	"github.com/lumapp/marketplace/config"
	"github.com/lumapp/marketplace/infrastructure/persistence/postgres"
	"github.com/lumapp/marketplace/infrastructure/persistence/retry"
	"github.com/lumapp/marketplace/pkg/logger"
)

// App holds the assembled server and its dependencies.
type App struct {
	config *config.Config
	router *api.Router
	server *http.Server
	db     *gorm.DB
	worker *postgres.OutboxWorker
}

// NewApp wires the full dependency graph. The logger must be
// initialized before calling this.
func NewApp(cfg *config.Config) (*App, error) {
	logger.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env))

	db, err := connectDatabase(cfg)
	if err != nil {
		return nil, err
	}

	orderRepo := postgres.NewOrderRepository(db)
	orderQuery := postgres.NewOrderQueryService(db)
	userRepo := postgres.NewUserRepository(db)
	storeRepo := postgres.NewStoreRepository(db)
	productRepo := postgres.NewProductRepository(db)
	uowFactory := postgres.NewUnitOfWorkFactory(db, retry.FromAppConfig(cfg))

	orderService := orderapp.NewApplicationService(
		orderRepo, orderQuery, userRepo, storeRepo, productRepo, uowFactory)
	userService := userapp.NewApplicationService(userRepo)
	storeService := storeapp.NewApplicationService(storeRepo)

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	router := api.NewRouter(cfg,
		health.NewController(cfg, sqlDB),
		apiuser.NewController(userService),
		apistore.NewController(storeService),
		apiorder.NewController(orderService),
	)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	app := &App{
		config: cfg,
		router: router,
		server: server,
		db:     db,
	}

	if cfg.Outbox.Enabled {
		worker, err := postgres.NewOutboxWorker(
			postgres.NewOutboxRepository(db),
			&postgres.LoggingOutboxPublisher{},
			cfg.Outbox.PollInterval,
			cfg.Outbox.BatchSize,
			cfg.Outbox.MaxAttempts,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create outbox worker: %w", err)
		}
		app.worker = worker
	}

	return app, nil
}

func connectDatabase(cfg *config.Config) (*gorm.DB, error) {
	pgConfig := &postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Username:        cfg.Database.Username,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Log.Level,
	}

	db, err := pgConfig.Connect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := postgres.Ping(context.Background(), db); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}
	logger.Info("Connected to PostgreSQL",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database))

	if cfg.IsDevelopment() {
		if err := postgres.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to auto migrate: %w", err)
		}
		logger.Info("Schema migration completed")
	}

	return db, nil
}

// Run starts the HTTP server and, when enabled, the outbox worker. It
// blocks until SIGINT or SIGTERM and then shuts both down gracefully.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workerDone := make(chan struct{})
	if a.worker != nil {
		logger.Info("Starting outbox worker",
			zap.Duration("poll_interval", a.config.Outbox.PollInterval),
			zap.Int("batch_size", a.config.Outbox.BatchSize))
		go func() {
			defer close(workerDone)
			if err := a.worker.Run(ctx); err != nil && err != context.Canceled {
				logger.Error("Outbox worker exited", zap.Error(err))
			}
		}()
	} else {
		close(workerDone)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down",
		zap.Duration("timeout", a.config.Server.ShutdownTimeout))
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	<-workerDone

	if sqlDB, err := a.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("Failed to close database", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
