package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/tasksplit/internal/config"
	"github.com/phrazzld/tasksplit/internal/metrics"
	"github.com/phrazzld/tasksplit/internal/platform/postgres"
	"github.com/phrazzld/tasksplit/internal/service"
	"github.com/phrazzld/tasksplit/internal/service/auth"
	"github.com/phrazzld/tasksplit/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// application holds all the shared application dependencies.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	registry *prometheus.Registry
	metrics  *metrics.Metrics

	// Stores (using interfaces for proper abstraction)
	userStore store.UserStore
	taskStore store.TaskStore

	// Service interfaces
	authService  service.AuthService
	agentService service.AgentService
	taskService  service.TaskService
}

// newApplication wires stores, services and metrics around an open database.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app := &application{
		config:   cfg,
		logger:   logger,
		db:       db,
		registry: registry,
		metrics:  metrics.MustNewMetrics(registry),
	}

	app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	app.authService = service.NewAuthService(
		app.userStore,
		jwtService,
		auth.NewBcryptVerifier(),
		cfg.Auth.AllowAdminRegistration,
		logger,
	)
	app.agentService = service.NewAgentService(app.userStore, db, logger)
	app.taskService = service.NewTaskService(app.taskStore, app.userStore, app.metrics, logger)

	logger.Info("Application initialized successfully")
	return app, nil
}
