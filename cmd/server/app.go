package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jobforge/jobforge-api/internal/config"
	"github.com/jobforge/jobforge-api/internal/generation"
	"github.com/jobforge/jobforge-api/internal/platform/gemini"
	"github.com/jobforge/jobforge-api/internal/platform/postgres"
	"github.com/jobforge/jobforge-api/internal/service"
	"github.com/jobforge/jobforge-api/internal/service/auth"
	"github.com/jobforge/jobforge-api/internal/store"
	"github.com/jobforge/jobforge-api/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	taskStore    store.TaskStore
	historyStore store.HistoryStore

	jwtService auth.JWTService
	generator  generation.Generator

	taskRunner *task.TaskRunner
	poller     *task.Poller
	canceller  *task.Canceller

	generationService service.GenerationService
	taskService       service.TaskService
	historyService    service.HistoryService
}

// newApplication creates a new application instance with all dependencies
// initialized and the task runner started.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.taskStore = postgres.NewTaskStore(db, logger)
	app.historyStore = postgres.NewHistoryStore(db, logger)

	app.generator, err = gemini.NewGenerator(
		ctx,
		logger.With(slog.String("component", "llm_generator")),
		cfg.LLM,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}

	executor := task.NewGenerationExecutor(app.generator, app.historyStore, logger)
	app.taskRunner = task.NewTaskRunner(app.taskStore, executor, task.RunnerConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
	}, logger)
	if err := app.taskRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	app.poller = task.NewPoller(app.taskStore, logger)
	app.canceller = task.NewCanceller(app.taskStore, app.taskRunner, logger)

	saveToHistory := cfg.Task.SaveToHistory
	app.generationService, err = service.NewGenerationService(
		app.generator,
		app.taskRunner,
		app.historyStore,
		service.SubmitDefaults{
			Mode:          service.ModeSync,
			SaveToHistory: saveToHistory,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation service: %w", err)
	}

	app.taskService, err = service.NewTaskService(
		app.taskStore,
		app.poller,
		app.canceller,
		task.PollConfig{
			Interval:    cfg.Task.PollInterval,
			MaxAttempts: cfg.Task.PollMaxAttempts,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	app.historyService, err = service.NewHistoryService(app.historyStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create history service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources. The task
// runner is stopped before the database closes so in-flight executors can
// still record their terminal state.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("application shutdown completed")
}

// shutdownTimeout bounds how long graceful HTTP shutdown may take.
const shutdownTimeout = 10 * time.Second
