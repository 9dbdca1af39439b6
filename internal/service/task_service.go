package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jobforge/jobforge-api/internal/domain"
	"github.com/jobforge/jobforge-api/internal/store"
	"github.com/jobforge/jobforge-api/internal/task"
)

// TaskService exposes task observation and cancellation, scoped to the
// owning user. Foreign tasks behave exactly like missing ones.
type TaskService interface {
	// GetTask returns the current state of the user's task.
	GetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)

	// Wait polls the task until it reaches a terminal state or the attempt
	// budget runs out. Zero-valued config fields fall back to the service's
	// configured polling defaults.
	Wait(ctx context.Context, userID, taskID uuid.UUID, cfg task.PollConfig) (*domain.Task, error)

	// Cancel requests cancellation of the user's task. A task that already
	// finished reports OutcomeAlreadyFinished without error.
	Cancel(ctx context.Context, userID, taskID uuid.UUID) (task.CancelOutcome, error)
}

type taskServiceImpl struct {
	store      store.TaskStore
	poller     *task.Poller
	canceller  *task.Canceller
	pollConfig task.PollConfig
	logger     *slog.Logger
}

// NewTaskService creates a new TaskService. pollConfig supplies the default
// interval and attempt budget for Wait.
func NewTaskService(
	taskStore store.TaskStore,
	poller *task.Poller,
	canceller *task.Canceller,
	pollConfig task.PollConfig,
	logger *slog.Logger,
) (TaskService, error) {
	if taskStore == nil {
		return nil, fmt.Errorf("task store cannot be nil")
	}
	if poller == nil {
		return nil, fmt.Errorf("poller cannot be nil")
	}
	if canceller == nil {
		return nil, fmt.Errorf("canceller cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		store:      taskStore,
		poller:     poller,
		canceller:  canceller,
		pollConfig: pollConfig,
		logger:     logger.With(slog.String("component", "task_service")),
	}, nil
}

// GetTask retrieves the user's task by ID.
func (s *taskServiceImpl) GetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	t, err := s.store.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}

	if t.UserID != userID {
		return nil, ErrTaskNotFound
	}

	return t, nil
}

// Wait verifies ownership, then runs a poll session against the task.
func (s *taskServiceImpl) Wait(
	ctx context.Context,
	userID, taskID uuid.UUID,
	cfg task.PollConfig,
) (*domain.Task, error) {
	// Ownership is checked once up front. The task's owner never changes,
	// so the poll loop itself can read by ID alone.
	if _, err := s.GetTask(ctx, userID, taskID); err != nil {
		return nil, err
	}

	if cfg.Interval <= 0 {
		cfg.Interval = s.pollConfig.Interval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = s.pollConfig.MaxAttempts
	}

	return s.poller.Poll(ctx, taskID, cfg)
}

// Cancel delegates to the canceller, mapping the store's not-found to the
// service-level sentinel.
func (s *taskServiceImpl) Cancel(
	ctx context.Context,
	userID, taskID uuid.UUID,
) (task.CancelOutcome, error) {
	outcome, err := s.canceller.Cancel(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return "", ErrTaskNotFound
		}
		return "", fmt.Errorf("failed to cancel task: %w", err)
	}
	return outcome, nil
}
