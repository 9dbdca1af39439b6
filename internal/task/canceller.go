package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jobforge/jobforge-api/internal/platform/logger"
	"github.com/jobforge/jobforge-api/internal/store"
)

// CancelOutcome describes what a cancellation request achieved.
type CancelOutcome string

const (
	// OutcomeCancelled means the task was still running or queued and has
	// been flipped to the cancelled terminal state.
	OutcomeCancelled CancelOutcome = "cancelled"

	// OutcomeAlreadyFinished means the task reached a terminal state before
	// the request arrived. Nothing changed; this is not an error.
	OutcomeAlreadyFinished CancelOutcome = "already_finished"
)

// cancelMessage is stored as the error message of a cancelled task.
const cancelMessage = "cancelled by user"

// InflightCanceller aborts the executor context of a task that is currently
// being worked on. Implemented by TaskRunner.
type InflightCanceller interface {
	CancelInFlight(taskID uuid.UUID) bool
}

// Canceller terminates tasks on request. The store update is the
// authoritative step: the conditional transition decides the race against a
// finishing worker, and the in-flight context abort is best-effort cleanup
// so workers stop burning generator quota on a task nobody wants.
type Canceller struct {
	store  store.TaskStore
	runner InflightCanceller
	logger *slog.Logger
}

// NewCanceller creates a Canceller. runner may be nil in deployments where
// no in-process runner exists (tasks are then only flipped in the store).
func NewCanceller(taskStore store.TaskStore, runner InflightCanceller, logger *slog.Logger) *Canceller {
	if taskStore == nil {
		panic("task store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Canceller{
		store:  taskStore,
		runner: runner,
		logger: logger.With(slog.String("component", "canceller")),
	}
}

// Cancel requests cancellation of the user's task.
//
// Outcomes:
//   - non-terminal task: flipped to failed with the cancelled marker,
//     returns OutcomeCancelled.
//   - terminal task: left untouched, returns OutcomeAlreadyFinished.
//   - missing or foreign task: store.ErrTaskNotFound.
func (c *Canceller) Cancel(ctx context.Context, userID, taskID uuid.UUID) (CancelOutcome, error) {
	log := logger.FromContextOrDefault(ctx, c.logger).With(
		slog.String("task_id", taskID.String()))

	// Ownership first: a foreign task must look exactly like a missing one,
	// including its outcome classification.
	task, err := c.store.GetByID(ctx, taskID)
	if err != nil {
		return "", err
	}
	if task.UserID != userID {
		return "", store.ErrTaskNotFound
	}

	err = c.store.Cancel(ctx, taskID, cancelMessage)
	switch {
	case err == nil:
		if c.runner != nil && c.runner.CancelInFlight(taskID) {
			log.Debug("aborted in-flight execution")
		}
		log.Info("task cancelled")
		return OutcomeCancelled, nil

	case errors.Is(err, store.ErrUpdateFailed):
		log.Debug("cancel requested for already finished task")
		return OutcomeAlreadyFinished, nil

	default:
		return "", fmt.Errorf("failed to cancel task: %w", err)
	}
}
