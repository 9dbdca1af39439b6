package store

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jobforge/jobforge-api/internal/domain"
)

// TaskStore defines the interface for persisting generation tasks.
//
// Status transitions are expressed as conditional updates so that terminal
// states stay terminal at the database level: MarkProcessing, Complete,
// Fail, and Cancel only touch rows that are still non-terminal.
type TaskStore interface {
	// Create persists a new task.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// MarkProcessing transitions a pending task to processing.
	// Returns ErrUpdateFailed if the task is already terminal and
	// ErrTaskNotFound if it does not exist.
	MarkProcessing(ctx context.Context, id uuid.UUID) error

	// Complete transitions a non-terminal task to completed with the
	// generated result. Returns ErrUpdateFailed if the task is already
	// terminal and ErrTaskNotFound if it does not exist.
	Complete(ctx context.Context, id uuid.UUID, result json.RawMessage) error

	// Fail transitions a non-terminal task to failed with the given error
	// message. Returns ErrUpdateFailed if the task is already terminal and
	// ErrTaskNotFound if it does not exist.
	Fail(ctx context.Context, id uuid.UUID, errorMessage string) error

	// Cancel transitions a non-terminal task to failed with the cancelled
	// marker set. The update is atomic: a task that reached a terminal
	// state first is left untouched and ErrUpdateFailed is returned, so
	// callers can report "already finished" instead of an error.
	// Returns ErrTaskNotFound if the task does not exist.
	Cancel(ctx context.Context, id uuid.UUID, errorMessage string) error

	// GetPending retrieves all tasks with "pending" status, oldest first.
	// Used to recover queued work after a restart.
	GetPending(ctx context.Context) ([]*domain.Task, error)
}
