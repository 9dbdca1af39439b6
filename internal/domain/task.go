package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a generation task.
type TaskStatus string

// Possible task status values. Pending and processing are non-terminal;
// completed and failed are terminal and absorbing.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID       = errors.New("task ID cannot be empty")
	ErrEmptyTaskUserID   = errors.New("task user ID cannot be empty")
	ErrEmptyTaskParams   = errors.New("task params cannot be empty")
	ErrInvalidTaskStatus = errors.New("invalid task status")

	// ErrTaskTerminal is returned when a state transition is attempted on a
	// task that has already reached completed or failed.
	ErrTaskTerminal = errors.New("task is in a terminal state")
)

// Task represents a single remote generation job with an identifier and a
// lifecycle. It is created pending by the submission gateway, advanced by
// the task backend, and only observed by pollers.
type Task struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	Kind          GenerationKind  `json:"kind"`
	Params        json.RawMessage `json:"params"`
	Status        TaskStatus      `json:"status"`
	Result        json.RawMessage `json:"result,omitempty"`
	ErrorMessage  string          `json:"error_message,omitempty"`
	Cancelled     bool            `json:"cancelled"`
	SaveToHistory bool            `json:"save_to_history"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewTask creates a new pending Task for the given user, kind, and raw
// generation parameters. Returns an error if validation fails.
func NewTask(
	userID uuid.UUID,
	kind GenerationKind,
	params json.RawMessage,
	saveToHistory bool,
) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:            uuid.New(),
		UserID:        userID,
		Kind:          kind,
		Params:        params,
		Status:        TaskStatusPending,
		SaveToHistory: saveToHistory,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.UserID == uuid.Nil {
		return ErrEmptyTaskUserID
	}

	if !IsValidGenerationKind(t.Kind) {
		return ErrInvalidGenerationKind
	}

	if len(t.Params) == 0 {
		return ErrEmptyTaskParams
	}

	if !isValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	return nil
}

// IsTerminal reports whether the task has reached completed or failed.
// Terminal states are absorbing; no further transitions are valid.
func (t *Task) IsTerminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// MarkProcessing transitions a pending task to processing.
// Returns ErrTaskTerminal if the task has already finished.
func (t *Task) MarkProcessing() error {
	if t.IsTerminal() {
		return ErrTaskTerminal
	}

	t.Status = TaskStatusProcessing
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// Complete transitions the task to completed with the generated result.
// Returns ErrTaskTerminal if the task has already finished.
func (t *Task) Complete(result json.RawMessage) error {
	if t.IsTerminal() {
		return ErrTaskTerminal
	}

	t.Status = TaskStatusCompleted
	t.Result = result
	t.ErrorMessage = ""
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// Fail transitions the task to failed with the given error message.
// Returns ErrTaskTerminal if the task has already finished.
func (t *Task) Fail(errorMessage string) error {
	if t.IsTerminal() {
		return ErrTaskTerminal
	}

	t.Status = TaskStatusFailed
	t.ErrorMessage = errorMessage
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions the task to the cancelled terminal state, which is
// modeled as failed with the cancelled marker set: cancellation is not a
// generation-success outcome, but pollers need to distinguish it from a
// processor-reported failure.
// Returns ErrTaskTerminal if the task has already finished.
func (t *Task) Cancel(errorMessage string) error {
	if t.IsTerminal() {
		return ErrTaskTerminal
	}

	t.Status = TaskStatusFailed
	t.Cancelled = true
	t.ErrorMessage = errorMessage
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// isValidTaskStatus checks if the given status is a valid TaskStatus.
func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusProcessing, TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}
