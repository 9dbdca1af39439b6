package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jobforge/jobforge-api/internal/domain"
	"github.com/jobforge/jobforge-api/internal/platform/logger"
	"github.com/jobforge/jobforge-api/internal/store"
)

// TaskStore implements the store.TaskStore interface using a PostgreSQL
// database as the storage backend.
type TaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewTaskStore creates a new PostgreSQL implementation of the TaskStore
// interface. It accepts a database connection or transaction that should be
// initialized and managed by the caller. If logger is nil, a default logger
// will be used.
func NewTaskStore(db store.DBTX, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure TaskStore implements store.TaskStore
var _ store.TaskStore = (*TaskStore)(nil)

// Create implements store.TaskStore.Create.
// Returns validation errors from the domain Task if data is invalid.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tasks
			(id, user_id, kind, params, status, result, error_message,
			 cancelled, save_to_history, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.UserID,
		string(task.Kind),
		[]byte(task.Params),
		string(task.Status),
		nullableJSON(task.Result),
		task.ErrorMessage,
		task.Cancelled,
		task.SaveToHistory,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return mapError(err)
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("kind", string(task.Kind)))
	return nil
}

// GetByID implements store.TaskStore.GetByID.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, kind, params, status, result, error_message,
		       cancelled, save_to_history, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, mapError(err)
	}

	return task, nil
}

// MarkProcessing implements store.TaskStore.MarkProcessing.
func (s *TaskStore) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE tasks
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	return s.conditionalUpdate(ctx, id, "mark processing", query,
		string(domain.TaskStatusProcessing), time.Now().UTC(), id, string(domain.TaskStatusPending))
}

// Complete implements store.TaskStore.Complete.
func (s *TaskStore) Complete(ctx context.Context, id uuid.UUID, result json.RawMessage) error {
	query := `
		UPDATE tasks
		SET status = $1, result = $2, error_message = '', updated_at = $3
		WHERE id = $4 AND status IN ($5, $6)
	`
	return s.conditionalUpdate(ctx, id, "complete", query,
		string(domain.TaskStatusCompleted), []byte(result), time.Now().UTC(), id,
		string(domain.TaskStatusPending), string(domain.TaskStatusProcessing))
}

// Fail implements store.TaskStore.Fail.
func (s *TaskStore) Fail(ctx context.Context, id uuid.UUID, errorMessage string) error {
	query := `
		UPDATE tasks
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4 AND status IN ($5, $6)
	`
	return s.conditionalUpdate(ctx, id, "fail", query,
		string(domain.TaskStatusFailed), errorMessage, time.Now().UTC(), id,
		string(domain.TaskStatusPending), string(domain.TaskStatusProcessing))
}

// Cancel implements store.TaskStore.Cancel. The status guard makes the
// terminal check and the transition a single atomic statement: a task that
// finished first is left untouched and reported via ErrUpdateFailed.
func (s *TaskStore) Cancel(ctx context.Context, id uuid.UUID, errorMessage string) error {
	query := `
		UPDATE tasks
		SET status = $1, cancelled = TRUE, error_message = $2, updated_at = $3
		WHERE id = $4 AND status IN ($5, $6)
	`
	return s.conditionalUpdate(ctx, id, "cancel", query,
		string(domain.TaskStatusFailed), errorMessage, time.Now().UTC(), id,
		string(domain.TaskStatusPending), string(domain.TaskStatusProcessing))
}

// GetPending implements store.TaskStore.GetPending.
func (s *TaskStore) GetPending(ctx context.Context) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, kind, params, status, result, error_message,
		       cancelled, save_to_history, created_at, updated_at
		FROM tasks
		WHERE status = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, string(domain.TaskStatusPending))
	if err != nil {
		log.Error("failed to query pending tasks", slog.String("error", err.Error()))
		return nil, mapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, mapError(err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, mapError(err)
	}

	return tasks, nil
}

// conditionalUpdate runs a guarded status transition and distinguishes a
// missing row (ErrTaskNotFound) from a row that already reached a terminal
// state (ErrUpdateFailed).
func (s *TaskStore) conditionalUpdate(
	ctx context.Context,
	id uuid.UUID,
	operation string,
	query string,
	args ...any,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update task status",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return mapError(err)
	}

	if err := rowsAffected(result, store.ErrUpdateFailed); err != nil {
		if !errors.Is(err, store.ErrUpdateFailed) {
			return err
		}

		// No eligible row: either the task is terminal or it does not
		// exist. One extra lookup tells the two apart.
		var exists bool
		checkErr := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&exists)
		if checkErr != nil {
			return mapError(checkErr)
		}
		if !exists {
			return store.ErrTaskNotFound
		}

		log.Debug("task already terminal, no transition applied",
			slog.String("operation", operation),
			slog.String("task_id", id.String()))
		return fmt.Errorf("%w: task %s is already terminal", store.ErrUpdateFailed, id)
	}

	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads one task row in the canonical column order.
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var kind, status string
	var params, result []byte

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&kind,
		&params,
		&status,
		&result,
		&task.ErrorMessage,
		&task.Cancelled,
		&task.SaveToHistory,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Kind = domain.GenerationKind(kind)
	task.Status = domain.TaskStatus(status)
	task.Params = json.RawMessage(params)
	if len(result) > 0 {
		task.Result = json.RawMessage(result)
	}

	return &task, nil
}

// nullableJSON converts an optional payload to a driver-friendly value so
// absent results are stored as NULL rather than an empty byte string.
func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
