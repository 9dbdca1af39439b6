package task

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// TaskQueue is the bounded buffer between the submission gateway and the
// worker pool. Enqueue never blocks: a full queue is reported to the caller
// instead of stalling request handling.
type TaskQueue struct {
	ids    chan uuid.UUID
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewTaskQueue creates a new task queue with the specified buffer size.
func NewTaskQueue(size int, logger *slog.Logger) *TaskQueue {
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskQueue{
		ids:    make(chan uuid.UUID, size),
		logger: logger.With(slog.String("component", "task_queue")),
	}
}

// Enqueue adds a task ID to the queue for processing. Only the ID travels
// through the channel; workers reload the authoritative row from the store
// so a task cancelled while queued is never executed from stale state.
// Returns ErrQueueClosed after shutdown and ErrQueueFull at capacity.
func (q *TaskQueue) Enqueue(taskID uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.ids <- taskID:
		q.logger.Debug("task enqueued",
			slog.String("task_id", taskID.String()),
			slog.Int("queue_len", len(q.ids)),
			slog.Int("queue_cap", cap(q.ids)))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.ids))
	}
}

// Close closes the task queue, preventing further task submission.
// Workers drain whatever is already buffered.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.ids)
		q.logger.Info("task queue closed")
	}
}

// Channel returns a read-only channel for consuming queued task IDs.
func (q *TaskQueue) Channel() <-chan uuid.UUID {
	return q.ids
}
