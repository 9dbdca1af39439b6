package task

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Common task processing errors
var (
	// ErrQueueFull is returned when a task cannot be enqueued because the
	// queue buffer is at capacity.
	ErrQueueFull = errors.New("task queue is full")

	// ErrQueueClosed is returned when a task is submitted after shutdown.
	ErrQueueClosed = errors.New("task queue is closed")

	// ErrStatusRegression indicates a task was observed moving backwards
	// through its lifecycle, for example processing back to pending. Statuses
	// only ever move forward, so a regression means the backend violated its
	// own contract and the poll session cannot be trusted.
	ErrStatusRegression = errors.New("task status regressed")
)

// TaskFailedError reports that the polled task reached the failed terminal
// state. It is authoritative: the backend decided the task failed, and
// retrying the poll would only re-read the same terminal row.
type TaskFailedError struct {
	TaskID    uuid.UUID
	Message   string
	Cancelled bool
}

func (e *TaskFailedError) Error() string {
	if e.Cancelled {
		return fmt.Sprintf("task %s was cancelled: %s", e.TaskID, e.Message)
	}
	return fmt.Sprintf("task %s failed: %s", e.TaskID, e.Message)
}

// PollingTimeoutError reports that the attempt budget ran out before the
// task reached a terminal state. The task's real outcome is unknown; it may
// still complete after the poller gave up.
type PollingTimeoutError struct {
	TaskID   uuid.UUID
	Attempts int
}

func (e *PollingTimeoutError) Error() string {
	return fmt.Sprintf("polling for task %s timed out after %d attempts", e.TaskID, e.Attempts)
}

// TransportError wraps a status query failure. Unlike TaskFailedError it
// says nothing about the task itself, only that its state could not be read.
type TransportError struct {
	TaskID uuid.UUID
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to query status of task %s: %v", e.TaskID, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
