// Package service provides application-level services for submitting
// generation work, observing and cancelling tasks, and curating history.
package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrSubmissionFailed indicates an async submission could not be
	// persisted or enqueued. It is deliberately distinct from generation
	// failures: the work was never handed to the backend at all.
	ErrSubmissionFailed = errors.New("task submission failed")

	// ErrTaskNotFound indicates the task does not exist or belongs to
	// another user. API layer should map this to HTTP 404 Not Found.
	ErrTaskNotFound = errors.New("task not found")

	// ErrHistoryItemNotFound indicates the history item does not exist or
	// belongs to another user. API layer should map this to HTTP 404.
	ErrHistoryItemNotFound = errors.New("history item not found")
)
