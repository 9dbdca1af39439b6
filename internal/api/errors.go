package api

import (
	"errors"
	"net/http"

	"github.com/jobforge/jobforge-api/internal/api/shared"
	"github.com/jobforge/jobforge-api/internal/domain"
	"github.com/jobforge/jobforge-api/internal/generation"
	"github.com/jobforge/jobforge-api/internal/service"
	"github.com/jobforge/jobforge-api/internal/service/auth"
	"github.com/jobforge/jobforge-api/internal/store"
	"github.com/jobforge/jobforge-api/internal/task"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var validationErr *domain.ValidationError
	var timeoutErr *task.PollingTimeoutError
	var transportErr *task.TransportError

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrHistoryItemNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.As(err, &validationErr),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidGenerationKind),
		errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, generation.ErrInvalidParams),
		errors.Is(err, store.ErrInvalidCursor),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// The model refused the content
	case errors.Is(err, generation.ErrContentBlocked):
		return http.StatusUnprocessableEntity

	// Upstream generation problems
	case errors.As(err, &transportErr),
		errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrTransientFailure),
		errors.Is(err, generation.ErrInvalidResponse):
		return http.StatusBadGateway

	// The backend would not accept the work
	case errors.Is(err, service.ErrSubmissionFailed):
		return http.StatusServiceUnavailable

	// The poll budget ran out before the task finished
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError
	var timeoutErr *task.PollingTimeoutError
	var transportErr *task.TransportError

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	case errors.Is(err, service.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, service.ErrHistoryItemNotFound):
		return "History item not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	// Validation errors carry field-level messages that are safe to show.
	case errors.As(err, &validationErr):
		return "Invalid " + validationErr.Field + ": " + validationErr.Message

	case errors.Is(err, generation.ErrInvalidParams):
		return "Invalid generation parameters"

	case errors.Is(err, domain.ErrInvalidRating):
		return "Rating must be between 1 and 5"

	case errors.Is(err, store.ErrInvalidCursor):
		return "Invalid pagination cursor"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidGenerationKind),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request"

	case errors.Is(err, generation.ErrContentBlocked):
		return "The request was blocked by content safety filters"

	case errors.As(err, &transportErr):
		return "Task status is temporarily unavailable"

	case errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrTransientFailure),
		errors.Is(err, generation.ErrInvalidResponse):
		return "Content generation is temporarily unavailable"

	case errors.Is(err, service.ErrSubmissionFailed):
		return "Unable to accept the task right now, try again later"

	case errors.As(err, &timeoutErr):
		return "Timed out waiting for the task to finish"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps err to a status code and sanitized message and writes
// the response. fallbackMessage overrides the derived message when non-empty
// and the error has no specific mapping.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if fallbackMessage != "" && message == "An unexpected error occurred" {
		message = fallbackMessage
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
