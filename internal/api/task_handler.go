package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jobforge/jobforge-api/internal/api/shared"
	"github.com/jobforge/jobforge-api/internal/platform/logger"
	"github.com/jobforge/jobforge-api/internal/service"
	"github.com/jobforge/jobforge-api/internal/task"
)

// TaskHandler handles task observation and cancellation HTTP requests.
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// GetTask handles GET /api/tasks/{id} requests: a single observation of the
// task's current state.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	t, err := h.taskService.GetTask(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(t))
}

// WaitForTask handles GET /api/tasks/{id}/wait requests: it blocks until the
// task reaches a terminal state or the polling budget runs out.
//
// A task that finished, successfully or not, responds 200 with the terminal
// state; the caller reads status, error_message, and cancelled from the
// body. Only budget exhaustion (504) and status query failures (502) are
// HTTP errors.
func (h *TaskHandler) WaitForTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	cfg := task.PollConfig{}
	if interval := r.URL.Query().Get("interval_ms"); interval != "" {
		d, err := parsePositiveMillis(interval)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "interval_ms must be a positive integer")
			return
		}
		cfg.Interval = d
	}
	if attempts := r.URL.Query().Get("max_attempts"); attempts != "" {
		n, err := strconv.Atoi(attempts)
		if err != nil || n <= 0 || n > maxWaitAttempts {
			shared.RespondWithError(w, r, http.StatusBadRequest, "max_attempts must be a positive integer")
			return
		}
		cfg.MaxAttempts = n
	}

	t, err := h.taskService.Wait(r.Context(), userID, taskID, cfg)
	if err != nil {
		var failed *task.TaskFailedError
		if errors.As(err, &failed) {
			// Failure is a terminal outcome, not a transport problem. Serve
			// the task row so the client sees the message and cancel marker.
			finished, getErr := h.taskService.GetTask(r.Context(), userID, taskID)
			if getErr != nil {
				HandleAPIError(w, r, getErr, "Failed to retrieve task")
				return
			}
			shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(finished))
			return
		}

		HandleAPIError(w, r, err, "Failed waiting for task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(t))
}

// CancelTask handles POST /api/tasks/{id}/cancel requests. Cancelling a task
// that already finished responds 200 with outcome "already_finished".
func (h *TaskHandler) CancelTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	outcome, err := h.taskService.Cancel(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to cancel task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CancelTaskResponse{
		ID:      taskID.String(),
		Outcome: string(outcome),
	})
}

// maxWaitAttempts caps the attempt budget a client can request on the wait
// endpoint.
const maxWaitAttempts = 1000

// parsePositiveMillis parses a positive integer of milliseconds, capped at
// one hour.
func parsePositiveMillis(raw string) (time.Duration, error) {
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if ms <= 0 || ms > int64(time.Hour/time.Millisecond) {
		return 0, errors.New("interval out of range")
	}
	return time.Duration(ms) * time.Millisecond, nil
}
