package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jobforge/jobforge-api/internal/domain"
	"github.com/jobforge/jobforge-api/internal/platform/logger"
)

// Default polling parameters applied when PollConfig leaves them zero.
const (
	DefaultPollInterval    = 2 * time.Second
	DefaultPollMaxAttempts = 30
)

// TaskReader provides read-only access to task state. The poller only ever
// observes; it never advances a task's lifecycle.
type TaskReader interface {
	// GetByID retrieves the current state of a task.
	// Returns store.ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
}

// PollConfig controls a single poll session.
type PollConfig struct {
	// Interval is the delay between consecutive status observations.
	// Defaults to DefaultPollInterval when zero.
	Interval time.Duration

	// MaxAttempts bounds the number of status observations before the
	// session gives up with PollingTimeoutError.
	// Defaults to DefaultPollMaxAttempts when zero.
	MaxAttempts int

	// OnProgress, when set, is invoked after every observation with the
	// freshly read task state. It is a side channel for callers that want
	// to surface progress; it cannot influence the session.
	OnProgress func(task *domain.Task)
}

// normalize fills in defaults for unset fields.
func (c PollConfig) normalize() PollConfig {
	if c.Interval <= 0 {
		c.Interval = DefaultPollInterval
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultPollMaxAttempts
	}
	return c
}

// Poller drives bounded-retry observation of a task until it reaches a
// terminal state or the attempt budget runs out. Observations are strictly
// sequential: the next query is only issued after the previous one returned
// and the interval elapsed.
type Poller struct {
	reader TaskReader
	logger *slog.Logger
}

// NewPoller creates a Poller reading task state through reader. If logger is
// nil, a default logger will be used.
func NewPoller(reader TaskReader, logger *slog.Logger) *Poller {
	if reader == nil {
		panic("reader cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Poller{
		reader: reader,
		logger: logger.With(slog.String("component", "poller")),
	}
}

// Poll observes the task until it finishes, the attempt budget is exhausted,
// or ctx is cancelled.
//
// Outcomes:
//   - completed: the terminal Task is returned.
//   - failed: a *TaskFailedError carrying the stored error message and the
//     cancelled marker. Failure is authoritative; the session never retries
//     past it.
//   - budget exhausted: a *PollingTimeoutError after exactly MaxAttempts
//     observations. The task's real outcome is unknown.
//   - status query error: a *TransportError, immediately. A session that
//     cannot read state reports that honestly instead of burning the
//     remaining budget on a possibly dead connection.
//   - backward status transition: ErrStatusRegression.
//   - ctx cancelled while waiting: the ctx error.
func (p *Poller) Poll(ctx context.Context, taskID uuid.UUID, cfg PollConfig) (*domain.Task, error) {
	cfg = cfg.normalize()
	log := logger.FromContextOrDefault(ctx, p.logger).With(
		slog.String("task_id", taskID.String()))

	log.Debug("starting poll session",
		slog.Duration("interval", cfg.Interval),
		slog.Int("max_attempts", cfg.MaxAttempts))

	var lastStatus domain.TaskStatus

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		task, err := p.reader.GetByID(ctx, taskID)
		if err != nil {
			log.Warn("status query failed, aborting poll session",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			return nil, &TransportError{TaskID: taskID, Err: err}
		}

		if statusRegressed(lastStatus, task.Status) {
			log.Error("task status regressed",
				slog.String("from", string(lastStatus)),
				slog.String("to", string(task.Status)))
			return nil, fmt.Errorf("%w: %s to %s", ErrStatusRegression, lastStatus, task.Status)
		}
		lastStatus = task.Status

		if cfg.OnProgress != nil {
			cfg.OnProgress(task)
		}

		switch task.Status {
		case domain.TaskStatusCompleted:
			log.Debug("task completed", slog.Int("attempts", attempt))
			return task, nil

		case domain.TaskStatusFailed:
			log.Debug("task failed",
				slog.Int("attempts", attempt),
				slog.Bool("cancelled", task.Cancelled))
			return nil, &TaskFailedError{
				TaskID:    taskID,
				Message:   task.ErrorMessage,
				Cancelled: task.Cancelled,
			}
		}

		// Still pending or processing. Wait out the interval unless this
		// was the final allowed observation.
		if attempt == cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			log.Debug("poll session cancelled by caller", slog.Int("attempts", attempt))
			return nil, ctx.Err()
		case <-time.After(cfg.Interval):
		}
	}

	log.Debug("poll attempt budget exhausted", slog.Int("attempts", cfg.MaxAttempts))
	return nil, &PollingTimeoutError{TaskID: taskID, Attempts: cfg.MaxAttempts}
}

// statusRank orders task statuses along the only legal direction of travel.
func statusRank(status domain.TaskStatus) int {
	switch status {
	case domain.TaskStatusPending:
		return 0
	case domain.TaskStatusProcessing:
		return 1
	case domain.TaskStatusCompleted, domain.TaskStatusFailed:
		return 2
	default:
		return -1
	}
}

// statusRegressed reports whether moving from prev to next walks backwards
// through the lifecycle. An empty prev means no observation yet.
func statusRegressed(prev, next domain.TaskStatus) bool {
	if prev == "" {
		return false
	}
	return statusRank(next) < statusRank(prev)
}
