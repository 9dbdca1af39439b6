package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jobforge/jobforge-api/internal/domain"
	"github.com/jobforge/jobforge-api/internal/generation"
	"github.com/jobforge/jobforge-api/internal/store"
)

// Mode selects how a submission is processed.
type Mode string

const (
	// ModeSync blocks on the generator and returns the terminal result.
	ModeSync Mode = "sync"

	// ModeAsync persists a pending task and returns its handle immediately.
	ModeAsync Mode = "async"
)

// IsValidMode reports whether mode is a known processing mode.
func IsValidMode(mode Mode) bool {
	return mode == ModeSync || mode == ModeAsync
}

// SubmitRequest describes one generation submission.
type SubmitRequest struct {
	// Kind selects the generation flavor.
	Kind domain.GenerationKind

	// Params is the kind-specific parameter document, validated before any
	// generator work happens.
	Params json.RawMessage

	// Mode selects sync or async processing. Empty means the configured
	// default.
	Mode Mode

	// SaveToHistory controls whether the result is retained in history.
	// Nil means the configured default.
	SaveToHistory *bool
}

// SubmitDefaults are the explicit gateway defaults applied to fields the
// caller left unset. They live in configuration, not ambient state.
type SubmitDefaults struct {
	Mode          Mode
	SaveToHistory bool
}

// SubmitResult is the outcome of a submission. Exactly one of Result (sync)
// or Task (async) is set.
type SubmitResult struct {
	Mode   Mode
	Result json.RawMessage
	Task   *domain.Task
}

// TaskSubmitter hands a persisted task to the asynchronous backend.
// Implemented by task.TaskRunner.
type TaskSubmitter interface {
	Submit(ctx context.Context, task *domain.Task) error
}

// GenerationService is the submission gateway: it validates parameters,
// applies explicit defaults, and routes the work to the generator (sync) or
// the task backend (async).
type GenerationService interface {
	Submit(ctx context.Context, userID uuid.UUID, req SubmitRequest) (*SubmitResult, error)
}

type generationServiceImpl struct {
	generator generation.Generator
	submitter TaskSubmitter
	history   store.HistoryStore
	defaults  SubmitDefaults
	logger    *slog.Logger
}

// NewGenerationService creates a new GenerationService.
// It returns an error if any of the required dependencies are nil.
func NewGenerationService(
	generator generation.Generator,
	submitter TaskSubmitter,
	history store.HistoryStore,
	defaults SubmitDefaults,
	logger *slog.Logger,
) (GenerationService, error) {
	if generator == nil {
		return nil, fmt.Errorf("generator cannot be nil")
	}
	if submitter == nil {
		return nil, fmt.Errorf("submitter cannot be nil")
	}
	if history == nil {
		return nil, fmt.Errorf("history store cannot be nil")
	}
	if defaults.Mode == "" {
		defaults.Mode = ModeSync
	}
	if !IsValidMode(defaults.Mode) {
		return nil, fmt.Errorf("invalid default mode %q", defaults.Mode)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &generationServiceImpl{
		generator: generator,
		submitter: submitter,
		history:   history,
		defaults:  defaults,
		logger:    logger.With(slog.String("component", "generation_service")),
	}, nil
}

// Submit validates and routes one generation request.
func (s *generationServiceImpl) Submit(
	ctx context.Context,
	userID uuid.UUID,
	req SubmitRequest,
) (*SubmitResult, error) {
	if !domain.IsValidGenerationKind(req.Kind) {
		return nil, domain.NewValidationError("kind",
			fmt.Sprintf("unknown generation kind %q", req.Kind), domain.ErrInvalidGenerationKind)
	}

	// Parameter validation happens before any generator or store work so a
	// bad request never produces a task at all.
	if _, err := generation.ValidateParams(req.Kind, req.Params); err != nil {
		return nil, err
	}

	mode := req.Mode
	if mode == "" {
		mode = s.defaults.Mode
	}
	if !IsValidMode(mode) {
		return nil, domain.NewValidationError("mode",
			fmt.Sprintf("unknown mode %q", mode), domain.ErrValidation)
	}

	saveToHistory := s.defaults.SaveToHistory
	if req.SaveToHistory != nil {
		saveToHistory = *req.SaveToHistory
	}

	log := s.logger.With(
		slog.String("user_id", userID.String()),
		slog.String("kind", string(req.Kind)),
		slog.String("mode", string(mode)))

	if mode == ModeSync {
		return s.submitSync(ctx, userID, req.Kind, req.Params, saveToHistory, log)
	}
	return s.submitAsync(ctx, userID, req.Kind, req.Params, saveToHistory, log)
}

// submitSync blocks on the generator. A sync caller never observes a
// pending or processing state; the response is terminal by construction.
func (s *generationServiceImpl) submitSync(
	ctx context.Context,
	userID uuid.UUID,
	kind domain.GenerationKind,
	params json.RawMessage,
	saveToHistory bool,
	log *slog.Logger,
) (*SubmitResult, error) {
	result, err := s.generator.Generate(ctx, kind, params)
	if err != nil {
		log.Warn("synchronous generation failed", slog.String("error", err.Error()))
		return nil, err
	}

	if saveToHistory {
		item, err := domain.NewHistoryItem(userID, kind, result)
		if err != nil {
			log.Error("failed to build history item", slog.String("error", err.Error()))
		} else if err := s.history.Create(ctx, item); err != nil {
			// The generation succeeded; losing the history copy is logged
			// but does not turn a good result into an error.
			log.Error("failed to save sync result to history", slog.String("error", err.Error()))
		}
	}

	log.Info("synchronous generation completed")
	return &SubmitResult{Mode: ModeSync, Result: result}, nil
}

// submitAsync persists a pending task and enqueues it. Persist and enqueue
// failures are submission failures, distinct from generation failures.
func (s *generationServiceImpl) submitAsync(
	ctx context.Context,
	userID uuid.UUID,
	kind domain.GenerationKind,
	params json.RawMessage,
	saveToHistory bool,
	log *slog.Logger,
) (*SubmitResult, error) {
	task, err := domain.NewTask(userID, kind, params, saveToHistory)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}

	if err := s.submitter.Submit(ctx, task); err != nil {
		log.Error("failed to submit task", slog.String("error", err.Error()))
		if errors.Is(err, ErrSubmissionFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}

	log.Info("task submitted", slog.String("task_id", task.ID.String()))
	return &SubmitResult{Mode: ModeAsync, Task: task}, nil
}
