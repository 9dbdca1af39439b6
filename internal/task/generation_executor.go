package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jobforge/jobforge-api/internal/domain"
	"github.com/jobforge/jobforge-api/internal/generation"
	"github.com/jobforge/jobforge-api/internal/store"
)

// GenerationExecutor runs generation tasks: it calls the Generator with the
// task's parameters and retains the result in history when the task asked
// for that.
type GenerationExecutor struct {
	generator generation.Generator
	history   store.HistoryStore
	logger    *slog.Logger
}

// NewGenerationExecutor creates the executor used by the task runner.
func NewGenerationExecutor(
	generator generation.Generator,
	history store.HistoryStore,
	logger *slog.Logger,
) *GenerationExecutor {
	if generator == nil {
		panic("generator cannot be nil")
	}
	if history == nil {
		panic("history store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &GenerationExecutor{
		generator: generator,
		history:   history,
		logger:    logger.With(slog.String("component", "generation_executor")),
	}
}

var _ Executor = (*GenerationExecutor)(nil)

// Execute implements Executor. On success with save_to_history set, exactly
// one history item is created for the task's result. A history write failure
// is logged but does not fail the task: the generation itself succeeded and
// the result is still stored on the task row.
func (e *GenerationExecutor) Execute(ctx context.Context, task *domain.Task) (json.RawMessage, error) {
	result, err := e.generator.Generate(ctx, task.Kind, task.Params)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	if task.SaveToHistory {
		if err := e.saveToHistory(ctx, task, result); err != nil {
			e.logger.Error("failed to save generation result to history",
				slog.String("task_id", task.ID.String()),
				slog.String("error", err.Error()))
		}
	}

	return result, nil
}

func (e *GenerationExecutor) saveToHistory(
	ctx context.Context,
	task *domain.Task,
	result json.RawMessage,
) error {
	item, err := domain.NewHistoryItem(task.UserID, task.Kind, result)
	if err != nil {
		return fmt.Errorf("failed to build history item: %w", err)
	}

	if err := e.history.Create(ctx, item); err != nil {
		return fmt.Errorf("failed to persist history item: %w", err)
	}

	e.logger.Debug("generation result saved to history",
		slog.String("task_id", task.ID.String()),
		slog.String("item_id", item.ID.String()))
	return nil
}
