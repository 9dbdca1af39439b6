package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jobforge/jobforge-api/internal/domain"
	"github.com/jobforge/jobforge-api/internal/store"
)

// Executor runs the actual work for one task and returns the result payload.
type Executor interface {
	// Execute performs the task's generation work. The ctx is cancelled when
	// the task is cancelled or the runner shuts down.
	Execute(ctx context.Context, task *domain.Task) (json.RawMessage, error)
}

// RunnerConfig holds configuration for the task runner.
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks.
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue.
	QueueSize int
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// TaskRunner manages background task processing. Task rows in the store are
// the source of truth; the in-memory queue only carries IDs of work to pick
// up, so a restart recovers cleanly from whatever the store says is pending.
type TaskRunner struct {
	store    store.TaskStore
	executor Executor
	queue    *TaskQueue
	config   RunnerConfig
	logger   *slog.Logger

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup

	// inflight maps a running task's ID to the cancel func of its executor
	// context, so Cancel can interrupt work that already left the queue.
	mu       sync.Mutex
	inflight map[uuid.UUID]context.CancelFunc
}

// NewTaskRunner creates a new TaskRunner.
func NewTaskRunner(
	taskStore store.TaskStore,
	executor Executor,
	config RunnerConfig,
	logger *slog.Logger,
) *TaskRunner {
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultRunnerConfig().WorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultRunnerConfig().QueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &TaskRunner{
		store:      taskStore,
		executor:   executor,
		queue:      NewTaskQueue(config.QueueSize, logger),
		config:     config,
		logger:     logger.With(slog.String("component", "task_runner")),
		ctx:        ctx,
		cancelFunc: cancel,
		inflight:   make(map[uuid.UUID]context.CancelFunc),
	}
}

// Submit persists a new task and enqueues it for processing. The task is
// saved before it is enqueued, so a full queue still leaves a durable
// pending row that recovery will pick up on the next start.
func (r *TaskRunner) Submit(ctx context.Context, task *domain.Task) error {
	if err := r.store.Create(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	if err := r.queue.Enqueue(task.ID); err != nil {
		r.logger.Warn("task persisted but not enqueued, will be picked up by recovery",
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	return nil
}

// Start recovers pending tasks from the store and launches the worker pool.
func (r *TaskRunner) Start() error {
	if err := r.recover(); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.logger.Info("task runner started",
		slog.Int("worker_count", r.config.WorkerCount),
		slog.Int("queue_size", r.config.QueueSize))
	return nil
}

// Stop gracefully shuts down the task runner. In-flight executor contexts
// are cancelled and workers are waited for.
func (r *TaskRunner) Stop() {
	r.queue.Close()
	r.cancelFunc()
	r.wg.Wait()
	r.logger.Info("task runner stopped")
}

// CancelInFlight aborts the executor context of a running task. Returns
// false if the task is not currently executing (still queued, or already
// done), which is fine: queued tasks are handled by the status guard when a
// worker picks them up.
func (r *TaskRunner) CancelInFlight(taskID uuid.UUID) bool {
	r.mu.Lock()
	cancel, ok := r.inflight[taskID]
	r.mu.Unlock()

	if !ok {
		return false
	}

	cancel()
	return true
}

// recover requeues tasks left pending by a previous run.
func (r *TaskRunner) recover() error {
	ctx := context.Background()

	pending, err := r.store.GetPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}

	if len(pending) > 0 {
		r.logger.Info("recovering pending tasks", slog.Int("count", len(pending)))
	}

	for _, task := range pending {
		if err := r.queue.Enqueue(task.ID); err != nil {
			r.logger.Error("failed to requeue pending task",
				slog.String("task_id", task.ID.String()),
				slog.String("error", err.Error()))
		}
	}

	return nil
}

// worker consumes task IDs from the queue until shutdown.
func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	log := r.logger.With(slog.Int("worker_id", id))
	log.Debug("starting worker")

	for {
		select {
		case <-r.ctx.Done():
			log.Debug("stopping worker")
			return

		case taskID, ok := <-r.queue.Channel():
			if !ok {
				log.Debug("task queue closed, stopping worker")
				return
			}
			r.processTask(taskID, log)
		}
	}
}

// processTask handles execution of a single task.
func (r *TaskRunner) processTask(taskID uuid.UUID, log *slog.Logger) {
	ctx, cancel := context.WithCancel(r.ctx)
	defer cancel()

	r.mu.Lock()
	r.inflight[taskID] = cancel
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		delete(r.inflight, taskID)
		r.mu.Unlock()
	}()

	log = log.With(slog.String("task_id", taskID.String()))

	task, err := r.store.GetByID(ctx, taskID)
	if err != nil {
		log.Error("failed to load queued task", slog.String("error", err.Error()))
		return
	}

	// The status guard doubles as the cancellation check: a task cancelled
	// while queued is terminal now and MarkProcessing leaves it alone.
	if err := r.store.MarkProcessing(ctx, taskID); err != nil {
		if errors.Is(err, store.ErrUpdateFailed) {
			log.Debug("skipping task that finished before pickup")
			return
		}
		log.Error("failed to mark task processing", slog.String("error", err.Error()))
		return
	}

	log.Info("processing task", slog.String("kind", string(task.Kind)))

	result, execErr := r.executor.Execute(ctx, task)
	if execErr != nil {
		r.finishFailed(task, execErr, log)
		return
	}

	if err := r.store.Complete(context.Background(), taskID, result); err != nil {
		// A cancel may have won the race while the result was in flight.
		if errors.Is(err, store.ErrUpdateFailed) {
			log.Info("task cancelled before result was stored")
			return
		}
		log.Error("failed to mark task completed", slog.String("error", err.Error()))
		return
	}

	log.Info("task completed")
}

// finishFailed records an execution failure. Cancellation-induced context
// errors are not re-recorded: the canceller already flipped the row.
func (r *TaskRunner) finishFailed(task *domain.Task, execErr error, log *slog.Logger) {
	if errors.Is(execErr, context.Canceled) {
		log.Info("task execution aborted by cancellation")
		return
	}

	log.Error("task execution failed", slog.String("error", execErr.Error()))

	// Detached ctx: the failure must be recorded even during shutdown.
	if err := r.store.Fail(context.Background(), task.ID, execErr.Error()); err != nil {
		if errors.Is(err, store.ErrUpdateFailed) {
			log.Info("task already terminal, failure not recorded")
			return
		}
		log.Error("failed to mark task failed", slog.String("error", err.Error()))
	}
}
