package task

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobforge/jobforge-api/internal/domain"
	"github.com/jobforge/jobforge-api/internal/store"
)

// scriptedReader replays a fixed sequence of observations, then keeps
// returning the last one. Each entry is either a task state or an error.
type scriptedReader struct {
	script []scriptedObservation
	calls  atomic.Int32
}

type scriptedObservation struct {
	status domain.TaskStatus
	err    error
}

func (r *scriptedReader) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	n := int(r.calls.Add(1)) - 1
	if n >= len(r.script) {
		n = len(r.script) - 1
	}
	obs := r.script[n]
	if obs.err != nil {
		return nil, obs.err
	}

	task := &domain.Task{
		ID:     id,
		UserID: uuid.New(),
		Kind:   domain.KindCoverLetter,
		Params: json.RawMessage(`{}`),
		Status: obs.status,
	}
	if obs.status == domain.TaskStatusCompleted {
		task.Result = json.RawMessage(`{"cover_letter":"done"}`)
	}
	if obs.status == domain.TaskStatusFailed {
		task.ErrorMessage = "generation failed"
	}
	return task, nil
}

func fastPollConfig(maxAttempts int) PollConfig {
	return PollConfig{Interval: time.Millisecond, MaxAttempts: maxAttempts}
}

func TestPoller_ReturnsCompletedTask(t *testing.T) {
	t.Parallel()

	reader := &scriptedReader{script: []scriptedObservation{
		{status: domain.TaskStatusPending},
		{status: domain.TaskStatusProcessing},
		{status: domain.TaskStatusCompleted},
	}}
	poller := NewPoller(reader, nil)

	task, err := poller.Poll(context.Background(), uuid.New(), fastPollConfig(10))
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, task.Status)
	assert.Equal(t, int32(3), reader.calls.Load(), "poll must stop at the first terminal observation")
}

func TestPoller_FailedTaskIsAuthoritative(t *testing.T) {
	t.Parallel()

	reader := &scriptedReader{script: []scriptedObservation{
		{status: domain.TaskStatusProcessing},
		{status: domain.TaskStatusFailed},
	}}
	poller := NewPoller(reader, nil)

	_, err := poller.Poll(context.Background(), uuid.New(), fastPollConfig(10))

	var failed *TaskFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, "generation failed", failed.Message)
	assert.False(t, failed.Cancelled)
	assert.Equal(t, int32(2), reader.calls.Load(), "failure must never be retried")
}

func TestPoller_TimeoutAfterExactBudget(t *testing.T) {
	t.Parallel()

	reader := &scriptedReader{script: []scriptedObservation{
		{status: domain.TaskStatusProcessing},
	}}
	poller := NewPoller(reader, nil)

	var progress atomic.Int32
	cfg := fastPollConfig(5)
	cfg.OnProgress = func(task *domain.Task) {
		progress.Add(1)
		assert.Equal(t, domain.TaskStatusProcessing, task.Status)
	}

	_, err := poller.Poll(context.Background(), uuid.New(), cfg)

	var timeout *PollingTimeoutError
	require.True(t, errors.As(err, &timeout))
	assert.Equal(t, 5, timeout.Attempts)
	assert.Equal(t, int32(5), reader.calls.Load(), "exactly MaxAttempts observations")
	assert.Equal(t, int32(5), progress.Load(), "OnProgress fires once per observation")
}

func TestPoller_TransportErrorAbortsImmediately(t *testing.T) {
	t.Parallel()

	queryErr := errors.New("connection reset")
	reader := &scriptedReader{script: []scriptedObservation{
		{status: domain.TaskStatusPending},
		{err: queryErr},
	}}
	poller := NewPoller(reader, nil)

	_, err := poller.Poll(context.Background(), uuid.New(), fastPollConfig(30))

	var transport *TransportError
	require.True(t, errors.As(err, &transport))
	assert.True(t, errors.Is(err, queryErr))
	assert.Equal(t, int32(2), reader.calls.Load(), "remaining budget must not be consumed")
}

func TestPoller_NotFoundIsTransport(t *testing.T) {
	t.Parallel()

	reader := &scriptedReader{script: []scriptedObservation{
		{err: store.ErrTaskNotFound},
	}}
	poller := NewPoller(reader, nil)

	_, err := poller.Poll(context.Background(), uuid.New(), fastPollConfig(3))

	var transport *TransportError
	require.True(t, errors.As(err, &transport))
	assert.True(t, errors.Is(err, store.ErrTaskNotFound))
}

func TestPoller_CancelledTaskEndsSession(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()
	taskStore := NewInMemoryTaskStore()
	task, err := domain.NewTask(uuid.New(), domain.KindJobMatch, json.RawMessage(`{}`), true)
	require.NoError(t, err)
	task.ID = taskID
	require.NoError(t, taskStore.Create(context.Background(), task))

	poller := NewPoller(taskStore, nil)

	done := make(chan error, 1)
	go func() {
		_, err := poller.Poll(context.Background(), taskID, PollConfig{
			Interval:    5 * time.Millisecond,
			MaxAttempts: 30,
		})
		done <- err
	}()

	// Let a couple of pending observations happen, then cancel the task.
	time.Sleep(12 * time.Millisecond)
	require.NoError(t, taskStore.Cancel(context.Background(), taskID, "cancelled by user"))

	select {
	case err := <-done:
		var failed *TaskFailedError
		require.True(t, errors.As(err, &failed))
		assert.True(t, failed.Cancelled, "cancellation must carry the cancelled marker")
		var timeout *PollingTimeoutError
		assert.False(t, errors.As(err, &timeout))
	case <-time.After(2 * time.Second):
		t.Fatal("poll session did not observe the cancellation")
	}
}

func TestPoller_ContextCancellationExitsPromptly(t *testing.T) {
	t.Parallel()

	reader := &scriptedReader{script: []scriptedObservation{
		{status: domain.TaskStatusPending},
	}}
	poller := NewPoller(reader, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := poller.Poll(ctx, uuid.New(), PollConfig{
			Interval:    time.Minute,
			MaxAttempts: 30,
		})
		done <- err
	}()

	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("poll session did not exit on context cancellation")
	}
}

func TestPoller_StatusRegressionFailsLoudly(t *testing.T) {
	t.Parallel()

	reader := &scriptedReader{script: []scriptedObservation{
		{status: domain.TaskStatusProcessing},
		{status: domain.TaskStatusPending},
	}}
	poller := NewPoller(reader, nil)

	_, err := poller.Poll(context.Background(), uuid.New(), fastPollConfig(10))
	assert.True(t, errors.Is(err, ErrStatusRegression))
}

func TestPollConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := PollConfig{}.normalize()
	assert.Equal(t, DefaultPollInterval, cfg.Interval)
	assert.Equal(t, DefaultPollMaxAttempts, cfg.MaxAttempts)

	custom := PollConfig{Interval: time.Second, MaxAttempts: 3}.normalize()
	assert.Equal(t, time.Second, custom.Interval)
	assert.Equal(t, 3, custom.MaxAttempts)
}
