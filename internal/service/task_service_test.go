package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobforge/jobforge-api/internal/domain"
	"github.com/jobforge/jobforge-api/internal/task"
)

func newTaskServiceFixture(t *testing.T) (*task.InMemoryTaskStore, TaskService, *domain.Task) {
	t.Helper()

	taskStore := task.NewInMemoryTaskStore()
	poller := task.NewPoller(taskStore, nil)
	canceller := task.NewCanceller(taskStore, nil, nil)

	svc, err := NewTaskService(taskStore, poller, canceller,
		task.PollConfig{Interval: time.Millisecond, MaxAttempts: 5}, nil)
	require.NoError(t, err)

	tsk, err := domain.NewTask(uuid.New(), domain.KindJobMatch,
		json.RawMessage(`{"job_description":"x","resume_text":"y"}`), true)
	require.NoError(t, err)
	require.NoError(t, taskStore.Create(context.Background(), tsk))

	return taskStore, svc, tsk
}

func TestTaskService_GetTask(t *testing.T) {
	t.Parallel()

	_, svc, tsk := newTaskServiceFixture(t)

	got, err := svc.GetTask(context.Background(), tsk.UserID, tsk.ID)
	require.NoError(t, err)
	assert.Equal(t, tsk.ID, got.ID)
	assert.Equal(t, domain.TaskStatusPending, got.Status)
}

func TestTaskService_GetTaskUnknownID(t *testing.T) {
	t.Parallel()

	_, svc, tsk := newTaskServiceFixture(t)

	_, err := svc.GetTask(context.Background(), tsk.UserID, uuid.New())
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskService_GetTaskForeignOwner(t *testing.T) {
	t.Parallel()

	_, svc, tsk := newTaskServiceFixture(t)

	_, err := svc.GetTask(context.Background(), uuid.New(), tsk.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound, "foreign tasks behave like missing ones")
}

func TestTaskService_WaitReturnsCompletedTask(t *testing.T) {
	t.Parallel()

	taskStore, svc, tsk := newTaskServiceFixture(t)
	require.NoError(t, taskStore.Complete(context.Background(), tsk.ID,
		json.RawMessage(`{"score":70,"strengths":[],"gaps":[],"summary":"ok"}`)))

	got, err := svc.Wait(context.Background(), tsk.UserID, tsk.ID, task.PollConfig{})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, got.Status)
}

func TestTaskService_WaitTimesOutOnStuckTask(t *testing.T) {
	t.Parallel()

	_, svc, tsk := newTaskServiceFixture(t)

	_, err := svc.Wait(context.Background(), tsk.UserID, tsk.ID, task.PollConfig{})
	var timeout *task.PollingTimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, 5, timeout.Attempts, "service defaults bound the session")
}

func TestTaskService_WaitForeignOwner(t *testing.T) {
	t.Parallel()

	_, svc, tsk := newTaskServiceFixture(t)

	_, err := svc.Wait(context.Background(), uuid.New(), tsk.ID, task.PollConfig{})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskService_Cancel(t *testing.T) {
	t.Parallel()

	taskStore, svc, tsk := newTaskServiceFixture(t)

	outcome, err := svc.Cancel(context.Background(), tsk.UserID, tsk.ID)
	require.NoError(t, err)
	assert.Equal(t, task.OutcomeCancelled, outcome)

	got, err := taskStore.GetByID(context.Background(), tsk.ID)
	require.NoError(t, err)
	assert.True(t, got.Cancelled)
}

func TestTaskService_CancelForeignOwner(t *testing.T) {
	t.Parallel()

	_, svc, tsk := newTaskServiceFixture(t)

	_, err := svc.Cancel(context.Background(), uuid.New(), tsk.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
