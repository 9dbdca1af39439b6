package task

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jobforge/jobforge-api/internal/domain"
	"github.com/jobforge/jobforge-api/internal/store"
)

// InMemoryTaskStore is a thread-safe in-memory implementation of
// store.TaskStore for tests. It mirrors the conditional-update semantics of
// the real store: transitions only apply to non-terminal rows.
type InMemoryTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task

	// FailGetByID, when set, makes every GetByID return this error. Used to
	// simulate transport failures in poller tests.
	FailGetByID error
}

// NewInMemoryTaskStore creates an empty in-memory task store.
func NewInMemoryTaskStore() *InMemoryTaskStore {
	return &InMemoryTaskStore{
		tasks: make(map[uuid.UUID]*domain.Task),
	}
}

var _ store.TaskStore = (*InMemoryTaskStore)(nil)

// Create implements store.TaskStore.Create.
func (s *InMemoryTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *InMemoryTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailGetByID != nil {
		return nil, s.FailGetByID
	}

	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}

	copied := *task
	return &copied, nil
}

// MarkProcessing implements store.TaskStore.MarkProcessing.
func (s *InMemoryTaskStore) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	return s.transition(id, func(t *domain.Task) error {
		return t.MarkProcessing()
	})
}

// Complete implements store.TaskStore.Complete.
func (s *InMemoryTaskStore) Complete(ctx context.Context, id uuid.UUID, result json.RawMessage) error {
	return s.transition(id, func(t *domain.Task) error {
		return t.Complete(result)
	})
}

// Fail implements store.TaskStore.Fail.
func (s *InMemoryTaskStore) Fail(ctx context.Context, id uuid.UUID, errorMessage string) error {
	return s.transition(id, func(t *domain.Task) error {
		return t.Fail(errorMessage)
	})
}

// Cancel implements store.TaskStore.Cancel.
func (s *InMemoryTaskStore) Cancel(ctx context.Context, id uuid.UUID, errorMessage string) error {
	return s.transition(id, func(t *domain.Task) error {
		return t.Cancel(errorMessage)
	})
}

// GetPending implements store.TaskStore.GetPending.
func (s *InMemoryTaskStore) GetPending(ctx context.Context) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := []*domain.Task{}
	for _, task := range s.tasks {
		if task.Status == domain.TaskStatusPending {
			copied := *task
			pending = append(pending, &copied)
		}
	}
	return pending, nil
}

// SetStatus force-sets a task's status, bypassing transition guards. Tests
// use it to script lifecycle sequences the real backend would never produce,
// such as regressions.
func (s *InMemoryTaskStore) SetStatus(id uuid.UUID, status domain.TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task, ok := s.tasks[id]; ok {
		task.Status = status
		task.UpdatedAt = time.Now().UTC()
	}
}

func (s *InMemoryTaskStore) transition(id uuid.UUID, apply func(*domain.Task) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return store.ErrTaskNotFound
	}

	if err := apply(task); err != nil {
		return fmt.Errorf("%w: %v", store.ErrUpdateFailed, err)
	}
	return nil
}
