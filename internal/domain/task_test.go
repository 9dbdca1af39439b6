package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func validTaskParams() json.RawMessage {
	return json.RawMessage(`{"job_description":"Backend engineer","resume_text":"10 years of Go"}`)
}

func TestNewTask(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	task, err := NewTask(userID, KindCoverLetter, validTaskParams(), true)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if task.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, task.UserID)
	}

	if task.Status != TaskStatusPending {
		t.Errorf("Expected status %s, got %s", TaskStatusPending, task.Status)
	}

	if !task.SaveToHistory {
		t.Error("Expected SaveToHistory to be true")
	}

	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		t.Error("Expected non-zero timestamps")
	}

	// Invalid user ID
	if _, err := NewTask(uuid.Nil, KindCoverLetter, validTaskParams(), true); !errors.Is(err, ErrEmptyTaskUserID) {
		t.Errorf("Expected error %v, got %v", ErrEmptyTaskUserID, err)
	}

	// Invalid kind
	if _, err := NewTask(userID, GenerationKind("haiku"), validTaskParams(), true); !errors.Is(err, ErrInvalidGenerationKind) {
		t.Errorf("Expected error %v, got %v", ErrInvalidGenerationKind, err)
	}

	// Empty params
	if _, err := NewTask(userID, KindJobMatch, nil, true); !errors.Is(err, ErrEmptyTaskParams) {
		t.Errorf("Expected error %v, got %v", ErrEmptyTaskParams, err)
	}
}

func TestTaskTransitions(t *testing.T) {
	t.Parallel()

	task, err := NewTask(uuid.New(), KindJobMatch, validTaskParams(), false)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.IsTerminal() {
		t.Error("Expected pending task to be non-terminal")
	}

	if err := task.MarkProcessing(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if task.Status != TaskStatusProcessing {
		t.Errorf("Expected status %s, got %s", TaskStatusProcessing, task.Status)
	}

	result := json.RawMessage(`{"score":87}`)
	if err := task.Complete(result); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if task.Status != TaskStatusCompleted {
		t.Errorf("Expected status %s, got %s", TaskStatusCompleted, task.Status)
	}
	if !task.IsTerminal() {
		t.Error("Expected completed task to be terminal")
	}

	// Terminal states are absorbing.
	if err := task.MarkProcessing(); !errors.Is(err, ErrTaskTerminal) {
		t.Errorf("Expected error %v, got %v", ErrTaskTerminal, err)
	}
	if err := task.Fail("boom"); !errors.Is(err, ErrTaskTerminal) {
		t.Errorf("Expected error %v, got %v", ErrTaskTerminal, err)
	}
	if err := task.Cancel("too late"); !errors.Is(err, ErrTaskTerminal) {
		t.Errorf("Expected error %v, got %v", ErrTaskTerminal, err)
	}
	if task.Status != TaskStatusCompleted {
		t.Errorf("Expected terminal status to be unchanged, got %s", task.Status)
	}
}

func TestTaskFail(t *testing.T) {
	t.Parallel()

	task, err := NewTask(uuid.New(), KindInterviewQuestions, validTaskParams(), true)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := task.Fail("generator unavailable"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.Status != TaskStatusFailed {
		t.Errorf("Expected status %s, got %s", TaskStatusFailed, task.Status)
	}
	if task.ErrorMessage != "generator unavailable" {
		t.Errorf("Expected error message to be set, got %q", task.ErrorMessage)
	}
	if task.Cancelled {
		t.Error("Expected cancelled marker to be false for a plain failure")
	}
}

func TestTaskCancel(t *testing.T) {
	t.Parallel()

	task, err := NewTask(uuid.New(), KindCoverLetter, validTaskParams(), true)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := task.MarkProcessing(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := task.Cancel("cancelled by user"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.Status != TaskStatusFailed {
		t.Errorf("Expected status %s, got %s", TaskStatusFailed, task.Status)
	}
	if !task.Cancelled {
		t.Error("Expected cancelled marker to be set")
	}
	if !task.IsTerminal() {
		t.Error("Expected cancelled task to be terminal")
	}
}
