package api

import (
	"encoding/json"
	"time"

	"github.com/jobforge/jobforge-api/internal/domain"
	"github.com/jobforge/jobforge-api/internal/store"
)

// SubmitGenerationRequest is the payload for submitting generation work.
type SubmitGenerationRequest struct {
	// Kind selects the generation flavor: cover_letter, job_match, or
	// interview_questions.
	Kind string `json:"kind" validate:"required"`

	// Params is the kind-specific parameter document, validated server-side.
	Params json.RawMessage `json:"params" validate:"required"`

	// Mode is sync (default) or async.
	Mode string `json:"mode" validate:"omitempty,oneof=sync async"`

	// SaveToHistory overrides the server default when present.
	SaveToHistory *bool `json:"save_to_history,omitempty"`
}

// GenerationResponse is the terminal response of a synchronous submission.
type GenerationResponse struct {
	Kind   string          `json:"kind"`
	Result json.RawMessage `json:"result"`
}

// TaskResponse describes a task's current state.
type TaskResponse struct {
	ID           string          `json:"id"`
	Kind         string          `json:"kind"`
	Status       string          `json:"status"`
	Result       json.RawMessage `json:"result,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Cancelled    bool            `json:"cancelled"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CancelTaskResponse reports the outcome of a cancellation request.
type CancelTaskResponse struct {
	ID      string `json:"id"`
	Outcome string `json:"outcome"`
}

// HistoryItemResponse describes one history item.
type HistoryItemResponse struct {
	ID          string          `json:"id"`
	ContentType string          `json:"content_type"`
	Payload     json.RawMessage `json:"payload"`
	IsFavorite  bool            `json:"is_favorite"`
	Rating      *int            `json:"rating,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// HistoryPageResponse is one page of history items plus the cursor for the
// next page, empty when exhausted.
type HistoryPageResponse struct {
	Items      []HistoryItemResponse `json:"items"`
	NextCursor string                `json:"next_cursor,omitempty"`
}

// RateHistoryItemRequest is the payload for rating a history item.
type RateHistoryItemRequest struct {
	Rating int `json:"rating" validate:"required"`
}

func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:           task.ID.String(),
		Kind:         string(task.Kind),
		Status:       string(task.Status),
		Result:       task.Result,
		ErrorMessage: task.ErrorMessage,
		Cancelled:    task.Cancelled,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}
}

func historyItemToResponse(item *domain.HistoryItem) HistoryItemResponse {
	return HistoryItemResponse{
		ID:          item.ID.String(),
		ContentType: string(item.ContentType),
		Payload:     item.Payload,
		IsFavorite:  item.IsFavorite,
		Rating:      item.Rating,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func historyPageToResponse(page *store.HistoryPage) HistoryPageResponse {
	items := make([]HistoryItemResponse, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, historyItemToResponse(item))
	}
	return HistoryPageResponse{
		Items:      items,
		NextCursor: page.NextCursor,
	}
}
