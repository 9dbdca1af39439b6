package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Rating bounds for history items.
const (
	MinRating = 1
	MaxRating = 5
)

// Common validation errors for HistoryItem
var (
	ErrEmptyHistoryItemID     = errors.New("history item ID cannot be empty")
	ErrEmptyHistoryItemUserID = errors.New("history item user ID cannot be empty")
	ErrEmptyHistoryPayload    = errors.New("history item payload cannot be empty")
)

// HistoryItem represents a persisted, curated generation artifact, owned by
// the requesting user's account and independent of the Task that produced
// it. It is created once and mutated only through ToggleFavorite and
// SetRating, or deleted.
type HistoryItem struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	ContentType GenerationKind  `json:"content_type"`
	Payload     json.RawMessage `json:"payload"`
	IsFavorite  bool            `json:"is_favorite"`
	Rating      *int            `json:"rating,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewHistoryItem creates a new HistoryItem for the given user with the
// retained generation payload. Favorites default to false and the rating
// is absent until set. Returns an error if validation fails.
func NewHistoryItem(
	userID uuid.UUID,
	contentType GenerationKind,
	payload json.RawMessage,
) (*HistoryItem, error) {
	now := time.Now().UTC()
	item := &HistoryItem{
		ID:          uuid.New(),
		UserID:      userID,
		ContentType: contentType,
		Payload:     payload,
		IsFavorite:  false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks if the HistoryItem has valid data.
// Returns an error if any field fails validation.
func (h *HistoryItem) Validate() error {
	if h.ID == uuid.Nil {
		return ErrEmptyHistoryItemID
	}

	if h.UserID == uuid.Nil {
		return ErrEmptyHistoryItemUserID
	}

	if !IsValidGenerationKind(h.ContentType) {
		return ErrInvalidGenerationKind
	}

	if len(h.Payload) == 0 {
		return ErrEmptyHistoryPayload
	}

	if h.Rating != nil && !IsValidRating(*h.Rating) {
		return ErrInvalidRating
	}

	return nil
}

// ToggleFavorite flips the favorite flag. Applied twice it restores the
// original value. This is deliberately a toggle, matching the caller-facing
// contract, not an idempotent set.
func (h *HistoryItem) ToggleFavorite() {
	h.IsFavorite = !h.IsFavorite
	h.UpdatedAt = time.Now().UTC()
}

// SetRating overwrites any prior rating with the given value
// (last-write-wins, no averaging).
// Returns ErrInvalidRating if the rating is outside [MinRating, MaxRating].
func (h *HistoryItem) SetRating(rating int) error {
	if !IsValidRating(rating) {
		return ErrInvalidRating
	}

	h.Rating = &rating
	h.UpdatedAt = time.Now().UTC()
	return nil
}

// IsValidRating reports whether rating falls within [MinRating, MaxRating].
func IsValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}
