package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jobforge/jobforge-api/internal/domain"
)

// HistoryFilters narrows a history listing. The zero value lists everything
// owned by the user, newest first.
type HistoryFilters struct {
	// ContentType restricts results to a single generation kind when set.
	ContentType *domain.GenerationKind

	// FavoritesOnly restricts results to favorited items.
	FavoritesOnly bool

	// Limit caps the page size. Implementations apply a default when zero.
	Limit int

	// Cursor is an opaque keyset cursor from a previous page. Empty means
	// start from the newest item.
	Cursor string
}

// HistoryPage is one page of a history listing. NextCursor is empty when
// there are no further pages.
type HistoryPage struct {
	Items      []*domain.HistoryItem
	NextCursor string
}

// HistoryStore defines the interface for persisting history items.
//
// Every operation is scoped to the owning user: items belonging to other
// accounts behave exactly like missing rows (ErrHistoryItemNotFound).
// Mutations are single-statement atomic per item.
type HistoryStore interface {
	// Create persists a new history item.
	Create(ctx context.Context, item *domain.HistoryItem) error

	// GetByID retrieves a history item owned by userID.
	// Returns ErrHistoryItemNotFound if it does not exist or is foreign.
	GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.HistoryItem, error)

	// List returns a page of the user's history items ordered by created_at
	// descending. Pagination is keyset-based so already-returned pages are
	// stable under concurrent inserts.
	List(ctx context.Context, userID uuid.UUID, filters HistoryFilters) (*HistoryPage, error)

	// ToggleFavorite flips is_favorite in a single atomic statement and
	// returns the updated item.
	// Returns ErrHistoryItemNotFound if it does not exist or is foreign.
	ToggleFavorite(ctx context.Context, id, userID uuid.UUID) (*domain.HistoryItem, error)

	// SetRating overwrites the item's rating (last-write-wins). Rating
	// bounds are validated by the caller; the database constraint is a
	// backstop. Returns ErrHistoryItemNotFound if missing or foreign.
	SetRating(ctx context.Context, id, userID uuid.UUID, rating int) (*domain.HistoryItem, error)

	// Delete permanently removes the item.
	// Returns ErrHistoryItemNotFound if it does not exist or is foreign,
	// including on a repeated delete of the same id.
	Delete(ctx context.Context, id, userID uuid.UUID) error
}
