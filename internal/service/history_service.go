package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jobforge/jobforge-api/internal/domain"
	"github.com/jobforge/jobforge-api/internal/store"
)

// HistoryService exposes the user's generation history: listing with
// filters and stable pagination, retrieval, curation (favorite, rating),
// and deletion. Every operation is scoped to the owning user.
type HistoryService interface {
	// List returns a page of the user's history, newest first.
	List(ctx context.Context, userID uuid.UUID, filters store.HistoryFilters) (*store.HistoryPage, error)

	// ListFavorites returns a page of the user's favorited items. It is
	// List with the favorites-only filter forced on.
	ListFavorites(ctx context.Context, userID uuid.UUID, filters store.HistoryFilters) (*store.HistoryPage, error)

	// Get retrieves one history item.
	Get(ctx context.Context, userID, itemID uuid.UUID) (*domain.HistoryItem, error)

	// ToggleFavorite flips the item's favorite flag and returns the updated
	// item. Each call is one observable flip.
	ToggleFavorite(ctx context.Context, userID, itemID uuid.UUID) (*domain.HistoryItem, error)

	// Rate sets the item's rating, overwriting any previous value.
	// Returns domain.ErrInvalidRating for ratings outside the valid range.
	Rate(ctx context.Context, userID, itemID uuid.UUID, rating int) (*domain.HistoryItem, error)

	// Delete permanently removes the item. Deleting an already-deleted item
	// returns ErrHistoryItemNotFound.
	Delete(ctx context.Context, userID, itemID uuid.UUID) error
}

type historyServiceImpl struct {
	store  store.HistoryStore
	logger *slog.Logger
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(historyStore store.HistoryStore, logger *slog.Logger) (HistoryService, error) {
	if historyStore == nil {
		return nil, fmt.Errorf("history store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &historyServiceImpl{
		store:  historyStore,
		logger: logger.With(slog.String("component", "history_service")),
	}, nil
}

func (s *historyServiceImpl) List(
	ctx context.Context,
	userID uuid.UUID,
	filters store.HistoryFilters,
) (*store.HistoryPage, error) {
	if filters.ContentType != nil && !domain.IsValidGenerationKind(*filters.ContentType) {
		return nil, domain.NewValidationError("content_type",
			fmt.Sprintf("unknown generation kind %q", *filters.ContentType),
			domain.ErrInvalidGenerationKind)
	}

	page, err := s.store.List(ctx, userID, filters)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCursor) {
			return nil, domain.NewValidationError("cursor", "malformed pagination cursor", err)
		}
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return page, nil
}

func (s *historyServiceImpl) ListFavorites(
	ctx context.Context,
	userID uuid.UUID,
	filters store.HistoryFilters,
) (*store.HistoryPage, error) {
	filters.FavoritesOnly = true
	return s.List(ctx, userID, filters)
}

func (s *historyServiceImpl) Get(
	ctx context.Context,
	userID, itemID uuid.UUID,
) (*domain.HistoryItem, error) {
	item, err := s.store.GetByID(ctx, itemID, userID)
	if err != nil {
		return nil, s.mapStoreError(err, "retrieve")
	}
	return item, nil
}

func (s *historyServiceImpl) ToggleFavorite(
	ctx context.Context,
	userID, itemID uuid.UUID,
) (*domain.HistoryItem, error) {
	item, err := s.store.ToggleFavorite(ctx, itemID, userID)
	if err != nil {
		return nil, s.mapStoreError(err, "toggle favorite on")
	}

	s.logger.Debug("favorite toggled",
		slog.String("item_id", itemID.String()),
		slog.Bool("is_favorite", item.IsFavorite))
	return item, nil
}

func (s *historyServiceImpl) Rate(
	ctx context.Context,
	userID, itemID uuid.UUID,
	rating int,
) (*domain.HistoryItem, error) {
	// Bounds are rejected here so an invalid rating never reaches the
	// store; the database CHECK constraint is only a backstop.
	if !domain.IsValidRating(rating) {
		return nil, domain.NewValidationError("rating",
			fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating),
			domain.ErrInvalidRating)
	}

	item, err := s.store.SetRating(ctx, itemID, userID, rating)
	if err != nil {
		return nil, s.mapStoreError(err, "rate")
	}

	s.logger.Debug("history item rated",
		slog.String("item_id", itemID.String()),
		slog.Int("rating", rating))
	return item, nil
}

func (s *historyServiceImpl) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	if err := s.store.Delete(ctx, itemID, userID); err != nil {
		return s.mapStoreError(err, "delete")
	}

	s.logger.Info("history item deleted", slog.String("item_id", itemID.String()))
	return nil
}

func (s *historyServiceImpl) mapStoreError(err error, action string) error {
	if errors.Is(err, store.ErrHistoryItemNotFound) {
		return ErrHistoryItemNotFound
	}
	return fmt.Errorf("failed to %s history item: %w", action, err)
}
