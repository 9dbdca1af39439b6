package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jobforge/jobforge-api/internal/domain"
	"github.com/jobforge/jobforge-api/internal/platform/logger"
	"github.com/jobforge/jobforge-api/internal/store"
)

// defaultHistoryPageSize is applied when a listing request does not specify
// a limit. maxHistoryPageSize caps requested limits.
const (
	defaultHistoryPageSize = 20
	maxHistoryPageSize     = 100
)

// HistoryStore implements the store.HistoryStore interface using a
// PostgreSQL database as the storage backend. Every query is scoped by
// user_id so foreign items are indistinguishable from missing ones.
type HistoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewHistoryStore creates a new PostgreSQL implementation of the
// HistoryStore interface. If logger is nil, a default logger will be used.
func NewHistoryStore(db store.DBTX, logger *slog.Logger) *HistoryStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &HistoryStore{
		db:     db,
		logger: logger.With(slog.String("component", "history_store")),
	}
}

// Ensure HistoryStore implements store.HistoryStore
var _ store.HistoryStore = (*HistoryStore)(nil)

// Create implements store.HistoryStore.Create.
func (s *HistoryStore) Create(ctx context.Context, item *domain.HistoryItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("history item validation failed during create",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO history_items
			(id, user_id, content_type, payload, is_favorite, rating,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		item.ID,
		item.UserID,
		string(item.ContentType),
		[]byte(item.Payload),
		item.IsFavorite,
		nullableInt(item.Rating),
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create history item",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return mapError(err)
	}

	log.Debug("history item created",
		slog.String("item_id", item.ID.String()),
		slog.String("content_type", string(item.ContentType)))
	return nil
}

// GetByID implements store.HistoryStore.GetByID.
func (s *HistoryStore) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.HistoryItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, content_type, payload, is_favorite, rating,
		       created_at, updated_at
		FROM history_items
		WHERE id = $1 AND user_id = $2
	`

	item, err := scanHistoryItem(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrHistoryItemNotFound
		}
		log.Error("failed to get history item",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return nil, mapError(err)
	}

	return item, nil
}

// List implements store.HistoryStore.List. Pages are keyed on
// (created_at, id) descending so concurrent inserts never shift rows into
// pages the caller has already consumed.
func (s *HistoryStore) List(
	ctx context.Context,
	userID uuid.UUID,
	filters store.HistoryFilters,
) (*store.HistoryPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	limit := filters.Limit
	if limit <= 0 {
		limit = defaultHistoryPageSize
	}
	if limit > maxHistoryPageSize {
		limit = maxHistoryPageSize
	}

	var sb strings.Builder
	sb.WriteString(`
		SELECT id, user_id, content_type, payload, is_favorite, rating,
		       created_at, updated_at
		FROM history_items
		WHERE user_id = $1`)
	args := []any{userID}

	if filters.ContentType != nil {
		args = append(args, string(*filters.ContentType))
		fmt.Fprintf(&sb, " AND content_type = $%d", len(args))
	}

	if filters.FavoritesOnly {
		sb.WriteString(" AND is_favorite = TRUE")
	}

	if filters.Cursor != "" {
		cursorTime, cursorID, err := store.DecodeHistoryCursor(filters.Cursor)
		if err != nil {
			return nil, err
		}
		args = append(args, cursorTime, cursorID)
		fmt.Fprintf(&sb, " AND (created_at, id) < ($%d, $%d)", len(args)-1, len(args))
	}

	// Fetch one extra row to learn whether another page exists.
	args = append(args, limit+1)
	fmt.Fprintf(&sb, " ORDER BY created_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		log.Error("failed to list history items",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, mapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	items := []*domain.HistoryItem{}
	for rows.Next() {
		item, err := scanHistoryItem(rows)
		if err != nil {
			log.Error("failed to scan history row", slog.String("error", err.Error()))
			return nil, mapError(err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, mapError(err)
	}

	page := &store.HistoryPage{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		last := page.Items[len(page.Items)-1]
		page.NextCursor = store.EncodeHistoryCursor(last.CreatedAt, last.ID)
	}

	return page, nil
}

// ToggleFavorite implements store.HistoryStore.ToggleFavorite. The flip
// happens inside the UPDATE so two concurrent toggles serialize in the
// database rather than clobbering each other read-modify-write style.
func (s *HistoryStore) ToggleFavorite(ctx context.Context, id, userID uuid.UUID) (*domain.HistoryItem, error) {
	query := `
		UPDATE history_items
		SET is_favorite = NOT is_favorite, updated_at = $1
		WHERE id = $2 AND user_id = $3
		RETURNING id, user_id, content_type, payload, is_favorite, rating,
		          created_at, updated_at
	`
	return s.mutateReturning(ctx, "toggle favorite", id, query, time.Now().UTC(), id, userID)
}

// SetRating implements store.HistoryStore.SetRating.
func (s *HistoryStore) SetRating(ctx context.Context, id, userID uuid.UUID, rating int) (*domain.HistoryItem, error) {
	if !domain.IsValidRating(rating) {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrInvalidRating)
	}

	query := `
		UPDATE history_items
		SET rating = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4
		RETURNING id, user_id, content_type, payload, is_favorite, rating,
		          created_at, updated_at
	`
	return s.mutateReturning(ctx, "set rating", id, query, rating, time.Now().UTC(), id, userID)
}

// Delete implements store.HistoryStore.Delete. A repeated delete of the same
// id finds no row and reports ErrHistoryItemNotFound like any other miss.
func (s *HistoryStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM history_items WHERE id = $1 AND user_id = $2`
	result, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		log.Error("failed to delete history item",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return mapError(err)
	}

	if err := rowsAffected(result, store.ErrHistoryItemNotFound); err != nil {
		return err
	}

	log.Debug("history item deleted", slog.String("item_id", id.String()))
	return nil
}

// mutateReturning runs a user-scoped UPDATE ... RETURNING and scans the
// updated row. A miss (deleted, never existed, or foreign) surfaces as
// ErrHistoryItemNotFound.
func (s *HistoryStore) mutateReturning(
	ctx context.Context,
	operation string,
	id uuid.UUID,
	query string,
	args ...any,
) (*domain.HistoryItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	item, err := scanHistoryItem(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrHistoryItemNotFound
		}
		log.Error("failed to update history item",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return nil, mapError(err)
	}

	return item, nil
}

// scanHistoryItem reads one history row in the canonical column order.
func scanHistoryItem(row rowScanner) (*domain.HistoryItem, error) {
	var item domain.HistoryItem
	var contentType string
	var payload []byte
	var rating sql.NullInt64

	err := row.Scan(
		&item.ID,
		&item.UserID,
		&contentType,
		&payload,
		&item.IsFavorite,
		&rating,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.ContentType = domain.GenerationKind(contentType)
	item.Payload = json.RawMessage(payload)
	if rating.Valid {
		r := int(rating.Int64)
		item.Rating = &r
	}

	return &item, nil
}

// nullableInt converts an optional rating to a driver-friendly value.
func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
