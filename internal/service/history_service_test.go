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
	"github.com/jobforge/jobforge-api/internal/store"
)

func newHistoryFixture(t *testing.T) (*inMemoryHistoryStore, HistoryService) {
	t.Helper()
	historyStore := newInMemoryHistoryStore()
	svc, err := NewHistoryService(historyStore, nil)
	require.NoError(t, err)
	return historyStore, svc
}

func seedHistoryItem(
	t *testing.T,
	s *inMemoryHistoryStore,
	userID uuid.UUID,
	kind domain.GenerationKind,
	createdAt time.Time,
) *domain.HistoryItem {
	t.Helper()
	item, err := domain.NewHistoryItem(userID, kind, json.RawMessage(`{"v":1}`))
	require.NoError(t, err)
	item.CreatedAt = createdAt
	item.UpdatedAt = createdAt
	require.NoError(t, s.Create(context.Background(), item))
	return item
}

func TestHistoryService_ListNewestFirstWithFilters(t *testing.T) {
	t.Parallel()

	historyStore, svc := newHistoryFixture(t)
	userID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)

	older := seedHistoryItem(t, historyStore, userID, domain.KindCoverLetter, base)
	newer := seedHistoryItem(t, historyStore, userID, domain.KindJobMatch, base.Add(time.Minute))
	seedHistoryItem(t, historyStore, uuid.New(), domain.KindCoverLetter, base.Add(2*time.Minute))

	page, err := svc.List(context.Background(), userID, store.HistoryFilters{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2, "foreign items are invisible")
	assert.Equal(t, newer.ID, page.Items[0].ID)
	assert.Equal(t, older.ID, page.Items[1].ID)

	kind := domain.KindJobMatch
	page, err = svc.List(context.Background(), userID, store.HistoryFilters{ContentType: &kind})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, newer.ID, page.Items[0].ID)
}

func TestHistoryService_ListRejectsUnknownContentType(t *testing.T) {
	t.Parallel()

	_, svc := newHistoryFixture(t)
	bad := domain.GenerationKind("poetry")

	_, err := svc.List(context.Background(), uuid.New(), store.HistoryFilters{ContentType: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidGenerationKind)
}

func TestHistoryService_ListPaginationIsStable(t *testing.T) {
	t.Parallel()

	historyStore, svc := newHistoryFixture(t)
	userID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 5; i++ {
		seedHistoryItem(t, historyStore, userID, domain.KindCoverLetter,
			base.Add(time.Duration(i)*time.Minute))
	}

	first, err := svc.List(context.Background(), userID, store.HistoryFilters{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.NotEmpty(t, first.NextCursor)

	// A new item arriving mid-pagination must not shift the next page.
	seedHistoryItem(t, historyStore, userID, domain.KindCoverLetter, base.Add(time.Hour))

	second, err := svc.List(context.Background(), userID, store.HistoryFilters{
		Limit:  2,
		Cursor: first.NextCursor,
	})
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	assert.True(t, second.Items[0].CreatedAt.Before(first.Items[1].CreatedAt),
		"second page continues strictly after the first")

	seen := map[uuid.UUID]bool{}
	for _, item := range append(first.Items, second.Items...) {
		assert.False(t, seen[item.ID], "no item may repeat across pages")
		seen[item.ID] = true
	}
}

func TestHistoryService_ListMalformedCursor(t *testing.T) {
	t.Parallel()

	_, svc := newHistoryFixture(t)

	_, err := svc.List(context.Background(), uuid.New(), store.HistoryFilters{Cursor: "%%%"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestHistoryService_GetScopedToOwner(t *testing.T) {
	t.Parallel()

	historyStore, svc := newHistoryFixture(t)
	userID := uuid.New()
	item := seedHistoryItem(t, historyStore, userID, domain.KindCoverLetter, time.Now().UTC())

	got, err := svc.Get(context.Background(), userID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)

	_, err = svc.Get(context.Background(), uuid.New(), item.ID)
	assert.ErrorIs(t, err, ErrHistoryItemNotFound)
}

func TestHistoryService_ToggleFavoriteFlipsAndRestores(t *testing.T) {
	t.Parallel()

	historyStore, svc := newHistoryFixture(t)
	userID := uuid.New()
	item := seedHistoryItem(t, historyStore, userID, domain.KindCoverLetter, time.Now().UTC())

	got, err := svc.ToggleFavorite(context.Background(), userID, item.ID)
	require.NoError(t, err)
	assert.True(t, got.IsFavorite)

	got, err = svc.ToggleFavorite(context.Background(), userID, item.ID)
	require.NoError(t, err)
	assert.False(t, got.IsFavorite, "two toggles restore the original value")
}

func TestHistoryService_RateBoundsAndOverwrite(t *testing.T) {
	t.Parallel()

	historyStore, svc := newHistoryFixture(t)
	userID := uuid.New()
	item := seedHistoryItem(t, historyStore, userID, domain.KindCoverLetter, time.Now().UTC())

	for _, bad := range []int{0, 6, -1} {
		_, err := svc.Rate(context.Background(), userID, item.ID, bad)
		assert.ErrorIs(t, err, domain.ErrInvalidRating)
	}

	got, err := svc.Rate(context.Background(), userID, item.ID, 3)
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 3, *got.Rating)

	got, err = svc.Rate(context.Background(), userID, item.ID, 5)
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 5, *got.Rating, "last write wins")
}

func TestHistoryService_DeleteTwiceIsNotFound(t *testing.T) {
	t.Parallel()

	historyStore, svc := newHistoryFixture(t)
	userID := uuid.New()
	item := seedHistoryItem(t, historyStore, userID, domain.KindCoverLetter, time.Now().UTC())

	require.NoError(t, svc.Delete(context.Background(), userID, item.ID))

	err := svc.Delete(context.Background(), userID, item.ID)
	assert.ErrorIs(t, err, ErrHistoryItemNotFound)
}

func TestHistoryService_ListFavorites(t *testing.T) {
	t.Parallel()

	historyStore, svc := newHistoryFixture(t)
	userID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)

	seedHistoryItem(t, historyStore, userID, domain.KindCoverLetter, base)
	favorite := seedHistoryItem(t, historyStore, userID, domain.KindJobMatch, base.Add(time.Minute))
	_, err := svc.ToggleFavorite(context.Background(), userID, favorite.ID)
	require.NoError(t, err)

	page, err := svc.ListFavorites(context.Background(), userID, store.HistoryFilters{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, favorite.ID, page.Items[0].ID)
	assert.True(t, page.Items[0].IsFavorite)
}
