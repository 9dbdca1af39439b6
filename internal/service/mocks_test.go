package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jobforge/jobforge-api/internal/domain"
	"github.com/jobforge/jobforge-api/internal/store"
)

// stubGenerator returns a fixed result or error.
type stubGenerator struct {
	result json.RawMessage
	err    error
	calls  int
}

func (g *stubGenerator) Generate(
	ctx context.Context,
	kind domain.GenerationKind,
	params json.RawMessage,
) (json.RawMessage, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

// captureSubmitter records submitted tasks.
type captureSubmitter struct {
	submitted []*domain.Task
	err       error
}

func (s *captureSubmitter) Submit(ctx context.Context, task *domain.Task) error {
	if s.err != nil {
		return s.err
	}
	s.submitted = append(s.submitted, task)
	return nil
}

// inMemoryHistoryStore implements store.HistoryStore with the same observable
// semantics as the real store, including keyset pagination.
type inMemoryHistoryStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*domain.HistoryItem
}

func newInMemoryHistoryStore() *inMemoryHistoryStore {
	return &inMemoryHistoryStore{items: make(map[uuid.UUID]*domain.HistoryItem)}
}

var _ store.HistoryStore = (*inMemoryHistoryStore)(nil)

func (s *inMemoryHistoryStore) Create(ctx context.Context, item *domain.HistoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *item
	s.items[item.ID] = &copied
	return nil
}

func (s *inMemoryHistoryStore) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok || item.UserID != userID {
		return nil, store.ErrHistoryItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *inMemoryHistoryStore) List(
	ctx context.Context,
	userID uuid.UUID,
	filters store.HistoryFilters,
) (*store.HistoryPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := filters.Limit
	if limit <= 0 {
		limit = 20
	}

	matched := []*domain.HistoryItem{}
	for _, item := range s.items {
		if item.UserID != userID {
			continue
		}
		if filters.ContentType != nil && item.ContentType != *filters.ContentType {
			continue
		}
		if filters.FavoritesOnly && !item.IsFavorite {
			continue
		}
		copied := *item
		matched = append(matched, &copied)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() > matched[j].ID.String()
	})

	if filters.Cursor != "" {
		cursorTime, cursorID, err := store.DecodeHistoryCursor(filters.Cursor)
		if err != nil {
			return nil, err
		}
		kept := matched[:0]
		for _, item := range matched {
			if item.CreatedAt.Before(cursorTime) ||
				(item.CreatedAt.Equal(cursorTime) && item.ID.String() < cursorID.String()) {
				kept = append(kept, item)
			}
		}
		matched = kept
	}

	page := &store.HistoryPage{Items: matched}
	if len(matched) > limit {
		page.Items = matched[:limit]
		last := page.Items[len(page.Items)-1]
		page.NextCursor = store.EncodeHistoryCursor(last.CreatedAt, last.ID)
	}
	return page, nil
}

func (s *inMemoryHistoryStore) ToggleFavorite(ctx context.Context, id, userID uuid.UUID) (*domain.HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok || item.UserID != userID {
		return nil, store.ErrHistoryItemNotFound
	}
	item.ToggleFavorite()
	copied := *item
	return &copied, nil
}

func (s *inMemoryHistoryStore) SetRating(ctx context.Context, id, userID uuid.UUID, rating int) (*domain.HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok || item.UserID != userID {
		return nil, store.ErrHistoryItemNotFound
	}
	if err := item.SetRating(rating); err != nil {
		return nil, err
	}
	copied := *item
	return &copied, nil
}

func (s *inMemoryHistoryStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok || item.UserID != userID {
		return store.ErrHistoryItemNotFound
	}
	delete(s.items, id)
	return nil
}

// storeFilters returns an empty filter set; tests mutate what they need.
func storeFilters() store.HistoryFilters {
	return store.HistoryFilters{}
}

// validCoverLetterParams satisfies the minimum-length rules of the cover
// letter parameter schema.
const validCoverLetterParams = `{
	"job_description": "Senior Go engineer building payment infrastructure.",
	"resume_text": "Eight years of backend Go and distributed systems."
}`
