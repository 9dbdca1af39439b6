package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jobforge/jobforge-api/internal/api/shared"
	"github.com/jobforge/jobforge-api/internal/domain"
	"github.com/jobforge/jobforge-api/internal/service"
	"github.com/jobforge/jobforge-api/internal/store"
	"github.com/jobforge/jobforge-api/internal/task"
)

// mockGenerationService implements service.GenerationService with a
// configurable function.
type mockGenerationService struct {
	submitFn func(ctx context.Context, userID uuid.UUID, req service.SubmitRequest) (*service.SubmitResult, error)
}

func (m *mockGenerationService) Submit(ctx context.Context, userID uuid.UUID, req service.SubmitRequest) (*service.SubmitResult, error) {
	return m.submitFn(ctx, userID, req)
}

// mockTaskService implements service.TaskService with configurable functions.
type mockTaskService struct {
	getTaskFn func(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)
	waitFn    func(ctx context.Context, userID, taskID uuid.UUID, cfg task.PollConfig) (*domain.Task, error)
	cancelFn  func(ctx context.Context, userID, taskID uuid.UUID) (task.CancelOutcome, error)
}

func (m *mockTaskService) GetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	return m.getTaskFn(ctx, userID, taskID)
}

func (m *mockTaskService) Wait(ctx context.Context, userID, taskID uuid.UUID, cfg task.PollConfig) (*domain.Task, error) {
	return m.waitFn(ctx, userID, taskID, cfg)
}

func (m *mockTaskService) Cancel(ctx context.Context, userID, taskID uuid.UUID) (task.CancelOutcome, error) {
	return m.cancelFn(ctx, userID, taskID)
}

// mockHistoryService implements service.HistoryService with configurable
// functions.
type mockHistoryService struct {
	listFn          func(ctx context.Context, userID uuid.UUID, filters store.HistoryFilters) (*store.HistoryPage, error)
	listFavoritesFn func(ctx context.Context, userID uuid.UUID, filters store.HistoryFilters) (*store.HistoryPage, error)
	getFn           func(ctx context.Context, userID, itemID uuid.UUID) (*domain.HistoryItem, error)
	toggleFn        func(ctx context.Context, userID, itemID uuid.UUID) (*domain.HistoryItem, error)
	rateFn          func(ctx context.Context, userID, itemID uuid.UUID, rating int) (*domain.HistoryItem, error)
	deleteFn        func(ctx context.Context, userID, itemID uuid.UUID) error
}

func (m *mockHistoryService) List(ctx context.Context, userID uuid.UUID, filters store.HistoryFilters) (*store.HistoryPage, error) {
	return m.listFn(ctx, userID, filters)
}

func (m *mockHistoryService) ListFavorites(ctx context.Context, userID uuid.UUID, filters store.HistoryFilters) (*store.HistoryPage, error) {
	return m.listFavoritesFn(ctx, userID, filters)
}

func (m *mockHistoryService) Get(ctx context.Context, userID, itemID uuid.UUID) (*domain.HistoryItem, error) {
	return m.getFn(ctx, userID, itemID)
}

func (m *mockHistoryService) ToggleFavorite(ctx context.Context, userID, itemID uuid.UUID) (*domain.HistoryItem, error) {
	return m.toggleFn(ctx, userID, itemID)
}

func (m *mockHistoryService) Rate(ctx context.Context, userID, itemID uuid.UUID, rating int) (*domain.HistoryItem, error) {
	return m.rateFn(ctx, userID, itemID, rating)
}

func (m *mockHistoryService) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	return m.deleteFn(ctx, userID, itemID)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// serveAs routes the request through a chi router with the given user ID
// injected into the context, mimicking the auth middleware. A nil UUID skips
// injection so unauthenticated paths can be exercised.
func serveAs(t *testing.T, userID uuid.UUID, register func(r chi.Router), req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID != uuid.Nil {
				r = r.WithContext(context.WithValue(r.Context(), shared.UserIDContextKey, userID))
			}
			next.ServeHTTP(w, r)
		})
	})
	register(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
