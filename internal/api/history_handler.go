package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jobforge/jobforge-api/internal/api/shared"
	"github.com/jobforge/jobforge-api/internal/domain"
	"github.com/jobforge/jobforge-api/internal/platform/logger"
	"github.com/jobforge/jobforge-api/internal/service"
	"github.com/jobforge/jobforge-api/internal/store"
)

// HistoryHandler handles history listing and curation HTTP requests.
type HistoryHandler struct {
	historyService service.HistoryService
	logger         *slog.Logger
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(historyService service.HistoryService, logger *slog.Logger) *HistoryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryHandler{
		historyService: historyService,
		logger:         logger.With(slog.String("component", "history_handler")),
	}
}

// ListHistory handles GET /api/history requests. Supported query parameters:
// content_type, favorites_only, limit, cursor.
func (h *HistoryHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	filters, err := historyFiltersFromQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	page, err := h.historyService.List(r.Context(), userID, filters)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list history")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, historyPageToResponse(page))
}

// ListFavorites handles GET /api/history/favorites requests.
func (h *HistoryHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	filters, err := historyFiltersFromQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	page, err := h.historyService.ListFavorites(r.Context(), userID, filters)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list favorites")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, historyPageToResponse(page))
}

// GetHistoryItem handles GET /api/history/{id} requests.
func (h *HistoryHandler) GetHistoryItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, itemID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	item, err := h.historyService.Get(r.Context(), userID, itemID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve history item")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, historyItemToResponse(item))
}

// ToggleFavorite handles POST /api/history/{id}/favorite requests. Each call
// flips the flag once and returns the updated item.
func (h *HistoryHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, itemID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	item, err := h.historyService.ToggleFavorite(r.Context(), userID, itemID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to toggle favorite")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, historyItemToResponse(item))
}

// RateHistoryItem handles PUT /api/history/{id}/rating requests.
func (h *HistoryHandler) RateHistoryItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, itemID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req RateHistoryItemRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	item, err := h.historyService.Rate(r.Context(), userID, itemID, req.Rating)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to rate history item")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, historyItemToResponse(item))
}

// DeleteHistoryItem handles DELETE /api/history/{id} requests.
func (h *HistoryHandler) DeleteHistoryItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, itemID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.historyService.Delete(r.Context(), userID, itemID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete history item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// historyFiltersFromQuery builds store filters from the request query.
func historyFiltersFromQuery(r *http.Request) (store.HistoryFilters, error) {
	filters := store.HistoryFilters{
		Cursor: r.URL.Query().Get("cursor"),
	}

	if raw := r.URL.Query().Get("content_type"); raw != "" {
		kind := domain.GenerationKind(raw)
		filters.ContentType = &kind
	}

	if raw := r.URL.Query().Get("favorites_only"); raw != "" {
		fav, err := strconv.ParseBool(raw)
		if err != nil {
			return filters, domain.NewValidationError("favorites_only", "must be a boolean", domain.ErrValidation)
		}
		filters.FavoritesOnly = fav
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return filters, domain.NewValidationError("limit", "must be a positive integer", domain.ErrValidation)
		}
		filters.Limit = limit
	}

	return filters, nil
}
