package api

import (
	"log/slog"
	"net/http"

	"github.com/jobforge/jobforge-api/internal/api/shared"
	"github.com/jobforge/jobforge-api/internal/domain"
	"github.com/jobforge/jobforge-api/internal/platform/logger"
	"github.com/jobforge/jobforge-api/internal/service"
)

// GenerationHandler handles generation submission HTTP requests.
type GenerationHandler struct {
	generationService service.GenerationService
	logger            *slog.Logger
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(generationService service.GenerationService, logger *slog.Logger) *GenerationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerationHandler{
		generationService: generationService,
		logger:            logger.With(slog.String("component", "generation_handler")),
	}
}

// Submit handles POST /api/generations requests.
//
// Synchronous submissions respond 200 with the terminal result; asynchronous
// submissions respond 202 with the pending task handle.
func (h *GenerationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	var req SubmitGenerationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "kind and params are required")
		return
	}

	result, err := h.generationService.Submit(r.Context(), userID, service.SubmitRequest{
		Kind:          domain.GenerationKind(req.Kind),
		Params:        req.Params,
		Mode:          service.Mode(req.Mode),
		SaveToHistory: req.SaveToHistory,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit generation")
		return
	}

	if result.Mode == service.ModeSync {
		log.Debug("synchronous generation served", slog.String("kind", req.Kind))
		shared.RespondWithJSON(w, r, http.StatusOK, GenerationResponse{
			Kind:   req.Kind,
			Result: result.Result,
		})
		return
	}

	log.Debug("task accepted",
		slog.String("kind", req.Kind),
		slog.String("task_id", result.Task.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusAccepted, taskToResponse(result.Task))
}
