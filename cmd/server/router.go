package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jobforge/jobforge-api/internal/api"
	apiMiddleware "github.com/jobforge/jobforge-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	generationHandler := api.NewGenerationHandler(app.generationService, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	historyHandler := api.NewHistoryHandler(app.historyService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Generation submission
			r.Post("/generations", generationHandler.Submit)

			// Task observation and cancellation
			r.Get("/tasks/{id}", taskHandler.GetTask)
			r.Get("/tasks/{id}/wait", taskHandler.WaitForTask)
			r.Post("/tasks/{id}/cancel", taskHandler.CancelTask)

			// Generation history
			r.Get("/history", historyHandler.ListHistory)
			r.Get("/history/favorites", historyHandler.ListFavorites)
			r.Get("/history/{id}", historyHandler.GetHistoryItem)
			r.Post("/history/{id}/favorite", historyHandler.ToggleFavorite)
			r.Put("/history/{id}/rating", historyHandler.RateHistoryItem)
			r.Delete("/history/{id}", historyHandler.DeleteHistoryItem)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
