package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/newslens/internal/api"
	apimiddleware "github.com/phrazzld/newslens/internal/api/middleware"
	"github.com/phrazzld/newslens/internal/platform/metrics"
)

// setupRouter creates and configures the application's HTTP router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apimiddleware.Trace(app.logger))
	r.Use(metrics.Middleware)
	r.Use(middleware.Recoverer)

	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	healthHandler := api.NewHealthHandler(app.store, app.dispatcher, app.healthChecks, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/tasks", taskHandler.CreateTask)
		r.Get("/tasks/{id}", taskHandler.GetTask)
	})

	r.Get("/health", healthHandler.Health)
	r.Handle("/metrics", metrics.Handler())

	return r
}
