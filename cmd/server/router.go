package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/tasksplit/internal/api"
	apiMiddleware "github.com/phrazzld/tasksplit/internal/api/middleware"
	"github.com/phrazzld/tasksplit/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const corsMaxAgeSeconds = 300

// setupRouter builds the chi router. API routes live under the configured
// base path; /health and /metrics are served from the root.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: app.config.Server.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         corsMaxAgeSeconds,
	}))
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(apiMiddleware.NewMetricsMiddleware(app.metrics))

	authHandler := api.NewAuthHandler(app.authService, app.logger)
	agentHandler := api.NewAgentHandler(app.agentService, app.logger)
	listHandler := api.NewListHandler(app.taskService, app.config.Lists.MaxUploadBytes, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.authService, app.logger)
	can := apiMiddleware.RequireCapability

	routes := func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/register-admin", authHandler.RegisterAdmin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/agents", func(r chi.Router) {
				r.Use(can(domain.CapManageAgents))
				r.Get("/", agentHandler.List)
				r.Post("/", agentHandler.Create)
				r.Put("/{id}", agentHandler.Update)
				r.Delete("/{id}", agentHandler.Delete)
			})

			r.Route("/lists", func(r chi.Router) {
				r.With(can(domain.CapDistributeTasks)).Post("/upload", listHandler.Upload)
				r.With(can(domain.CapViewAllTasks)).Get("/distributed", listHandler.Distributed)
				r.With(can(domain.CapViewOwnTasks)).Get("/my-tasks", listHandler.MyTasks)
				r.With(can(domain.CapUpdateAnyTask, domain.CapUpdateOwnTask)).
					Put("/tasks/{id}/status", listHandler.UpdateStatus)
			})
		})
	}

	if base := app.config.Server.BasePath; base != "" {
		r.Route(base, routes)
	} else {
		r.Group(routes)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})
	r.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	return r
}
