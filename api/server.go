/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the app shell

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Status routes
		r.Get("/status", h.GetStatus)
		r.Post("/network/refresh", h.RefreshNetwork)
		r.Post("/banner/dismiss", h.DismissBanner)

		// Queue & sync routes
		r.Route("/queue", func(r chi.Router) {
			r.Get("/", h.ListQueue)
			r.Post("/", h.EnqueueAction)
			r.Delete("/{id}", h.RemoveAction)
		})
		r.Post("/sync", h.TriggerSync)

		// Activity routes
		r.Route("/activity", func(r chi.Router) {
			r.Get("/", h.ListActivity)
			r.Post("/today", h.RecordToday)
		})
		r.Get("/streaks", h.GetStreaks)
		r.Get("/summary", h.GetSummary)
		r.Get("/fasting-days", h.ListFastingDays)

		// Cache routes
		r.Get("/cache/{domain}", h.GetCacheDomain)
	})

	return r
}
