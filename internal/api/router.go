// Package api wires the HTTP routes.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sunrise-assist/server/internal/handlers"
)

// RouterDependencies holds the handlers the router mounts.
type RouterDependencies struct {
	ChatHandlers        *handlers.ChatHandlers
	AppointmentHandlers *handlers.AppointmentHandlers
	AllowedOrigins      []string
}

// NewRouter creates and configures the Chi router.
func NewRouter(deps RouterDependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Post("/chat", deps.ChatHandlers.HandleChat)
	r.Post("/reset", deps.ChatHandlers.HandleReset)
	r.Get("/appointments", deps.AppointmentHandlers.HandleList)
	r.Post("/clear_appointments", deps.AppointmentHandlers.HandleClear)

	return r
}
