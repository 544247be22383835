package api

import (
	"time"

	"github.com/avern/todo-tracker-be/internal/api/handlers"
	"github.com/avern/todo-tracker-be/internal/auth"
	"github.com/avern/todo-tracker-be/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterDeps bundles everything the route table needs.
type RouterDeps struct {
	Tokens        *auth.TokenManager
	UserService   services.UserServiceProvider
	TodoService   services.TodoServiceProvider
	EventService  services.EventServiceProvider
	StoreTimeout  time.Duration
	AllowedOrigin string
}

// NewRouter creates and configures a new Chi router. Paths are kept flat
// (no /api/v1 prefix) because the web client's routes are fixed.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{deps.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(deps.UserService, deps.EventService, deps.Tokens, deps.StoreTimeout)
	todoHandler := handlers.NewTodoHandler(deps.TodoService, deps.EventService, deps.StoreTimeout)
	eventHandler := handlers.NewEventHandler(deps.EventService, deps.StoreTimeout)

	// Public endpoints
	r.Get("/health", handlers.Health)
	r.Post("/register", userHandler.Register)
	r.Post("/login", userHandler.Login)

	// Everything below requires a valid session token
	r.Group(func(r chi.Router) {
		r.Use(deps.Tokens.Middleware())

		r.Route("/todos", func(r chi.Router) {
			r.Get("/", todoHandler.GetAll)
			r.Post("/", todoHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", todoHandler.Update)
				r.Delete("/", todoHandler.Delete)
			})
		})

		r.Get("/export", todoHandler.Export)
		r.Post("/import", todoHandler.Import)
		r.Get("/events", eventHandler.GetRecent)
	})

	return r
}
