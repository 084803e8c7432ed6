package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"cryptvault/api/internal/api/handlers"
	vault_middleware "cryptvault/api/internal/api/middleware"
)

// RouterConfig defines the strict dependencies required to build the API routing tree.
type RouterConfig struct {
	AllowedOrigins []string
	MaxBodyBytes   int64
	AuthHandler    *handlers.AuthHandler
	MessageHandler *handlers.MessageHandler
	CipherHandler  *handlers.CipherHandler
	HealthHandler  *handlers.HealthHandler
	AuthMiddleware *vault_middleware.AuthMiddleware
	RateLimiter    *vault_middleware.RateLimiter
	Logger         *slog.Logger
}

// NewRouter constructs the Chi multiplexer, attaches global middleware, and wires all endpoints.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// =========================================================================
	// 1. Global Middleware Pipeline
	// =========================================================================

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(vault_middleware.StructuredLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(vault_middleware.MaxBytes(cfg.MaxBodyBytes))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// After CORS, so 429 responses carry Access-Control-Allow-Origin.
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Handler)
	}

	// =========================================================================
	// 2. API v1 Routing Tree
	// =========================================================================

	r.Route("/api/v1", func(r chi.Router) {

		// Public routes
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
			r.Post("/auth/refresh", cfg.AuthHandler.Refresh)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthMiddleware.RequireAuthentication)

			r.Get("/auth/me", cfg.AuthHandler.Me)

			r.Post("/encrypt", cfg.MessageHandler.Encrypt)
			r.Post("/decrypt", cfg.MessageHandler.Decrypt)
			r.Get("/messages", cfg.MessageHandler.List)
			r.Delete("/messages/{id}", cfg.MessageHandler.Delete)
			r.Get("/user/stats", cfg.MessageHandler.Stats)

			r.Get("/algorithms", cfg.CipherHandler.Algorithms)
			r.Post("/cipher/encrypt", cfg.CipherHandler.Encrypt)
			r.Post("/cipher/decrypt", cfg.CipherHandler.Decrypt)
		})
	})

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.Check)
	}

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	return r
}
