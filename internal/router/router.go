package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"axiom-backend/internal/handlers"
	"axiom-backend/internal/logger"
	"axiom-backend/internal/middleware"
)

func New(
	log *logger.Logger,
	jwtAuth *middleware.JWTAuth,
	authLimiter *middleware.RateLimiter,
	authHandler *handlers.AuthHandler,
	chatHandler *handlers.ChatHandler,
	corsOrigins []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(corsOrigins))

	r.Get("/", handlers.Root)
	r.Get("/health", handlers.Health)

	// ──── Auth Routes ────
	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/token", authHandler.Token)
		})

		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/me", authHandler.Me)
		})
	})

	// ──── Chat Routes ────
	// Per-user chat quota is enforced inside the tutor pipeline, not here.
	r.Route("/api", func(r chi.Router) {
		r.Use(jwtAuth.Middleware)
		r.Post("/chat", chatHandler.Chat)
		r.Post("/chat/image", chatHandler.ChatWithImage)
	})

	return r
}
