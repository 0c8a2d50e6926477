package app

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pokerledger/tracker/internal/auth"
	"github.com/pokerledger/tracker/internal/guard"
	"github.com/pokerledger/tracker/internal/handler"
	"github.com/pokerledger/tracker/internal/repository"
	"github.com/pokerledger/tracker/internal/service"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Store   repository.SessionStore
	AuthSvc *service.AuthService
	JWTMgr  *auth.JWTManager
	Logger  *slog.Logger

	CookieName      string
	CookieSecure    bool
	CORSOrigins     string
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// NewRouter assembles the chi.Router with all routes and middleware.
// Reads are public; creating and deleting sessions need an admin token.
func NewRouter(deps RouterDeps) chi.Router {
	logger := deps.Logger

	// Services
	sessionSvc := service.NewSessionService(deps.Store, logger)

	// Auth
	authn := auth.NewAuthenticator(deps.JWTMgr, deps.CookieName)
	limiter := guard.NewRateLimiter(deps.LoginRateLimit, deps.LoginRateWindow)

	// Handlers
	sessionHandler := handler.NewSessionHandler(sessionSvc, logger)
	statsHandler := handler.NewStatsHandler(sessionSvc, logger)
	authHandler := handler.NewAuthHandler(deps.AuthSvc, authn, limiter, deps.JWTMgr.Expiry(), deps.CookieSecure, logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORSWithOrigins(deps.CORSOrigins))
	r.Use(handler.JSONContentType)

	// Health
	r.Get("/health", handler.HealthHandler(deps.Store))

	// Auth
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// Public reads
	r.Get("/sessions", sessionHandler.List)
	r.Get("/sessions/{id}", sessionHandler.Get)
	r.Get("/stats", statsHandler.Report)

	// Admin writes
	r.Group(func(r chi.Router) {
		r.Use(authn.RequireAdmin)

		r.Post("/sessions", sessionHandler.Create)
		r.Delete("/sessions/{id}", sessionHandler.Delete)
	})

	return r
}
