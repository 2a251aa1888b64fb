// Copyright (c) 2026 Aegis. All rights reserved.

/*
Package api assembles the HTTP server: the middleware chain, the versioned
route tree, and the health probes.

# Route Map

	GET  /health                     liveness
	GET  /ready                      readiness (Postgres + Redis)
	POST /api/v1/auth/login          credential login
	POST /api/v1/auth/refresh        refresh token rotation
	POST /api/v1/auth/logout         revocation
	POST /api/v1/admin/register      account creation (admin)
	GET  /api/v1/users/me            own profile (cached)
	POST /api/v1/users/me            own profile update
*/
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/aegis-id/aegis/internal/account"
	"github.com/aegis-id/aegis/internal/auth"
	"github.com/aegis-id/aegis/internal/platform/config"
	"github.com/aegis-id/aegis/internal/platform/constants"
	"github.com/aegis-id/aegis/internal/platform/middleware"
	"github.com/aegis-id/aegis/internal/platform/sec"
)

// Dependencies carries everything the server composition needs. All fields
// are required.
type Dependencies struct {
	Config      *config.Config
	Logger      *slog.Logger
	DB          *pgxpool.Pool
	Redis       *redis.Client
	Tokens      middleware.TokenVerifier
	Revocations middleware.RevocationChecker
	Auth        *auth.Handlers
	Account     *account.Handlers
}

// NewServer builds the fully configured http.Server. The context bounds the
// lifetime of background middleware state (rate limiter cleanup).
func NewServer(ctx context.Context, deps Dependencies) *http.Server {
	router := NewRouter(ctx, deps)

	return &http.Server{
		Addr:              ":" + deps.Config.ServerPort,
		Handler:           router,
		ReadTimeout:       constants.DefaultReadTimeout,
		WriteTimeout:      constants.DefaultWriteTimeout,
		IdleTimeout:       constants.DefaultIdleTimeout,
		ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
	}
}

// NewRouter wires the middleware chain and mounts every route group.
// Split out from NewServer so handler tests can drive the full chain
// without binding a socket.
func NewRouter(ctx context.Context, deps Dependencies) chi.Router {
	router := chi.NewRouter()

	// Order matters: tracing and logging first so every later rejection is
	// correlated; authentication after throttling so token parsing cannot
	// be used to bypass the IP budget.
	router.Use(chimw.CleanPath)
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(deps.Logger))
	router.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	router.Use(middleware.RateLimit(ctx))
	router.Use(middleware.PanicRecovery(deps.Logger))
	router.Use(middleware.Authenticate(deps.Tokens, deps.Revocations))
	router.Use(middleware.CORS(deps.Config))

	health := NewHealthHandlers(deps.DB, deps.Redis)
	router.Get("/health", health.HandleLive)
	router.Get("/ready", health.HandleReady)

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Mount("/auth", deps.Auth.Routes())

		v1.Group(func(admin chi.Router) {
			admin.Use(middleware.RequireRole(sec.RoleAdmin))
			admin.Mount("/admin", deps.Auth.AdminRoutes())
		})

		v1.Group(func(users chi.Router) {
			users.Use(middleware.RequireAuth)
			users.Mount("/users", deps.Account.Routes())
		})
	})

	return router
}
