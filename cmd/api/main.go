// Copyright (c) 2026 Aegis. All rights reserved.

// Command api runs the Aegis authentication API server.
//
// Boot sequence: config, logging, Postgres, migrations, Redis, token
// service, domain wiring, HTTP server, then a signal-driven graceful
// shutdown.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aegis-id/aegis/internal/account"
	"github.com/aegis-id/aegis/internal/api"
	"github.com/aegis-id/aegis/internal/auth"
	"github.com/aegis-id/aegis/internal/platform/config"
	"github.com/aegis-id/aegis/internal/platform/constants"
	"github.com/aegis-id/aegis/internal/platform/migration"
	"github.com/aegis-id/aegis/internal/platform/postgres"
	"github.com/aegis-id/aegis/internal/platform/ratelimit"
	platformredis "github.com/aegis-id/aegis/internal/platform/redis"
	"github.com/aegis-id/aegis/internal/platform/sec"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_load_failed", slog.Any("error", err))
		os.Exit(1)
	}

	// 2. Structured JSON logging
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})).
		With(slog.String("app", constants.AppName))
	slog.SetDefault(logger)

	logger.Info("starting",
		slog.String("version", constants.AppVersion),
		slog.String("environment", cfg.Environment),
	)

	// 3. PostgreSQL — the user directory
	pool := must(postgres.NewPool(ctx, cfg.DatabaseURL, logger))
	defer pool.Close()

	// 4. Schema migrations
	if err := migration.RunUp(cfg.MigrationPath, cfg.DatabaseURL, logger); err != nil {
		logger.Error("migration_failed", slog.Any("error", err))
		os.Exit(1)
	}

	// 5. Redis — sessions, blacklist, limiter counters, profile cache
	redisClient := must(platformredis.NewClient(ctx, cfg.RedisURL, logger))
	defer func() { _ = redisClient.Close() }()

	// 6. Token signing
	tokens := must(sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer))

	// 7. Domain wiring
	users := auth.NewPostgresUserRepository(pool)
	sessions := auth.NewRedisSessionStore(redisClient)
	limiter := ratelimit.New(redisClient)

	authService := auth.NewService(users, sessions, limiter, tokens, logger, auth.Policy{
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
	})
	accountService := account.NewService(users, redisClient, logger)

	// 8. HTTP server
	server := api.NewServer(ctx, api.Dependencies{
		Config:      cfg,
		Logger:      logger,
		DB:          pool,
		Redis:       redisClient,
		Tokens:      tokens,
		Revocations: sessions,
		Auth:        auth.NewHandlers(authService),
		Account:     account.NewHandlers(accountService),
	})

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// 9. Graceful shutdown
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server_failed", slog.Any("error", err))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown_signal_received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown_failed", slog.Any("error", err))
			_ = server.Close()
		}
	}

	logger.Info("stopped")
}

// must aborts the boot sequence on a fatal wiring error.
func must[T any](value T, err error) T {
	if err != nil {
		slog.Error("startup_failed", slog.Any("error", err))
		os.Exit(1)
	}
	return value
}
