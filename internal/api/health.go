// Copyright (c) 2026 Aegis. All rights reserved.

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/aegis-id/aegis/internal/platform/apperr"
	"github.com/aegis-id/aegis/internal/platform/constants"
	"github.com/aegis-id/aegis/internal/platform/respond"
)

// probeTimeout bounds each dependency check so a hung backend cannot stall
// the orchestrator's probe.
const probeTimeout = 2 * time.Second

// HealthHandlers serves the liveness and readiness probes.
type HealthHandlers struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

// NewHealthHandlers creates the probe handler set.
func NewHealthHandlers(db *pgxpool.Pool, redisClient *redis.Client) *HealthHandlers {
	return &HealthHandlers{db: db, redis: redisClient}
}

// HandleLive reports that the process is up. It touches no dependencies.
func (h *HealthHandlers) HandleLive(writer http.ResponseWriter, _ *http.Request) {
	respond.JSON(writer, http.StatusOK, map[string]string{
		constants.FieldStatus:  "ok",
		constants.FieldApp:     constants.AppName,
		constants.FieldVersion: constants.AppVersion,
	})
}

// HandleReady reports whether the service can actually take traffic: both
// the system of record and the session store must answer.
func (h *HealthHandlers) HandleReady(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), probeTimeout)
	defer cancel()

	checks := map[string]string{
		"database": "ok",
		"cache":    "ok",
	}
	healthy := true

	if err := h.db.Ping(ctx); err != nil {
		checks["database"] = "unreachable"
		healthy = false
	}

	if err := h.redis.Ping(ctx).Err(); err != nil {
		checks["cache"] = "unreachable"
		healthy = false
	}

	if !healthy {
		respond.JSON(writer, http.StatusServiceUnavailable, map[string]interface{}{
			constants.FieldStatus: "degraded",
			constants.FieldChecks: checks,
			constants.FieldError:  apperr.ServiceUnavailable("Service not ready").Message,
		})
		return
	}

	respond.JSON(writer, http.StatusOK, map[string]interface{}{
		constants.FieldStatus: "ok",
		constants.FieldChecks: checks,
	})
}
