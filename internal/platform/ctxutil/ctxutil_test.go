// Copyright (c) 2026 Aegis. All rights reserved.

package ctxutil

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aegis-id/aegis/internal/platform/sec"
)

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))

	ctx = WithRequestID(ctx, "req-123")
	assert.Equal(t, "req-123", GetRequestID(ctx))
}

func TestLogger(t *testing.T) {
	ctx := context.Background()

	// Absent: falls back to the global default, never nil.
	assert.NotNil(t, GetLogger(ctx))

	custom := slog.New(slog.DiscardHandler)
	ctx = WithLogger(ctx, custom)
	assert.Same(t, custom, GetLogger(ctx))
}

func TestGetLoggerOr(t *testing.T) {
	fallback := slog.New(slog.DiscardHandler)

	assert.Same(t, fallback, GetLoggerOr(context.Background(), fallback))

	custom := slog.New(slog.DiscardHandler)
	ctx := WithLogger(context.Background(), custom)
	assert.Same(t, custom, GetLoggerOr(ctx, fallback))
}

func TestAuthUser(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetAuthUser(ctx))

	claims := &sec.AuthClaims{Username: "alice", Role: "user"}
	ctx = WithAuthUser(ctx, claims)
	assert.Same(t, claims, GetAuthUser(ctx))
}
