// Copyright (c) 2026 Aegis. All rights reserved.

package ratelimit

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegis-id/aegis/internal/platform/apperr"
)

func newTestLimiter(t *testing.T) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client), server
}

/*
TestCheck_Budget verifies the exact budget edge: attempt N passes, attempt
N+1 is rejected with a 429.
*/
func TestCheck_Budget(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Check(ctx, "login", "alice", 5, time.Minute), "attempt %d", i+1)
	}

	err := limiter.Check(ctx, "login", "alice", 5, time.Minute)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusTooManyRequests, appError.HTTPStatus)
}

func TestCheck_SubjectsAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Check(ctx, "login", "alice", 5, time.Minute))
	}
	require.Error(t, limiter.Check(ctx, "login", "alice", 5, time.Minute))

	// A different subject of the same action still has a full budget.
	assert.NoError(t, limiter.Check(ctx, "login", "bob", 5, time.Minute))

	// The same subject under a different action is also unaffected.
	assert.NoError(t, limiter.Check(ctx, "refresh", "alice", 10, time.Minute))
}

/*
TestCheck_WindowReset verifies the fixed window: once the counter key
expires, the full budget is available again.
*/
func TestCheck_WindowReset(t *testing.T) {
	limiter, server := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Check(ctx, "login", "alice", 5, time.Minute))
	}
	require.Error(t, limiter.Check(ctx, "login", "alice", 5, time.Minute))

	server.FastForward(61 * time.Second)

	assert.NoError(t, limiter.Check(ctx, "login", "alice", 5, time.Minute))
}

/*
TestCheck_TTLNotRefreshed pins the fixed-window invariant: later attempts
must NOT push the expiry out, or a steady attacker would never see a reset.
*/
func TestCheck_TTLNotRefreshed(t *testing.T) {
	limiter, server := newTestLimiter(t)
	ctx := context.Background()

	require.NoError(t, limiter.Check(ctx, "login", "alice", 5, time.Minute))
	server.FastForward(30 * time.Second)
	require.Error(t, limiter.Check(ctx, "login", "alice", 1, time.Minute))

	// Half the window is already gone despite the second attempt.
	ttl := server.TTL("rate_limit:login:alice")
	assert.LessOrEqual(t, ttl, 30*time.Second)
}

/*
TestCheck_StoreFailure verifies fail-closed semantics: an unreachable store
yields a 500, never a silent admit.
*/
func TestCheck_StoreFailure(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	limiter := New(client)

	server.Close()

	err := limiter.Check(context.Background(), "login", "alice", 5, time.Minute)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusInternalServerError, appError.HTTPStatus)
}
