// Copyright (c) 2026 Aegis. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegis-id/aegis/internal/platform/constants"
)

// newTestSessionStore spins up an in-process Redis and a store bound to it.
func newTestSessionStore(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisSessionStore(client), server
}

/*
TestSessionStore_Lifecycle walks a refresh session from issuance to
consumption and through the tombstone window.
*/
func TestSessionStore_Lifecycle(t *testing.T) {
	store, server := newTestSessionStore(t)
	ctx := context.Background()

	const token = "b8e9c7c4-0000-4000-8000-deadbeef0001"
	const subject = "user-123"

	require.NoError(t, store.Create(ctx, token, subject, time.Hour))

	// Live token: lookup sees the subject, not yet used.
	gotSubject, used, err := store.Lookup(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, subject, gotSubject)
	assert.False(t, used)

	// First consume wins and returns the subject.
	gotSubject, err = store.Consume(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, subject, gotSubject)

	// The tombstone is visible through lookup.
	gotSubject, used, err = store.Lookup(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, subject, gotSubject)
	assert.True(t, used)

	// Second consume inside the grace window reports reuse.
	_, err = store.Consume(ctx, token)
	assert.ErrorIs(t, err, ErrSessionUsed)

	// After the grace window the tombstone is gone entirely.
	server.FastForward(RotationGracePeriod + time.Second)
	_, err = store.Consume(ctx, token)
	assert.ErrorIs(t, err, ErrSessionMissing)
	_, _, err = store.Lookup(ctx, token)
	assert.ErrorIs(t, err, ErrSessionMissing)
}

/*
TestSessionStore_ConsumeShrinksTTL verifies that winning a rotation rewrites
the record with the grace-window TTL rather than the original session TTL.
*/
func TestSessionStore_ConsumeShrinksTTL(t *testing.T) {
	store, server := newTestSessionStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "tok", "user-9", 168*time.Hour))
	_, err := store.Consume(ctx, "tok")
	require.NoError(t, err)

	ttl := server.TTL(constants.RedisPrefixRefresh + "tok")
	assert.LessOrEqual(t, ttl, RotationGracePeriod)
	assert.Greater(t, ttl, time.Duration(0))
}

/*
TestSessionStore_ConsumeIsFirstWriterWins races many goroutines at one live
token: exactly one must get the subject back, everyone else the reuse error.
Redis executes scripts atomically, so the winner is decided server-side.
*/
func TestSessionStore_ConsumeIsFirstWriterWins(t *testing.T) {
	store, _ := newTestSessionStore(t)
	ctx := context.Background()

	const callers = 32
	require.NoError(t, store.Create(ctx, "contended", "user-7", time.Hour))

	var wg sync.WaitGroup
	results := make(chan error, callers)
	start := make(chan struct{})

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			subject, err := store.Consume(ctx, "contended")
			if err == nil && subject != "user-7" {
				err = fmt.Errorf("winner got wrong subject %q", subject)
			}
			results <- err
		}()
	}

	close(start)
	wg.Wait()
	close(results)

	var winners, losers int
	for err := range results {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrSessionUsed):
			losers++
		default:
			t.Fatalf("unexpected consume error: %v", err)
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, callers-1, losers)
}

func TestSessionStore_UnknownToken(t *testing.T) {
	store, _ := newTestSessionStore(t)
	ctx := context.Background()

	_, _, err := store.Lookup(ctx, "never-issued")
	assert.ErrorIs(t, err, ErrSessionMissing)

	_, err = store.Consume(ctx, "never-issued")
	assert.ErrorIs(t, err, ErrSessionMissing)
}

func TestSessionStore_Delete(t *testing.T) {
	store, _ := newTestSessionStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "tok", "user-1", time.Hour))
	require.NoError(t, store.Delete(ctx, "tok"))

	_, _, err := store.Lookup(ctx, "tok")
	assert.ErrorIs(t, err, ErrSessionMissing)

	// Deleting an absent session is a no-op.
	assert.NoError(t, store.Delete(ctx, "tok"))
}

/*
TestSessionStore_Blacklist verifies the revocation registry honors the
remaining-lifetime TTL and ignores already-expired tokens.
*/
func TestSessionStore_Blacklist(t *testing.T) {
	store, server := newTestSessionStore(t)
	ctx := context.Background()

	const raw = "eyJ.header.payload"

	revoked, err := store.IsBlacklisted(ctx, raw)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Blacklist(ctx, raw, 30*time.Second))

	revoked, err = store.IsBlacklisted(ctx, raw)
	require.NoError(t, err)
	assert.True(t, revoked)

	// The registry entry dies with the token it guards.
	server.FastForward(31 * time.Second)
	revoked, err = store.IsBlacklisted(ctx, raw)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestSessionStore_BlacklistExpiredTokenIsNoop(t *testing.T) {
	store, server := newTestSessionStore(t)
	ctx := context.Background()

	require.NoError(t, store.Blacklist(ctx, "stale", -5*time.Second))
	assert.False(t, server.Exists(constants.RedisPrefixBlacklist+"stale"))
}
