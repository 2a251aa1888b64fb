// Copyright (c) 2026 Aegis. All rights reserved.

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, server
}

func TestGetOrFetch_MissPopulates(t *testing.T) {
	client, server := newTestClient(t)
	ctx := context.Background()

	fetchCalls := 0
	fetch := func(context.Context) (widget, error) {
		fetchCalls++
		return widget{Name: "gear", Count: 3}, nil
	}

	value, err := GetOrFetch(ctx, client, "w:1", time.Hour, fetch)
	require.NoError(t, err)
	assert.Equal(t, widget{Name: "gear", Count: 3}, value)
	assert.Equal(t, 1, fetchCalls)

	// The miss backfilled the entry with the requested TTL.
	assert.True(t, server.Exists("w:1"))
	assert.InDelta(t, time.Hour.Seconds(), server.TTL("w:1").Seconds(), 1)

	// The next read is a hit.
	value, err = GetOrFetch(ctx, client, "w:1", time.Hour, fetch)
	require.NoError(t, err)
	assert.Equal(t, "gear", value.Name)
	assert.Equal(t, 1, fetchCalls)
}

func TestGetOrFetch_FetcherError(t *testing.T) {
	client, server := newTestClient(t)

	wantErr := errors.New("directory down")
	_, err := GetOrFetch(context.Background(), client, "w:1", time.Hour,
		func(context.Context) (widget, error) { return widget{}, wantErr })

	assert.ErrorIs(t, err, wantErr)
	assert.False(t, server.Exists("w:1"), "errors must not be cached")
}

func TestGetOrFetch_CorruptEntryDegradesToMiss(t *testing.T) {
	client, server := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, server.Set("w:1", "][ definitely not json"))

	fetchCalls := 0
	value, err := GetOrFetch(ctx, client, "w:1", time.Hour, func(context.Context) (widget, error) {
		fetchCalls++
		return widget{Name: "fresh"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", value.Name)
	assert.Equal(t, 1, fetchCalls)

	// The corrupt entry was overwritten with a valid one.
	_, err = GetOrFetch(ctx, client, "w:1", time.Hour, func(context.Context) (widget, error) {
		fetchCalls++
		return widget{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fetchCalls)
}

/*
TestGetOrFetch_StoreDownSoftFails verifies the soft-fail contract: with the
store unreachable, reads still succeed straight from the fetcher.
*/
func TestGetOrFetch_StoreDownSoftFails(t *testing.T) {
	client, server := newTestClient(t)
	server.Close()

	value, err := GetOrFetch(context.Background(), client, "w:1", time.Hour,
		func(context.Context) (widget, error) { return widget{Name: "direct"}, nil })

	require.NoError(t, err)
	assert.Equal(t, "direct", value.Name)
}

func TestSet_And_Delete(t *testing.T) {
	client, server := newTestClient(t)
	ctx := context.Background()

	Set(ctx, client, "w:1", widget{Name: "gear"}, time.Hour)
	assert.True(t, server.Exists("w:1"))

	Delete(ctx, client, "w:1")
	assert.False(t, server.Exists("w:1"))

	// Both are best-effort: a dead store panics nothing and returns nothing.
	server.Close()
	Set(ctx, client, "w:2", widget{}, time.Hour)
	Delete(ctx, client, "w:2")
}
