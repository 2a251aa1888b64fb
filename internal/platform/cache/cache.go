// Copyright (c) 2026 Aegis. All rights reserved.

/*
Package cache implements the cache-aside read path and write-through update
path for denormalized projections stored in Redis.

# Soft-Fail Policy

The cache is never the source of truth, and a cache outage must never become a
client-visible error. Every failure on the read path (connectivity, missing
key, corrupt payload) degrades to a fetch from the system of record; every
failure on the populate path is logged and swallowed.
*/
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aegis-id/aegis/internal/platform/ctxutil"
)

/*
GetOrFetch reads a value through the cache, falling back to the supplied
fetcher on a miss.

Description: Tries the cache first; on a hit the deserialized value is
returned without touching the system of record. On a miss — or on ANY store or
decode error — the fetcher runs against the system of record and its result is
written back best-effort with the given TTL.

Parameters:
  - ctx: context.Context
  - client: *redis.Client
  - key: string
  - ttl: time.Duration (staleness bound for the backfilled entry)
  - fetch: func(context.Context) (T, error) — effectful accessor to the system of record

Returns:
  - T: The cached or freshly fetched value
  - error: Only errors from the fetcher itself; cache failures never surface
*/
func GetOrFetch[T any](ctx context.Context, client *redis.Client, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	logger := ctxutil.GetLogger(ctx)

	payload, err := client.Get(ctx, key).Result()
	switch {
	case err == nil && payload != "":
		var value T
		if decodeErr := json.Unmarshal([]byte(payload), &value); decodeErr == nil {
			logger.Debug("cache_hit", slog.String("key", key))
			return value, nil
		}
		// Corrupt entries degrade to a miss and get overwritten below.
		logger.Warn("cache_decode_failed", slog.String("key", key))
	case errors.Is(err, redis.Nil):
		// Ordinary miss.
	case err != nil:
		logger.Warn("cache_get_failed", slog.String("key", key), slog.Any("error", err))
	}

	logger.Debug("cache_miss", slog.String("key", key))
	value, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	Set(ctx, client, key, value, ttl)
	return value, nil
}

/*
Set unconditionally serializes and stores a value with the given TTL
(write-through).

Description: Best-effort — serialization or store failures are
logged and swallowed so an update path never fails because of the cache.
*/
func Set[T any](ctx context.Context, client *redis.Client, key string, value T, ttl time.Duration) {
	logger := ctxutil.GetLogger(ctx)

	payload, err := json.Marshal(value)
	if err != nil {
		logger.Error("cache_encode_failed", slog.String("key", key), slog.Any("error", err))
		return
	}

	if err := client.Set(ctx, key, payload, ttl).Err(); err != nil {
		logger.Warn("cache_set_failed", slog.String("key", key), slog.Any("error", err))
		return
	}

	logger.Debug("cache_set", slog.String("key", key))
}

// Delete removes a key from the cache, best-effort.
func Delete(ctx context.Context, client *redis.Client, key string) {
	if err := client.Del(ctx, key).Err(); err != nil {
		ctxutil.GetLogger(ctx).Warn("cache_delete_failed", slog.String("key", key), slog.Any("error", err))
	}
}
