// Copyright (c) 2026 Aegis. All rights reserved.

/*
Package ratelimit implements a shared fixed-window rate limiter on top of Redis.

Every counting window is a single Redis key holding an integer counter with a
TTL. The increment and the conditional expiry run inside ONE server-side Lua
script, so there is no window in which a counter exists without an expiry —
two separate INCR/EXPIRE round trips would leave exactly that race.

# Window semantics

Fixed window, not sliding: the counter resets when the key expires, so a burst
straddling a window boundary can momentarily reach 2x the steady-state rate.
That trade-off is accepted for the single-key, single-round-trip design.
*/
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aegis-id/aegis/internal/platform/apperr"
	"github.com/aegis-id/aegis/internal/platform/constants"
	"github.com/aegis-id/aegis/internal/platform/ctxutil"
)

// incrWithExpire atomically increments the window counter and stamps the TTL
// on the first hit only. The TTL must NOT be refreshed on later increments;
// refreshing would turn the fixed window into a sliding one that never resets
// under sustained traffic.
var incrWithExpire = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
    redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// Limiter counts actions per (action, subject) pair against the shared store.
//
// The zero value is not usable; construct with [New]. A single Limiter is safe
// for concurrent use by any number of request handlers.
type Limiter struct {
	client *redis.Client
}

// New creates a [Limiter] backed by the given Redis client.
func New(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

/*
Check records one attempt of the given action by the given subject and
enforces the window budget.

Description: Atomically increments the (action, subject) counter, setting the
window TTL if and only if this is the first attempt of the window. The key is
left to expire naturally; there is no reset or backoff call.

Parameters:
  - ctx: context.Context
  - action: string (e.g. "login", "refresh_token")
  - subject: string (the identity being protected, not the credential)
  - limit: int (maximum attempts per window)
  - window: time.Duration (fixed window length)

Returns:
  - error: apperr.RateLimited once the budget is exceeded; apperr.Internal on
    store failures (fail closed — an unreachable store never admits traffic)
*/
func (limiter *Limiter) Check(ctx context.Context, action, subject string, limit int, window time.Duration) error {
	key := fmt.Sprintf("%s%s:%s", constants.RedisPrefixRateLimit, action, subject)
	windowSeconds := int(window.Seconds())

	count, err := incrWithExpire.Run(ctx, limiter.client, []string{key}, windowSeconds).Int64()
	if err != nil {
		return apperr.Internal(fmt.Errorf("ratelimit_incr_failed: %w", err))
	}

	if count > int64(limit) {
		ctxutil.GetLogger(ctx).Warn("rate_limit_exceeded",
			slog.String("action", action),
			slog.String("subject", subject),
			slog.Int64("count", count),
			slog.Int("limit", limit),
		)
		return apperr.RateLimited(windowSeconds)
	}

	return nil
}
