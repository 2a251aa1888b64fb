// Copyright (c) 2026 Aegis. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aegis-id/aegis/internal/platform/constants"
)

// # Atomic Consume Script

// consumeScript retires a live refresh token in a single round trip. It
// distinguishes three states via its reply:
//
//   - nil: no record (never issued, expired, or tombstone lapsed)
//   - a value with the used marker: already rotated inside the grace window
//   - the bare subject: this caller won the rotation
//
// The winning caller's SET overwrites the value with the tombstone and
// shrinks the TTL to the grace window, so exactly one concurrent rotation
// can succeed.
var consumeScript = redis.NewScript(`
local value = redis.call("GET", KEYS[1])
if not value then
	return false
end
if string.sub(value, 1, string.len(ARGV[2])) == ARGV[2] then
	return value
end
redis.call("SET", KEYS[1], ARGV[2] .. value, "EX", tonumber(ARGV[1]))
return value
`)

// blacklistValue is the payload stored for revoked access tokens. The key's
// existence is the signal; the value is informational.
const blacklistValue = "logout"

// # Session Store

// RedisSessionStore implements SessionStore on a Redis client.
//
// Key shapes follow the platform taxonomy: refresh sessions live under
// "refresh_token:", the revocation registry under "blacklist:token:".
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates the Redis-backed session store.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

// Create registers a freshly issued refresh token for the subject.
func (s *RedisSessionStore) Create(ctx context.Context, token, subject string, ttl time.Duration) error {
	if err := s.client.Set(ctx, refreshKey(token), subject, ttl).Err(); err != nil {
		return fmt.Errorf("session create: %w", err)
	}
	return nil
}

/*
Lookup returns the subject bound to a refresh token without consuming it.

Returns:
  - subject: the user ID the token was issued to
  - used: whether the token already carries the reuse tombstone
  - err: ErrSessionMissing when no record exists, wrapped store errors otherwise
*/
func (s *RedisSessionStore) Lookup(ctx context.Context, token string) (string, bool, error) {
	value, err := s.client.Get(ctx, refreshKey(token)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", false, ErrSessionMissing
	case err != nil:
		return "", false, fmt.Errorf("session lookup: %w", err)
	}

	if subject, ok := strings.CutPrefix(value, constants.RedisUsedMarker); ok {
		return subject, true, nil
	}
	return value, false, nil
}

/*
Consume atomically retires a live refresh token and returns its subject.

The token's record is overwritten with a tombstone that lives for the grace
window; a concurrent or repeated Consume inside that window returns
ErrSessionUsed, and after it ErrSessionMissing.
*/
func (s *RedisSessionStore) Consume(ctx context.Context, token string) (string, error) {
	graceSeconds := int(RotationGracePeriod / time.Second)

	value, err := consumeScript.Run(ctx, s.client,
		[]string{refreshKey(token)},
		graceSeconds,
		constants.RedisUsedMarker,
	).Text()
	switch {
	case errors.Is(err, redis.Nil):
		return "", ErrSessionMissing
	case err != nil:
		return "", fmt.Errorf("session consume: %w", err)
	}

	if strings.HasPrefix(value, constants.RedisUsedMarker) {
		return "", ErrSessionUsed
	}
	return value, nil
}

// Delete removes a refresh session outright.
func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, refreshKey(token)).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

// # Revocation Registry

// Blacklist marks a raw access token as revoked for the given duration.
// Non-positive durations are a no-op: the token is already past its expiry.
func (s *RedisSessionStore) Blacklist(ctx context.Context, rawToken string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, blacklistKey(rawToken), blacklistValue, ttl).Err(); err != nil {
		return fmt.Errorf("blacklist set: %w", err)
	}
	return nil
}

// IsBlacklisted reports whether a raw access token has been revoked.
func (s *RedisSessionStore) IsBlacklisted(ctx context.Context, rawToken string) (bool, error) {
	count, err := s.client.Exists(ctx, blacklistKey(rawToken)).Result()
	if err != nil {
		return false, fmt.Errorf("blacklist check: %w", err)
	}
	return count > 0, nil
}

// # Key Builders

func refreshKey(token string) string {
	return constants.RedisPrefixRefresh + token
}

func blacklistKey(rawToken string) string {
	return constants.RedisPrefixBlacklist + rawToken
}
