// Copyright (c) 2026 Aegis. All rights reserved.

/*
Package account serves the signed-in user's own profile: a cached read path
and a write path that keeps the cache coherent.

# Caching

Profile reads go through the Redis projection under "cache:user:profile:<id>"
(cache-aside, 24h TTL). Profile writes hit Postgres first and then overwrite
the projection (write-through), so a reader immediately after an update sees
the new value instead of waiting out the TTL.
*/
package account

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aegis-id/aegis/internal/auth"
	"github.com/aegis-id/aegis/internal/platform/cache"
	"github.com/aegis-id/aegis/internal/platform/constants"
	"github.com/aegis-id/aegis/internal/platform/ctxutil"
	"github.com/aegis-id/aegis/internal/platform/sec"
)

// Profile is the client-facing projection of an account. It is exactly what
// gets cached, so adding a field here invalidates nothing: stale entries age
// out or get overwritten on the next write.
type Profile struct {
	ID        string       `json:"id"`
	Username  string       `json:"username"`
	Phone     string       `json:"phone,omitempty"`
	Role      sec.UserRole `json:"role"`
	IsActive  bool         `json:"is_active"`
	CreatedAt time.Time    `json:"created_at"`
}

// UserDirectory is the slice of the account repository this service needs.
// The auth package's Postgres repository satisfies it.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*auth.User, error)
	UpdatePhone(ctx context.Context, id, phone string) (*auth.User, error)
}

// Service implements profile reads and updates.
type Service struct {
	directory UserDirectory
	redis     *redis.Client
	logger    *slog.Logger
}

// NewService wires the account service.
func NewService(directory UserDirectory, redisClient *redis.Client, logger *slog.Logger) *Service {
	return &Service{directory: directory, redis: redisClient, logger: logger}
}

/*
GetProfile returns the user's profile, preferring the cached projection.

Description: Cache-aside. A hit never touches Postgres; a miss (or any cache
failure) falls through to the directory and backfills the projection with the
standard TTL.

Returns:
  - *Profile: The profile projection
  - error: apperr.NotFound when the account does not exist
*/
func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	return cache.GetOrFetch(ctx, s.redis, profileKey(userID), constants.ProfileCacheTTL,
		func(ctx context.Context) (*Profile, error) {
			user, err := s.directory.FindByID(ctx, userID)
			if err != nil {
				return nil, err
			}
			return projectProfile(user), nil
		})
}

/*
UpdateProfile changes the user's phone number and refreshes the cached
projection.

Description: The system of record is written first; only a successful write
updates the cache. The write-through is best-effort — a cache failure leaves
an entry that ages out within the TTL rather than failing the update.

Returns:
  - *Profile: The updated projection
  - error: apperr.NotFound, apperr.Conflict when the phone is taken
*/
func (s *Service) UpdateProfile(ctx context.Context, userID, phone string) (*Profile, error) {
	user, err := s.directory.UpdatePhone(ctx, userID, phone)
	if err != nil {
		return nil, err
	}

	profile := projectProfile(user)
	cache.Set(ctx, s.redis, profileKey(userID), profile, constants.ProfileCacheTTL)

	ctxutil.GetLoggerOr(ctx, s.logger).Info("profile_updated", slog.String("user_id", userID))
	return profile, nil
}

func projectProfile(user *auth.User) *Profile {
	return &Profile{
		ID:        user.ID,
		Username:  user.Username,
		Phone:     user.Phone,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
}

func profileKey(userID string) string {
	return constants.RedisPrefixProfile + userID
}
