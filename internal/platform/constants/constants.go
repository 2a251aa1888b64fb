// Copyright (c) 2026 Aegis. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Per-action budgets and IP tracking TTLs.
  - Security: JWT issuer and the Redis key taxonomy for session state.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "aegis-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # IP Rate Limiting (in-process, pre-auth)

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Per-Action Rate Budgets (shared, Redis-backed fixed windows)

const (
	// LoginRateLimit caps login attempts per account per window.
	LoginRateLimit = 5

	// RegisterRateLimit caps registration attempts per username per window.
	RegisterRateLimit = 5

	// RefreshRateLimit caps token rotations per subject per window.
	RefreshRateLimit = 10

	// ActionRateWindow is the fixed counting window for all per-action limits.
	ActionRateWindow = 60 * time.Second
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "aegis.id"
)

// # Redis Key Taxonomy

// All mutable session, limiter, and cache state lives in Redis under these
// prefixes. Key shape is part of the storage contract: changing a prefix
// invalidates every outstanding token of that class.
const (
	// RedisPrefixRefresh keys map an opaque refresh token to its subject.
	RedisPrefixRefresh = "refresh_token:"

	// RedisPrefixBlacklist keys mark a revoked access token until it expires.
	RedisPrefixBlacklist = "blacklist:token:"

	// RedisUsedMarker prefixes the stored subject once a refresh token has
	// been consumed. A key carrying this marker means "rotated, do not rotate again".
	RedisUsedMarker = "USED:"

	// RedisPrefixProfile keys hold the cached user profile projection.
	RedisPrefixProfile = "cache:user:profile:"

	// RedisPrefixRateLimit keys hold fixed-window action counters.
	RedisPrefixRateLimit = "rate_limit:"
)

// # Cache Lifetimes

const (
	// ProfileCacheTTL bounds staleness of the cached profile projection.
	ProfileCacheTTL = 24 * time.Hour
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)
