// Copyright (c) 2026 Aegis. All rights reserved.

package auth

import (
	"context"
	"errors"
	"time"
)

// # Store Errors

var (
	// ErrSessionMissing means the refresh token has no live record: it was
	// never issued, expired naturally, or its reuse tombstone lapsed.
	ErrSessionMissing = errors.New("refresh session not found")

	// ErrSessionUsed means the refresh token was already rotated and its
	// tombstone is still inside the grace window. This is the reuse signal.
	ErrSessionUsed = errors.New("refresh session already used")
)

// # Persistence Contracts

// UserRepository is the system of record for accounts.
type UserRepository interface {
	// Create inserts a new account. Uniqueness violations on username or
	// phone surface as a Conflict application error.
	Create(ctx context.Context, user *User) error

	// FindByCredential resolves an account by username OR phone number.
	FindByCredential(ctx context.Context, credential string) (*User, error)

	// FindByID resolves an account by primary key.
	FindByID(ctx context.Context, id string) (*User, error)

	// UpdatePhone sets the phone number and returns the updated account.
	UpdatePhone(ctx context.Context, id, phone string) (*User, error)
}

// SessionStore holds the volatile token state: refresh sessions keyed by the
// opaque token, and the access-token revocation registry.
type SessionStore interface {
	// Create registers a freshly issued refresh token for the subject.
	Create(ctx context.Context, token, subject string, ttl time.Duration) error

	// Lookup returns the subject bound to a refresh token without consuming
	// it. used reports whether the token already carries a reuse tombstone.
	// Returns ErrSessionMissing when no record exists.
	Lookup(ctx context.Context, token string) (subject string, used bool, err error)

	// Consume atomically retires a live refresh token, leaving a tombstone
	// for the grace window, and returns its subject. Exactly one concurrent
	// caller wins; the rest get ErrSessionUsed (or ErrSessionMissing once
	// the tombstone lapses).
	Consume(ctx context.Context, token string) (subject string, err error)

	// Delete removes a refresh session outright (logout).
	Delete(ctx context.Context, token string) error

	// Blacklist marks a raw access token as revoked for the given duration.
	Blacklist(ctx context.Context, rawToken string, ttl time.Duration) error

	// IsBlacklisted reports whether a raw access token has been revoked.
	IsBlacklisted(ctx context.Context, rawToken string) (bool, error)
}
