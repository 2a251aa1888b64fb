// Copyright (c) 2026 Aegis. All rights reserved.

/*
Package auth implements account identity and the token lifecycle: credential
verification, access token issuance, single-use refresh token rotation,
revocation, and per-action throttling.

# Architecture

The package follows the standard layering:

  - entity (this file): the User aggregate and its JSON projection rules.
  - store: persistence contracts (Postgres for accounts, Redis for sessions).
  - service: business rules — hashing, rotation, reuse detection, budgets.
  - http: thin chi handlers translating HTTP to service calls.
*/
package auth

import (
	"time"

	"github.com/aegis-id/aegis/internal/platform/sec"
)

// # Entity

// User is the account aggregate persisted in Postgres.
//
// The password hash is never serialized; every outbound projection of a user
// goes through this struct's JSON rules.
type User struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	PasswordHash string       `json:"-"`
	Phone        string       `json:"phone,omitempty"`
	Role         sec.UserRole `json:"role"`
	IsActive     bool         `json:"is_active"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// TokenPair is the credential set returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// # Field Identifiers

// Used by handlers for validation error reporting.
const (
	FieldUsername     = "username"
	FieldPassword     = "password"
	FieldPhone        = "phone"
	FieldRole         = "role"
	FieldRefreshToken = "refresh_token"
)
