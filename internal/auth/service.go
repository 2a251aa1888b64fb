// Copyright (c) 2026 Aegis. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aegis-id/aegis/internal/platform/apperr"
	"github.com/aegis-id/aegis/internal/platform/constants"
	"github.com/aegis-id/aegis/internal/platform/ctxutil"
	"github.com/aegis-id/aegis/internal/platform/ratelimit"
	"github.com/aegis-id/aegis/internal/platform/sec"
	"github.com/aegis-id/aegis/pkg/uuid"
)

// # Client-Facing Messages

// Credential failures share one message so the API never discloses whether
// the account exists, which credential matched, or why a token was refused.
const (
	msgInvalidCredentials = "Invalid credentials"
	msgInvalidRefresh     = "Invalid or expired refresh token"
	msgRefreshReused      = "Refresh token has already been used"
	msgAccountDisabled    = "Account is disabled"
)

// # Service Dependencies

// TokenProvider mints and verifies signed access tokens.
type TokenProvider interface {
	GenerateAccessToken(userID, username, role string, timeToLive time.Duration) (string, error)
	VerifyToken(tokenString string) (*sec.AuthClaims, error)
}

// Policy carries the deployment-tunable token lifetimes.
type Policy struct {
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// Service implements the account and token lifecycle use cases.
type Service struct {
	users    UserRepository
	sessions SessionStore
	limiter  *ratelimit.Limiter
	tokens   TokenProvider
	logger   *slog.Logger
	policy   Policy
}

// NewService wires the auth service with its collaborators.
func NewService(
	users UserRepository,
	sessions SessionStore,
	limiter *ratelimit.Limiter,
	tokens TokenProvider,
	logger *slog.Logger,
	policy Policy,
) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		limiter:  limiter,
		tokens:   tokens,
		logger:   logger,
		policy:   policy,
	}
}

// # Inputs

// RegisterInput carries a validated registration request.
type RegisterInput struct {
	Username string
	Password string
	Phone    string
	Role     sec.UserRole
}

// # Use Cases

/*
Register creates a new account.

Description: Registration is admin-gated at the routing layer; the service
still throttles per target username to bound hash work under abuse. The
password is hashed with argon2id before the row is written.

Returns:
  - *User: The persisted account (hash never serialized)
  - error: RateLimited, Conflict on username/phone collision, or Internal
*/
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	if err := s.limiter.Check(ctx, ActionRegister, input.Username,
		constants.RegisterRateLimit, constants.ActionRateWindow); err != nil {
		return nil, err
	}

	passwordHash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	role := input.Role
	if role == "" {
		role = sec.RoleUser
	}

	user := &User{
		ID:           uuid.New(),
		Username:     input.Username,
		PasswordHash: passwordHash,
		Phone:        input.Phone,
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	ctxutil.GetLoggerOr(ctx, s.logger).Info("user_registered",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return user, nil
}

/*
Login verifies credentials and issues a fresh token pair.

Description: The credential may be a username or a phone number. Attempts
count against the submitted credential, so an attacker hammering one account
is cut off without affecting others. Lookup misses and wrong passwords are
indistinguishable to the caller.

Returns:
  - *TokenPair: Signed access token plus opaque single-use refresh token
  - error: RateLimited, Unauthorized, Forbidden for disabled accounts, or Internal
*/
func (s *Service) Login(ctx context.Context, credential, password string) (*TokenPair, error) {
	if err := s.limiter.Check(ctx, ActionLogin, credential,
		constants.LoginRateLimit, constants.ActionRateWindow); err != nil {
		return nil, err
	}

	user, err := s.users.FindByCredential(ctx, credential)
	if err != nil {
		// Account-not-found collapses into the generic credential failure.
		if appError := apperr.As(err); appError != nil && appError.HTTPStatus == http.StatusNotFound {
			return nil, apperr.Unauthorized(msgInvalidCredentials)
		}
		return nil, err
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}

	if !user.IsActive {
		return nil, apperr.Forbidden(msgAccountDisabled)
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	ctxutil.GetLoggerOr(ctx, s.logger).Info("user_logged_in", slog.String("user_id", user.ID))
	return pair, nil
}

/*
Refresh rotates a refresh token: the old token is retired and a brand-new
pair is issued.

Description: Rotation is single-use with first-writer-wins semantics. The
token is looked up first (without consuming it) so the per-subject budget and
the account checks run before the credential burns: a throttled, deleted, or
disabled outcome leaves the token live and retryable. Only then does the
atomic consume run, guaranteeing that of any concurrent rotations exactly one
succeeds. A token consumed within the grace window is a reuse signal: it is
logged as a probable replay and the caller gets a Conflict.

Returns:
  - *TokenPair: Fresh access and refresh tokens
  - error: Unauthorized for unknown/expired tokens, Conflict on reuse,
    RateLimited, Forbidden for disabled accounts, or Internal
*/
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	logger := ctxutil.GetLoggerOr(ctx, s.logger)

	subject, used, err := s.sessions.Lookup(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrSessionMissing) {
			return nil, apperr.Unauthorized(msgInvalidRefresh)
		}
		return nil, apperr.Internal(err)
	}
	if used {
		logger.Warn("refresh_token_reuse_detected", slog.String("user_id", subject))
		return nil, apperr.Conflict(msgRefreshReused)
	}

	if err := s.limiter.Check(ctx, ActionRefresh, subject,
		constants.RefreshRateLimit, constants.ActionRateWindow); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, subject)
	if err != nil {
		// Account deleted underneath a live session. The token is left
		// unconsumed; it simply stops resolving.
		if appError := apperr.As(err); appError != nil && appError.HTTPStatus == http.StatusNotFound {
			return nil, apperr.Unauthorized(msgInvalidRefresh)
		}
		return nil, err
	}
	if !user.IsActive {
		// Rejected without consuming: the token rotates again if the
		// account is re-enabled within its lifetime.
		return nil, apperr.Forbidden(msgAccountDisabled)
	}

	if _, err := s.sessions.Consume(ctx, refreshToken); err != nil {
		switch {
		case errors.Is(err, ErrSessionUsed):
			// Lost the race to a concurrent rotation of the same token.
			logger.Warn("refresh_token_reuse_detected",
				slog.String("user_id", subject),
				slog.String("token_state", "consumed_concurrently"),
			)
			return nil, apperr.Conflict(msgRefreshReused)
		case errors.Is(err, ErrSessionMissing):
			return nil, apperr.Unauthorized(msgInvalidRefresh)
		default:
			return nil, apperr.Internal(err)
		}
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.Info("refresh_token_rotated", slog.String("user_id", user.ID))
	return pair, nil
}

/*
Logout revokes an access token and retires its refresh token.

Description: Idempotent. The access token is blacklisted for its
REMAINING lifetime only, so the registry never outlives the tokens it guards;
a token that no longer parses is simply skipped. The refresh session is
deleted outright, ending the rotation chain.

Returns:
  - error: Internal only when the session store itself fails
*/
func (s *Service) Logout(ctx context.Context, accessToken, refreshToken string) error {
	logger := ctxutil.GetLoggerOr(ctx, s.logger)

	if accessToken != "" {
		if claims, err := s.tokens.VerifyToken(accessToken); err == nil {
			remaining := time.Until(claims.ExpiresAt.Time)
			if err := s.sessions.Blacklist(ctx, accessToken, remaining); err != nil {
				return apperr.Internal(err)
			}
		} else {
			// Expired or malformed tokens need no registry entry.
			logger.Debug("logout_token_unparseable")
		}
	}

	if refreshToken != "" {
		if err := s.sessions.Delete(ctx, refreshToken); err != nil {
			return apperr.Internal(err)
		}
	}

	logger.Info("user_logged_out")
	return nil
}

// issuePair mints the signed access token and registers a fresh opaque
// refresh token for the user.
func (s *Service) issuePair(ctx context.Context, user *User) (*TokenPair, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Username, string(user.Role), s.policy.AccessTokenTTL)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("issue access token: %w", err))
	}

	refreshToken := uuid.NewToken()
	if err := s.sessions.Create(ctx, refreshToken, user.ID, s.policy.RefreshTokenTTL); err != nil {
		return nil, apperr.Internal(err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
