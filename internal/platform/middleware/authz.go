// Copyright (c) 2026 Aegis. All rights reserved.

package middleware

import (
	"context"
	"net/http"

	"github.com/aegis-id/aegis/internal/platform/apperr"
	"github.com/aegis-id/aegis/internal/platform/ctxutil"
	requestutil "github.com/aegis-id/aegis/internal/platform/request"
	"github.com/aegis-id/aegis/internal/platform/respond"
	"github.com/aegis-id/aegis/internal/platform/sec"
)

// # Authentication & Authorization

// TokenVerifier validates a signed access token and returns its claims.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*sec.AuthClaims, error)
}

// RevocationChecker reports whether a raw access token has been revoked
// before its natural expiry (e.g. by an explicit logout).
type RevocationChecker interface {
	IsBlacklisted(ctx context.Context, rawToken string) (bool, error)
}

/*
Authenticate decodes the Bearer token (if present) and injects the user claims
into the request context.

Description: This middleware is OPTIONAL authentication. A request without an
Authorization header passes through anonymously; route groups that demand a
user call RequireAuth afterwards. A token that IS present must be both
unrevoked and cryptographically valid, otherwise the request is rejected
outright — a tampered or logged-out token is never silently downgraded to
anonymous.

Order matters: the revocation registry is consulted before signature
verification so a logged-out token is rejected even if the signing key
rotated underneath it. A registry outage fails closed with a 500 rather
than letting revoked tokens back in.
*/
func Authenticate(verifier TokenVerifier, revocations RevocationChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. Extract the Bearer token; absence means anonymous
			rawToken := requestutil.BearerToken(request)
			if rawToken == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// 2. Reject tokens revoked by logout before touching the signature
			revoked, err := revocations.IsBlacklisted(request.Context(), rawToken)
			if err != nil {
				respond.Error(writer, request, apperr.Internal(err))
				return
			}
			if revoked {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// 3. Verify the signature and standard claims
			claims, err := verifier.VerifyToken(rawToken)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// 4. Inject the authenticated identity into the context
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests that did not authenticate.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole rejects authenticated users below the given role level.
func RequireRole(minimum sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			claims := ctxutil.GetAuthUser(request.Context())
			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			if !sec.UserRole(claims.Role).AtLeast(minimum) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// GetUser returns the authenticated claims from the request, or nil.
func GetUser(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}
