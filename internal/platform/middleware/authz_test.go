// Copyright (c) 2026 Aegis. All rights reserved.

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegis-id/aegis/internal/platform/ctxutil"
	"github.com/aegis-id/aegis/internal/platform/sec"
)

// # Test Doubles

type stubVerifier struct {
	claims *sec.AuthClaims
	err    error
}

func (s *stubVerifier) VerifyToken(string) (*sec.AuthClaims, error) {
	return s.claims, s.err
}

type stubRevocations struct {
	revoked bool
	err     error
}

func (s *stubRevocations) IsBlacklisted(context.Context, string) (bool, error) {
	return s.revoked, s.err
}

func adminClaims() *sec.AuthClaims {
	claims := &sec.AuthClaims{Username: "root", Role: string(sec.RoleAdmin)}
	claims.Subject = "3d3ad937-54a8-4a9c-8f4e-0a1b2c3d4e5f"
	return claims
}

// echoUser records the claims visible to the downstream handler.
func echoUser(captured **sec.AuthClaims) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*captured = ctxutil.GetAuthUser(request.Context())
		writer.WriteHeader(http.StatusOK)
	})
}

// # Authenticate

/*
TestAuthenticate_AnonymousPassThrough verifies that a request without an
Authorization header reaches the handler with no identity attached.
*/
func TestAuthenticate_AnonymousPassThrough(t *testing.T) {
	var seen *sec.AuthClaims
	handler := Authenticate(&stubVerifier{}, &stubRevocations{})(echoUser(&seen))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Nil(t, seen)
}

/*
TestAuthenticate_ValidToken verifies that valid claims are injected into the
request context.
*/
func TestAuthenticate_ValidToken(t *testing.T) {
	var seen *sec.AuthClaims
	handler := Authenticate(&stubVerifier{claims: adminClaims()}, &stubRevocations{})(echoUser(&seen))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer some.jwt.token")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "root", seen.Username)
}

/*
TestAuthenticate_InvalidToken verifies that a present-but-bad token is
rejected with 401 instead of being downgraded to anonymous.
*/
func TestAuthenticate_InvalidToken(t *testing.T) {
	var seen *sec.AuthClaims
	handler := Authenticate(&stubVerifier{err: errors.New("bad signature")}, &stubRevocations{})(echoUser(&seen))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer tampered")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Nil(t, seen)
}

/*
TestAuthenticate_RevokedToken verifies that a logged-out token is rejected
before signature verification even runs.
*/
func TestAuthenticate_RevokedToken(t *testing.T) {
	verifier := &stubVerifier{claims: adminClaims()}
	handler := Authenticate(verifier, &stubRevocations{revoked: true})(echoUser(new(*sec.AuthClaims)))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer revoked.but.signed")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestAuthenticate_RevocationStoreDown verifies the fail-closed behavior: when
the revocation registry is unreachable, the request gets a 500 rather than
letting a possibly revoked token through.
*/
func TestAuthenticate_RevocationStoreDown(t *testing.T) {
	handler := Authenticate(
		&stubVerifier{claims: adminClaims()},
		&stubRevocations{err: errors.New("connection refused")},
	)(echoUser(new(*sec.AuthClaims)))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer anything")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

// # RequireAuth / RequireRole

func TestRequireAuth(t *testing.T) {
	next := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})

	t.Run("rejects anonymous", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		RequireAuth(next).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("passes authenticated", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request = request.WithContext(ctxutil.WithAuthUser(request.Context(), adminClaims()))

		recorder := httptest.NewRecorder()
		RequireAuth(next).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})
	guard := RequireRole(sec.RoleAdmin)(next)

	t.Run("rejects anonymous", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		guard.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("rejects plain user", func(t *testing.T) {
		claims := &sec.AuthClaims{Username: "bob", Role: string(sec.RoleUser)}
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request = request.WithContext(ctxutil.WithAuthUser(request.Context(), claims))

		recorder := httptest.NewRecorder()
		guard.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("allows admin", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request = request.WithContext(ctxutil.WithAuthUser(request.Context(), adminClaims()))

		recorder := httptest.NewRecorder()
		guard.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}
