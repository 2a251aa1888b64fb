// Copyright (c) 2026 Aegis. All rights reserved.

package sec

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	service, err := NewTokenService("unit-test-secret-key", "aegis.id")
	require.NoError(t, err)
	return service
}

func TestNewTokenService_EmptySecret(t *testing.T) {
	_, err := NewTokenService("", "aegis.id")
	assert.Error(t, err)
}

/*
TestGenerateAndVerify covers the round trip: a minted token verifies and
carries the identity it was minted with.
*/
func TestGenerateAndVerify(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.GenerateAccessToken("user-42", "alice", "admin", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID())
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "aegis.id", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestVerifyToken_Expired(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.GenerateAccessToken("user-42", "alice", "user", -time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	service := newTestTokenService(t)
	other, err := NewTokenService("a-completely-different-secret", "aegis.id")
	require.NoError(t, err)

	token, err := other.GenerateAccessToken("user-42", "alice", "user", time.Hour)
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyToken_Garbage(t *testing.T) {
	service := newTestTokenService(t)

	for _, input := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := service.VerifyToken(input)
		assert.Error(t, err, "input %q should not verify", input)
	}
}

/*
TestVerifyToken_AlgorithmConfusion rejects a token signed with "none" even
though its payload is otherwise well-formed. Accepting it would let anyone
forge arbitrary identities.
*/
func TestVerifyToken_AlgorithmConfusion(t *testing.T) {
	service := newTestTokenService(t)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Username: "alice",
		Role:     "admin",
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	assert.Error(t, err)
}
