// Copyright (c) 2026 SafeMine. All rights reserved.

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safemine/api/internal/platform/sec"
)

func newTokenService(t *testing.T) *sec.TokenService {
	t.Helper()
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return sec.NewTokenServiceFromKeys(privateKey, "safemine-test")
}

/*
TestPasswordHashing verifies bcrypt hashing and verification round-trips.
*/
func TestPasswordHashing(t *testing.T) {
	hash, err := sec.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, sec.CheckPasswordHash("correct horse battery staple", hash))
	assert.False(t, sec.CheckPasswordHash("wrong password", hash))
	assert.False(t, sec.CheckPasswordHash("", hash))
}

/*
TestTokenService_AccessTokenRoundTrip verifies generation and verification of
an access token.
*/
func TestTokenService_AccessTokenRoundTrip(t *testing.T) {
	service := newTokenService(t)

	token, err := service.GenerateAccessToken("user-123", 15*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, sec.TokenUseAccess, claims.Use)
	assert.Equal(t, "safemine-test", claims.Issuer)
}

/*
TestTokenService_RefreshTokenRoundTrip verifies generation and verification of
a refresh token.
*/
func TestTokenService_RefreshTokenRoundTrip(t *testing.T) {
	service := newTokenService(t)

	token, err := service.GenerateRefreshToken("user-123", 7*24*time.Hour)
	require.NoError(t, err)

	claims, err := service.VerifyRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, sec.TokenUseRefresh, claims.Use)
}

/*
TestTokenService_UseMismatch verifies a refresh token cannot pass as an access
token and vice versa.
*/
func TestTokenService_UseMismatch(t *testing.T) {
	service := newTokenService(t)

	refreshToken, err := service.GenerateRefreshToken("user-123", time.Hour)
	require.NoError(t, err)
	_, err = service.VerifyAccessToken(refreshToken)
	assert.Error(t, err)

	accessToken, err := service.GenerateAccessToken("user-123", time.Hour)
	require.NoError(t, err)
	_, err = service.VerifyRefreshToken(accessToken)
	assert.Error(t, err)
}

/*
TestTokenService_Expired verifies an expired token is rejected.
*/
func TestTokenService_Expired(t *testing.T) {
	service := newTokenService(t)

	token, err := service.GenerateAccessToken("user-123", -1*time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyAccessToken(token)
	assert.Error(t, err)
}

/*
TestTokenService_ForeignKey verifies a token signed by another keypair is
rejected.
*/
func TestTokenService_ForeignKey(t *testing.T) {
	issuing := newTokenService(t)
	verifying := newTokenService(t)

	token, err := issuing.GenerateAccessToken("user-123", time.Hour)
	require.NoError(t, err)

	_, err = verifying.VerifyAccessToken(token)
	assert.Error(t, err)
}

/*
TestTokenService_Garbage verifies malformed strings are rejected.
*/
func TestTokenService_Garbage(t *testing.T) {
	service := newTokenService(t)

	for _, tokenString := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := service.VerifyAccessToken(tokenString)
		assert.Error(t, err)
	}
}
