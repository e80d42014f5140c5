package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "access-secret"
	testRefresh = "refresh-secret"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(42, "clerk@dormdesk.local", "CLERK", testSecret, 10)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "clerk@dormdesk.local", claims.Email)
	assert.Equal(t, "CLERK", claims.Role)
	assert.Equal(t, issuer, claims.Issuer)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(42, "clerk@dormdesk.local", "CLERK", testSecret, 10)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAccessTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken(42, "clerk@dormdesk.local", "CLERK", testSecret, -1)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := GenerateRefreshToken(42, "clerk@dormdesk.local", "jti-1", testRefresh, 7)
	require.NoError(t, err)

	claims, err := ValidateRefreshToken(token, testRefresh)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "jti-1", claims.TokenID)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	// An access token must not validate as a refresh token: the secrets
	// differ by construction.
	access, err := GenerateAccessToken(42, "clerk@dormdesk.local", "CLERK", testSecret, 10)
	require.NoError(t, err)

	_, err = ValidateRefreshToken(access, testRefresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateGarbage(t *testing.T) {
	_, err := ValidateAccessToken("not-a-token", testSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = ValidateRefreshToken("", testRefresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
