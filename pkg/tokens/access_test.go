package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-jwt-secret")

func TestAccessToken_RoundTrip(t *testing.T) {
	exp := time.Now().Add(15 * time.Minute)
	tok, err := SignAccessToken("5f1d7c1e-3b6a-4b8e-9a51-1d0c2b9e7f10", "user", exp, secret)
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "5f1d7c1e-3b6a-4b8e-9a51-1d0c2b9e7f10", claims.Subject)
	assert.Equal(t, "user", claims.Role)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestAccessToken_Expired(t *testing.T) {
	tok, err := SignAccessToken("user-1", "user", time.Now().Add(-time.Minute), secret)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(tok, secret)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestAccessToken_WrongSecret(t *testing.T) {
	tok, err := SignAccessToken("user-1", "user", time.Now().Add(time.Minute), secret)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(tok, []byte("other"))
	require.Error(t, err)
}

func TestAccessToken_MissingSubject(t *testing.T) {
	tok, err := SignAccessToken("", "user", time.Now().Add(time.Minute), secret)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(tok, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
