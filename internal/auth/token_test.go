package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/future-media/backend/internal/apperrors"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, err := m.Issue("u1", "u1@example.com")
	require.NoError(t, err)

	caller, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, UserCaller("u1"), caller)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("one", time.Hour).Issue("u1", "u1@example.com")
	require.NoError(t, err)

	caller, err := NewTokenManager("two", time.Hour).Parse(token)
	assert.Error(t, err)
	assert.False(t, caller.IsAuthenticated)
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := m.Issue("u1", "u1@example.com")
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{UserID: "u1"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).Parse(token)
	assert.Error(t, err)
}

func TestCallerRequire(t *testing.T) {
	assert.True(t, apperrors.Is(Anonymous.Require(), apperrors.CodeUnauthorized))
	assert.NoError(t, UserCaller("u1").Require())
	assert.True(t, UserCaller("u1").Is("u1"))
	assert.False(t, Anonymous.Is(""))
}
