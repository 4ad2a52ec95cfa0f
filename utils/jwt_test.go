package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour, "spooky-styles")

	token, err := m.GenerateToken(42, "vamp@example.com", "admin")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "vamp@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("one", time.Hour, "spooky-styles").GenerateToken(1, "a@b.c", "customer")
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour, "spooky-styles").ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsWrongIssuer(t *testing.T) {
	token, err := NewTokenManager("s", time.Hour, "someone-else").GenerateToken(1, "a@b.c", "customer")
	require.NoError(t, err)

	_, err = NewTokenManager("s", time.Hour, "spooky-styles").ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	m := NewTokenManager("s", -time.Minute, "spooky-styles")
	token, err := m.GenerateToken(1, "a@b.c", "customer")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsNonNumericSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Issuer:    "spooky-styles",
		Subject:   "guest_abc",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s"))
	require.NoError(t, err)

	_, err = NewTokenManager("s", time.Hour, "spooky-styles").ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("s", time.Hour, "spooky-styles").ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
