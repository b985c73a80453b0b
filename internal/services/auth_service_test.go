package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumebuilder/internal/config"
)

func newTestAuth(tokenTTL time.Duration) AuthService {
	return NewAuthService(config.AuthConfig{
		JWTSecret:  "unit-test-secret",
		TokenTTL:   tokenTTL,
		CookieTTL:  tokenTTL,
		BcryptCost: 4, // min cost, keeps the suite fast
	})
}

func TestHashVerifyPassword(t *testing.T) {
	auth := newTestAuth(time.Hour)

	hash, err := auth.HashPassword("Abcdef12")
	require.NoError(t, err)

	assert.NotEqual(t, "Abcdef12", hash)
	assert.True(t, auth.VerifyPassword("Abcdef12", hash))
	assert.False(t, auth.VerifyPassword("wrong", hash))
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	auth := newTestAuth(time.Hour)

	h1, err := auth.HashPassword("Abcdef12")
	require.NoError(t, err)
	h2, err := auth.HashPassword("Abcdef12")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestIssueVerifyToken(t *testing.T) {
	auth := newTestAuth(time.Hour)
	userID := uuid.New()

	token, err := auth.IssueToken(userID)
	require.NoError(t, err)

	claims, err := auth.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, 5*time.Second)
}

func TestVerifyToken_Expired(t *testing.T) {
	auth := newTestAuth(-time.Minute)

	token, err := auth.IssueToken(uuid.New())
	require.NoError(t, err)

	_, err = auth.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	token, err := newTestAuth(time.Hour).IssueToken(uuid.New())
	require.NoError(t, err)

	other := NewAuthService(config.AuthConfig{
		JWTSecret: "different-secret", TokenTTL: time.Hour, CookieTTL: time.Hour, BcryptCost: 4,
	})
	_, err = other.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyToken_Garbage(t *testing.T) {
	_, err := newTestAuth(time.Hour).VerifyToken("not.a.jwt")
	assert.Error(t, err)
}
