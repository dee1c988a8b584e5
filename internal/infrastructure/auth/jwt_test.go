package auth

import (
	"testing"
	"time"

	"github.com/fub-assistant/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(expiration time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:          "test-secret-that-is-long-enough-123",
		TokenExpiration: expiration,
		Issuer:          "fub-assistant-test",
	})
}

func TestGenerateSessionToken(t *testing.T) {
	svc := newTestJWTService(24 * time.Hour)

	token, err := svc.GenerateSessionToken(42, "fub-acc-1")
	require.NoError(t, err)
	require.NotNil(t, token)

	assert.NotEmpty(t, token.Token)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), token.ExpiresAt, 5*time.Second)
}

func TestGenerateSessionToken_MissingIdentity(t *testing.T) {
	svc := newTestJWTService(time.Hour)

	_, err := svc.GenerateSessionToken(0, "fub-acc-1")
	assert.ErrorIs(t, err, ErrMissingAccountID)

	_, err = svc.GenerateSessionToken(42, "")
	assert.ErrorIs(t, err, ErrMissingFUBAccountID)
}

func TestValidateSessionToken(t *testing.T) {
	svc := newTestJWTService(time.Hour)

	token, err := svc.GenerateSessionToken(42, "fub-acc-1")
	require.NoError(t, err)

	claims, err := svc.ValidateSessionToken(token.Token)
	require.NoError(t, err)

	assert.Equal(t, int64(42), claims.AccountID)
	assert.Equal(t, "fub-acc-1", claims.FUBAccountID)
	assert.Equal(t, TokenTypeSession, claims.TokenType)
	assert.Equal(t, "fub-assistant-test", claims.Issuer)
	assert.Greater(t, claims.GetRemainingTTL(), time.Duration(0))
}

func TestValidateSessionToken_Expired(t *testing.T) {
	svc := newTestJWTService(-time.Minute)

	token, err := svc.GenerateSessionToken(42, "fub-acc-1")
	require.NoError(t, err)

	_, err = svc.ValidateSessionToken(token.Token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateSessionToken_WrongSecret(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	other := NewJWTService(config.JWTConfig{
		Secret:          "a-completely-different-secret-456",
		TokenExpiration: time.Hour,
		Issuer:          "fub-assistant-test",
	})

	token, err := svc.GenerateSessionToken(42, "fub-acc-1")
	require.NoError(t, err)

	_, err = other.ValidateSessionToken(token.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateSessionToken_Garbage(t *testing.T) {
	svc := newTestJWTService(time.Hour)

	_, err := svc.ValidateSessionToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
