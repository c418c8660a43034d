package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := GenerateJWT("secret", 42, "abc123", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT("secret", token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "abc123", claims.Fingerprint)
}

func TestSessionTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateJWT("secret", 42, "fp", time.Hour)
	require.NoError(t, err)

	_, err = ValidateJWT("other", token)
	assert.Error(t, err)
}

func TestSessionTokenExpired(t *testing.T) {
	token, err := GenerateJWT("secret", 42, "fp", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateJWT("secret", token)
	assert.Error(t, err)
}

func TestTokenPurposesDoNotMix(t *testing.T) {
	reset, err := GenerateResetToken("secret", 7, "fp", time.Hour)
	require.NoError(t, err)

	_, err = ValidateJWT("secret", reset)
	assert.ErrorIs(t, err, ErrTokenPurpose)

	claims, err := ParseResetToken("secret", reset)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "fp", claims.Fingerprint)

	session, err := GenerateJWT("secret", 7, "fp", time.Hour)
	require.NoError(t, err)
	_, err = ParseResetToken("secret", session)
	assert.ErrorIs(t, err, ErrTokenPurpose)
}

func TestValidateJWTGarbage(t *testing.T) {
	_, err := ValidateJWT("secret", "not-a-token")
	assert.Error(t, err)
}
