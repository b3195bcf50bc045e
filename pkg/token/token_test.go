package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AquaLink/config"
	"AquaLink/pkg/errors"
)

func initTestGenerator(t *testing.T) {
	t.Helper()
	config.Cfg.JWTSecret = "test-secret-do-not-use"
	require.NoError(t, Init())
}

func TestGenerateTokenPair(t *testing.T) {
	initTestGenerator(t)

	access, refresh, expiresIn, err := GenerateTokenPair("12345")
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.Greater(t, expiresIn, 0)
	assert.NotEqual(t, access, refresh)
}

func TestValidateRefreshTokenRoundTrip(t *testing.T) {
	initTestGenerator(t)

	_, refresh, _, err := GenerateTokenPair("12345")
	require.NoError(t, err)

	userID, err := ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "12345", userID)
}

func TestValidateRefreshTokenRejectsAccessToken(t *testing.T) {
	initTestGenerator(t)

	access, _, _, err := GenerateTokenPair("12345")
	require.NoError(t, err)

	// access token 没有 refresh 类型标记
	_, err = ValidateRefreshToken(access)
	assert.ErrorIs(t, err, errors.ErrInvalidTokenType)
}

func TestValidateRefreshTokenRejectsGarbage(t *testing.T) {
	initTestGenerator(t)

	_, err := ValidateRefreshToken("not-a-token")
	assert.Error(t, err)
}
