package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	tokens := NewTokens("secret", "campus-messaging", time.Hour)

	signed, err := tokens.Generate("u1")
	require.NoError(t, err)

	claims, err := tokens.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "campus-messaging", claims.Issuer)
}

func TestValidateRejectsExpired(t *testing.T) {
	tokens := NewTokens("secret", "campus-messaging", -time.Minute)

	signed, err := tokens.Generate("u1")
	require.NoError(t, err)

	_, err = tokens.Validate(signed)
	assert.Error(t, err)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	signed, err := NewTokens("other", "x", time.Hour).Generate("u1")
	require.NoError(t, err)

	_, err = NewTokens("secret", "x", time.Hour).Validate(signed)
	assert.Error(t, err)
}

func TestValidateRejectsMissingUserID(t *testing.T) {
	tokens := NewTokens("secret", "x", time.Hour)
	signed, err := tokens.Generate("")
	require.NoError(t, err)

	_, err = tokens.Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
