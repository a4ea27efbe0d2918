package auth_test

import (
	"testing"

	"github.com/commodore-dev/commodore/internal/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerifyJWT(t *testing.T) {
	require.NoError(t, auth.SetJWTSecret("test-secret"))

	token, err := auth.GenerateJWT(42, "skipper@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := auth.VerifyJWT(token)
	require.NoError(t, err)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.EqualValues(t, 42, claims["user_id"])
	assert.Equal(t, "skipper@example.com", claims["email"])
}

func TestVerifyJWTRejectsGarbage(t *testing.T) {
	require.NoError(t, auth.SetJWTSecret("test-secret"))

	_, err := auth.VerifyJWT("not-a-token")
	assert.Error(t, err)
}

func TestSetJWTSecretRejectsEmpty(t *testing.T) {
	assert.Error(t, auth.SetJWTSecret(""))
}
