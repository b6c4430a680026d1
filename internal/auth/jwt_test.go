package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "datamover/pkg/domain-errors"
)

var jwtService = NewJWTService("test-signing-key", "test-issuer")

func TestGenerateAccessToken(t *testing.T) {
	token, err := jwtService.GenerateAccessToken("user-1", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := jwtService.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.True(t, dErrors.IsCode(err, dErrors.CodeUnauthorized))
}

func TestValidateTokenExpired(t *testing.T) {
	token, err := jwtService.GenerateAccessToken("user-1", -time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.IsCode(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "expired")
}

func TestValidateTokenWrongKey(t *testing.T) {
	other := NewJWTService("different-key", "test-issuer")
	token, err := other.GenerateAccessToken("user-1", time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.IsCode(err, dErrors.CodeUnauthorized))
}
