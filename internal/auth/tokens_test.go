package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParseToken(t *testing.T) {
	raw, err := SignToken("secret-a", "user-1", "alice", "user", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := ParseToken("secret-a", raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "user", claims.Role)
}

func TestParseTokenWrongSecret(t *testing.T) {
	raw, err := SignToken("secret-a", "user-1", "alice", "user", time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("secret-b", raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenExpired(t *testing.T) {
	raw, err := SignToken("secret-a", "user-1", "alice", "user", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("secret-a", raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken("secret-a", "definitely.not.a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashToken(t *testing.T) {
	h1 := HashToken("some-token")
	h2 := HashToken("some-token")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64) // sha256 hex
	assert.NotEqual(t, h1, HashToken("other-token"))
}
