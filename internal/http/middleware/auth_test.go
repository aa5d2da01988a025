package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(42, "test-secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := parseToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, 42, userID)

	_, err = parseToken(token, "other-secret")
	assert.Error(t, err)

	_, err = parseToken("not-a-token", "test-secret")
	assert.Error(t, err)
}
