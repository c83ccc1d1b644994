package util

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	secret := "test-secret"

	token, err := GenerateJWT(42, secret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := ParseJWT(token, secret)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
}

func TestParseJWTRejectsWrongSecret(t *testing.T) {
	token, err := GenerateJWT(42, "right-secret")
	require.NoError(t, err)

	_, err = ParseJWT(token, "wrong-secret")
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	newReq := func(auth string) *http.Request {
		r, _ := http.NewRequest(http.MethodGet, "/", nil)
		if auth != "" {
			r.Header.Set("Authorization", auth)
		}
		return r
	}

	assert.Equal(t, "abc123", ExtractToken(newReq("Bearer abc123")))
	assert.Equal(t, "abc123", ExtractToken(newReq("bearer abc123")))
	assert.Equal(t, "", ExtractToken(newReq("")))
	assert.Equal(t, "", ExtractToken(newReq("Basic abc123")))
	assert.Equal(t, "", ExtractToken(newReq("Bearer")))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, CheckPassword("hunter2", hash))
	assert.False(t, CheckPassword("hunter3", hash))
}
