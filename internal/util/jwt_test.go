package util

import (
	"testing"
	"time"

	"suggestion_board_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{
		ID:          "u1",
		DisplayName: "Alice",
		Login:       "alice@example.com",
		Role:        model.RoleAdmin,
	}

	token, err := GenerateJWT(user, "test-secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, *user, claims.User())
}

func TestParseJWT_RejectsWrongSecret(t *testing.T) {
	token, err := GenerateJWT(&model.User{ID: "u1", Login: "alice@example.com"}, "test-secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestParseJWT_RejectsExpiredToken(t *testing.T) {
	token, err := GenerateJWT(&model.User{ID: "u1", Login: "alice@example.com"}, "test-secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, "test-secret")
	assert.Error(t, err)
}
