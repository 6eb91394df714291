package user

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	password := "secret"
	hash, err := HashPassword(password)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)
}

func TestCheckPasswordHash(t *testing.T) {
	password := "secret"
	hash, _ := HashPassword(password)

	assert.True(t, CheckPasswordHash(password, hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestTokens_RoundTrip(t *testing.T) {
	tokens := NewTokens("testsecret", time.Hour)

	tokenStr, err := tokens.Generate(User{ID: 7, Email: "buyer@example.com", Role: RoleAdmin})
	require.NoError(t, err)

	claims, err := tokens.Parse(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "buyer@example.com", claims.Email)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestTokens_Errors(t *testing.T) {
	t.Run("NoSecret", func(t *testing.T) {
		_, err := NewTokens("", time.Hour).Generate(User{ID: 1})
		assert.ErrorIs(t, err, ErrMissingSecret)

		_, err = NewTokens("", time.Hour).Parse("x")
		assert.ErrorIs(t, err, ErrMissingSecret)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		_, err := NewTokens("s", time.Hour).Parse("invalid-token-string")
		assert.Error(t, err)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		token, _ := NewTokens("secret1", time.Hour).Generate(User{ID: 1})

		_, err := NewTokens("secret2", time.Hour).Parse(token)
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("Expired", func(t *testing.T) {
		tokens := NewTokens("s", -time.Minute)
		token, err := tokens.Generate(User{ID: 1})
		require.NoError(t, err)

		_, err = tokens.Parse(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})
}

func TestNewConfirmationCode(t *testing.T) {
	for range 20 {
		code, err := NewConfirmationCode()
		require.NoError(t, err)
		assert.Regexp(t, `^\d{6}$`, code)
	}
}
