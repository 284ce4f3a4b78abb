package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "a_test_secret_that_is_long_enough_1234"

func TestTokenManager_RoundTrip(t *testing.T) {
	req := require.New(t)
	tokens, err := NewTokenManager(testSecret, time.Hour)
	req.NoError(err)

	token, err := tokens.GenerateToken("alice")
	req.NoError(err)

	claims, err := tokens.ValidateToken(token)
	req.NoError(err)
	req.Equal("alice", claims.UserID)
	req.Equal(issuer, claims.Issuer)
}

func TestTokenManager_Rejects(t *testing.T) {
	req := require.New(t)
	tokens, err := NewTokenManager(testSecret, time.Hour)
	req.NoError(err)

	t.Run("expired token", func(t *testing.T) {
		expired, err := NewTokenManager(testSecret, -time.Minute)
		req.NoError(err)
		token, err := expired.GenerateToken("alice")
		req.NoError(err)

		_, err = tokens.ValidateToken(token)
		req.ErrorIs(err, jwt.ErrTokenExpired)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other, err := NewTokenManager("another_secret_that_is_long_enough_42", time.Hour)
		req.NoError(err)
		token, err := other.GenerateToken("alice")
		req.NoError(err)

		_, err = tokens.ValidateToken(token)
		req.ErrorIs(err, jwt.ErrSignatureInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.ValidateToken("not-a-token")
		req.Error(err)
	})
}

func TestNewTokenManager_Short_Secret(t *testing.T) {
	_, err := NewTokenManager("short", time.Hour)
	require.Error(t, err)
}
