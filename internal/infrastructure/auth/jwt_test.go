package auth

import (
	"testing"
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "pimpos-test",
		MaxRefreshCount:        2,
	})
}

func newTestOperator() Operator {
	return Operator{
		UserID:   uuid.New(),
		Username: "cajera01",
		Role:     "cashier",
	}
}

func TestNewJWTService_UsesSecretForRefreshIfNotProvided(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "only-secret"})
	assert.Equal(t, []byte("only-secret"), svc.keys[TokenTypeRefresh].secret)
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	svc := newTestJWTService()
	input := newTestOperator()

	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, input.UserID.String(), claims.UserID)
	assert.Equal(t, "cajera01", claims.Username)
	assert.Equal(t, "cashier", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.True(t, claims.HasRole("admin", "cashier"))
	assert.False(t, claims.HasRole("admin"))

	userID, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, input.UserID, userID)
	assert.InDelta(t, (15 * time.Minute).Seconds(), claims.GetRemainingTTL().Seconds(), 5)
}

func TestValidateAccessToken_Errors(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GenerateTokenPair(newTestOperator())
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		expired := newTestJWTService()
		expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
		old, err := expired.GenerateTokenPair(newTestOperator())
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(old.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("refresh token used as access token", func(t *testing.T) {
		// signed with the refresh secret, so the signature check fails first
		_, err := svc.ValidateAccessToken(pair.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong type with shared secret", func(t *testing.T) {
		shared := NewJWTService(config.JWTConfig{
			Secret:                 "one-secret-for-both-token-kinds!",
			AccessTokenExpiration:  time.Minute,
			RefreshTokenExpiration: time.Hour,
			Issuer:                 "pimpos-test",
			MaxRefreshCount:        1,
		})
		p, err := shared.GenerateTokenPair(newTestOperator())
		require.NoError(t, err)

		_, err = shared.ValidateAccessToken(p.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})

	t.Run("other issuer", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:                "test-secret-key-at-least-32-chars",
			AccessTokenExpiration: time.Minute,
			Issuer:                "someone-else",
		})
		p, err := other.GenerateTokenPair(newTestOperator())
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(p.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing role", func(t *testing.T) {
		input := newTestOperator()
		input.Role = ""
		p, err := svc.GenerateTokenPair(input)
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(p.AccessToken)
		assert.ErrorIs(t, err, ErrMissingRole)
	})
}

func TestRefreshTokenPair(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GenerateTokenPair(newTestOperator())
	require.NoError(t, err)

	t.Run("rotates and applies the current role", func(t *testing.T) {
		next, old, err := svc.RefreshTokenPair(pair.RefreshToken, "admin")
		require.NoError(t, err)
		assert.Equal(t, "cashier", old.Role)

		claims, err := svc.ValidateAccessToken(next.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "admin", claims.Role)

		refreshClaims, err := svc.ValidateRefreshToken(next.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, 1, refreshClaims.RefreshCount)
	})

	t.Run("stops at the refresh limit", func(t *testing.T) {
		token := pair.RefreshToken
		for i := 0; i < 2; i++ {
			next, _, err := svc.RefreshTokenPair(token, "")
			require.NoError(t, err)
			token = next.RefreshToken
		}
		_, _, err := svc.RefreshTokenPair(token, "")
		assert.ErrorIs(t, err, ErrMaxRefreshExceeded)
	})

	t.Run("rejects access tokens", func(t *testing.T) {
		_, _, err := svc.RefreshTokenPair(pair.AccessToken, "")
		assert.Error(t, err)
	})
}
