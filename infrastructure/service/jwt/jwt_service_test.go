package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixora/complaintdesk/application/port/outbound"
	"github.com/fixora/complaintdesk/infrastructure/config"
)

func newTestService(t *testing.T) *JWTService {
	t.Helper()
	service, err := NewJWTService(&config.Config{
		JWTSecret:      "test-secret",
		JWTAlgorithm:   "HS256",
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)
	return service
}

func TestJWTService(t *testing.T) {
	service := newTestService(t)

	t.Run("RoundTrip", func(t *testing.T) {
		token, err := service.GenerateAccessToken(outbound.TokenClaims{UserID: "user123", Email: "a@b.io"})
		require.NoError(t, err)

		claims, err := service.ValidateAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user123", claims.UserID)
		assert.Equal(t, "a@b.io", claims.Email)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := service.ValidateAccessToken("invalid-token")
		assert.ErrorIs(t, err, outbound.ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		token, err := service.GenerateAccessToken(outbound.TokenClaims{UserID: "user123"})
		require.NoError(t, err)

		service.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { service.now = time.Now }()

		_, err = service.ValidateAccessToken(token)
		assert.ErrorIs(t, err, outbound.ErrInvalidToken)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other, err := NewJWTService(&config.Config{JWTSecret: "other", JWTAlgorithm: "HS256", AccessTokenTTL: time.Hour})
		require.NoError(t, err)
		token, err := other.GenerateAccessToken(outbound.TokenClaims{UserID: "user123"})
		require.NoError(t, err)

		_, err = service.ValidateAccessToken(token)
		assert.ErrorIs(t, err, outbound.ErrInvalidToken)
	})

	t.Run("NotAnAccessToken", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":  "user123",
			"type": "refresh",
			"exp":  time.Now().Add(time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = service.ValidateAccessToken(signed)
		assert.ErrorIs(t, err, outbound.ErrInvalidToken)
	})
}

func TestNewJWTService_RejectsUnsupportedAlgorithm(t *testing.T) {
	_, err := NewJWTService(&config.Config{JWTSecret: "s", JWTAlgorithm: "RS256"})
	assert.Error(t, err)
}
