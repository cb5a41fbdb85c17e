package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptPasswordService(t *testing.T) {
	service := NewBcryptPasswordService(bcrypt.MinCost)

	hash, err := service.HashPassword("test-password-123")
	require.NoError(t, err)
	assert.NotEqual(t, "test-password-123", hash)

	t.Run("Match", func(t *testing.T) {
		ok, err := service.VerifyPassword("test-password-123", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Mismatch", func(t *testing.T) {
		ok, err := service.VerifyPassword("wrong-password-456", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("EmptyInput", func(t *testing.T) {
		_, err := service.HashPassword("")
		assert.ErrorIs(t, err, ErrEmptyPassword)
		_, err = service.VerifyPassword("", hash)
		assert.ErrorIs(t, err, ErrEmptyPassword)
		_, err = service.VerifyPassword("password", "")
		assert.ErrorIs(t, err, ErrEmptyPassword)
	})

	t.Run("MalformedHash", func(t *testing.T) {
		_, err := service.VerifyPassword("password", "not-a-bcrypt-hash")
		assert.Error(t, err)
	})
}

func TestNewBcryptPasswordService_ClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptPasswordService(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptPasswordService(99).cost)
}
