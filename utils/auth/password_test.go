package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Str0ng!pass")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "Str0ng!pass", hash)

	assert.NoError(t, VerifyPassword(hash, "Str0ng!pass"))
	assert.ErrorIs(t, VerifyPassword(hash, "wrong-password"), ErrPasswordMismatch)
}

func TestHashPasswordTooShort(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestHashesAreSalted(t *testing.T) {
	h1, err := HashPassword("Str0ng!pass")
	require.NoError(t, err)
	h2, err := HashPassword("Str0ng!pass")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}
