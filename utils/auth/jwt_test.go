package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager(expiry time.Duration) *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret-do-not-use-in-production",
		Expiry:        expiry,
		RefreshExpiry: 2 * expiry,
		Issuer:        "test-issuer",
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := testManager(time.Hour)

	token, jti, err := m.GenerateAccessToken(42, "jane@example.com", "student", 3)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, jti)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, "student", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, "test-issuer", claims.Issuer)
}

func TestRefreshTokenType(t *testing.T) {
	m := testManager(time.Hour)

	token, _, err := m.GenerateRefreshToken(7, "joe@example.com", "admin", 0)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	m := testManager(time.Hour)
	other := NewJWTManager(JWTConfig{Secret: "different-secret", Expiry: time.Hour})

	token, _, err := m.GenerateAccessToken(1, "a@b.co", "student", 0)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	m := testManager(-time.Minute)

	token, _, err := m.GenerateAccessToken(1, "a@b.co", "student", 0)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenGarbage(t *testing.T) {
	m := testManager(time.Hour)

	_, err := m.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokensCarryDistinctJTIs(t *testing.T) {
	m := testManager(time.Hour)

	_, jti1, err := m.GenerateAccessToken(1, "a@b.co", "student", 0)
	require.NoError(t, err)
	_, jti2, err := m.GenerateAccessToken(1, "a@b.co", "student", 0)
	require.NoError(t, err)

	assert.NotEqual(t, jti1, jti2)
}

func TestGetTokenExpiry(t *testing.T) {
	m := testManager(time.Hour)

	token, _, err := m.GenerateAccessToken(1, "a@b.co", "student", 0)
	require.NoError(t, err)

	expiry, err := m.GetTokenExpiry(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, 5*time.Second)
}
