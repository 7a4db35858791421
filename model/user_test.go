package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@example.com", NormalizeEmail("  Jane@Example.COM "))
	assert.Equal(t, "a@b.co", NormalizeEmail("a@b.co"))
}

func TestUserIsLocked(t *testing.T) {
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	locked := User{AccountLocked: true, LockUntil: &future}
	assert.True(t, locked.IsLocked())

	expired := User{AccountLocked: true, LockUntil: &past}
	assert.False(t, expired.IsLocked())
	assert.True(t, expired.LockExpired())

	never := User{}
	assert.False(t, never.IsLocked())
	assert.False(t, never.LockExpired())
}

func TestFullName(t *testing.T) {
	u := User{FirstName: "Jane", LastName: "Doe"}
	assert.Equal(t, "Jane Doe", u.FullName())
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole(RoleStudent))
	assert.True(t, IsValidRole(RoleInstructor))
	assert.True(t, IsValidRole(RoleAdmin))
	assert.False(t, IsValidRole("superuser"))
	assert.False(t, IsValidRole(""))
}
