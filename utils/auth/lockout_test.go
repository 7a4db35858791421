package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wahegurunursing/classes-api/model"
)

func newLockoutTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}))
	return db
}

func seedLockoutUser(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()

	user := &model.User{
		FirstName:    "Jane",
		LastName:     "Doe",
		Email:        "jane@example.com",
		PasswordHash: "x",
		Phone:        "14155552671",
		Role:         model.RoleStudent,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func reloadUser(t *testing.T, db *gorm.DB, id uint) *model.User {
	t.Helper()
	var user model.User
	require.NoError(t, db.First(&user, id).Error)
	return &user
}

func TestLockoutAfterFiveFailures(t *testing.T) {
	db := newLockoutTestDB(t)
	m := NewLockoutManager(db)
	user := seedLockoutUser(t, db)

	for i := 1; i < model.MaxFailedLoginAttempts; i++ {
		locked, _, err := m.RegisterFailure(user)
		require.NoError(t, err)
		assert.False(t, locked, "attempt %d must not lock", i)
	}

	locked, until, err := m.RegisterFailure(user)
	require.NoError(t, err)
	assert.True(t, locked)
	assert.WithinDuration(t, time.Now().Add(model.AccountLockDuration), until, 5*time.Second)

	reloaded := reloadUser(t, db, user.ID)
	assert.True(t, reloaded.AccountLocked)
	assert.Equal(t, model.MaxFailedLoginAttempts, reloaded.FailedLoginAttempts)
	assert.True(t, reloaded.IsLocked(), "correct credentials must still be rejected inside the window")
}

func TestExpiredLockRestartsAtOne(t *testing.T) {
	db := newLockoutTestDB(t)
	m := NewLockoutManager(db)
	user := seedLockoutUser(t, db)

	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(user).Updates(map[string]interface{}{
		"failed_login_attempts": model.MaxFailedLoginAttempts,
		"account_locked":        true,
		"lock_until":            past,
		"lock_reason":           "too many failed login attempts",
	}).Error)

	user = reloadUser(t, db, user.ID)
	assert.False(t, user.IsLocked())
	assert.True(t, user.LockExpired())

	locked, _, err := m.RegisterFailure(user)
	require.NoError(t, err)
	assert.False(t, locked)

	reloaded := reloadUser(t, db, user.ID)
	assert.Equal(t, 1, reloaded.FailedLoginAttempts)
	assert.False(t, reloaded.AccountLocked)
	assert.Nil(t, reloaded.LockUntil)
}

func TestResetClearsCounters(t *testing.T) {
	db := newLockoutTestDB(t)
	m := NewLockoutManager(db)
	user := seedLockoutUser(t, db)

	for i := 0; i < 3; i++ {
		_, _, err := m.RegisterFailure(user)
		require.NoError(t, err)
	}

	loginAt := time.Now()
	require.NoError(t, m.Reset(user.ID, loginAt))

	reloaded := reloadUser(t, db, user.ID)
	assert.Zero(t, reloaded.FailedLoginAttempts)
	assert.False(t, reloaded.AccountLocked)
	require.NotNil(t, reloaded.LastLogin)
	assert.WithinDuration(t, loginAt, *reloaded.LastLogin, 2*time.Second)
}

func TestClearExpiredLocks(t *testing.T) {
	db := newLockoutTestDB(t)
	m := NewLockoutManager(db)

	expired := seedLockoutUser(t, db)
	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(expired).Updates(map[string]interface{}{
		"failed_login_attempts": 5,
		"account_locked":        true,
		"lock_until":            past,
	}).Error)

	active := &model.User{
		FirstName: "Joe", LastName: "Doe", Email: "joe@example.com",
		PasswordHash: "x", Phone: "14155552672", Role: model.RoleStudent, IsActive: true,
	}
	require.NoError(t, db.Create(active).Error)
	future := time.Now().Add(time.Hour)
	require.NoError(t, db.Model(active).Updates(map[string]interface{}{
		"failed_login_attempts": 5,
		"account_locked":        true,
		"lock_until":            future,
	}).Error)

	cleared, err := m.ClearExpiredLocks()
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)

	assert.False(t, reloadUser(t, db, expired.ID).AccountLocked)
	assert.True(t, reloadUser(t, db, active.ID).AccountLocked)
}
