package auth

import (
	"time"

	"gorm.io/gorm"

	"github.com/wahegurunursing/classes-api/model"
)

// LockoutManager tracks failed login attempts per account and locks the
// account once the threshold is reached. Counters live in the users table
// so every API instance shares the same state; updates are single
// statements so concurrent failures never lose increments.
type LockoutManager struct {
	db *gorm.DB
}

func NewLockoutManager(db *gorm.DB) *LockoutManager {
	return &LockoutManager{db: db}
}

// RegisterFailure records one failed login attempt for the user. If the
// user carries an expired lock the counter restarts at 1, otherwise it is
// incremented. When the counter reaches the threshold the account is
// locked for model.AccountLockDuration. Returns whether the account is
// now locked and the lock expiry.
func (m *LockoutManager) RegisterFailure(user *model.User) (bool, time.Time, error) {
	now := time.Now()

	if user.LockExpired() {
		// Stale lock from a previous episode; start a fresh window.
		err := m.db.Model(&model.User{}).
			Where("id = ?", user.ID).
			Updates(map[string]interface{}{
				"failed_login_attempts": 1,
				"account_locked":        false,
				"lock_until":            nil,
				"lock_reason":           "",
			}).Error
		if err != nil {
			return false, time.Time{}, err
		}
		user.FailedLoginAttempts = 1
		user.AccountLocked = false
		user.LockUntil = nil
		user.LockReason = ""
		return false, time.Time{}, nil
	}

	err := m.db.Model(&model.User{}).
		Where("id = ?", user.ID).
		UpdateColumn("failed_login_attempts", gorm.Expr("failed_login_attempts + 1")).Error
	if err != nil {
		return false, time.Time{}, err
	}
	user.FailedLoginAttempts++

	if user.FailedLoginAttempts < model.MaxFailedLoginAttempts {
		return false, time.Time{}, nil
	}

	lockUntil := now.Add(model.AccountLockDuration)
	err = m.db.Model(&model.User{}).
		Where("id = ? AND failed_login_attempts >= ?", user.ID, model.MaxFailedLoginAttempts).
		Updates(map[string]interface{}{
			"account_locked": true,
			"lock_until":     lockUntil,
			"lock_reason":    "too many failed login attempts",
		}).Error
	if err != nil {
		return false, time.Time{}, err
	}
	user.AccountLocked = true
	user.LockUntil = &lockUntil
	user.LockReason = "too many failed login attempts"
	return true, lockUntil, nil
}

// Reset clears the failure counter and any lock after a successful login.
func (m *LockoutManager) Reset(userID uint, loginAt time.Time) error {
	return m.db.Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"failed_login_attempts": 0,
			"account_locked":        false,
			"lock_until":            nil,
			"lock_reason":           "",
			"last_login":            loginAt,
		}).Error
}

// ClearExpiredLocks unlocks accounts whose lock window has passed.
// Returns the number of accounts unlocked.
func (m *LockoutManager) ClearExpiredLocks() (int64, error) {
	res := m.db.Model(&model.User{}).
		Where("account_locked = ? AND lock_until IS NOT NULL AND lock_until < ?", true, time.Now()).
		Updates(map[string]interface{}{
			"account_locked":        false,
			"failed_login_attempts": 0,
			"lock_until":            nil,
			"lock_reason":           "",
		})
	return res.RowsAffected, res.Error
}
