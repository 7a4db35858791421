package cron

import (
	"fmt"
	"time"

	"github.com/wahegurunursing/classes-api/model"
)

// contactRetention is how long dispatched contact messages are kept.
const contactRetention = 180 * 24 * time.Hour

// PurgeTokenBlacklist removes blacklist entries for tokens that have
// expired on their own.
func (m *CronManager) PurgeTokenBlacklist() (string, error) {
	removed, err := m.blacklist.PurgeExpired()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("removed %d expired blacklist entries", removed), nil
}

// ClearExpiredLocks unlocks accounts whose lockout window has elapsed.
func (m *CronManager) ClearExpiredLocks() (string, error) {
	unlocked, err := m.lockouts.ClearExpiredLocks()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("unlocked %d accounts", unlocked), nil
}

// CloseExpiredEnrollments closes enrollment on courses whose deadline has
// passed.
func (m *CronManager) CloseExpiredEnrollments() (string, error) {
	closed, err := m.courses.CloseExpiredEnrollments()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("closed enrollment on %d courses", closed), nil
}

// RatingSweep recomputes the stored rating aggregate for every active
// course, repairing any drift from partial failures.
func (m *CronManager) RatingSweep() (string, error) {
	var courseIDs []uint
	if err := m.db.Model(&model.Course{}).
		Where("is_active = ?", true).
		Pluck("id", &courseIDs).Error; err != nil {
		return "", err
	}

	var failed int
	for _, id := range courseIDs {
		if err := m.courses.RecomputeRating(id); err != nil {
			failed++
		}
	}
	if failed > 0 {
		return "", fmt.Errorf("rating recompute failed for %d of %d courses", failed, len(courseIDs))
	}
	return fmt.Sprintf("recomputed ratings for %d courses", len(courseIDs)), nil
}

// CleanupContactMessages removes dispatched contact messages past the
// retention window.
func (m *CronManager) CleanupContactMessages() (string, error) {
	removed, err := m.contacts.PurgeOld(contactRetention)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("removed %d old contact messages", removed), nil
}
