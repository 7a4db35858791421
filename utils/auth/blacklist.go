package auth

import (
	"time"

	"gorm.io/gorm"

	"github.com/wahegurunursing/classes-api/model"
)

// TokenBlacklist revokes issued tokens by their JTI. Logout writes a row
// per token; validation checks membership before trusting a signature.
type TokenBlacklist struct {
	db *gorm.DB
}

func NewTokenBlacklist(db *gorm.DB) *TokenBlacklist {
	return &TokenBlacklist{db: db}
}

// Revoke blacklists a token until its natural expiry.
func (b *TokenBlacklist) Revoke(jti string, userID uint, tokenType, reason string, expiresAt time.Time) error {
	entry := model.JWTTokenBlacklist{
		JTI:       jti,
		UserID:    userID,
		TokenType: tokenType,
		Reason:    reason,
		ExpiresAt: expiresAt,
	}
	return b.db.Create(&entry).Error
}

// IsRevoked reports whether a JTI has been blacklisted.
func (b *TokenBlacklist) IsRevoked(jti string) (bool, error) {
	var count int64
	err := b.db.Model(&model.JWTTokenBlacklist{}).
		Where("jti = ?", jti).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PurgeExpired removes blacklist rows whose tokens have expired anyway.
// Returns the number of rows deleted.
func (b *TokenBlacklist) PurgeExpired() (int64, error) {
	res := b.db.Where("expires_at < ?", time.Now()).Delete(&model.JWTTokenBlacklist{})
	return res.RowsAffected, res.Error
}
