package services

import (
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wahegurunursing/classes-api/model"
)

// ContactService persists contact form submissions and forwards them by
// email. The message is stored first so a mail outage never loses an
// enquiry; the dispatch outcome is recorded on the row.
type ContactService struct {
	db    *gorm.DB
	email *EmailService
}

// NewContactService creates a new contact service
func NewContactService(db *gorm.DB, email *EmailService) *ContactService {
	return &ContactService{db: db, email: email}
}

// Submit stores the message and attempts email dispatch.
func (s *ContactService) Submit(name, email, phone, message string) (*model.ContactMessage, error) {
	msg := &model.ContactMessage{
		Reference: uuid.New().String(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		Message:   message,
	}
	if err := s.db.Create(msg).Error; err != nil {
		return nil, err
	}

	if err := s.email.SendContactNotification(msg); err != nil {
		log.Warnw("contact notification dispatch failed", "reference", msg.Reference, "error", err)
		s.db.Model(msg).Updates(map[string]interface{}{
			"dispatch_err": err.Error(),
		})
		return msg, nil
	}

	now := time.Now()
	s.db.Model(msg).Updates(map[string]interface{}{
		"dispatched":    true,
		"dispatched_at": now,
		"dispatch_err":  "",
	})
	msg.Dispatched = true
	msg.DispatchedAt = &now
	return msg, nil
}

// Status returns the dispatch state for a stored reference.
func (s *ContactService) Status(reference string) (*model.ContactMessage, error) {
	var msg model.ContactMessage
	if err := s.db.Where("reference = ?", reference).First(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// PurgeOld removes messages older than the retention window that were
// dispatched successfully. Returns the number of rows removed.
func (s *ContactService) PurgeOld(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	res := s.db.Where("dispatched = ? AND created_at < ?", true, cutoff).
		Delete(&model.ContactMessage{})
	return res.RowsAffected, res.Error
}
