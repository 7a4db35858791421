package model

import (
	"time"

	"gorm.io/gorm"
)

// ContactMessage is a contact-form submission
type ContactMessage struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Reference string `gorm:"type:varchar(40);uniqueIndex;not null" json:"reference"`
	Name      string `gorm:"type:varchar(100);not null" json:"name"`
	Email     string `gorm:"type:varchar(254);not null" json:"email"`
	Phone     string `gorm:"type:varchar(20);not null" json:"phone"`
	Message   string `gorm:"type:text;not null" json:"message"`

	// Email dispatch outcome
	Dispatched   bool       `gorm:"default:false" json:"dispatched"`
	DispatchedAt *time.Time `json:"dispatched_at,omitempty"`
	DispatchErr  string     `gorm:"type:text" json:"-"`
}

// TableName specifies the table name for ContactMessage
func (ContactMessage) TableName() string {
	return "contact_messages"
}
