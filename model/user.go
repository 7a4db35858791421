package model

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User roles
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// ValidRoles lists every role a user account may hold
var ValidRoles = []string{RoleStudent, RoleInstructor, RoleAdmin}

// Account lockout policy
const (
	MaxFailedLoginAttempts = 5
	AccountLockDuration    = 2 * time.Hour
	PasswordHistoryLimit   = 5
)

// User represents a registered user in the system
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	FirstName    string `gorm:"type:varchar(50);not null" json:"first_name"`
	LastName     string `gorm:"type:varchar(50);not null" json:"last_name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"` // Never expose password in JSON
	Phone        string `gorm:"type:varchar(20);not null" json:"phone"`
	Role         string `gorm:"type:varchar(20);default:'student';index" json:"role"` // student, instructor, admin

	IsActive        bool `gorm:"default:true;index" json:"is_active"`
	IsEmailVerified bool `gorm:"default:false" json:"is_email_verified"`

	EmailVerificationToken   string     `gorm:"type:varchar(100);index" json:"-"`
	EmailVerificationExpires *time.Time `json:"-"`

	LastLogin *time.Time `json:"last_login,omitempty"`

	// Profile and preference sub-documents, stored as JSONB
	Profile     datatypes.JSON `gorm:"type:jsonb" json:"profile,omitempty"`
	Preferences datatypes.JSON `gorm:"type:jsonb" json:"preferences,omitempty"`

	// Security bookkeeping
	FailedLoginAttempts int            `gorm:"default:0" json:"-"`
	AccountLocked       bool           `gorm:"default:false" json:"-"`
	LockUntil           *time.Time     `json:"-"`
	LockReason          string         `gorm:"type:varchar(100)" json:"-"`
	LastPasswordChange  *time.Time     `json:"-"`
	PasswordHistory     datatypes.JSON `gorm:"type:jsonb" json:"-"` // last 5 hashes
	TokenVersion        int            `gorm:"default:0" json:"-"`  // Increment to invalidate all user tokens

	// Relationships
	Courses        []Course            `gorm:"foreignKey:InstructorID" json:"-"`
	Enrollments    []Enrollment        `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Reviews        []CourseReview      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TokenBlacklist []JWTTokenBlacklist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// UserProfile is the shape of the Profile JSONB column
type UserProfile struct {
	Avatar           string            `json:"avatar,omitempty"`
	Bio              string            `json:"bio,omitempty"`
	DateOfBirth      *time.Time        `json:"date_of_birth,omitempty"`
	Address          *Address          `json:"address,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergency_contact,omitempty"`
}

// Address is a postal address inside a user profile
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`
	Country string `json:"country,omitempty"`
}

// EmergencyContact is the emergency contact inside a user profile
type EmergencyContact struct {
	Name         string `json:"name,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// UserPreferences is the shape of the Preferences JSONB column
type UserPreferences struct {
	Notifications NotificationPreferences `json:"notifications"`
	Language      string                  `json:"language,omitempty"` // en, es, fr
	Timezone      string                  `json:"timezone,omitempty"`
}

// NotificationPreferences controls which channels a user receives
type NotificationPreferences struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
	Push  bool `json:"push"`
}

// PasswordHistoryEntry is a single entry of the PasswordHistory JSONB column
type PasswordHistoryEntry struct {
	Hash      string    `json:"hash"`
	ChangedAt time.Time `json:"changed_at"`
}

// FullName returns the user's display name
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsLocked reports whether the account is currently inside a lockout window
func (u *User) IsLocked() bool {
	return u.AccountLocked && u.LockUntil != nil && u.LockUntil.After(time.Now())
}

// LockExpired reports whether a previous lockout window has elapsed
func (u *User) LockExpired() bool {
	return u.LockUntil != nil && u.LockUntil.Before(time.Now())
}

// IsValidRole reports whether the given role is one of the allowed user roles
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if role == r {
			return true
		}
	}
	return false
}

// NormalizeEmail lowercases and trims an email address. Email uniqueness is
// case-insensitive, so every read and write path must go through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// BeforeSave lowercases the email so the unique index is case-insensitive
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	return nil
}
