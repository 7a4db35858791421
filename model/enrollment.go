package model

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment statuses
const (
	EnrollmentStatusPending   = "pending"
	EnrollmentStatusActive    = "active"
	EnrollmentStatusCompleted = "completed"
	EnrollmentStatusCancelled = "cancelled"
	EnrollmentStatusSuspended = "suspended"
)

// ValidEnrollmentStatuses lists every enrollment status
var ValidEnrollmentStatuses = []string{
	EnrollmentStatusPending, EnrollmentStatusActive, EnrollmentStatusCompleted,
	EnrollmentStatusCancelled, EnrollmentStatusSuspended,
}

// Payment methods and statuses
var (
	ValidPaymentMethods  = []string{"credit_card", "debit_card", "bank_transfer", "paypal", "stripe"}
	ValidPaymentStatuses = []string{"pending", "completed", "failed", "refunded"}
)

// PaymentStatusCompleted is the only status counted into TotalPaid
const PaymentStatusCompleted = "completed"

// Attendance statuses
var ValidAttendanceStatuses = []string{"present", "absent", "late", "excused"}

// Note author roles
const (
	NoteAuthorStudent    = "student"
	NoteAuthorInstructor = "instructor"
)

// Enrollment is the record of one student's relationship to one course.
// The composite unique index enforces exactly one enrollment per pair.
type Enrollment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	StudentID uint `gorm:"not null;uniqueIndex:idx_enrollments_student_course;index:idx_enrollments_student_status" json:"student_id"`
	CourseID  uint `gorm:"not null;uniqueIndex:idx_enrollments_student_course;index:idx_enrollments_course_status" json:"course_id"`

	Status string `gorm:"type:varchar(20);default:'pending';index:idx_enrollments_student_status;index:idx_enrollments_course_status" json:"status"`

	EnrollmentDate time.Time  `gorm:"autoCreateTime;index" json:"enrollment_date"`
	StartDate      time.Time  `gorm:"not null" json:"start_date"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`

	// Progress tracking; Percentage is derived and recomputed on every save
	CompletedLessons   int        `gorm:"default:0" json:"completed_lessons"`
	TotalLessons       int        `gorm:"default:0" json:"total_lessons"`
	ProgressPercentage int        `gorm:"default:0" json:"progress_percentage"`
	LastAccessed       *time.Time `json:"last_accessed,omitempty"`

	GradeOverall float64 `gorm:"default:0" json:"grade_overall"`

	// Derived sum of completed payments
	TotalPaid float64 `gorm:"default:0" json:"total_paid"`

	// Certificate issuance record
	CertificateIssued   bool       `gorm:"default:false" json:"certificate_issued"`
	CertificateIssuedAt *time.Time `json:"certificate_issued_at,omitempty"`
	CertificateID       string     `gorm:"type:varchar(100)" json:"certificate_id,omitempty"`
	CertificateURL      string     `gorm:"type:varchar(500)" json:"certificate_url,omitempty"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	// Relationships
	Student    User                `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Course     Course              `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Payments   []EnrollmentPayment `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`
	Attendance []AttendanceRecord  `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"attendance,omitempty"`
	Notes      []EnrollmentNote    `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"notes,omitempty"`
	Grades     []GradeRecord       `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"grades,omitempty"`
}

// EnrollmentPayment is one payment against an enrollment
type EnrollmentPayment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	EnrollmentID  uint       `gorm:"not null;index" json:"enrollment_id"`
	Amount        float64    `gorm:"not null" json:"amount"`
	Currency      string     `gorm:"type:varchar(10);default:'USD'" json:"currency"`
	Method        string     `gorm:"type:varchar(30);not null" json:"method"`
	Status        string     `gorm:"type:varchar(20);default:'pending'" json:"status"`
	TransactionID string     `gorm:"type:varchar(100)" json:"transaction_id,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	RefundedAt    *time.Time `json:"refunded_at,omitempty"`
}

// AttendanceRecord is one session attendance entry for an enrollment
type AttendanceRecord struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	EnrollmentID uint      `gorm:"not null;index" json:"enrollment_id"`
	SessionDate  time.Time `gorm:"not null" json:"session_date"`
	Status       string    `gorm:"type:varchar(20);default:'absent'" json:"status"`
	Notes        string    `gorm:"type:text" json:"notes,omitempty"`
}

// EnrollmentNote is a free-form note on an enrollment, partitioned by
// author role
type EnrollmentNote struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	EnrollmentID uint   `gorm:"not null;index" json:"enrollment_id"`
	AuthorRole   string `gorm:"type:varchar(20);not null" json:"author_role"` // student, instructor
	Content      string `gorm:"type:text;not null" json:"content"`
}

// Grade record kinds
const (
	GradeKindAssignment = "assignment"
	GradeKindQuiz       = "quiz"
)

// GradeRecord is one assignment or quiz grade within an enrollment
type GradeRecord struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	EnrollmentID uint       `gorm:"not null;index" json:"enrollment_id"`
	Kind         string     `gorm:"type:varchar(20);not null" json:"kind"` // assignment, quiz
	Title        string     `gorm:"type:varchar(255);not null" json:"title"`
	Score        float64    `json:"score"`
	MaxScore     float64    `json:"max_score"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
	GradedAt     *time.Time `json:"graded_at,omitempty"`
	Feedback     string     `gorm:"type:text" json:"feedback,omitempty"`
}

// ComputeProgress derives the percentage for a completed/total lesson pair.
// Completed counts above the total are clamped to the total, never rejected;
// zero totals yield zero percent.
func ComputeProgress(completed, total int) (clampedCompleted, percentage int) {
	if completed < 0 {
		completed = 0
	}
	if total <= 0 {
		return completed, 0
	}
	if completed > total {
		completed = total
	}
	return completed, int(float64(completed)/float64(total)*100 + 0.5)
}

// ComputeTotalPaid sums the amounts of completed payments only
func ComputeTotalPaid(payments []EnrollmentPayment) float64 {
	var total float64
	for _, p := range payments {
		if p.Status == PaymentStatusCompleted {
			total += p.Amount
		}
	}
	return total
}

// ApplyProgress records a progress update and auto-completes the enrollment
// when it reaches 100% while active. Returns true when the status
// transitioned to completed.
func (e *Enrollment) ApplyProgress(completedLessons int, now time.Time) bool {
	e.CompletedLessons, e.ProgressPercentage = ComputeProgress(completedLessons, e.TotalLessons)
	e.LastAccessed = &now

	if e.ProgressPercentage >= 100 && e.Status == EnrollmentStatusActive {
		e.Status = EnrollmentStatusCompleted
		e.CompletionDate = &now
		return true
	}
	return false
}

// IsValidEnrollmentStatus reports whether the status is a known
// enrollment status
func IsValidEnrollmentStatus(status string) bool {
	return isOneOf(status, ValidEnrollmentStatuses)
}

// IsValidPaymentMethod reports whether the method is accepted
func IsValidPaymentMethod(method string) bool { return isOneOf(method, ValidPaymentMethods) }

// IsValidPaymentStatus reports whether the payment status is known
func IsValidPaymentStatus(status string) bool { return isOneOf(status, ValidPaymentStatuses) }

// IsValidAttendanceStatus reports whether the attendance status is known
func IsValidAttendanceStatus(status string) bool { return isOneOf(status, ValidAttendanceStatuses) }
