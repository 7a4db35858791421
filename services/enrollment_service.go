package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wahegurunursing/classes-api/model"
	"github.com/wahegurunursing/classes-api/services/storage"
)

var (
	ErrAlreadyEnrolled      = errors.New("student is already enrolled in this course")
	ErrCourseNotAvailable   = errors.New("course is not available for enrollment")
	ErrEnrollmentNotFound   = errors.New("enrollment not found")
	ErrNotCompleted         = errors.New("enrollment is not completed")
	ErrCertificateDisabled  = errors.New("certificates are not enabled for this course")
	ErrCertificateIssued    = errors.New("certificate has already been issued")
	ErrEnrollmentNotActive  = errors.New("enrollment is not active")
	ErrInvalidStatusChange  = errors.New("invalid enrollment status")
	ErrPaymentNotRefundable = errors.New("only completed payments can be refunded")
)

// EnrollmentService owns the enrollment lifecycle: creation against course
// capacity, progress, payments, attendance and certificates.
type EnrollmentService struct {
	db      *gorm.DB
	courses *CourseService
	spaces  *storage.SpacesClient
}

// NewEnrollmentService creates a new enrollment service. The Spaces client
// may be nil; certificate issuance then records an ID without a file URL.
func NewEnrollmentService(db *gorm.DB, courses *CourseService, spaces *storage.SpacesClient) *EnrollmentService {
	return &EnrollmentService{
		db:      db,
		courses: courses,
		spaces:  spaces,
	}
}

// holdsSeat reports whether an enrollment in the given status occupies a
// course seat. Cancel and ChangeStatus share this predicate so seat
// bookkeeping cannot diverge between the two paths.
func holdsSeat(status string) bool {
	return status == model.EnrollmentStatusActive ||
		status == model.EnrollmentStatusPending ||
		status == model.EnrollmentStatusCompleted
}

// Enroll creates an enrollment for a student on a course. Availability,
// the one-enrollment-per-pair rule and the seat claim all happen inside
// one transaction so a failure at any step leaves no partial state.
func (s *EnrollmentService) Enroll(studentID, courseID uint, startDate time.Time) (*model.Enrollment, error) {
	var enrollment *model.Enrollment

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var course model.Course
		if err := tx.First(&course, courseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return err
		}

		if !course.IsAvailable() {
			if course.IsActive && course.Status == model.CourseStatusPublished &&
				course.IsOpen && course.CurrentStudents >= course.MaxStudents {
				return ErrCourseFull
			}
			return ErrCourseNotAvailable
		}
		if course.EnrollmentDeadline != nil && course.EnrollmentDeadline.Before(time.Now()) {
			return ErrCourseNotAvailable
		}

		var existing int64
		if err := tx.Model(&model.Enrollment{}).
			Where("student_id = ? AND course_id = ?", studentID, courseID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyEnrolled
		}

		// Atomic seat claim; fails with ErrCourseFull when a concurrent
		// enrollment took the last seat after our availability read.
		if err := s.courses.AddStudent(tx, courseID); err != nil {
			return err
		}

		enrollment = &model.Enrollment{
			StudentID:    studentID,
			CourseID:     courseID,
			Status:       model.EnrollmentStatusActive,
			StartDate:    startDate,
			TotalLessons: course.TotalLessons,
			IsActive:     true,
		}
		if err := tx.Create(enrollment).Error; err != nil {
			// A concurrent enrollment by the same student can pass the
			// count check and lose to the unique (student, course) index.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyEnrolled
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

// Cancel marks the enrollment cancelled and releases its course seat.
func (s *EnrollmentService) Cancel(enrollmentID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&enrollment, enrollmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEnrollmentNotFound
			}
			return err
		}

		if enrollment.Status == model.EnrollmentStatusCancelled {
			return nil
		}

		releaseSeat := holdsSeat(enrollment.Status)

		enrollment.Status = model.EnrollmentStatusCancelled
		enrollment.IsActive = false
		if err := tx.Save(&enrollment).Error; err != nil {
			return err
		}

		if releaseSeat {
			return s.courses.RemoveStudent(tx, enrollment.CourseID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// UpdateProgress records a lesson-completion count, recomputes the derived
// percentage and auto-completes the enrollment at 100%.
func (s *EnrollmentService) UpdateProgress(enrollmentID uint, completedLessons int) (*model.Enrollment, error) {
	var enrollment model.Enrollment

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&enrollment, enrollmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEnrollmentNotFound
			}
			return err
		}

		if enrollment.Status != model.EnrollmentStatusActive &&
			enrollment.Status != model.EnrollmentStatusCompleted {
			return ErrEnrollmentNotActive
		}

		enrollment.ApplyProgress(completedLessons, time.Now())
		return tx.Save(&enrollment).Error
	})
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// RecordPayment appends a payment and refreshes the enrollment's TotalPaid.
// Only completed payments count into the sum.
func (s *EnrollmentService) RecordPayment(enrollmentID uint, amount float64, currency, method, status, transactionID string) (*model.EnrollmentPayment, error) {
	var payment *model.EnrollmentPayment

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var enrollment model.Enrollment
		if err := tx.First(&enrollment, enrollmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEnrollmentNotFound
			}
			return err
		}

		payment = &model.EnrollmentPayment{
			EnrollmentID:  enrollmentID,
			Amount:        amount,
			Currency:      currency,
			Method:        method,
			Status:        status,
			TransactionID: transactionID,
		}
		if status == model.PaymentStatusCompleted {
			now := time.Now()
			payment.PaidAt = &now
		}
		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		return s.refreshTotalPaid(tx, enrollmentID)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// RefundPayment moves a completed payment to refunded and refreshes the
// enrollment's TotalPaid, which drops by the refunded amount.
func (s *EnrollmentService) RefundPayment(enrollmentID, paymentID uint) (*model.EnrollmentPayment, error) {
	var payment model.EnrollmentPayment

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND enrollment_id = ?", paymentID, enrollmentID).
			First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEnrollmentNotFound
			}
			return err
		}

		if payment.Status != model.PaymentStatusCompleted {
			return ErrPaymentNotRefundable
		}

		now := time.Now()
		payment.Status = "refunded"
		payment.RefundedAt = &now
		if err := tx.Save(&payment).Error; err != nil {
			return err
		}

		return s.refreshTotalPaid(tx, enrollmentID)
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *EnrollmentService) refreshTotalPaid(tx *gorm.DB, enrollmentID uint) error {
	var payments []model.EnrollmentPayment
	if err := tx.Where("enrollment_id = ?", enrollmentID).Find(&payments).Error; err != nil {
		return err
	}
	return tx.Model(&model.Enrollment{}).
		Where("id = ?", enrollmentID).
		UpdateColumn("total_paid", model.ComputeTotalPaid(payments)).Error
}

// MarkAttendance records one session attendance entry.
func (s *EnrollmentService) MarkAttendance(enrollmentID uint, sessionDate time.Time, status, notes string) (*model.AttendanceRecord, error) {
	if err := s.mustExist(enrollmentID); err != nil {
		return nil, err
	}

	record := &model.AttendanceRecord{
		EnrollmentID: enrollmentID,
		SessionDate:  sessionDate,
		Status:       status,
		Notes:        notes,
	}
	if err := s.db.Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// AddNote appends a note from a student or instructor.
func (s *EnrollmentService) AddNote(enrollmentID uint, authorRole, content string) (*model.EnrollmentNote, error) {
	if err := s.mustExist(enrollmentID); err != nil {
		return nil, err
	}

	note := &model.EnrollmentNote{
		EnrollmentID: enrollmentID,
		AuthorRole:   authorRole,
		Content:      content,
	}
	if err := s.db.Create(note).Error; err != nil {
		return nil, err
	}
	return note, nil
}

// AddGrade records an assignment or quiz grade and refreshes the overall
// grade as the mean score percentage across graded records.
func (s *EnrollmentService) AddGrade(enrollmentID uint, kind, title string, score, maxScore float64, feedback string) (*model.GradeRecord, error) {
	var grade *model.GradeRecord

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var enrollment model.Enrollment
		if err := tx.First(&enrollment, enrollmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEnrollmentNotFound
			}
			return err
		}

		now := time.Now()
		grade = &model.GradeRecord{
			EnrollmentID: enrollmentID,
			Kind:         kind,
			Title:        title,
			Score:        score,
			MaxScore:     maxScore,
			GradedAt:     &now,
			Feedback:     feedback,
		}
		if err := tx.Create(grade).Error; err != nil {
			return err
		}

		var grades []model.GradeRecord
		if err := tx.Where("enrollment_id = ?", enrollmentID).Find(&grades).Error; err != nil {
			return err
		}
		var sum float64
		var counted int
		for _, g := range grades {
			if g.MaxScore > 0 {
				sum += g.Score / g.MaxScore * 100
				counted++
			}
		}
		overall := 0.0
		if counted > 0 {
			overall = sum / float64(counted)
		}
		return tx.Model(&model.Enrollment{}).
			Where("id = ?", enrollmentID).
			UpdateColumn("grade_overall", overall).Error
	})
	if err != nil {
		return nil, err
	}
	return grade, nil
}

// IssueCertificate issues a completion certificate for a completed
// enrollment. The certificate document is uploaded to object storage when
// a client is configured.
func (s *EnrollmentService) IssueCertificate(ctx context.Context, enrollmentID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Course").Preload("Student").
			First(&enrollment, enrollmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEnrollmentNotFound
			}
			return err
		}

		if enrollment.Status != model.EnrollmentStatusCompleted {
			return ErrNotCompleted
		}
		if !enrollment.Course.CertificateEnabled {
			return ErrCertificateDisabled
		}
		if enrollment.CertificateIssued {
			return ErrCertificateIssued
		}

		now := time.Now()
		certID := fmt.Sprintf("CERT-%d-%s", enrollment.CourseID, uuid.New().String()[:8])

		certURL := ""
		if s.spaces != nil {
			doc := s.renderCertificate(&enrollment, certID, now)
			key := fmt.Sprintf("certificates/%d/%s.html", enrollment.StudentID, certID)
			url, err := s.spaces.UploadBytes(ctx, key, doc, "text/html")
			if err != nil {
				return fmt.Errorf("certificate upload failed: %w", err)
			}
			certURL = url
		}

		enrollment.CertificateIssued = true
		enrollment.CertificateIssuedAt = &now
		enrollment.CertificateID = certID
		enrollment.CertificateURL = certURL
		return tx.Save(&enrollment).Error
	})
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (s *EnrollmentService) renderCertificate(e *model.Enrollment, certID string, issuedAt time.Time) []byte {
	return []byte(fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: serif; text-align: center; padding: 60px;">
	<h1>Certificate of Completion</h1>
	<p>This certifies that</p>
	<h2>%s</h2>
	<p>has successfully completed</p>
	<h2>%s</h2>
	<p>Issued on %s</p>
	<p style="font-size: 12px; color: #666;">Certificate ID: %s</p>
</body>
</html>`,
		e.Student.FullName(),
		e.Course.Title,
		issuedAt.Format("January 2, 2006"),
		certID,
	))
}

// ChangeStatus moves the enrollment to an explicit status, keeping the
// course seat counter in step with active-seat transitions.
func (s *EnrollmentService) ChangeStatus(enrollmentID uint, status string) (*model.Enrollment, error) {
	if !model.IsValidEnrollmentStatus(status) {
		return nil, ErrInvalidStatusChange
	}
	if status == model.EnrollmentStatusCancelled {
		return s.Cancel(enrollmentID)
	}

	var enrollment model.Enrollment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&enrollment, enrollmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEnrollmentNotFound
			}
			return err
		}

		wasHolding := holdsSeat(enrollment.Status)
		willHold := holdsSeat(status)

		if status == model.EnrollmentStatusCompleted && enrollment.CompletionDate == nil {
			now := time.Now()
			enrollment.CompletionDate = &now
		}
		enrollment.Status = status
		enrollment.IsActive = status != model.EnrollmentStatusCancelled
		if err := tx.Save(&enrollment).Error; err != nil {
			return err
		}

		if wasHolding && !willHold {
			return s.courses.RemoveStudent(tx, enrollment.CourseID)
		}
		if !wasHolding && willHold {
			return s.courses.AddStudent(tx, enrollment.CourseID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (s *EnrollmentService) mustExist(enrollmentID uint) error {
	var count int64
	if err := s.db.Model(&model.Enrollment{}).Where("id = ?", enrollmentID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}
