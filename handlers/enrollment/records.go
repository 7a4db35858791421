package enrollment

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/wahegurunursing/classes-api/model"
	"github.com/wahegurunursing/classes-api/services"
	"github.com/wahegurunursing/classes-api/utils/middleware"
	"github.com/wahegurunursing/classes-api/utils/response"
	"github.com/wahegurunursing/classes-api/utils/validation"
)

// AttendanceRequest represents a session attendance entry
type AttendanceRequest struct {
	SessionDate time.Time `json:"session_date" validate:"required"`
	Status      string    `json:"status" validate:"required"`
	Notes       string    `json:"notes,omitempty"`
}

// MarkAttendance records session attendance (instructor or admin)
func (h *EnrollmentHandler) MarkAttendance(c *fiber.Ctx) error {
	enrollment, errResp := h.load(c, false)
	if errResp != nil {
		return errResp
	}

	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)
	if role != model.RoleAdmin && enrollment.Course.InstructorID != userID {
		return response.Forbidden(c, "Only the course instructor can mark attendance")
	}

	var req AttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.SessionDate.IsZero() {
		return response.BadRequest(c, "Session date is required")
	}
	if !model.IsValidAttendanceStatus(req.Status) {
		return response.BadRequest(c, "Invalid attendance status")
	}

	record, err := h.enrollmentService.MarkAttendance(enrollment.ID, req.SessionDate, req.Status, validation.SanitizeString(req.Notes))
	if err != nil {
		return response.InternalServerError(c, "Failed to record attendance")
	}
	return response.Created(c, record)
}

// NoteRequest represents an enrollment note submission
type NoteRequest struct {
	Content string `json:"content" validate:"required,min=1"`
}

// AddNote appends a note. Students write student notes on their own
// enrollment; instructors and admins write instructor notes.
func (h *EnrollmentHandler) AddNote(c *fiber.Ctx) error {
	enrollment, errResp := h.load(c, false)
	if errResp != nil {
		return errResp
	}

	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	var req NoteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	content := validation.SanitizeString(req.Content)
	if content == "" {
		return response.BadRequest(c, "Note content is required")
	}

	authorRole := model.NoteAuthorStudent
	if role == model.RoleAdmin || enrollment.Course.InstructorID == userID {
		authorRole = model.NoteAuthorInstructor
	} else if enrollment.StudentID != userID {
		return response.Forbidden(c, "")
	}

	note, err := h.enrollmentService.AddNote(enrollment.ID, authorRole, content)
	if err != nil {
		return response.InternalServerError(c, "Failed to add note")
	}
	return response.Created(c, note)
}

// GradeRequest represents an assignment or quiz grade submission
type GradeRequest struct {
	Kind     string  `json:"kind" validate:"required"`
	Title    string  `json:"title" validate:"required,max=255"`
	Score    float64 `json:"score" validate:"gte=0"`
	MaxScore float64 `json:"max_score" validate:"gt=0"`
	Feedback string  `json:"feedback,omitempty"`
}

// AddGrade records a grade and refreshes the overall grade (instructor
// or admin)
func (h *EnrollmentHandler) AddGrade(c *fiber.Ctx) error {
	enrollment, errResp := h.load(c, false)
	if errResp != nil {
		return errResp
	}

	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)
	if role != model.RoleAdmin && enrollment.Course.InstructorID != userID {
		return response.Forbidden(c, "Only the course instructor can record grades")
	}

	var req GradeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Kind != model.GradeKindAssignment && req.Kind != model.GradeKindQuiz {
		return response.BadRequest(c, "Invalid grade kind")
	}
	req.Title = validation.SanitizeString(req.Title)
	if req.Title == "" {
		return response.BadRequest(c, "Grade title is required")
	}
	if req.MaxScore <= 0 {
		return response.BadRequest(c, "Max score must be positive")
	}
	if req.Score < 0 || req.Score > req.MaxScore {
		return response.BadRequest(c, "Score must be between 0 and max score")
	}

	grade, err := h.enrollmentService.AddGrade(enrollment.ID, req.Kind, req.Title, req.Score, req.MaxScore, req.Feedback)
	if err != nil {
		return response.InternalServerError(c, "Failed to record grade")
	}
	return response.Created(c, grade)
}

// IssueCertificate issues a completion certificate (instructor or admin)
func (h *EnrollmentHandler) IssueCertificate(c *fiber.Ctx) error {
	enrollment, errResp := h.load(c, false)
	if errResp != nil {
		return errResp
	}

	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)
	if role != model.RoleAdmin && enrollment.Course.InstructorID != userID {
		return response.Forbidden(c, "Only the course instructor can issue certificates")
	}

	updated, err := h.enrollmentService.IssueCertificate(c.Context(), enrollment.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotCompleted):
			return response.BadRequest(c, "Enrollment is not completed")
		case errors.Is(err, services.ErrCertificateDisabled):
			return response.BadRequest(c, "Certificates are not enabled for this course")
		case errors.Is(err, services.ErrCertificateIssued):
			return response.Conflict(c, "Certificate has already been issued")
		default:
			return response.InternalServerError(c, "Failed to issue certificate")
		}
	}
	return response.Success(c, updated)
}

// EnrollmentStats aggregates enrollment counts by status plus the most
// recent enrollments
type EnrollmentStats struct {
	Total    int64              `json:"total"`
	ByStatus map[string]int64   `json:"by_status"`
	Recent   []model.Enrollment `json:"recent"`
}

// Stats returns enrollment statistics (admin only via routing)
func (h *EnrollmentHandler) Stats(c *fiber.Ctx) error {
	stats := EnrollmentStats{ByStatus: map[string]int64{}}

	if err := h.db.Model(&model.Enrollment{}).Count(&stats.Total).Error; err != nil {
		return response.InternalServerError(c, "")
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := h.db.Model(&model.Enrollment{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return response.InternalServerError(c, "")
	}
	for _, sc := range counts {
		stats.ByStatus[sc.Status] = sc.Count
	}

	if err := h.db.
		Preload("Course").
		Preload("Student").
		Order("enrollment_date DESC").
		Limit(5).
		Find(&stats.Recent).Error; err != nil {
		return response.InternalServerError(c, "")
	}

	return response.Success(c, stats)
}
