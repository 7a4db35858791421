package enrollment

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/wahegurunursing/classes-api/model"
	"github.com/wahegurunursing/classes-api/services"
	"github.com/wahegurunursing/classes-api/utils/middleware"
	"github.com/wahegurunursing/classes-api/utils/response"
)

// EnrollmentHandler handles enrollment lifecycle requests
type EnrollmentHandler struct {
	db                *gorm.DB
	enrollmentService *services.EnrollmentService
}

// NewEnrollmentHandler creates a new enrollment handler
func NewEnrollmentHandler(db *gorm.DB, enrollmentService *services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		db:                db,
		enrollmentService: enrollmentService,
	}
}

// EnrollRequest represents an enrollment creation request
type EnrollRequest struct {
	CourseID  uint       `json:"course_id" validate:"required"`
	StartDate *time.Time `json:"start_date,omitempty"`
}

// Enroll creates an enrollment for the authenticated student
func (h *EnrollmentHandler) Enroll(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.CourseID == 0 {
		return response.BadRequest(c, "Course ID is required")
	}

	startDate := time.Now()
	if req.StartDate != nil {
		startDate = *req.StartDate
	}

	enrollment, err := h.enrollmentService.Enroll(userID, req.CourseID, startDate)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCourseNotFound):
			return response.NotFound(c, "Course not found")
		case errors.Is(err, services.ErrCourseFull):
			return response.BadRequest(c, "Course is full")
		case errors.Is(err, services.ErrCourseNotAvailable):
			return response.BadRequest(c, "Course is not available for enrollment")
		case errors.Is(err, services.ErrAlreadyEnrolled):
			return response.Conflict(c, "You are already enrolled in this course")
		default:
			return response.InternalServerError(c, "Failed to enroll")
		}
	}

	return response.Created(c, enrollment)
}

// List returns the authenticated student's enrollments, or a course's
// enrollments for instructors and admins via the course query parameter
func (h *EnrollmentHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}
	role, _ := middleware.GetUserRole(c)

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	query := h.db.Model(&model.Enrollment{})

	if courseID := c.QueryInt("course", 0); courseID > 0 {
		if role != model.RoleAdmin && role != model.RoleInstructor {
			return response.Forbidden(c, "")
		}
		if role == model.RoleInstructor {
			var course model.Course
			if err := h.db.First(&course, courseID).Error; err != nil {
				return response.FromDBError(c, err, "Course not found")
			}
			if course.InstructorID != userID {
				return response.Forbidden(c, "")
			}
		}
		query = query.Where("course_id = ?", courseID)
	} else if role != model.RoleAdmin {
		query = query.Where("student_id = ?", userID)
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "")
	}

	pagination := response.CalculatePagination(page, limit, total)
	offset := (pagination.CurrentPage - 1) * pagination.PerPage

	var enrollments []model.Enrollment
	if err := query.
		Preload("Course").
		Order("enrollment_date DESC").
		Offset(offset).
		Limit(pagination.PerPage).
		Find(&enrollments).Error; err != nil {
		return response.InternalServerError(c, "")
	}

	return response.Paginated(c, enrollments, pagination)
}

// load fetches an enrollment and checks that the caller is its student,
// the course instructor, or an admin.
func (h *EnrollmentHandler) load(c *fiber.Ctx, preload bool) (*model.Enrollment, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return nil, response.BadRequest(c, "Invalid enrollment ID")
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		return nil, response.Unauthorized(c, "")
	}
	role, _ := middleware.GetUserRole(c)

	query := h.db.Preload("Course")
	if preload {
		query = query.
			Preload("Student").
			Preload("Payments").
			Preload("Attendance").
			Preload("Notes").
			Preload("Grades")
	}

	var enrollment model.Enrollment
	if err := query.First(&enrollment, id).Error; err != nil {
		return nil, response.FromDBError(c, err, "Enrollment not found")
	}

	allowed := role == model.RoleAdmin ||
		enrollment.StudentID == userID ||
		enrollment.Course.InstructorID == userID
	if !allowed {
		return nil, response.Forbidden(c, "")
	}

	return &enrollment, nil
}

// Get returns one enrollment with its child records
func (h *EnrollmentHandler) Get(c *fiber.Ctx) error {
	enrollment, errResp := h.load(c, true)
	if errResp != nil {
		return errResp
	}
	return response.Success(c, enrollment)
}

// Cancel cancels an enrollment and releases its course seat
func (h *EnrollmentHandler) Cancel(c *fiber.Ctx) error {
	enrollment, errResp := h.load(c, false)
	if errResp != nil {
		return errResp
	}

	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)
	if role != model.RoleAdmin && enrollment.StudentID != userID {
		return response.Forbidden(c, "")
	}

	updated, err := h.enrollmentService.Cancel(enrollment.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to cancel enrollment")
	}
	return response.Success(c, updated)
}

// StatusRequest moves an enrollment to an explicit status
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SetStatus updates the enrollment status (admin and course instructor)
func (h *EnrollmentHandler) SetStatus(c *fiber.Ctx) error {
	enrollment, errResp := h.load(c, false)
	if errResp != nil {
		return errResp
	}

	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)
	if role != model.RoleAdmin && enrollment.Course.InstructorID != userID {
		return response.Forbidden(c, "")
	}

	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	updated, err := h.enrollmentService.ChangeStatus(enrollment.ID, req.Status)
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatusChange) {
			return response.BadRequest(c, "Invalid enrollment status")
		}
		if errors.Is(err, services.ErrCourseFull) {
			return response.BadRequest(c, "Course is full")
		}
		return response.InternalServerError(c, "Failed to update enrollment status")
	}
	return response.Success(c, updated)
}
