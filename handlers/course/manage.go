package course

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	"github.com/wahegurunursing/classes-api/model"
	"github.com/wahegurunursing/classes-api/utils/middleware"
	"github.com/wahegurunursing/classes-api/utils/response"
	"github.com/wahegurunursing/classes-api/utils/validation"
)

// CreateCourseRequest represents a course creation request
type CreateCourseRequest struct {
	Title              string     `json:"title" validate:"required,min=5,max=100"`
	Description        string     `json:"description" validate:"required,min=20"`
	Category           string     `json:"category" validate:"required"`
	Level              string     `json:"level" validate:"required"`
	Duration           int        `json:"duration" validate:"gte=1"`
	Price              float64    `json:"price" validate:"gte=0"`
	Currency           string     `json:"currency,omitempty"`
	MaxStudents        int        `json:"max_students,omitempty"`
	EnrollmentDeadline *time.Time `json:"enrollment_deadline,omitempty"`
	Tags               []string   `json:"tags,omitempty"`
	CertificateEnabled *bool      `json:"certificate_enabled,omitempty"`
	StartDate          *time.Time `json:"start_date,omitempty"`
	EndDate            *time.Time `json:"end_date,omitempty"`
}

// UpdateCourseRequest carries optional course field updates
type UpdateCourseRequest struct {
	Title              *string    `json:"title,omitempty"`
	Description        *string    `json:"description,omitempty"`
	Category           *string    `json:"category,omitempty"`
	Level              *string    `json:"level,omitempty"`
	Duration           *int       `json:"duration,omitempty"`
	Price              *float64   `json:"price,omitempty"`
	Currency           *string    `json:"currency,omitempty"`
	MaxStudents        *int       `json:"max_students,omitempty"`
	IsOpen             *bool      `json:"is_open,omitempty"`
	EnrollmentDeadline *time.Time `json:"enrollment_deadline,omitempty"`
	Tags               []string   `json:"tags,omitempty"`
	Featured           *bool      `json:"featured,omitempty"`
	CertificateEnabled *bool      `json:"certificate_enabled,omitempty"`
	StartDate          *time.Time `json:"start_date,omitempty"`
	EndDate            *time.Time `json:"end_date,omitempty"`
}

func tagsJSON(tags []string) (datatypes.JSON, error) {
	if tags == nil {
		return nil, nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

// Create creates a course owned by the authenticated instructor
func (h *CourseHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Title = validation.SanitizeString(req.Title)
	req.Description = validation.SanitizeString(req.Description)

	if req.Title == "" || req.Description == "" {
		return response.BadRequest(c, "Title and description are required")
	}
	if !model.IsValidCategory(req.Category) {
		return response.BadRequest(c, "Invalid course category")
	}
	if !model.IsValidLevel(req.Level) {
		return response.BadRequest(c, "Invalid course level")
	}
	if req.Duration < 1 {
		return response.BadRequest(c, "Duration must be at least 1 hour")
	}
	if req.Price < 0 {
		return response.BadRequest(c, "Price cannot be negative")
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	if !model.IsValidCurrency(currency) {
		return response.BadRequest(c, "Invalid currency")
	}

	maxStudents := req.MaxStudents
	if maxStudents <= 0 {
		maxStudents = 50
	}

	tags, err := tagsJSON(req.Tags)
	if err != nil {
		return response.BadRequest(c, "Invalid tags")
	}

	certEnabled := true
	if req.CertificateEnabled != nil {
		certEnabled = *req.CertificateEnabled
	}

	course := model.Course{
		Title:              req.Title,
		Description:        req.Description,
		Category:           req.Category,
		Level:              req.Level,
		Duration:           req.Duration,
		Price:              req.Price,
		Currency:           currency,
		InstructorID:       userID,
		MaxStudents:        maxStudents,
		IsOpen:             true,
		EnrollmentDeadline: req.EnrollmentDeadline,
		Status:             model.CourseStatusDraft,
		IsActive:           true,
		Tags:               tags,
		CertificateEnabled: certEnabled,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
	}

	if err := h.db.Create(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to create course")
	}

	return response.Created(c, course)
}

// Update applies partial updates to a course. Ownership is enforced by the
// route's authorization predicate.
func (h *CourseHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid course ID")
	}

	var course model.Course
	if err := h.db.First(&course, id).Error; err != nil {
		return response.FromDBError(c, err, "Course not found")
	}

	var req UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	updates := map[string]interface{}{}

	if req.Title != nil {
		title := validation.SanitizeString(*req.Title)
		if len(title) < 5 {
			return response.BadRequest(c, "Title must be at least 5 characters")
		}
		updates["title"] = title
	}
	if req.Description != nil {
		desc := validation.SanitizeString(*req.Description)
		if len(desc) < 20 {
			return response.BadRequest(c, "Description must be at least 20 characters")
		}
		updates["description"] = desc
	}
	if req.Category != nil {
		if !model.IsValidCategory(*req.Category) {
			return response.BadRequest(c, "Invalid course category")
		}
		updates["category"] = *req.Category
	}
	if req.Level != nil {
		if !model.IsValidLevel(*req.Level) {
			return response.BadRequest(c, "Invalid course level")
		}
		updates["level"] = *req.Level
	}
	if req.Duration != nil {
		if *req.Duration < 1 {
			return response.BadRequest(c, "Duration must be at least 1 hour")
		}
		updates["duration"] = *req.Duration
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return response.BadRequest(c, "Price cannot be negative")
		}
		updates["price"] = *req.Price
	}
	if req.Currency != nil {
		if !model.IsValidCurrency(*req.Currency) {
			return response.BadRequest(c, "Invalid currency")
		}
		updates["currency"] = *req.Currency
	}
	if req.MaxStudents != nil {
		if *req.MaxStudents < 1 {
			return response.BadRequest(c, "Maximum students must be at least 1")
		}
		if *req.MaxStudents < course.CurrentStudents {
			return response.BadRequest(c, "Capacity cannot be below current enrollment")
		}
		updates["max_students"] = *req.MaxStudents
	}
	if req.IsOpen != nil {
		updates["is_open"] = *req.IsOpen
	}
	if req.EnrollmentDeadline != nil {
		updates["enrollment_deadline"] = *req.EnrollmentDeadline
	}
	if req.Tags != nil {
		tags, err := tagsJSON(req.Tags)
		if err != nil {
			return response.BadRequest(c, "Invalid tags")
		}
		updates["tags"] = tags
	}
	if req.Featured != nil {
		updates["featured"] = *req.Featured
	}
	if req.CertificateEnabled != nil {
		updates["certificate_enabled"] = *req.CertificateEnabled
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		updates["end_date"] = *req.EndDate
	}

	if len(updates) == 0 {
		return response.BadRequest(c, "No fields to update")
	}

	if err := h.db.Model(&course).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update course")
	}

	h.invalidateFeaturedCache(c)
	return response.Success(c, course)
}

// Delete soft-deletes a course
func (h *CourseHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid course ID")
	}

	var course model.Course
	if err := h.db.First(&course, id).Error; err != nil {
		return response.FromDBError(c, err, "Course not found")
	}

	if err := h.db.Model(&course).Update("is_active", false).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete course")
	}
	if err := h.db.Delete(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete course")
	}

	h.invalidateFeaturedCache(c)
	return response.SuccessWithMessage(c, "Course deleted successfully", nil)
}

// StatusRequest changes the course lifecycle status
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SetStatus moves the course to a new lifecycle status. Transitions are
// unrestricted; any known status can follow any other.
func (h *CourseHandler) SetStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid course ID")
	}

	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if !model.IsValidCourseStatus(req.Status) {
		return response.BadRequest(c, "Invalid course status")
	}

	var course model.Course
	if err := h.db.First(&course, id).Error; err != nil {
		return response.FromDBError(c, err, "Course not found")
	}

	if err := h.db.Model(&course).Update("status", req.Status).Error; err != nil {
		return response.InternalServerError(c, "Failed to update course status")
	}

	h.invalidateFeaturedCache(c)
	return response.Success(c, course)
}
