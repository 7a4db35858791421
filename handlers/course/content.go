package course

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wahegurunursing/classes-api/model"
	"github.com/wahegurunursing/classes-api/utils/response"
	"github.com/wahegurunursing/classes-api/utils/validation"
)

// ModuleRequest represents a course module creation request
type ModuleRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description,omitempty"`
	Duration    int    `json:"duration,omitempty"`
	Position    int    `json:"position,omitempty"`
}

// LessonRequest represents a lesson creation request
type LessonRequest struct {
	Title    string `json:"title" validate:"required,max=255"`
	Type     string `json:"type,omitempty"`
	Content  string `json:"content,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
	Duration int    `json:"duration,omitempty"`
	Position int    `json:"position,omitempty"`
}

// AddModule appends a content module to a course and refreshes the derived
// content totals
func (h *CourseHandler) AddModule(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course ID")
	}

	var course model.Course
	if err := h.db.First(&course, courseID).Error; err != nil {
		return response.FromDBError(c, err, "Course not found")
	}

	var req ModuleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Title = validation.SanitizeString(req.Title)
	if req.Title == "" {
		return response.BadRequest(c, "Module title is required")
	}

	module := model.CourseModule{
		CourseID:    uint(courseID),
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		Position:    req.Position,
	}
	if err := h.db.Create(&module).Error; err != nil {
		return response.InternalServerError(c, "Failed to add module")
	}

	if err := h.courseService.RecomputeContentTotals(uint(courseID)); err != nil {
		return response.InternalServerError(c, "Failed to update content totals")
	}

	return response.Created(c, module)
}

// AddLesson appends a lesson to a module and refreshes the course totals
func (h *CourseHandler) AddLesson(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course ID")
	}
	moduleID, err := c.ParamsInt("moduleId")
	if err != nil || moduleID < 1 {
		return response.BadRequest(c, "Invalid module ID")
	}

	var module model.CourseModule
	if err := h.db.Where("id = ? AND course_id = ?", moduleID, courseID).
		First(&module).Error; err != nil {
		return response.FromDBError(c, err, "Module not found")
	}

	var req LessonRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Title = validation.SanitizeString(req.Title)
	if req.Title == "" {
		return response.BadRequest(c, "Lesson title is required")
	}

	lessonType := req.Type
	if lessonType == "" {
		lessonType = model.LessonTypeText
	}
	valid := false
	for _, t := range model.ValidLessonTypes {
		if lessonType == t {
			valid = true
			break
		}
	}
	if !valid {
		return response.BadRequest(c, "Invalid lesson type")
	}

	lesson := model.Lesson{
		ModuleID: uint(moduleID),
		Title:    req.Title,
		Type:     lessonType,
		Content:  req.Content,
		VideoURL: req.VideoURL,
		Duration: req.Duration,
		Position: req.Position,
	}
	if err := h.db.Create(&lesson).Error; err != nil {
		return response.InternalServerError(c, "Failed to add lesson")
	}

	if err := h.courseService.RecomputeContentTotals(uint(courseID)); err != nil {
		return response.InternalServerError(c, "Failed to update content totals")
	}

	return response.Created(c, lesson)
}

// DeleteModule removes a module and its lessons, then refreshes the totals
func (h *CourseHandler) DeleteModule(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course ID")
	}
	moduleID, err := c.ParamsInt("moduleId")
	if err != nil || moduleID < 1 {
		return response.BadRequest(c, "Invalid module ID")
	}

	var module model.CourseModule
	if err := h.db.Where("id = ? AND course_id = ?", moduleID, courseID).
		First(&module).Error; err != nil {
		return response.FromDBError(c, err, "Module not found")
	}

	if err := h.db.Delete(&module).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete module")
	}

	if err := h.courseService.RecomputeContentTotals(uint(courseID)); err != nil {
		return response.InternalServerError(c, "Failed to update content totals")
	}

	return response.SuccessWithMessage(c, "Module deleted successfully", nil)
}
