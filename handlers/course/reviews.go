package course

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wahegurunursing/classes-api/model"
	"github.com/wahegurunursing/classes-api/services"
	"github.com/wahegurunursing/classes-api/utils/middleware"
	"github.com/wahegurunursing/classes-api/utils/response"
	"github.com/wahegurunursing/classes-api/utils/validation"
)

// ReviewRequest represents a course review submission
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment,omitempty" validate:"max=500"`
}

// AddReview records one review per user per course and refreshes the
// course rating aggregate
func (h *CourseHandler) AddReview(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course ID")
	}

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Rating < 1 || req.Rating > 5 {
		return response.BadRequest(c, "Rating must be between 1 and 5")
	}
	if len(req.Comment) > 500 {
		return response.BadRequest(c, "Comment must be at most 500 characters")
	}

	var course model.Course
	if err := h.db.First(&course, courseID).Error; err != nil {
		return response.FromDBError(c, err, "Course not found")
	}

	review, err := h.courseService.AddReview(uint(courseID), userID, req.Rating, validation.SanitizeString(req.Comment))
	if err != nil {
		if errors.Is(err, services.ErrDuplicateReview) {
			return response.ValidationError(c, "You have already reviewed this course")
		}
		return response.InternalServerError(c, "Failed to add review")
	}

	h.invalidateFeaturedCache(c)
	return response.Created(c, review)
}

// ListReviews returns the reviews for a course with reviewer identities
func (h *CourseHandler) ListReviews(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course ID")
	}

	var reviews []model.CourseReview
	if err := h.db.
		Preload("User").
		Where("course_id = ?", courseID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return response.InternalServerError(c, "")
	}

	return response.Success(c, reviews)
}
