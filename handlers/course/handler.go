package course

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/wahegurunursing/classes-api/model"
	"github.com/wahegurunursing/classes-api/services"
	"github.com/wahegurunursing/classes-api/utils/cache"
	"github.com/wahegurunursing/classes-api/utils/middleware"
	"github.com/wahegurunursing/classes-api/utils/response"
)

const featuredCacheKey = "courses:featured"
const featuredCacheTTL = 5 * time.Minute

// CourseHandler handles course catalog requests
type CourseHandler struct {
	db            *gorm.DB
	courseService *services.CourseService
	redisCache    *cache.RedisCache
}

// NewCourseHandler creates a new course handler. The cache may be nil;
// featured listing then always hits the database.
func NewCourseHandler(db *gorm.DB, courseService *services.CourseService, redisCache *cache.RedisCache) *CourseHandler {
	return &CourseHandler{
		db:            db,
		courseService: courseService,
		redisCache:    redisCache,
	}
}

var sortableColumns = map[string]string{
	"created_at":     "created_at",
	"title":          "title",
	"price":          "price",
	"rating_average": "rating_average",
	"start_date":     "start_date",
}

// List returns the active course catalog with filtering, search, sorting
// and pagination
func (h *CourseHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	query := h.db.Model(&model.Course{}).Where("is_active = ?", true)

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if level := c.Query("level"); level != "" {
		query = query.Where("level = ?", level)
	}
	if instructor := c.QueryInt("instructor", 0); instructor > 0 {
		query = query.Where("instructor_id = ?", instructor)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	} else {
		query = query.Where("status = ?", model.CourseStatusPublished)
	}
	if c.Query("featured") == "true" {
		query = query.Where("featured = ?", true)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR tags::text ILIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "")
	}

	sortBy := c.Query("sortBy", "created_at")
	column, ok := sortableColumns[sortBy]
	if !ok {
		column = "created_at"
	}
	order := "DESC"
	if strings.EqualFold(c.Query("sortOrder"), "asc") {
		order = "ASC"
	}

	pagination := response.CalculatePagination(page, limit, total)
	offset := (pagination.CurrentPage - 1) * pagination.PerPage

	var courses []model.Course
	if err := query.
		Preload("Instructor").
		Order(fmt.Sprintf("%s %s", column, order)).
		Offset(offset).
		Limit(pagination.PerPage).
		Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "")
	}

	return response.Paginated(c, courses, pagination)
}

// Featured returns featured published courses, cached for five minutes
func (h *CourseHandler) Featured(c *fiber.Ctx) error {
	if h.redisCache != nil {
		var cached []model.Course
		if err := h.redisCache.GetJSON(c.Context(), featuredCacheKey, &cached); err == nil {
			return response.Success(c, cached)
		}
	}

	var courses []model.Course
	if err := h.db.
		Preload("Instructor").
		Where("is_active = ? AND status = ? AND featured = ?", true, model.CourseStatusPublished, true).
		Order("rating_average DESC").
		Limit(10).
		Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "")
	}

	if h.redisCache != nil {
		h.redisCache.SetJSON(c.Context(), featuredCacheKey, courses, featuredCacheTTL)
	}

	return response.Success(c, courses)
}

// Get returns one course with its content, instructor and reviewer
// identities. Unpublished courses are hidden from unauthenticated callers
// as not found.
func (h *CourseHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid course ID")
	}

	var course model.Course
	if err := h.db.
		Preload("Instructor").
		Preload("Modules", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Reviews.User").
		First(&course, id).Error; err != nil {
		return response.FromDBError(c, err, "Course not found")
	}

	if course.Status != model.CourseStatusPublished || !course.IsActive {
		userID, authed := middleware.GetUserID(c)
		role, _ := middleware.GetUserRole(c)
		isPrivileged := authed && (role == model.RoleAdmin || course.InstructorID == userID)
		if !isPrivileged {
			return response.NotFound(c, "Course not found")
		}
	}

	return response.Success(c, course)
}

// MyCourses lists the authenticated instructor's courses
func (h *CourseHandler) MyCourses(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var courses []model.Course
	if err := h.db.
		Where("instructor_id = ?", userID).
		Order("created_at DESC").
		Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "")
	}

	return response.Success(c, courses)
}

// invalidateFeaturedCache drops the cached featured list after mutations
func (h *CourseHandler) invalidateFeaturedCache(c *fiber.Ctx) {
	if h.redisCache != nil {
		h.redisCache.Delete(c.Context(), featuredCacheKey)
	}
}
