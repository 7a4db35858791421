package course

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wahegurunursing/classes-api/model"
	"github.com/wahegurunursing/classes-api/utils/response"
)

// CourseStats aggregates enrollment and review figures for one course
type CourseStats struct {
	CourseID             uint             `json:"course_id"`
	TotalEnrollments     int64            `json:"total_enrollments"`
	EnrollmentsByStatus  map[string]int64 `json:"enrollments_by_status"`
	CurrentStudents      int              `json:"current_students"`
	MaxStudents          int              `json:"max_students"`
	EnrollmentPercentage int              `json:"enrollment_percentage"`
	RatingAverage        float64          `json:"rating_average"`
	RatingCount          int              `json:"rating_count"`
	CertificatesIssued   int64            `json:"certificates_issued"`
}

// Stats returns enrollment and rating statistics for a course
func (h *CourseHandler) Stats(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course ID")
	}

	var course model.Course
	if err := h.db.First(&course, courseID).Error; err != nil {
		return response.FromDBError(c, err, "Course not found")
	}

	stats := CourseStats{
		CourseID:             course.ID,
		EnrollmentsByStatus:  map[string]int64{},
		CurrentStudents:      course.CurrentStudents,
		MaxStudents:          course.MaxStudents,
		EnrollmentPercentage: course.EnrollmentPercentage(),
		RatingAverage:        course.RatingAverage,
		RatingCount:          course.RatingCount,
	}

	if err := h.db.Model(&model.Enrollment{}).
		Where("course_id = ?", courseID).
		Count(&stats.TotalEnrollments).Error; err != nil {
		return response.InternalServerError(c, "")
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := h.db.Model(&model.Enrollment{}).
		Select("status, COUNT(*) as count").
		Where("course_id = ?", courseID).
		Group("status").
		Scan(&counts).Error; err != nil {
		return response.InternalServerError(c, "")
	}
	for _, sc := range counts {
		stats.EnrollmentsByStatus[sc.Status] = sc.Count
	}

	if err := h.db.Model(&model.Enrollment{}).
		Where("course_id = ? AND certificate_issued = ?", courseID, true).
		Count(&stats.CertificatesIssued).Error; err != nil {
		return response.InternalServerError(c, "")
	}

	return response.Success(c, stats)
}
