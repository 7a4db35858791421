package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/wahegurunursing/classes-api/model"
)

var (
	ErrCourseFull      = errors.New("course is full")
	ErrDuplicateReview = errors.New("user has already reviewed this course")
	ErrCourseNotFound  = errors.New("course not found")
)

// CourseService owns the derived state of courses: seat counters, rating
// aggregates and content totals.
type CourseService struct {
	db *gorm.DB
}

// NewCourseService creates a new course service
func NewCourseService(db *gorm.DB) *CourseService {
	return &CourseService{db: db}
}

// AddStudent claims one seat on the course. The conditional UPDATE makes
// the capacity check and increment a single atomic statement, so two
// concurrent enrollments can never oversell the last seat.
func (s *CourseService) AddStudent(tx *gorm.DB, courseID uint) error {
	res := tx.Model(&model.Course{}).
		Where("id = ? AND current_students < max_students", courseID).
		UpdateColumn("current_students", gorm.Expr("current_students + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&model.Course{}).Where("id = ?", courseID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrCourseNotFound
		}
		return ErrCourseFull
	}
	return nil
}

// RemoveStudent releases one seat, never dropping the counter below zero.
func (s *CourseService) RemoveStudent(tx *gorm.DB, courseID uint) error {
	return tx.Model(&model.Course{}).
		Where("id = ? AND current_students > 0", courseID).
		UpdateColumn("current_students", gorm.Expr("current_students - 1")).Error
}

// AddReview creates a review and folds it into the course rating inside one
// transaction. The composite unique index backs up the duplicate check.
func (s *CourseService) AddReview(courseID, userID uint, rating int, comment string) (*model.CourseReview, error) {
	var review *model.CourseReview

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&model.CourseReview{}).
			Where("course_id = ? AND user_id = ?", courseID, userID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicateReview
		}

		review = &model.CourseReview{
			CourseID: courseID,
			UserID:   userID,
			Rating:   rating,
			Comment:  comment,
		}
		if err := tx.Create(review).Error; err != nil {
			return err
		}

		return s.recomputeRating(tx, courseID)
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

// RecomputeRating refreshes the stored rating aggregate from the review rows.
func (s *CourseService) RecomputeRating(courseID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.recomputeRating(tx, courseID)
	})
}

func (s *CourseService) recomputeRating(tx *gorm.DB, courseID uint) error {
	var reviews []model.CourseReview
	if err := tx.Where("course_id = ?", courseID).Find(&reviews).Error; err != nil {
		return err
	}

	average, count := model.ComputeRating(reviews)
	return tx.Model(&model.Course{}).
		Where("id = ?", courseID).
		Updates(map[string]interface{}{
			"rating_average": average,
			"rating_count":   count,
		}).Error
}

// RecomputeContentTotals refreshes the derived lesson count and duration sum
// after any module or lesson mutation.
func (s *CourseService) RecomputeContentTotals(courseID uint) error {
	var modules []model.CourseModule
	if err := s.db.Preload("Lessons").Where("course_id = ?", courseID).Find(&modules).Error; err != nil {
		return err
	}

	totalLessons, totalDuration := model.ComputeContentTotals(modules)
	return s.db.Model(&model.Course{}).
		Where("id = ?", courseID).
		Updates(map[string]interface{}{
			"total_lessons":  totalLessons,
			"total_duration": totalDuration,
		}).Error
}

// CloseExpiredEnrollments closes enrollment on courses whose deadline has
// passed. Returns the number of courses closed.
func (s *CourseService) CloseExpiredEnrollments() (int64, error) {
	res := s.db.Model(&model.Course{}).
		Where("is_open = ? AND enrollment_deadline IS NOT NULL AND enrollment_deadline < NOW()", true).
		UpdateColumn("is_open", false)
	return res.RowsAffected, res.Error
}
