package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Course categories
const (
	CategoryNCLEXUSA       = "NCLEX-USA"
	CategoryNCLEXNZ        = "NCLEX-NZ"
	CategoryOSCECBT        = "OSCE-CBT"
	CategoryGeneralNursing = "General Nursing"
	CategorySpecialized    = "Specialized"
)

// ValidCategories lists every course category
var ValidCategories = []string{
	CategoryNCLEXUSA, CategoryNCLEXNZ, CategoryOSCECBT,
	CategoryGeneralNursing, CategorySpecialized,
}

// Course levels
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
	LevelExpert       = "Expert"
)

// ValidLevels lists every course level
var ValidLevels = []string{LevelBeginner, LevelIntermediate, LevelAdvanced, LevelExpert}

// Course lifecycle statuses
const (
	CourseStatusDraft     = "draft"
	CourseStatusPublished = "published"
	CourseStatusArchived  = "archived"
	CourseStatusSuspended = "suspended"
)

// ValidCourseStatuses lists every course status
var ValidCourseStatuses = []string{
	CourseStatusDraft, CourseStatusPublished, CourseStatusArchived, CourseStatusSuspended,
}

// ValidCurrencies lists the accepted price currencies
var ValidCurrencies = []string{"USD", "EUR", "GBP", "CAD", "AUD", "NZD"}

// Course represents a catalog entry for a coaching program
type Course struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Title       string `gorm:"type:varchar(100);not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`
	Category    string `gorm:"type:varchar(30);not null;index:idx_courses_category_level" json:"category"`
	Level       string `gorm:"type:varchar(20);not null;index:idx_courses_category_level" json:"level"`
	Duration    int    `gorm:"not null" json:"duration"` // total hours

	Price    float64 `gorm:"not null" json:"price"`
	Currency string  `gorm:"type:varchar(10);default:'USD'" json:"currency"`

	InstructorID uint `gorm:"not null;index" json:"instructor_id"`

	// Derived sums over modules, recomputed on every content mutation
	TotalLessons  int `gorm:"default:0" json:"total_lessons"`
	TotalDuration int `gorm:"default:0" json:"total_duration"`

	// Enrollment capacity
	MaxStudents        int        `gorm:"default:50" json:"max_students"`
	CurrentStudents    int        `gorm:"default:0" json:"current_students"`
	IsOpen             bool       `gorm:"default:true" json:"is_open"`
	EnrollmentDeadline *time.Time `json:"enrollment_deadline,omitempty"`

	// Aggregate rating, recomputed from reviews
	RatingAverage float64 `gorm:"default:0" json:"rating_average"`
	RatingCount   int     `gorm:"default:0" json:"rating_count"`

	Status   string         `gorm:"type:varchar(20);default:'draft';index:idx_courses_status_active" json:"status"`
	IsActive bool           `gorm:"default:true;index:idx_courses_status_active" json:"is_active"`
	Tags     datatypes.JSON `gorm:"type:jsonb" json:"tags,omitempty"`
	Featured bool           `gorm:"default:false;index" json:"featured"`

	CertificateEnabled bool       `gorm:"default:true" json:"certificate_enabled"`
	StartDate          *time.Time `json:"start_date,omitempty"`
	EndDate            *time.Time `json:"end_date,omitempty"`

	// Relationships
	Instructor User           `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	Modules    []CourseModule `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"modules,omitempty"`
	Reviews    []CourseReview `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"reviews,omitempty"`
}

// CourseModule is an ordered content unit within a course
type CourseModule struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CourseID    uint   `gorm:"not null;index" json:"course_id"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Duration    int    `gorm:"default:0" json:"duration"` // hours
	Position    int    `gorm:"default:0" json:"position"`

	Lessons []Lesson `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
}

// Lesson types
const (
	LessonTypeVideo      = "video"
	LessonTypeText       = "text"
	LessonTypeQuiz       = "quiz"
	LessonTypeAssignment = "assignment"
)

// ValidLessonTypes lists every lesson type
var ValidLessonTypes = []string{LessonTypeVideo, LessonTypeText, LessonTypeQuiz, LessonTypeAssignment}

// Lesson is an ordered item within a module
type Lesson struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ModuleID uint   `gorm:"not null;index" json:"module_id"`
	Title    string `gorm:"type:varchar(255);not null" json:"title"`
	Type     string `gorm:"type:varchar(20);default:'text'" json:"type"`
	Content  string `gorm:"type:text" json:"content,omitempty"`
	VideoURL string `gorm:"type:varchar(500)" json:"video_url,omitempty"`
	Duration int    `gorm:"default:0" json:"duration"` // minutes
	Position int    `gorm:"default:0" json:"position"`
}

// CourseReview is one user's review of a course. The composite unique index
// enforces at most one review per (course, user) pair.
type CourseReview struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CourseID uint   `gorm:"not null;uniqueIndex:idx_reviews_course_user" json:"course_id"`
	UserID   uint   `gorm:"not null;uniqueIndex:idx_reviews_course_user" json:"user_id"`
	Rating   int    `gorm:"not null" json:"rating"` // 1..5
	Comment  string `gorm:"type:varchar(500)" json:"comment,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// IsAvailable reports whether the course currently accepts enrollments:
// active, published, open and not full.
func (c *Course) IsAvailable() bool {
	return c.IsActive &&
		c.Status == CourseStatusPublished &&
		c.IsOpen &&
		c.CurrentStudents < c.MaxStudents
}

// EnrollmentPercentage is the capacity fill ratio, rounded to whole percent
func (c *Course) EnrollmentPercentage() int {
	if c.MaxStudents == 0 {
		return 0
	}
	return int(float64(c.CurrentStudents)/float64(c.MaxStudents)*100 + 0.5)
}

// ComputeContentTotals returns the derived lesson count and duration sum for
// a module list. Pure function of content: recomputing twice from the same
// modules yields the same values.
func ComputeContentTotals(modules []CourseModule) (totalLessons, totalDuration int) {
	for _, m := range modules {
		totalLessons += len(m.Lessons)
		totalDuration += m.Duration
	}
	return totalLessons, totalDuration
}

// ComputeRating returns the arithmetic mean and count over review scores,
// zero when there are no reviews.
func ComputeRating(reviews []CourseReview) (average float64, count int) {
	if len(reviews) == 0 {
		return 0, 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews)), len(reviews)
}

func isOneOf(value string, allowed []string) bool {
	for _, v := range allowed {
		if value == v {
			return true
		}
	}
	return false
}

// IsValidCategory reports whether the category is a known course category
func IsValidCategory(category string) bool { return isOneOf(category, ValidCategories) }

// IsValidLevel reports whether the level is a known course level
func IsValidLevel(level string) bool { return isOneOf(level, ValidLevels) }

// IsValidCourseStatus reports whether the status is a known course status
func IsValidCourseStatus(status string) bool { return isOneOf(status, ValidCourseStatuses) }

// IsValidCurrency reports whether the currency is accepted for pricing
func IsValidCurrency(currency string) bool { return isOneOf(currency, ValidCurrencies) }
