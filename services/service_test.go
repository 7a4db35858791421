package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wahegurunursing/classes-api/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// In-memory SQLite cannot take concurrent writers
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.CourseModule{},
		&model.Lesson{},
		&model.CourseReview{},
		&model.Enrollment{},
		&model.EnrollmentPayment{},
		&model.AttendanceRecord{},
		&model.EnrollmentNote{},
		&model.GradeRecord{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role string) *model.User {
	t.Helper()

	var count int64
	db.Model(&model.User{}).Count(&count)

	user := &model.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        fmt.Sprintf("%s%d@example.com", role, count+1),
		PasswordHash: "x",
		Phone:        "14155552671",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedCourse(t *testing.T, db *gorm.DB, maxStudents int) *model.Course {
	t.Helper()

	instructor := seedUser(t, db, model.RoleInstructor)
	course := &model.Course{
		Title:        "NCLEX Foundations",
		Description:  "Preparation course for the NCLEX examination",
		Category:     model.CategoryNCLEXUSA,
		Level:        model.LevelBeginner,
		Duration:     40,
		Price:        199,
		Currency:     "USD",
		InstructorID: instructor.ID,
		MaxStudents:  maxStudents,
		IsOpen:       true,
		Status:       model.CourseStatusPublished,
		IsActive:     true,
		TotalLessons: 10,
	}
	require.NoError(t, db.Create(course).Error)
	return course
}

func reloadCourse(t *testing.T, db *gorm.DB, id uint) *model.Course {
	t.Helper()
	var course model.Course
	require.NoError(t, db.First(&course, id).Error)
	return &course
}
