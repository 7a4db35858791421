package course

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wahegurunursing/classes-api/model"
	"github.com/wahegurunursing/classes-api/services"
)

func newHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.CourseModule{},
		&model.Lesson{},
		&model.CourseReview{},
	))
	return db
}

func seedUpdateCourse(t *testing.T, db *gorm.DB, currentStudents, maxStudents int) *model.Course {
	t.Helper()

	instructor := &model.User{
		FirstName: "Test", LastName: "Instructor",
		Email: "instructor@example.com", PasswordHash: "x",
		Phone: "14155552671", Role: model.RoleInstructor, IsActive: true,
	}
	require.NoError(t, db.Create(instructor).Error)

	course := &model.Course{
		Title:           "NCLEX Foundations",
		Description:     "Preparation course for the NCLEX examination",
		Category:        model.CategoryNCLEXUSA,
		Level:           model.LevelBeginner,
		Duration:        40,
		InstructorID:    instructor.ID,
		CurrentStudents: currentStudents,
		MaxStudents:     maxStudents,
		IsOpen:          true,
		Status:          model.CourseStatusPublished,
		IsActive:        true,
	}
	require.NoError(t, db.Create(course).Error)
	return course
}

func updateCourseRequest(t *testing.T, app *fiber.App, courseID uint, body map[string]interface{}) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("PUT", fmt.Sprintf("/courses/%d", courseID), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func newUpdateApp(db *gorm.DB) *fiber.App {
	h := NewCourseHandler(db, services.NewCourseService(db), nil)
	app := fiber.New()
	app.Put("/courses/:id", h.Update)
	return app
}

func TestUpdateRejectsZeroCapacity(t *testing.T) {
	db := newHandlerTestDB(t)
	course := seedUpdateCourse(t, db, 0, 50)
	app := newUpdateApp(db)

	resp := updateCourseRequest(t, app, course.ID, map[string]interface{}{"max_students": 0})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var reloaded model.Course
	require.NoError(t, db.First(&reloaded, course.ID).Error)
	assert.Equal(t, 50, reloaded.MaxStudents)
}

func TestUpdateRejectsCapacityBelowEnrollment(t *testing.T) {
	db := newHandlerTestDB(t)
	course := seedUpdateCourse(t, db, 5, 50)
	app := newUpdateApp(db)

	resp := updateCourseRequest(t, app, course.ID, map[string]interface{}{"max_students": 3})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpdateCapacity(t *testing.T) {
	db := newHandlerTestDB(t)
	course := seedUpdateCourse(t, db, 5, 50)
	app := newUpdateApp(db)

	resp := updateCourseRequest(t, app, course.ID, map[string]interface{}{"max_students": 20})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var reloaded model.Course
	require.NoError(t, db.First(&reloaded, course.ID).Error)
	assert.Equal(t, 20, reloaded.MaxStudents)
}
