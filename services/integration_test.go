package services

import (
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wahegurunursing/classes-api/database"
	"github.com/wahegurunursing/classes-api/model"
)

// TestCapacityRaceIntegration exercises the atomic seat claim against a real
// PostgreSQL instance: for capacity K, exactly K of the concurrent
// enrollments succeed and the rest fail with ErrCourseFull.
//
// Requires a running PostgreSQL configured via the usual DB_* environment
// variables. Set RUN_INTEGRATION_TESTS=true to run.
func TestCapacityRaceIntegration(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	store, err := database.StartGORM()
	require.NoError(t, err)
	require.NoError(t, store.Init())
	defer store.Close()

	db := store.GetDB().(*gorm.DB)
	courses := NewCourseService(db)
	enrollments := NewEnrollmentService(db, courses, nil)

	run := uuid.New().String()[:8]
	instructor := &model.User{
		FirstName: "Load", LastName: "Test",
		Email:        fmt.Sprintf("instructor-%s@example.com", run),
		PasswordHash: "x", Phone: "14155552671",
		Role: model.RoleInstructor, IsActive: true,
	}
	require.NoError(t, db.Create(instructor).Error)

	const capacity = 5
	course := &model.Course{
		Title:        fmt.Sprintf("Capacity Race %s", run),
		Description:  "Concurrency check course for enrollment capacity",
		Category:     model.CategoryNCLEXUSA,
		Level:        model.LevelBeginner,
		Duration:     10,
		InstructorID: instructor.ID,
		MaxStudents:  capacity,
		IsOpen:       true,
		Status:       model.CourseStatusPublished,
		IsActive:     true,
	}
	require.NoError(t, db.Create(course).Error)

	const contenders = 20
	students := make([]*model.User, contenders)
	for i := range students {
		students[i] = &model.User{
			FirstName: "Student", LastName: fmt.Sprint(i),
			Email:        fmt.Sprintf("student-%s-%d@example.com", run, i),
			PasswordHash: "x", Phone: "14155552671",
			Role: model.RoleStudent, IsActive: true,
		}
		require.NoError(t, db.Create(students[i]).Error)
	}

	defer func() {
		db.Unscoped().Where("course_id = ?", course.ID).Delete(&model.Enrollment{})
		db.Unscoped().Delete(course)
		db.Unscoped().Delete(instructor)
		for _, s := range students {
			db.Unscoped().Delete(s)
		}
	}()

	results := make(chan error, contenders)
	var wg sync.WaitGroup
	for _, s := range students {
		wg.Add(1)
		go func(studentID uint) {
			defer wg.Done()
			_, err := enrollments.Enroll(studentID, course.ID, time.Now())
			results <- err
		}(s.ID)
	}
	wg.Wait()
	close(results)

	var succeeded, full int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case err == ErrCourseFull:
			full++
		default:
			t.Fatalf("unexpected enrollment error: %v", err)
		}
	}

	assert.Equal(t, capacity, succeeded)
	assert.Equal(t, contenders-capacity, full)
	assert.Equal(t, capacity, reloadCourse(t, db, course.ID).CurrentStudents)
}
