package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wahegurunursing/classes-api/model"
)

func TestAddStudentExactlyFillsCapacity(t *testing.T) {
	db := newTestDB(t)
	svc := NewCourseService(db)
	course := seedCourse(t, db, 3)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.AddStudent(db, course.ID))
	}

	err := svc.AddStudent(db, course.ID)
	assert.ErrorIs(t, err, ErrCourseFull)
	assert.Equal(t, 3, reloadCourse(t, db, course.ID).CurrentStudents)
}

func TestAddStudentConcurrentClaims(t *testing.T) {
	db := newTestDB(t)
	svc := NewCourseService(db)
	course := seedCourse(t, db, 5)

	const attempts = 10
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.AddStudent(db, course.ID)
		}()
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
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 5, full)
	assert.Equal(t, 5, reloadCourse(t, db, course.ID).CurrentStudents)
}

func TestAddStudentUnknownCourse(t *testing.T) {
	db := newTestDB(t)
	svc := NewCourseService(db)

	err := svc.AddStudent(db, 9999)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestRemoveStudentFloorsAtZero(t *testing.T) {
	db := newTestDB(t)
	svc := NewCourseService(db)
	course := seedCourse(t, db, 3)

	require.NoError(t, svc.RemoveStudent(db, course.ID))
	assert.Equal(t, 0, reloadCourse(t, db, course.ID).CurrentStudents)
}

func TestAddReviewRejectsDuplicate(t *testing.T) {
	db := newTestDB(t)
	svc := NewCourseService(db)
	course := seedCourse(t, db, 10)
	student := seedUser(t, db, model.RoleStudent)

	_, err := svc.AddReview(course.ID, student.ID, 4, "solid material")
	require.NoError(t, err)

	reloaded := reloadCourse(t, db, course.ID)
	assert.InDelta(t, 4.0, reloaded.RatingAverage, 0.0001)
	assert.Equal(t, 1, reloaded.RatingCount)

	_, err = svc.AddReview(course.ID, student.ID, 5, "changed my mind")
	assert.ErrorIs(t, err, ErrDuplicateReview)

	// A second reviewer folds into the mean
	other := seedUser(t, db, model.RoleStudent)
	_, err = svc.AddReview(course.ID, other.ID, 2, "")
	require.NoError(t, err)

	reloaded = reloadCourse(t, db, course.ID)
	assert.InDelta(t, 3.0, reloaded.RatingAverage, 0.0001)
	assert.Equal(t, 2, reloaded.RatingCount)
}
