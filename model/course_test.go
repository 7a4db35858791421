package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeContentTotals(t *testing.T) {
	modules := []CourseModule{
		{Duration: 4, Lessons: []Lesson{{Title: "a"}, {Title: "b"}}},
		{Duration: 6, Lessons: []Lesson{{Title: "c"}}},
		{Duration: 2},
	}

	lessons, duration := ComputeContentTotals(modules)
	assert.Equal(t, 3, lessons)
	assert.Equal(t, 12, duration)

	// Recomputing from the same content must not drift
	lessons2, duration2 := ComputeContentTotals(modules)
	assert.Equal(t, lessons, lessons2)
	assert.Equal(t, duration, duration2)
}

func TestComputeContentTotalsEmpty(t *testing.T) {
	lessons, duration := ComputeContentTotals(nil)
	assert.Zero(t, lessons)
	assert.Zero(t, duration)
}

func TestComputeRating(t *testing.T) {
	reviews := []CourseReview{{Rating: 5}, {Rating: 4}, {Rating: 3}}

	average, count := ComputeRating(reviews)
	assert.InDelta(t, 4.0, average, 0.0001)
	assert.Equal(t, 3, count)
}

func TestComputeRatingNoReviews(t *testing.T) {
	average, count := ComputeRating(nil)
	assert.Zero(t, average)
	assert.Zero(t, count)
}

func TestCourseIsAvailable(t *testing.T) {
	course := Course{
		IsActive:        true,
		Status:          CourseStatusPublished,
		IsOpen:          true,
		CurrentStudents: 10,
		MaxStudents:     50,
	}
	assert.True(t, course.IsAvailable())

	full := course
	full.CurrentStudents = 50
	assert.False(t, full.IsAvailable())

	closed := course
	closed.IsOpen = false
	assert.False(t, closed.IsAvailable())

	draft := course
	draft.Status = CourseStatusDraft
	assert.False(t, draft.IsAvailable())

	inactive := course
	inactive.IsActive = false
	assert.False(t, inactive.IsAvailable())
}

func TestEnrollmentPercentage(t *testing.T) {
	course := Course{CurrentStudents: 25, MaxStudents: 50}
	assert.Equal(t, 50, course.EnrollmentPercentage())

	course.CurrentStudents = 1
	course.MaxStudents = 3
	assert.Equal(t, 33, course.EnrollmentPercentage())

	course.MaxStudents = 0
	assert.Equal(t, 0, course.EnrollmentPercentage())
}

func TestCourseValidators(t *testing.T) {
	assert.True(t, IsValidCategory(CategoryNCLEXUSA))
	assert.False(t, IsValidCategory("Gardening"))

	assert.True(t, IsValidLevel(LevelAdvanced))
	assert.False(t, IsValidLevel("advanced"))

	assert.True(t, IsValidCourseStatus(CourseStatusPublished))
	assert.False(t, IsValidCourseStatus("live"))

	assert.True(t, IsValidCurrency("USD"))
	assert.False(t, IsValidCurrency("INR"))
}
