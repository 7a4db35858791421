package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeProgress(t *testing.T) {
	tests := []struct {
		name          string
		completed     int
		total         int
		wantCompleted int
		wantPercent   int
	}{
		{"halfway", 5, 10, 5, 50},
		{"complete", 10, 10, 10, 100},
		{"over total clamps", 15, 10, 10, 100},
		{"negative clamps to zero", -3, 10, 0, 0},
		{"zero total", 4, 0, 4, 0},
		{"rounds to nearest", 1, 3, 1, 33},
		{"rounds up", 2, 3, 2, 67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completed, percent := ComputeProgress(tt.completed, tt.total)
			assert.Equal(t, tt.wantCompleted, completed)
			assert.Equal(t, tt.wantPercent, percent)
		})
	}
}

func TestComputeTotalPaid(t *testing.T) {
	payments := []EnrollmentPayment{
		{Amount: 100, Status: "completed"},
		{Amount: 50, Status: "pending"},
		{Amount: 25, Status: "completed"},
		{Amount: 75, Status: "refunded"},
		{Amount: 10, Status: "failed"},
	}

	assert.InDelta(t, 125.0, ComputeTotalPaid(payments), 0.0001)
	assert.Zero(t, ComputeTotalPaid(nil))
}

func TestApplyProgressAutoCompletes(t *testing.T) {
	now := time.Now()
	e := Enrollment{Status: EnrollmentStatusActive, TotalLessons: 10}

	completed := e.ApplyProgress(4, now)
	assert.False(t, completed)
	assert.Equal(t, EnrollmentStatusActive, e.Status)
	assert.Equal(t, 40, e.ProgressPercentage)
	assert.NotNil(t, e.LastAccessed)
	assert.Nil(t, e.CompletionDate)

	completed = e.ApplyProgress(10, now)
	assert.True(t, completed)
	assert.Equal(t, EnrollmentStatusCompleted, e.Status)
	assert.Equal(t, 100, e.ProgressPercentage)
	assert.NotNil(t, e.CompletionDate)
}

func TestApplyProgressOnlyActiveTransitions(t *testing.T) {
	now := time.Now()
	e := Enrollment{Status: EnrollmentStatusSuspended, TotalLessons: 5}

	completed := e.ApplyProgress(5, now)
	assert.False(t, completed)
	assert.Equal(t, EnrollmentStatusSuspended, e.Status)
	assert.Equal(t, 100, e.ProgressPercentage)
	assert.Nil(t, e.CompletionDate)
}

func TestEnrollmentValidators(t *testing.T) {
	assert.True(t, IsValidEnrollmentStatus(EnrollmentStatusActive))
	assert.False(t, IsValidEnrollmentStatus("enrolled"))

	assert.True(t, IsValidPaymentMethod("stripe"))
	assert.False(t, IsValidPaymentMethod("cash"))

	assert.True(t, IsValidPaymentStatus("refunded"))
	assert.False(t, IsValidPaymentStatus("chargeback"))

	assert.True(t, IsValidAttendanceStatus("late"))
	assert.False(t, IsValidAttendanceStatus("unknown"))
}
