package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wahegurunursing/classes-api/model"
)

func newEnrollmentService(t *testing.T) (*gorm.DB, *EnrollmentService) {
	t.Helper()
	db := newTestDB(t)
	return db, NewEnrollmentService(db, NewCourseService(db), nil)
}

func TestEnrollClaimsSeat(t *testing.T) {
	db, svc := newEnrollmentService(t)
	course := seedCourse(t, db, 10)
	student := seedUser(t, db, model.RoleStudent)

	enrollment, err := svc.Enroll(student.ID, course.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentStatusActive, enrollment.Status)
	assert.Equal(t, course.TotalLessons, enrollment.TotalLessons)
	assert.Equal(t, 1, reloadCourse(t, db, course.ID).CurrentStudents)
}

func TestEnrollRejectsDuplicate(t *testing.T) {
	db, svc := newEnrollmentService(t)
	course := seedCourse(t, db, 10)
	student := seedUser(t, db, model.RoleStudent)

	_, err := svc.Enroll(student.ID, course.ID, time.Now())
	require.NoError(t, err)

	_, err = svc.Enroll(student.ID, course.ID, time.Now())
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
	assert.Equal(t, 1, reloadCourse(t, db, course.ID).CurrentStudents)
}

// A concurrent enrollment can pass the duplicate count check and lose to
// the unique (student, course) index instead. The driver error must
// translate to gorm.ErrDuplicatedKey for Enroll to map it.
func TestDuplicateEnrollmentKeyTranslates(t *testing.T) {
	db, svc := newEnrollmentService(t)
	course := seedCourse(t, db, 10)
	student := seedUser(t, db, model.RoleStudent)

	_, err := svc.Enroll(student.ID, course.ID, time.Now())
	require.NoError(t, err)

	err = db.Create(&model.Enrollment{
		StudentID: student.ID,
		CourseID:  course.ID,
		StartDate: time.Now(),
	}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestEnrollFullCourse(t *testing.T) {
	db, svc := newEnrollmentService(t)
	course := seedCourse(t, db, 1)
	first := seedUser(t, db, model.RoleStudent)
	second := seedUser(t, db, model.RoleStudent)

	_, err := svc.Enroll(first.ID, course.ID, time.Now())
	require.NoError(t, err)

	_, err = svc.Enroll(second.ID, course.ID, time.Now())
	assert.ErrorIs(t, err, ErrCourseFull)
}

func TestCancelReleasesSeat(t *testing.T) {
	db, svc := newEnrollmentService(t)
	course := seedCourse(t, db, 10)
	student := seedUser(t, db, model.RoleStudent)

	enrollment, err := svc.Enroll(student.ID, course.ID, time.Now())
	require.NoError(t, err)

	cancelled, err := svc.Cancel(enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentStatusCancelled, cancelled.Status)
	assert.False(t, cancelled.IsActive)
	assert.Equal(t, 0, reloadCourse(t, db, course.ID).CurrentStudents)
}

func TestCancelCompletedEnrollmentReleasesSeat(t *testing.T) {
	db, svc := newEnrollmentService(t)
	course := seedCourse(t, db, 10)
	student := seedUser(t, db, model.RoleStudent)

	enrollment, err := svc.Enroll(student.ID, course.ID, time.Now())
	require.NoError(t, err)

	// Completion keeps the seat
	_, err = svc.ChangeStatus(enrollment.ID, model.EnrollmentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, 1, reloadCourse(t, db, course.ID).CurrentStudents)

	_, err = svc.Cancel(enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloadCourse(t, db, course.ID).CurrentStudents)
}

func TestCancelIsIdempotent(t *testing.T) {
	db, svc := newEnrollmentService(t)
	course := seedCourse(t, db, 10)
	student := seedUser(t, db, model.RoleStudent)

	enrollment, err := svc.Enroll(student.ID, course.ID, time.Now())
	require.NoError(t, err)

	_, err = svc.Cancel(enrollment.ID)
	require.NoError(t, err)
	_, err = svc.Cancel(enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloadCourse(t, db, course.ID).CurrentStudents)
}

func TestChangeStatusSeatBookkeeping(t *testing.T) {
	db, svc := newEnrollmentService(t)
	course := seedCourse(t, db, 10)
	student := seedUser(t, db, model.RoleStudent)

	enrollment, err := svc.Enroll(student.ID, course.ID, time.Now())
	require.NoError(t, err)

	// Suspension releases the seat
	_, err = svc.ChangeStatus(enrollment.ID, model.EnrollmentStatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, 0, reloadCourse(t, db, course.ID).CurrentStudents)

	// Reactivation claims it back
	_, err = svc.ChangeStatus(enrollment.ID, model.EnrollmentStatusActive)
	require.NoError(t, err)
	assert.Equal(t, 1, reloadCourse(t, db, course.ID).CurrentStudents)
}

func TestUpdateProgressAutoCompletes(t *testing.T) {
	db, svc := newEnrollmentService(t)
	course := seedCourse(t, db, 10)
	student := seedUser(t, db, model.RoleStudent)

	enrollment, err := svc.Enroll(student.ID, course.ID, time.Now())
	require.NoError(t, err)

	updated, err := svc.UpdateProgress(enrollment.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 100, updated.ProgressPercentage)
	assert.Equal(t, model.EnrollmentStatusCompleted, updated.Status)
	assert.NotNil(t, updated.CompletionDate)
}

func TestRecordPaymentRefreshesTotalPaid(t *testing.T) {
	db, svc := newEnrollmentService(t)
	course := seedCourse(t, db, 10)
	student := seedUser(t, db, model.RoleStudent)

	enrollment, err := svc.Enroll(student.ID, course.ID, time.Now())
	require.NoError(t, err)

	_, err = svc.RecordPayment(enrollment.ID, 100, "USD", "stripe", "completed", "tx-1")
	require.NoError(t, err)
	_, err = svc.RecordPayment(enrollment.ID, 50, "USD", "stripe", "pending", "tx-2")
	require.NoError(t, err)

	var reloaded model.Enrollment
	require.NoError(t, db.First(&reloaded, enrollment.ID).Error)
	assert.InDelta(t, 100.0, reloaded.TotalPaid, 0.0001)
}
