package lms_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub/backend/lms"
)

func TestEnrollDuplicate(t *testing.T) {
	f := newFixture()
	f.addCourse(t, "courseY", "t1", text("l1", 0))
	svc := lms.NewEnrollmentService(f.store, f.store, f.store, f.log)

	e, err := svc.Enroll(f.ctx, "studentX", "courseY")
	require.NoError(t, err)
	assert.Empty(t, e.CompletedLessonIDs)
	assert.Nil(t, e.Grade)

	_, err = svc.Enroll(f.ctx, "studentX", "courseY")
	require.Error(t, err)
	assert.True(t, lms.IsDuplicateEnrollment(err))

	all, err := f.store.ListEnrollments(f.ctx, "courseY")
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, e.ID, all[0].ID)

	_, err = svc.Enroll(f.ctx, "studentX", "nope")
	assert.True(t, lms.IsNotFound(err))
}

func TestSetGrade(t *testing.T) {
	f := newFixture()
	f.addCourse(t, "c1", "t1", text("l1", 0))
	f.enroll(t, "s1", "c1")
	svc := lms.NewEnrollmentService(f.store, f.store, f.store, f.log)

	for _, g := range []float64{-0.5, 10.5} {
		_, err := svc.SetGrade(f.ctx, "t1", "c1", "s1", g)
		assert.True(t, lms.IsValidation(err), "grade %v", g)
	}

	_, err := svc.SetGrade(f.ctx, "t2", "c1", "s1", 8)
	assert.True(t, lms.IsForbidden(err))
	assert.ErrorIs(t, err, lms.ErrNotCourseTeacher)

	_, err = svc.SetGrade(f.ctx, "t1", "c1", "s2", 8)
	assert.True(t, lms.IsNotFound(err))

	graded, err := svc.SetGrade(f.ctx, "t1", "c1", "s1", 10)
	require.NoError(t, err)
	assert.Equal(t, 10.0, *graded.Grade)

	stored, err := f.store.GetEnrollment(f.ctx, "s1", "c1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, *stored.Grade)

	_, err = svc.SetGrade(f.ctx, "t1", "c1", "s1", 0)
	require.NoError(t, err, "zero is a valid grade")
}

func TestRoster(t *testing.T) {
	f := newFixture()
	completedCourse(t, f)
	f.enroll(t, "s2", "c1")
	enrollments := lms.NewEnrollmentService(f.store, f.store, f.store, f.log)
	reviews := lms.NewReviewService(f.store, f.store, f.store, nil, f.log)

	_, err := enrollments.SetGrade(f.ctx, "t1", "c1", "s1", 9)
	require.NoError(t, err)
	_, err = reviews.SubmitCourseReview(f.ctx, "s1", "c1", lms.ReviewInput{Rating: 3})
	require.NoError(t, err)

	roster, err := enrollments.Roster(f.ctx, "t1", "c1")
	require.NoError(t, err)
	require.Len(t, roster, 2)

	rows := map[string]lms.RosterEntry{}
	for _, r := range roster {
		rows[r.StudentID] = r
	}
	s1 := rows["s1"]
	assert.True(t, s1.Complete)
	assert.Equal(t, 1, s1.Completed)
	assert.Equal(t, 9.0, *s1.Grade)
	assert.Equal(t, 3, *s1.Rating)

	s2 := rows["s2"]
	assert.False(t, s2.Complete)
	assert.Nil(t, s2.Grade)
	assert.Nil(t, s2.Rating)

	_, err = enrollments.Roster(f.ctx, "t2", "c1")
	assert.True(t, lms.IsForbidden(err))
}
