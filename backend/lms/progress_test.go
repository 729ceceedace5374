package lms_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub/backend/lms"
)

func TestCompleteThreeLessons(t *testing.T) {
	f := newFixture()
	course := f.addCourse(t, "c1", "t1", text("l1", 0), text("l2", 1), text("l3", 2))
	e := f.enroll(t, "s1", "c1")
	tr := f.tracker()

	assert.Equal(t, 0, lms.NextPending(course.OrderedLessons(), e.CompletedLessonIDs))
	assert.Equal(t, lms.StateNotStarted, lms.StateOf(e, course))

	step, err := tr.Complete(f.ctx, "s1", "c1", "l1")
	require.NoError(t, err)
	assert.Equal(t, []string{"l1"}, step.Enrollment.CompletedLessonIDs)
	assert.Equal(t, 1, step.NextIndex)
	assert.Equal(t, lms.StateInProgress, step.State)
	assert.False(t, step.Complete)
	assert.True(t, step.Changed)

	_, err = tr.Complete(f.ctx, "s1", "c1", "l2")
	require.NoError(t, err)
	step, err = tr.Complete(f.ctx, "s1", "c1", "l3")
	require.NoError(t, err)
	assert.True(t, step.Complete)
	assert.Equal(t, lms.StateComplete, step.State)
	assert.Equal(t, 2, step.NextIndex, "stays on the last lesson")

	stored, err := f.store.GetEnrollment(f.ctx, "s1", "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"l1", "l2", "l3"}, stored.CompletedLessonIDs)
	assert.True(t, lms.IsComplete(*stored, course))
}

func TestCompleteIsIdempotent(t *testing.T) {
	f := newFixture()
	f.addCourse(t, "c1", "t1", text("l1", 0), text("l2", 1))
	f.enroll(t, "s1", "c1")
	tr := f.tracker()

	first, err := tr.Complete(f.ctx, "s1", "c1", "l1")
	require.NoError(t, err)
	second, err := tr.Complete(f.ctx, "s1", "c1", "l1")
	require.NoError(t, err)

	assert.False(t, second.Changed)
	assert.Equal(t, first.Enrollment.CompletedLessonIDs, second.Enrollment.CompletedLessonIDs)
	assert.Equal(t, first.NextIndex, second.NextIndex)
}

func TestCompleteRejectsUnknownLesson(t *testing.T) {
	f := newFixture()
	f.addCourse(t, "c1", "t1", text("l1", 0))
	f.enroll(t, "s1", "c1")

	_, err := f.tracker().Complete(f.ctx, "s1", "c1", "l9")
	assert.True(t, lms.IsValidation(err))

	_, err = f.tracker().Complete(f.ctx, "s2", "c1", "l1")
	assert.True(t, lms.IsNotFound(err))
}

func TestCompleteDoesNotAdvanceOnWriteFailure(t *testing.T) {
	f := newFixture()
	f.addCourse(t, "c1", "t1", text("l1", 0), text("l2", 1))
	f.enroll(t, "s1", "c1")
	failing := &failingProgress{EnrollmentGateway: f.store}
	tr := lms.NewTracker(f.store, failing, f.store, f.store, f.log)

	step, err := tr.Complete(f.ctx, "s1", "c1", "l1")
	require.Error(t, err)
	assert.True(t, lms.IsPersistence(err))
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, lms.Step{}, step)
	assert.Equal(t, 1, failing.calls)

	stored, err := f.store.GetEnrollment(f.ctx, "s1", "c1")
	require.NoError(t, err)
	assert.Empty(t, stored.CompletedLessonIDs)

	// an already completed lesson needs no write, so it succeeds even when
	// the store is down
	require.NoError(t, f.store.UpdateEnrollmentProgress(f.ctx, stored.ID, []string{"l1"}))
	step, err = tr.Complete(f.ctx, "s1", "c1", "l1")
	require.NoError(t, err)
	assert.False(t, step.Changed)
	assert.Equal(t, 1, failing.calls)
}

func TestAdvanceIsPure(t *testing.T) {
	course := lms.Course{ID: "c1", Lessons: []lms.Lesson{text("l1", 0)}}
	e := lms.Enrollment{ID: "e1", CompletedLessonIDs: []string{}}

	next, changed, err := lms.Advance(e, course, "l1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, e.CompletedLessonIDs)
	assert.Equal(t, []string{"l1"}, next.CompletedLessonIDs)
}

func TestIsCompleteIgnoresForeignIDs(t *testing.T) {
	course := lms.Course{Lessons: []lms.Lesson{text("l1", 0), text("l2", 1)}}
	e := lms.Enrollment{CompletedLessonIDs: []string{"l1", "old", "l1"}}
	assert.False(t, lms.IsComplete(e, course))
	assert.Equal(t, 1, lms.CompletedCount(e, course))

	assert.False(t, lms.IsComplete(lms.Enrollment{}, lms.Course{}), "empty course is never complete")
}

func TestOverviewGradeAndReviewGates(t *testing.T) {
	f := newFixture()
	f.addCourse(t, "c1", "t1", text("l1", 0), quiz("q1", 1, 1))
	f.enroll(t, "s1", "c1")
	tr := f.tracker()

	o, err := tr.Overview(f.ctx, "s1", "c1")
	require.NoError(t, err)
	assert.Equal(t, 0, o.NextIndex)
	assert.Equal(t, lms.StateNotStarted, o.State)
	assert.False(t, o.CanReviewCourse)
	assert.False(t, o.GradePending)

	_, err = tr.Complete(f.ctx, "s1", "c1", "l1")
	require.NoError(t, err)
	_, err = tr.Complete(f.ctx, "s1", "c1", "q1")
	require.NoError(t, err)

	o, err = tr.Overview(f.ctx, "s1", "c1")
	require.NoError(t, err)
	assert.True(t, o.Complete)
	assert.True(t, o.CanReviewCourse)
	assert.True(t, o.GradePending)
	assert.Nil(t, o.Grade)

	enrollments := lms.NewEnrollmentService(f.store, f.store, f.store, f.log)
	_, err = enrollments.SetGrade(f.ctx, "t1", "c1", "s1", 7.5)
	require.NoError(t, err)
	reviews := lms.NewReviewService(f.store, f.store, f.store, nil, f.log)
	_, err = reviews.SubmitCourseReview(f.ctx, "s1", "c1", lms.ReviewInput{Rating: 2})
	require.NoError(t, err)
	_, err = reviews.SubmitLessonReview(f.ctx, "s1", "c1", "l1", lms.ReviewInput{Rating: 5})
	require.NoError(t, err)

	o, err = tr.Overview(f.ctx, "s1", "c1")
	require.NoError(t, err)
	require.NotNil(t, o.Grade)
	assert.Equal(t, 7.5, *o.Grade)
	assert.True(t, o.GradeVisible)
	assert.True(t, o.Passed)
	assert.False(t, o.CanReviewCourse)
	require.NotNil(t, o.CourseReview)
	assert.Equal(t, 2, o.CourseReview.Rating, "own rating is reported apart from the grade")
	assert.Equal(t, map[string]int{"l1": 5}, o.LessonRatings)
}

func TestOverviewFocus(t *testing.T) {
	f := newFixture()
	f.addCourse(t, "c1", "t1", text("l1", 0), text("l2", 1), text("l3", 2))
	f.enroll(t, "s1", "c1")

	o, err := f.tracker().Overview(f.ctx, "s1", "c1")
	require.NoError(t, err)
	assert.True(t, o.Focus(2))
	assert.Equal(t, 2, o.CurrentIndex)
	assert.False(t, o.Focus(3))
	assert.Equal(t, 2, o.CurrentIndex)
	assert.Equal(t, 0, o.NextIndex)
}
