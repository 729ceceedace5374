package gormstore_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"learnhub/backend/lms"
	"learnhub/backend/logger"
	"learnhub/backend/storage/gormstore"
)

func newStore(t *testing.T) *gormstore.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := gormstore.New(db, logger.NewNop())
	require.NoError(t, store.Migrate())
	return store
}

func sampleCourse() *lms.Course {
	now := time.Now().UTC().Truncate(time.Second)
	return &lms.Course{
		ID:        "c1",
		Title:     "Course",
		TeacherID: "t1",
		CreatedAt: now,
		Lessons: []lms.Lesson{
			{ID: "l2", Title: "Live", Order: 1, Content: lms.LiveContent{Room: "c1_room", RecordingURL: "https://r/1.mp4"}, CreatedAt: now},
			{ID: "l1", Title: "Text", Order: 0, Content: lms.TextContent{Body: "hi"}, CreatedAt: now},
			{ID: "q1", Title: "Quiz", Order: 2, Content: lms.QuizContent{Questions: []lms.Question{
				{Prompt: "2+2", Options: []string{"1", "2", "3", "4"}, Correct: 3},
			}}, CreatedAt: now},
		},
	}
}

func TestCourseRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.GetCourse(ctx, "c1")
	assert.ErrorIs(t, err, lms.ErrCourseNotFound)

	require.NoError(t, s.SaveCourse(ctx, sampleCourse()))
	got, err := s.GetCourse(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, got.Lessons, 3)
	assert.Equal(t, "l1", got.Lessons[0].ID, "lessons load in display order")
	assert.Equal(t, lms.LiveContent{Room: "c1_room", RecordingURL: "https://r/1.mp4"}, got.Lessons[1].Content)
	quiz := got.Lessons[2].Content.(lms.QuizContent)
	assert.Equal(t, 3, quiz.Questions[0].Correct)

	// saving again replaces the lesson list
	c := sampleCourse()
	c.Title = "Renamed"
	c.Lessons = c.Lessons[:1]
	require.NoError(t, s.SaveCourse(ctx, c))
	got, err = s.GetCourse(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Len(t, got.Lessons, 1)

	require.NoError(t, s.SaveCourse(ctx, &lms.Course{ID: "c9", Title: "Other", TeacherID: "t9", CreatedAt: time.Now()}))
	owned, err := s.ListCoursesByTeacher(ctx, got.TeacherID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "c1", owned[0].ID)
	assert.Len(t, owned[0].Lessons, 1)
}

func TestEnrollmentLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	e := &lms.Enrollment{ID: "e1", StudentID: "s1", CourseID: "c1", EnrolledAt: time.Now()}
	require.NoError(t, s.CreateEnrollment(ctx, e))

	dup := &lms.Enrollment{ID: "e2", StudentID: "s1", CourseID: "c1", EnrolledAt: time.Now()}
	assert.ErrorIs(t, s.CreateEnrollment(ctx, dup), lms.ErrDuplicateEnrollment)

	list, err := s.ListEnrollments(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.CreateEnrollment(ctx, &lms.Enrollment{ID: "e3", StudentID: "s1", CourseID: "c2", EnrolledAt: time.Now().Add(time.Minute)}))
	mine, err := s.ListEnrollmentsByStudent(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "c1", mine[0].CourseID)
	assert.Equal(t, "c2", mine[1].CourseID)

	missing, err := s.GetEnrollment(ctx, "s2", "c1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, s.UpdateEnrollmentProgress(ctx, "e1", []string{"l2", "l1"}))
	require.NoError(t, s.SetEnrollmentGrade(ctx, "e1", 8.5))
	got, err := s.GetEnrollment(ctx, "s1", "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"l2", "l1"}, got.CompletedLessonIDs)
	require.NotNil(t, got.Grade)
	assert.Equal(t, 8.5, *got.Grade)

	assert.ErrorIs(t, s.UpdateEnrollmentProgress(ctx, "nope", nil), lms.ErrEnrollmentNotFound)
	assert.ErrorIs(t, s.SetEnrollmentGrade(ctx, "nope", 1), lms.ErrEnrollmentNotFound)
}

func TestQuizAttemptsAndReviews(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	a := &lms.QuizAttempt{
		ID: "a1", StudentID: "s1", CourseID: "c1", LessonID: "q1",
		Answers: map[int]int{0: 3, 1: 0}, Correctness: []bool{true, false}, Score: 1, Total: 2,
		SubmittedAt: time.Now(),
	}
	require.NoError(t, s.SubmitQuizAttempt(ctx, a))
	again := *a
	again.ID = "a2"
	assert.ErrorIs(t, s.SubmitQuizAttempt(ctx, &again), lms.ErrDuplicateAttempt)

	got, err := s.GetQuizAttempt(ctx, "s1", "q1")
	require.NoError(t, err)
	assert.Equal(t, map[int]int{0: 3, 1: 0}, got.Answers)
	assert.Equal(t, []bool{true, false}, got.Correctness)

	attempts, err := s.ListQuizAttempts(ctx, "s1", "c1")
	require.NoError(t, err)
	assert.Len(t, attempts, 1)

	review := &lms.Review{ID: "r1", StudentID: "s1", CourseID: "c1", TargetID: "c1", Rating: 4, CreatedAt: time.Now()}
	require.NoError(t, s.SubmitReview(ctx, review))
	review.ID = "r2"
	assert.ErrorIs(t, s.SubmitReview(ctx, review), lms.ErrDuplicateReview)

	lr := &lms.Review{ID: "lr1", StudentID: "s1", CourseID: "c1", TargetID: "l1", Rating: 5, CreatedAt: time.Now()}
	require.NoError(t, s.SubmitLessonReview(ctx, lr))
	lr.ID = "lr2"
	assert.ErrorIs(t, s.SubmitLessonReview(ctx, lr), lms.ErrDuplicateReview)

	reviews, err := s.ListReviews(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "c1", reviews[0].TargetID)

	lessonReviews, err := s.ListLessonReviews(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, lessonReviews, 1)
	assert.Equal(t, "l1", lessonReviews[0].TargetID)

	mine, err := s.ListStudentLessonReviews(ctx, "s1", "c1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestServicesOverGorm(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	log := logger.NewNop()
	require.NoError(t, s.SaveCourse(ctx, sampleCourse()))

	enrollments := lms.NewEnrollmentService(s, s, s, log)
	_, err := enrollments.Enroll(ctx, "s1", "c1")
	require.NoError(t, err)
	_, err = enrollments.Enroll(ctx, "s1", "c1")
	assert.True(t, lms.IsDuplicateEnrollment(err))

	tracker := lms.NewTracker(s, s, s, s, log)
	for _, id := range []string{"l1", "l2", "q1"} {
		_, err := tracker.Complete(ctx, "s1", "c1", id)
		require.NoError(t, err)
	}
	o, err := tracker.Overview(ctx, "s1", "c1")
	require.NoError(t, err)
	assert.True(t, o.Complete)
	assert.True(t, o.CanReviewCourse)
}
