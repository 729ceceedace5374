package lms_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"learnhub/backend/lms"
	"learnhub/backend/logger"
	"learnhub/backend/storage/memstore"
)

var errStoreDown = errors.New("store unavailable")

type fixture struct {
	ctx   context.Context
	store *memstore.Store
	log   *logger.Logger
}

func newFixture() *fixture {
	return &fixture{ctx: context.Background(), store: memstore.New(), log: logger.NewNop()}
}

func (f *fixture) addCourse(t *testing.T, id, teacherID string, lessons ...lms.Lesson) lms.Course {
	t.Helper()
	c := lms.Course{ID: id, Title: "Course " + id, TeacherID: teacherID, Lessons: lessons, CreatedAt: time.Now()}
	require.NoError(t, f.store.SaveCourse(f.ctx, &c))
	return c
}

func (f *fixture) enroll(t *testing.T, studentID, courseID string) lms.Enrollment {
	t.Helper()
	e := lms.Enrollment{
		ID:                 "enr_" + studentID + "_" + courseID,
		StudentID:          studentID,
		CourseID:           courseID,
		CompletedLessonIDs: []string{},
		EnrolledAt:         time.Now(),
	}
	require.NoError(t, f.store.CreateEnrollment(f.ctx, &e))
	return e
}

func (f *fixture) tracker() *lms.Tracker {
	return lms.NewTracker(f.store, f.store, f.store, f.store, f.log)
}

func text(id string, order int) lms.Lesson {
	return lms.Lesson{ID: id, Title: "Lesson " + id, Order: order, Content: lms.TextContent{Body: "body of " + id}}
}

func quiz(id string, order int, correct ...int) lms.Lesson {
	questions := make([]lms.Question, len(correct))
	for i, c := range correct {
		questions[i] = lms.Question{Prompt: "q", Options: []string{"a", "b", "c", "d"}, Correct: c}
	}
	return lms.Lesson{ID: id, Title: "Quiz " + id, Order: order, Content: lms.QuizContent{Questions: questions}}
}

// failingProgress is an enrollment gateway whose progress writes fail.
type failingProgress struct {
	lms.EnrollmentGateway
	calls int
}

func (g *failingProgress) UpdateEnrollmentProgress(context.Context, string, []string) error {
	g.calls++
	return errStoreDown
}

// memCache is a SummaryCache backed by maps.
type memCache struct {
	items  map[string]lms.Summary
	gens   map[string]int64
	getErr error
	bumps  []string
}

func newMemCache() *memCache {
	return &memCache{items: make(map[string]lms.Summary), gens: make(map[string]int64)}
}

func (c *memCache) Get(_ context.Context, key string) (lms.Summary, bool, error) {
	if c.getErr != nil {
		return lms.Summary{}, false, c.getErr
	}
	s, ok := c.items[key]
	return s, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, s lms.Summary) error {
	c.items[key] = s
	return nil
}

func (c *memCache) Generation(_ context.Context, scope string) (int64, error) {
	return c.gens[scope], nil
}

func (c *memCache) Bump(_ context.Context, scope string) error {
	c.bumps = append(c.bumps, scope)
	c.gens[scope]++
	return nil
}

// reviewsDuring runs hook once, right after the first ListReviews call has
// read its rows and before they are returned.
type reviewsDuring struct {
	lms.ReviewStore
	hook func()
}

func (r *reviewsDuring) ListReviews(ctx context.Context, courseID string) ([]lms.Review, error) {
	reviews, err := r.ReviewStore.ListReviews(ctx, courseID)
	if r.hook != nil {
		hook := r.hook
		r.hook = nil
		hook()
	}
	return reviews, err
}
