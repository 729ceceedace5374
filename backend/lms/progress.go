package lms

import (
	"context"

	"learnhub/backend/logger"
)

type ProgressState string

const (
	StateNotStarted ProgressState = "not_started"
	StateInProgress ProgressState = "in_progress"
	StateComplete   ProgressState = "complete"
)

// PassingGrade is the lowest teacher grade (out of 10) that passes a course.
const PassingGrade = 6.0

// CompletedCount counts the distinct completed IDs that are lessons of c.
func CompletedCount(e Enrollment, c Course) int {
	inCourse := make(map[string]struct{}, len(c.Lessons))
	for _, l := range c.Lessons {
		inCourse[l.ID] = struct{}{}
	}
	n := 0
	for _, id := range e.CompletedLessonIDs {
		if _, ok := inCourse[id]; ok {
			delete(inCourse, id)
			n++
		}
	}
	return n
}

// IsComplete is the one place course completion is derived. A course with no
// lessons is never complete.
func IsComplete(e Enrollment, c Course) bool {
	return len(c.Lessons) > 0 && CompletedCount(e, c) == len(c.Lessons)
}

func StateOf(e Enrollment, c Course) ProgressState {
	switch n := CompletedCount(e, c); {
	case n == 0:
		return StateNotStarted
	case n == len(c.Lessons):
		return StateComplete
	default:
		return StateInProgress
	}
}

// Advance marks lessonID complete on a copy of e. The bool reports whether
// anything changed; completing a lesson twice returns e as is.
func Advance(e Enrollment, c Course, lessonID string) (Enrollment, bool, error) {
	if _, ok := c.Lesson(lessonID); !ok {
		return e, false, validationError("progress.Advance", ErrLessonNotInCourse,
			FieldError{Field: "lesson_id", Error: ErrLessonNotInCourse.Error()})
	}
	if e.HasCompleted(lessonID) {
		return e, false, nil
	}
	next := e.Clone()
	next.CompletedLessonIDs = append(next.CompletedLessonIDs, lessonID)
	return next, true, nil
}

// Step is the result of completing a lesson.
type Step struct {
	Enrollment Enrollment    `json:"enrollment"`
	NextIndex  int           `json:"next_index"`
	State      ProgressState `json:"state"`
	Complete   bool          `json:"complete"`
	Changed    bool          `json:"changed"`
}

// Tracker owns enrollment progress. Local state never runs ahead of the
// store: a step is only returned once its write has been confirmed.
type Tracker struct {
	courses     CourseRepository
	enrollments EnrollmentGateway
	attempts    AttemptStore
	reviews     ReviewStore
	log         *logger.Logger
}

func NewTracker(courses CourseRepository, enrollments EnrollmentGateway, attempts AttemptStore, reviews ReviewStore, log *logger.Logger) *Tracker {
	return &Tracker{
		courses:     courses,
		enrollments: enrollments,
		attempts:    attempts,
		reviews:     reviews,
		log:         log.With("service", "progress"),
	}
}

func (t *Tracker) Complete(ctx context.Context, studentID, courseID, lessonID string) (Step, error) {
	const op = "progress.Complete"

	course, err := loadCourse(ctx, t.courses, op, courseID)
	if err != nil {
		return Step{}, err
	}
	enrollment, err := loadEnrollment(ctx, t.enrollments, op, studentID, courseID)
	if err != nil {
		return Step{}, err
	}

	next, changed, err := Advance(*enrollment, *course, lessonID)
	if err != nil {
		return Step{}, err
	}
	if changed {
		if err := t.enrollments.UpdateEnrollmentProgress(ctx, enrollment.ID, next.CompletedLessonIDs); err != nil {
			t.log.Error("progress not saved",
				"enrollment_id", enrollment.ID,
				"lesson_id", lessonID,
				"error", err,
			)
			return Step{}, classify(op, err)
		}
	}

	step := Step{
		Enrollment: next,
		NextIndex:  NextPending(course.OrderedLessons(), next.CompletedLessonIDs),
		State:      StateOf(next, *course),
		Complete:   IsComplete(next, *course),
		Changed:    changed,
	}
	if changed {
		t.log.Debug("lesson completed",
			"enrollment_id", enrollment.ID,
			"lesson_id", lessonID,
			"state", step.State,
		)
	}
	return step, nil
}

// Overview is the student's view of one course.
type Overview struct {
	CourseID           string                 `json:"course_id"`
	Title              string                 `json:"title"`
	Description        string                 `json:"description"`
	Lessons            []Lesson               `json:"lessons"`
	CompletedLessonIDs []string               `json:"completed_lesson_ids"`
	CompletedCount     int                    `json:"completed_count"`
	TotalLessons       int                    `json:"total_lessons"`
	NextIndex          int                    `json:"next_index"`
	CurrentIndex       int                    `json:"current_index"`
	State              ProgressState          `json:"state"`
	Complete           bool                   `json:"complete"`
	Grade              *float64               `json:"grade"`
	GradeVisible       bool                   `json:"grade_visible"`
	GradePending       bool                   `json:"grade_pending"`
	Passed             bool                   `json:"passed"`
	CanReviewCourse    bool                   `json:"can_review_course"`
	CourseReview       *Review                `json:"course_review"`
	QuizAttempts       map[string]QuizAttempt `json:"quiz_attempts"`
	LessonRatings      map[string]int         `json:"lesson_ratings"`

	cursor *Cursor
}

// Focus moves the current lesson to index. Out of range indexes are ignored.
func (o *Overview) Focus(index int) bool {
	if o.cursor == nil || !o.cursor.GoTo(index) {
		return false
	}
	o.CurrentIndex = o.cursor.Index()
	return true
}

func (t *Tracker) Overview(ctx context.Context, studentID, courseID string) (*Overview, error) {
	const op = "progress.Overview"

	course, err := loadCourse(ctx, t.courses, op, courseID)
	if err != nil {
		return nil, err
	}
	enrollment, err := loadEnrollment(ctx, t.enrollments, op, studentID, courseID)
	if err != nil {
		return nil, err
	}
	attempts, err := t.attempts.ListQuizAttempts(ctx, studentID, courseID)
	if err != nil {
		return nil, classify(op, err)
	}
	courseReviews, err := t.reviews.ListReviews(ctx, courseID)
	if err != nil {
		return nil, classify(op, err)
	}
	lessonReviews, err := t.reviews.ListStudentLessonReviews(ctx, studentID, courseID)
	if err != nil {
		return nil, classify(op, err)
	}

	lessons := course.OrderedLessons()
	completed := append([]string{}, enrollment.CompletedLessonIDs...)
	cursor := NewCursor(lessons, completed)

	o := &Overview{
		CourseID:           course.ID,
		Title:              course.Title,
		Description:        course.Description,
		Lessons:            lessons,
		CompletedLessonIDs: completed,
		CompletedCount:     CompletedCount(*enrollment, *course),
		TotalLessons:       len(lessons),
		NextIndex:          cursor.Index(),
		CurrentIndex:       cursor.Index(),
		State:              StateOf(*enrollment, *course),
		Complete:           IsComplete(*enrollment, *course),
		QuizAttempts:       make(map[string]QuizAttempt, len(attempts)),
		LessonRatings:      make(map[string]int, len(lessonReviews)),
		cursor:             cursor,
	}

	if o.Complete {
		if enrollment.Grade != nil {
			g := *enrollment.Grade
			o.Grade = &g
			o.GradeVisible = true
			o.Passed = g >= PassingGrade
		} else {
			o.GradePending = true
		}
	}

	for i := range courseReviews {
		if courseReviews[i].StudentID == studentID {
			r := courseReviews[i]
			o.CourseReview = &r
			break
		}
	}
	o.CanReviewCourse = o.Complete && o.CourseReview == nil

	for _, a := range attempts {
		o.QuizAttempts[a.LessonID] = a
	}
	for _, r := range lessonReviews {
		o.LessonRatings[r.TargetID] = r.Rating
	}
	return o, nil
}
