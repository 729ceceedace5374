package lms

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CourseRepository loads and stores whole courses, lessons included.
type CourseRepository interface {
	GetCourse(ctx context.Context, courseID string) (*Course, error)
	SaveCourse(ctx context.Context, course *Course) error
	ListCoursesByTeacher(ctx context.Context, teacherID string) ([]Course, error)
}

// EnrollmentGateway persists enrollments. GetEnrollment returns (nil, nil)
// when the student is not enrolled.
type EnrollmentGateway interface {
	GetEnrollment(ctx context.Context, studentID, courseID string) (*Enrollment, error)
	ListEnrollments(ctx context.Context, courseID string) ([]Enrollment, error)
	ListEnrollmentsByStudent(ctx context.Context, studentID string) ([]Enrollment, error)
	CreateEnrollment(ctx context.Context, e *Enrollment) error
	UpdateEnrollmentProgress(ctx context.Context, enrollmentID string, completedLessonIDs []string) error
	SetEnrollmentGrade(ctx context.Context, enrollmentID string, grade float64) error
}

// AttemptStore persists quiz attempts. SubmitQuizAttempt must fail with
// ErrDuplicateAttempt when the student already has an attempt for the lesson.
type AttemptStore interface {
	SubmitQuizAttempt(ctx context.Context, a *QuizAttempt) error
	GetQuizAttempt(ctx context.Context, studentID, lessonID string) (*QuizAttempt, error)
	ListQuizAttempts(ctx context.Context, studentID, courseID string) ([]QuizAttempt, error)
}

// ReviewStore persists course and lesson reviews. Submissions must fail with
// ErrDuplicateReview when the student already reviewed the same target.
type ReviewStore interface {
	SubmitReview(ctx context.Context, r *Review) error
	SubmitLessonReview(ctx context.Context, r *Review) error
	ListReviews(ctx context.Context, courseID string) ([]Review, error)
	ListLessonReviews(ctx context.Context, lessonID string) ([]Review, error)
	ListStudentLessonReviews(ctx context.Context, studentID, courseID string) ([]Review, error)
}

// Gateway is everything a storage backend provides.
type Gateway interface {
	CourseRepository
	EnrollmentGateway
	AttemptStore
	ReviewStore
}

var (
	nowFunc = func() time.Time { return time.Now().UTC() }
	newID   = uuid.NewString
)

func loadCourse(ctx context.Context, courses CourseRepository, op, courseID string) (*Course, error) {
	course, err := courses.GetCourse(ctx, courseID)
	if err != nil {
		return nil, classify(op, err)
	}
	if course == nil {
		return nil, newError(KindNotFound, op, ErrCourseNotFound)
	}
	return course, nil
}

func loadEnrollment(ctx context.Context, enrollments EnrollmentGateway, op, studentID, courseID string) (*Enrollment, error) {
	e, err := enrollments.GetEnrollment(ctx, studentID, courseID)
	if err != nil {
		return nil, classify(op, err)
	}
	if e == nil {
		return nil, newError(KindNotFound, op, ErrEnrollmentNotFound)
	}
	return e, nil
}
