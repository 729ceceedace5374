package lms

import (
	"context"
	"fmt"
	"math"
	"strings"

	"learnhub/backend/logger"
)

// Summary aggregates star ratings. Average is nil when there are no reviews.
type Summary struct {
	Average *float64 `json:"average"`
	Count   int      `json:"count"`
}

// Summarize averages the ratings of reviews, rounded to one decimal.
func Summarize(reviews []Review) Summary {
	if len(reviews) == 0 {
		return Summary{}
	}
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	avg := math.Round(float64(total)/float64(len(reviews))*10) / 10
	return Summary{Average: &avg, Count: len(reviews)}
}

// SummaryCache stores computed summaries. Get reports false on a miss.
// Summaries are keyed by scope and generation: Bump moves a scope to a new
// generation, so a summary computed before a review was stored can only land
// under a generation nobody reads any more.
type SummaryCache interface {
	Get(ctx context.Context, key string) (Summary, bool, error)
	Set(ctx context.Context, key string, s Summary) error
	Generation(ctx context.Context, scope string) (int64, error)
	Bump(ctx context.Context, scope string) error
}

type nopCache struct{}

func (nopCache) Get(context.Context, string) (Summary, bool, error) { return Summary{}, false, nil }
func (nopCache) Set(context.Context, string, Summary) error         { return nil }
func (nopCache) Generation(context.Context, string) (int64, error)  { return 0, nil }
func (nopCache) Bump(context.Context, string) error                 { return nil }

func CourseSummaryKey(courseID string) string { return "summary:course:" + courseID }
func LessonSummaryKey(lessonID string) string { return "summary:lesson:" + lessonID }

// GenerationKey is the cache key of scope's summary at generation gen.
func GenerationKey(scope string, gen int64) string { return fmt.Sprintf("%s@%d", scope, gen) }

// ReviewInput is what a student submits for a course or a lesson.
type ReviewInput struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type ReviewService struct {
	courses     CourseRepository
	enrollments EnrollmentGateway
	reviews     ReviewStore
	cache       SummaryCache
	log         *logger.Logger
}

// NewReviewService builds the service. cache may be nil.
func NewReviewService(courses CourseRepository, enrollments EnrollmentGateway, reviews ReviewStore, cache SummaryCache, log *logger.Logger) *ReviewService {
	if cache == nil {
		cache = nopCache{}
	}
	return &ReviewService{
		courses:     courses,
		enrollments: enrollments,
		reviews:     reviews,
		cache:       cache,
		log:         log.With("service", "reviews"),
	}
}

// SubmitCourseReview stores the student's one review of a course they have
// completed.
func (s *ReviewService) SubmitCourseReview(ctx context.Context, studentID, courseID string, in ReviewInput) (*Review, error) {
	const op = "reviews.SubmitCourseReview"
	if err := Validate(op, in); err != nil {
		return nil, err
	}

	course, err := loadCourse(ctx, s.courses, op, courseID)
	if err != nil {
		return nil, err
	}
	enrollment, err := loadEnrollment(ctx, s.enrollments, op, studentID, courseID)
	if err != nil {
		return nil, err
	}
	if !IsComplete(*enrollment, *course) {
		return nil, validationError(op, ErrCourseIncomplete)
	}

	r := s.newReview(studentID, courseID, courseID, in)
	if err := s.reviews.SubmitReview(ctx, r); err != nil {
		return nil, classify(op, err)
	}
	s.invalidate(ctx, CourseSummaryKey(courseID))
	s.log.Info("course reviewed", "student_id", studentID, "course_id", courseID, "rating", r.Rating)
	return r, nil
}

// SubmitLessonReview stores the student's one review of a lesson.
func (s *ReviewService) SubmitLessonReview(ctx context.Context, studentID, courseID, lessonID string, in ReviewInput) (*Review, error) {
	const op = "reviews.SubmitLessonReview"
	if err := Validate(op, in); err != nil {
		return nil, err
	}

	course, err := loadCourse(ctx, s.courses, op, courseID)
	if err != nil {
		return nil, err
	}
	if _, ok := course.Lesson(lessonID); !ok {
		return nil, validationError(op, ErrLessonNotInCourse,
			FieldError{Field: "lesson_id", Error: ErrLessonNotInCourse.Error()})
	}
	if _, err := loadEnrollment(ctx, s.enrollments, op, studentID, courseID); err != nil {
		return nil, err
	}

	r := s.newReview(studentID, courseID, lessonID, in)
	if err := s.reviews.SubmitLessonReview(ctx, r); err != nil {
		return nil, classify(op, err)
	}
	s.invalidate(ctx, LessonSummaryKey(lessonID))
	s.log.Info("lesson reviewed", "student_id", studentID, "lesson_id", lessonID, "rating", r.Rating)
	return r, nil
}

func (s *ReviewService) CourseSummary(ctx context.Context, courseID string) (Summary, error) {
	return s.summary(ctx, "reviews.CourseSummary", CourseSummaryKey(courseID), func() ([]Review, error) {
		return s.reviews.ListReviews(ctx, courseID)
	})
}

func (s *ReviewService) LessonSummary(ctx context.Context, lessonID string) (Summary, error) {
	return s.summary(ctx, "reviews.LessonSummary", LessonSummaryKey(lessonID), func() ([]Review, error) {
		return s.reviews.ListLessonReviews(ctx, lessonID)
	})
}

// CourseReviews lists every review of a course in the order the store keeps them.
func (s *ReviewService) CourseReviews(ctx context.Context, courseID string) ([]Review, error) {
	reviews, err := s.reviews.ListReviews(ctx, courseID)
	if err != nil {
		return nil, classify("reviews.CourseReviews", err)
	}
	return reviews, nil
}

func (s *ReviewService) summary(ctx context.Context, op, scope string, list func() ([]Review, error)) (Summary, error) {
	gen, err := s.cache.Generation(ctx, scope)
	cached := err == nil
	if err != nil {
		s.log.Warn("summary cache generation read failed", "scope", scope, "error", err)
	}
	key := GenerationKey(scope, gen)

	if cached {
		if sum, ok, err := s.cache.Get(ctx, key); err != nil {
			s.log.Warn("summary cache read failed", "key", key, "error", err)
		} else if ok {
			return sum, nil
		}
	}

	reviews, err := list()
	if err != nil {
		return Summary{}, classify(op, err)
	}
	sum := Summarize(reviews)
	if cached {
		if err := s.cache.Set(ctx, key, sum); err != nil {
			s.log.Warn("summary cache write failed", "key", key, "error", err)
		}
	}
	return sum, nil
}

// invalidate runs after the review is stored.
func (s *ReviewService) invalidate(ctx context.Context, scope string) {
	if err := s.cache.Bump(ctx, scope); err != nil {
		s.log.Warn("summary cache invalidation failed", "scope", scope, "error", err)
	}
}

func (s *ReviewService) newReview(studentID, courseID, targetID string, in ReviewInput) *Review {
	return &Review{
		ID:        newID(),
		StudentID: studentID,
		CourseID:  courseID,
		TargetID:  targetID,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
		CreatedAt: nowFunc(),
	}
}
