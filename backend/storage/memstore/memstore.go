// Package memstore is an in-process lms.Gateway for development and tests.
package memstore

import (
	"context"
	"sort"
	"sync"

	"learnhub/backend/lms"
)

type Store struct {
	mutex         sync.RWMutex
	courses       map[string]lms.Course
	enrollments   map[string]lms.Enrollment // by enrollment ID
	attempts      []lms.QuizAttempt
	reviews       []lms.Review
	lessonReviews []lms.Review
}

var _ lms.Gateway = (*Store)(nil)

func New() *Store {
	return &Store{
		courses:     make(map[string]lms.Course),
		enrollments: make(map[string]lms.Enrollment),
	}
}

func (s *Store) GetCourse(_ context.Context, courseID string) (*lms.Course, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	c, ok := s.courses[courseID]
	if !ok {
		return nil, lms.ErrCourseNotFound
	}
	c.Lessons = append([]lms.Lesson(nil), c.Lessons...)
	return &c, nil
}

func (s *Store) SaveCourse(_ context.Context, course *lms.Course) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	c := *course
	c.Lessons = append([]lms.Lesson(nil), course.Lessons...)
	s.courses[c.ID] = c
	return nil
}

func (s *Store) ListCoursesByTeacher(_ context.Context, teacherID string) ([]lms.Course, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]lms.Course, 0)
	for _, c := range s.courses {
		if c.TeacherID == teacherID {
			c.Lessons = append([]lms.Lesson(nil), c.Lessons...)
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) GetEnrollment(_ context.Context, studentID, courseID string) (*lms.Enrollment, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if e, ok := s.findEnrollment(studentID, courseID); ok {
		out := e.Clone()
		return &out, nil
	}
	return nil, nil
}

func (s *Store) ListEnrollments(_ context.Context, courseID string) ([]lms.Enrollment, error) {
	return s.listEnrollments(func(e lms.Enrollment) bool { return e.CourseID == courseID }), nil
}

func (s *Store) ListEnrollmentsByStudent(_ context.Context, studentID string) ([]lms.Enrollment, error) {
	return s.listEnrollments(func(e lms.Enrollment) bool { return e.StudentID == studentID }), nil
}

func (s *Store) listEnrollments(match func(lms.Enrollment) bool) []lms.Enrollment {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]lms.Enrollment, 0)
	for _, e := range s.enrollments {
		if match(e) {
			out = append(out, e.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrolledAt.Before(out[j].EnrolledAt) })
	return out
}

func (s *Store) CreateEnrollment(_ context.Context, e *lms.Enrollment) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.findEnrollment(e.StudentID, e.CourseID); ok {
		return lms.ErrDuplicateEnrollment
	}
	s.enrollments[e.ID] = e.Clone()
	return nil
}

func (s *Store) UpdateEnrollmentProgress(_ context.Context, enrollmentID string, completedLessonIDs []string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	e, ok := s.enrollments[enrollmentID]
	if !ok {
		return lms.ErrEnrollmentNotFound
	}
	e.CompletedLessonIDs = append([]string(nil), completedLessonIDs...)
	s.enrollments[enrollmentID] = e
	return nil
}

func (s *Store) SetEnrollmentGrade(_ context.Context, enrollmentID string, grade float64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	e, ok := s.enrollments[enrollmentID]
	if !ok {
		return lms.ErrEnrollmentNotFound
	}
	e.Grade = &grade
	s.enrollments[enrollmentID] = e
	return nil
}

func (s *Store) SubmitQuizAttempt(_ context.Context, a *lms.QuizAttempt) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, existing := range s.attempts {
		if existing.StudentID == a.StudentID && existing.LessonID == a.LessonID {
			return lms.ErrDuplicateAttempt
		}
	}
	s.attempts = append(s.attempts, *a)
	return nil
}

func (s *Store) GetQuizAttempt(_ context.Context, studentID, lessonID string) (*lms.QuizAttempt, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, a := range s.attempts {
		if a.StudentID == studentID && a.LessonID == lessonID {
			out := a
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Store) ListQuizAttempts(_ context.Context, studentID, courseID string) ([]lms.QuizAttempt, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]lms.QuizAttempt, 0)
	for _, a := range s.attempts {
		if a.StudentID == studentID && a.CourseID == courseID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) SubmitReview(_ context.Context, r *lms.Review) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if hasReview(s.reviews, r.StudentID, r.TargetID) {
		return lms.ErrDuplicateReview
	}
	s.reviews = append(s.reviews, *r)
	return nil
}

func (s *Store) SubmitLessonReview(_ context.Context, r *lms.Review) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if hasReview(s.lessonReviews, r.StudentID, r.TargetID) {
		return lms.ErrDuplicateReview
	}
	s.lessonReviews = append(s.lessonReviews, *r)
	return nil
}

func (s *Store) ListReviews(_ context.Context, courseID string) ([]lms.Review, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return filterReviews(s.reviews, func(r lms.Review) bool { return r.CourseID == courseID }), nil
}

func (s *Store) ListLessonReviews(_ context.Context, lessonID string) ([]lms.Review, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return filterReviews(s.lessonReviews, func(r lms.Review) bool { return r.TargetID == lessonID }), nil
}

func (s *Store) ListStudentLessonReviews(_ context.Context, studentID, courseID string) ([]lms.Review, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return filterReviews(s.lessonReviews, func(r lms.Review) bool {
		return r.StudentID == studentID && r.CourseID == courseID
	}), nil
}

func (s *Store) findEnrollment(studentID, courseID string) (lms.Enrollment, bool) {
	for _, e := range s.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			return e, true
		}
	}
	return lms.Enrollment{}, false
}

func hasReview(reviews []lms.Review, studentID, targetID string) bool {
	for _, r := range reviews {
		if r.StudentID == studentID && r.TargetID == targetID {
			return true
		}
	}
	return false
}

func filterReviews(reviews []lms.Review, keep func(lms.Review) bool) []lms.Review {
	out := make([]lms.Review, 0)
	for _, r := range reviews {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
