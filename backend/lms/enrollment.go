package lms

import (
	"context"
	"errors"
	"time"

	"learnhub/backend/logger"
)

// GradeInput is a teacher-assigned course grade out of 10.
type GradeInput struct {
	Grade *float64 `json:"grade" validate:"required,gte=0,lte=10"`
}

// RosterEntry is one student row of a teacher's course view. Grade is the
// teacher's 0-10 mark and Rating the student's own 1-5 course review; they
// are reported side by side and never combined.
type RosterEntry struct {
	StudentID    string    `json:"student_id"`
	EnrollmentID string    `json:"enrollment_id"`
	Completed    int       `json:"completed"`
	Total        int       `json:"total"`
	Complete     bool      `json:"complete"`
	Grade        *float64  `json:"grade"`
	Rating       *int      `json:"rating"`
	EnrolledAt   time.Time `json:"enrolled_at"`
}

type EnrollmentService struct {
	courses     CourseRepository
	enrollments EnrollmentGateway
	reviews     ReviewStore
	log         *logger.Logger
}

func NewEnrollmentService(courses CourseRepository, enrollments EnrollmentGateway, reviews ReviewStore, log *logger.Logger) *EnrollmentService {
	return &EnrollmentService{
		courses:     courses,
		enrollments: enrollments,
		reviews:     reviews,
		log:         log.With("service", "enrollment"),
	}
}

// Enroll creates the (student, course) enrollment. A second enrollment for
// the same pair fails with a duplicate error and stores nothing.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, courseID string) (*Enrollment, error) {
	const op = "enrollment.Enroll"
	if studentID == "" {
		return nil, validationError(op, errors.New("student is required"),
			FieldError{Field: "student_id", Error: "student_id is a required field"})
	}
	if _, err := loadCourse(ctx, s.courses, op, courseID); err != nil {
		return nil, err
	}

	e := &Enrollment{
		ID:                 newID(),
		StudentID:          studentID,
		CourseID:           courseID,
		CompletedLessonIDs: []string{},
		EnrolledAt:         nowFunc(),
	}
	if err := s.enrollments.CreateEnrollment(ctx, e); err != nil {
		err = classify(op, err)
		if IsDuplicateEnrollment(err) {
			s.log.Debug("duplicate enrollment rejected", "student_id", studentID, "course_id", courseID)
		}
		return nil, err
	}
	s.log.Info("student enrolled", "student_id", studentID, "course_id", courseID, "enrollment_id", e.ID)
	return e, nil
}

// SetGrade records the course teacher's grade for a student.
func (s *EnrollmentService) SetGrade(ctx context.Context, teacherID, courseID, studentID string, grade float64) (*Enrollment, error) {
	const op = "enrollment.SetGrade"
	if err := Validate(op, GradeInput{Grade: &grade}); err != nil {
		return nil, err
	}

	course, err := loadCourse(ctx, s.courses, op, courseID)
	if err != nil {
		return nil, err
	}
	if course.TeacherID != teacherID {
		return nil, newError(KindForbidden, op, ErrNotCourseTeacher)
	}
	e, err := loadEnrollment(ctx, s.enrollments, op, studentID, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.enrollments.SetEnrollmentGrade(ctx, e.ID, grade); err != nil {
		return nil, classify(op, err)
	}

	graded := e.Clone()
	graded.Grade = &grade
	s.log.Info("grade set", "course_id", courseID, "student_id", studentID, "grade", grade)
	return &graded, nil
}

// Roster lists the course's students for its teacher.
func (s *EnrollmentService) Roster(ctx context.Context, teacherID, courseID string) ([]RosterEntry, error) {
	const op = "enrollment.Roster"

	course, err := loadCourse(ctx, s.courses, op, courseID)
	if err != nil {
		return nil, err
	}
	if course.TeacherID != teacherID {
		return nil, newError(KindForbidden, op, ErrNotCourseTeacher)
	}
	enrollments, err := s.enrollments.ListEnrollments(ctx, courseID)
	if err != nil {
		return nil, classify(op, err)
	}
	reviews, err := s.reviews.ListReviews(ctx, courseID)
	if err != nil {
		return nil, classify(op, err)
	}
	ratings := make(map[string]int, len(reviews))
	for _, r := range reviews {
		ratings[r.StudentID] = r.Rating
	}

	out := make([]RosterEntry, 0, len(enrollments))
	for _, e := range enrollments {
		entry := RosterEntry{
			StudentID:    e.StudentID,
			EnrollmentID: e.ID,
			Completed:    CompletedCount(e, *course),
			Total:        len(course.Lessons),
			Complete:     IsComplete(e, *course),
			EnrolledAt:   e.EnrolledAt,
		}
		if e.Grade != nil {
			g := *e.Grade
			entry.Grade = &g
		}
		if rating, ok := ratings[e.StudentID]; ok {
			entry.Rating = &rating
		}
		out = append(out, entry)
	}
	return out, nil
}
