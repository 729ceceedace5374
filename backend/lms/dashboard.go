package lms

import (
	"context"
	"time"

	"learnhub/backend/logger"
)

// StudentCourse is one row of a student's course list. Grade is only set
// once the course is complete; Rating is the student's own 1-5 course review.
type StudentCourse struct {
	CourseID   string        `json:"course_id"`
	Title      string        `json:"title"`
	Completed  int           `json:"completed"`
	Total      int           `json:"total"`
	State      ProgressState `json:"state"`
	Complete   bool          `json:"complete"`
	NextIndex  int           `json:"next_index"`
	Grade      *float64      `json:"grade"`
	Rating     *int          `json:"rating"`
	EnrolledAt time.Time     `json:"enrolled_at"`
}

// TeacherCourse is one row of a teacher's course list.
type TeacherCourse struct {
	CourseID    string    `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Lessons     int       `json:"lessons"`
	Students    int       `json:"students"`
	Completed   int       `json:"completed"`
	Rating      Summary   `json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
}

// Dashboard builds the per-user course lists.
type Dashboard struct {
	courses     CourseRepository
	enrollments EnrollmentGateway
	reviews     ReviewStore
	log         *logger.Logger
}

func NewDashboard(courses CourseRepository, enrollments EnrollmentGateway, reviews ReviewStore, log *logger.Logger) *Dashboard {
	return &Dashboard{
		courses:     courses,
		enrollments: enrollments,
		reviews:     reviews,
		log:         log.With("service", "dashboard"),
	}
}

// StudentCourses lists the courses the student is enrolled in, oldest
// enrollment first.
func (d *Dashboard) StudentCourses(ctx context.Context, studentID string) ([]StudentCourse, error) {
	const op = "dashboard.StudentCourses"

	enrollments, err := d.enrollments.ListEnrollmentsByStudent(ctx, studentID)
	if err != nil {
		return nil, classify(op, err)
	}

	out := make([]StudentCourse, 0, len(enrollments))
	for _, e := range enrollments {
		course, err := loadCourse(ctx, d.courses, op, e.CourseID)
		if IsNotFound(err) {
			d.log.Warn("enrollment for missing course", "enrollment_id", e.ID, "course_id", e.CourseID)
			continue
		}
		if err != nil {
			return nil, err
		}
		reviews, err := d.reviews.ListReviews(ctx, e.CourseID)
		if err != nil {
			return nil, classify(op, err)
		}

		row := StudentCourse{
			CourseID:   course.ID,
			Title:      course.Title,
			Completed:  CompletedCount(e, *course),
			Total:      len(course.Lessons),
			State:      StateOf(e, *course),
			Complete:   IsComplete(e, *course),
			NextIndex:  NextPending(course.OrderedLessons(), e.CompletedLessonIDs),
			EnrolledAt: e.EnrolledAt,
		}
		if row.Complete && e.Grade != nil {
			g := *e.Grade
			row.Grade = &g
		}
		for _, r := range reviews {
			if r.StudentID == studentID {
				rating := r.Rating
				row.Rating = &rating
				break
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// TeacherCourses lists the courses the teacher owns with enrollment and
// rating totals.
func (d *Dashboard) TeacherCourses(ctx context.Context, teacherID string) ([]TeacherCourse, error) {
	const op = "dashboard.TeacherCourses"

	courses, err := d.courses.ListCoursesByTeacher(ctx, teacherID)
	if err != nil {
		return nil, classify(op, err)
	}

	out := make([]TeacherCourse, 0, len(courses))
	for _, c := range courses {
		enrollments, err := d.enrollments.ListEnrollments(ctx, c.ID)
		if err != nil {
			return nil, classify(op, err)
		}
		reviews, err := d.reviews.ListReviews(ctx, c.ID)
		if err != nil {
			return nil, classify(op, err)
		}

		row := TeacherCourse{
			CourseID:    c.ID,
			Title:       c.Title,
			Description: c.Description,
			Lessons:     len(c.Lessons),
			Students:    len(enrollments),
			Rating:      Summarize(reviews),
			CreatedAt:   c.CreatedAt,
		}
		for _, e := range enrollments {
			if IsComplete(e, c) {
				row.Completed++
			}
		}
		out = append(out, row)
	}
	return out, nil
}
