// Package gormstore implements lms.Gateway on top of gorm (postgres in
// production, sqlite in tests).
package gormstore

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"learnhub/backend/lms"
	"learnhub/backend/logger"
	"learnhub/backend/models"
)

type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

var _ lms.Gateway = (*Store)(nil)

func New(db *gorm.DB, baseLog *logger.Logger) *Store {
	return &Store{db: db, log: baseLog.With("store", "gorm")}
}

// Migrate creates the tables and unique indexes the store relies on.
func (s *Store) Migrate() error {
	return errors.Wrap(models.AutoMigrate(s.db), "auto migrate")
}

func (s *Store) GetCourse(ctx context.Context, courseID string) (*lms.Course, error) {
	var rec models.Course
	err := s.withLessons(ctx).First(&rec, "id = ?", courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, lms.ErrCourseNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get course %s", courseID)
	}
	c, err := rec.ToDomain()
	if err != nil {
		return nil, errors.Wrapf(err, "decode course %s", courseID)
	}
	return &c, nil
}

func (s *Store) ListCoursesByTeacher(ctx context.Context, teacherID string) ([]lms.Course, error) {
	var recs []models.Course
	if err := s.withLessons(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at").
		Find(&recs).Error; err != nil {
		return nil, errors.Wrapf(err, "list courses of %s", teacherID)
	}
	out := make([]lms.Course, 0, len(recs))
	for _, rec := range recs {
		c, err := rec.ToDomain()
		if err != nil {
			return nil, errors.Wrapf(err, "decode course %s", rec.ID)
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) withLessons(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB { return db.Order("sequence_order, created_at") })
}

// SaveCourse upserts the course row and replaces its lessons in one
// transaction.
func (s *Store) SaveCourse(ctx context.Context, course *lms.Course) error {
	rec, err := models.CourseFromDomain(*course)
	if err != nil {
		return err
	}
	lessons := rec.Lessons
	rec.Lessons = nil

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description", "teacher_id", "updated_at"}),
		}).Create(&rec).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", rec.ID).Delete(&models.Lesson{}).Error; err != nil {
			return err
		}
		if len(lessons) == 0 {
			return nil
		}
		return tx.Create(&lessons).Error
	})
	return errors.Wrapf(err, "save course %s", course.ID)
}

func (s *Store) GetEnrollment(ctx context.Context, studentID, courseID string) (*lms.Enrollment, error) {
	var rec models.Enrollment
	err := s.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get enrollment")
	}
	e, err := rec.ToDomain()
	if err != nil {
		return nil, errors.Wrapf(err, "decode enrollment %s", rec.ID)
	}
	return &e, nil
}

func (s *Store) ListEnrollments(ctx context.Context, courseID string) ([]lms.Enrollment, error) {
	return s.listEnrollments(ctx, "course_id = ?", courseID)
}

func (s *Store) ListEnrollmentsByStudent(ctx context.Context, studentID string) ([]lms.Enrollment, error) {
	return s.listEnrollments(ctx, "student_id = ?", studentID)
}

func (s *Store) listEnrollments(ctx context.Context, query string, arg string) ([]lms.Enrollment, error) {
	var recs []models.Enrollment
	if err := s.db.WithContext(ctx).
		Where(query, arg).
		Order("enrolled_at").
		Find(&recs).Error; err != nil {
		return nil, errors.Wrap(err, "list enrollments")
	}
	out := make([]lms.Enrollment, 0, len(recs))
	for _, rec := range recs {
		e, err := rec.ToDomain()
		if err != nil {
			return nil, errors.Wrapf(err, "decode enrollment %s", rec.ID)
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) CreateEnrollment(ctx context.Context, e *lms.Enrollment) error {
	rec, err := models.EnrollmentFromDomain(*e)
	if err != nil {
		return err
	}
	return s.insertOnce(ctx, &rec, lms.ErrDuplicateEnrollment,
		&models.Enrollment{}, "student_id = ? AND course_id = ?", e.StudentID, e.CourseID)
}

// UpdateEnrollmentProgress writes the completed list in a single row update.
func (s *Store) UpdateEnrollmentProgress(ctx context.Context, enrollmentID string, completedLessonIDs []string) error {
	ids, err := models.CompletedJSON(completedLessonIDs)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("id = ?", enrollmentID).
		Update("completed_lesson_ids", ids)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "update progress %s", enrollmentID)
	}
	if res.RowsAffected == 0 {
		return lms.ErrEnrollmentNotFound
	}
	return nil
}

func (s *Store) SetEnrollmentGrade(ctx context.Context, enrollmentID string, grade float64) error {
	res := s.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("id = ?", enrollmentID).
		Update("grade", grade)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "set grade %s", enrollmentID)
	}
	if res.RowsAffected == 0 {
		return lms.ErrEnrollmentNotFound
	}
	return nil
}

func (s *Store) SubmitQuizAttempt(ctx context.Context, a *lms.QuizAttempt) error {
	rec, err := models.QuizAttemptFromDomain(*a)
	if err != nil {
		return err
	}
	return s.insertOnce(ctx, &rec, lms.ErrDuplicateAttempt,
		&models.QuizAttempt{}, "student_id = ? AND lesson_id = ?", a.StudentID, a.LessonID)
}

func (s *Store) GetQuizAttempt(ctx context.Context, studentID, lessonID string) (*lms.QuizAttempt, error) {
	var rec models.QuizAttempt
	err := s.db.WithContext(ctx).
		Where("student_id = ? AND lesson_id = ?", studentID, lessonID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get quiz attempt")
	}
	a, err := rec.ToDomain()
	if err != nil {
		return nil, errors.Wrapf(err, "decode quiz attempt %s", rec.ID)
	}
	return &a, nil
}

func (s *Store) ListQuizAttempts(ctx context.Context, studentID, courseID string) ([]lms.QuizAttempt, error) {
	var recs []models.QuizAttempt
	if err := s.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Order("submitted_at").
		Find(&recs).Error; err != nil {
		return nil, errors.Wrap(err, "list quiz attempts")
	}
	out := make([]lms.QuizAttempt, 0, len(recs))
	for _, rec := range recs {
		a, err := rec.ToDomain()
		if err != nil {
			return nil, errors.Wrapf(err, "decode quiz attempt %s", rec.ID)
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *Store) SubmitReview(ctx context.Context, r *lms.Review) error {
	rec := models.CourseReviewFromDomain(*r)
	return s.insertOnce(ctx, &rec, lms.ErrDuplicateReview,
		&models.CourseReview{}, "student_id = ? AND course_id = ?", r.StudentID, r.CourseID)
}

func (s *Store) SubmitLessonReview(ctx context.Context, r *lms.Review) error {
	rec := models.LessonReviewFromDomain(*r)
	return s.insertOnce(ctx, &rec, lms.ErrDuplicateReview,
		&models.LessonReview{}, "student_id = ? AND lesson_id = ?", r.StudentID, r.TargetID)
}

func (s *Store) ListReviews(ctx context.Context, courseID string) ([]lms.Review, error) {
	var recs []models.CourseReview
	if err := s.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at").
		Find(&recs).Error; err != nil {
		return nil, errors.Wrap(err, "list course reviews")
	}
	out := make([]lms.Review, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.ToDomain())
	}
	return out, nil
}

func (s *Store) ListLessonReviews(ctx context.Context, lessonID string) ([]lms.Review, error) {
	return s.lessonReviews(ctx, "lesson_id = ?", lessonID)
}

func (s *Store) ListStudentLessonReviews(ctx context.Context, studentID, courseID string) ([]lms.Review, error) {
	return s.lessonReviews(ctx, "student_id = ? AND course_id = ?", studentID, courseID)
}

func (s *Store) lessonReviews(ctx context.Context, query string, args ...interface{}) ([]lms.Review, error) {
	var recs []models.LessonReview
	if err := s.db.WithContext(ctx).
		Where(query, args...).
		Order("created_at").
		Find(&recs).Error; err != nil {
		return nil, errors.Wrap(err, "list lesson reviews")
	}
	out := make([]lms.Review, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.ToDomain())
	}
	return out, nil
}

// insertOnce creates rec unless a row matching query already exists. The
// unique index backs the check when two writers race past it.
func (s *Store) insertOnce(ctx context.Context, rec interface{}, dup error, model interface{}, query string, args ...interface{}) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(model).Where(query, args...).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return dup
		}
		return tx.Create(rec).Error
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, dup), errors.Is(err, gorm.ErrDuplicatedKey):
		return dup
	default:
		s.log.Error("insert failed", "error", err)
		return errors.Wrap(err, "insert")
	}
}
