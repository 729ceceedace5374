package models

import (
	"time"

	"learnhub/backend/lms"
)

type CourseReview struct {
	ID        string `gorm:"primaryKey;size:64"`
	CourseID  string `gorm:"size:64;not null;uniqueIndex:idx_course_review_student_course;index"`
	StudentID string `gorm:"size:64;not null;uniqueIndex:idx_course_review_student_course"`
	Comment   string
	Rating    int `gorm:"check:rating>=1 AND rating<=5"`
	CreatedAt time.Time
}

type LessonReview struct {
	ID        string `gorm:"primaryKey;size:64"`
	CourseID  string `gorm:"size:64;not null;index:idx_lesson_review_student_course"`
	LessonID  string `gorm:"size:80;not null;uniqueIndex:idx_lesson_review_student_lesson;index"`
	StudentID string `gorm:"size:64;not null;uniqueIndex:idx_lesson_review_student_lesson;index:idx_lesson_review_student_course"`
	Comment   string
	Rating    int `gorm:"check:rating>=1 AND rating<=5"`
	CreatedAt time.Time
}

func CourseReviewFromDomain(r lms.Review) CourseReview {
	return CourseReview{
		ID:        r.ID,
		CourseID:  r.CourseID,
		StudentID: r.StudentID,
		Comment:   r.Comment,
		Rating:    r.Rating,
		CreatedAt: r.CreatedAt,
	}
}

func (r CourseReview) ToDomain() lms.Review {
	return lms.Review{
		ID:        r.ID,
		StudentID: r.StudentID,
		CourseID:  r.CourseID,
		TargetID:  r.CourseID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func LessonReviewFromDomain(r lms.Review) LessonReview {
	return LessonReview{
		ID:        r.ID,
		CourseID:  r.CourseID,
		LessonID:  r.TargetID,
		StudentID: r.StudentID,
		Comment:   r.Comment,
		Rating:    r.Rating,
		CreatedAt: r.CreatedAt,
	}
}

func (r LessonReview) ToDomain() lms.Review {
	return lms.Review{
		ID:        r.ID,
		StudentID: r.StudentID,
		CourseID:  r.CourseID,
		TargetID:  r.LessonID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}
