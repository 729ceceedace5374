package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"learnhub/backend/lms"
)

// Enrollment is one student's progress through one course.
type Enrollment struct {
	ID                 string   `gorm:"primaryKey;size:64"`
	StudentID          string   `gorm:"size:64;not null;uniqueIndex:idx_enrollment_student_course"`
	CourseID           string   `gorm:"size:64;not null;uniqueIndex:idx_enrollment_student_course;index"`
	CompletedLessonIDs datatypes.JSON
	Grade              *float64 `gorm:"check:grade >= 0 AND grade <= 10"`
	EnrolledAt         time.Time
	UpdatedAt          time.Time
}

func EnrollmentFromDomain(e lms.Enrollment) (Enrollment, error) {
	ids, err := CompletedJSON(e.CompletedLessonIDs)
	if err != nil {
		return Enrollment{}, err
	}
	return Enrollment{
		ID:                 e.ID,
		StudentID:          e.StudentID,
		CourseID:           e.CourseID,
		CompletedLessonIDs: ids,
		Grade:              e.Grade,
		EnrolledAt:         e.EnrolledAt,
	}, nil
}

// CompletedJSON encodes completed lesson IDs, keeping completion order.
func CompletedJSON(ids []string) (datatypes.JSON, error) {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func (e Enrollment) ToDomain() (lms.Enrollment, error) {
	ids := []string{}
	if len(e.CompletedLessonIDs) > 0 {
		if err := json.Unmarshal(e.CompletedLessonIDs, &ids); err != nil {
			return lms.Enrollment{}, err
		}
	}
	return lms.Enrollment{
		ID:                 e.ID,
		StudentID:          e.StudentID,
		CourseID:           e.CourseID,
		CompletedLessonIDs: ids,
		Grade:              e.Grade,
		EnrolledAt:         e.EnrolledAt,
	}, nil
}
