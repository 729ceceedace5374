package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"learnhub/backend/lms"
)

// QuizAttempt is immutable once written; one per student and lesson.
type QuizAttempt struct {
	ID          string `gorm:"primaryKey;size:64"`
	StudentID   string `gorm:"size:64;not null;uniqueIndex:idx_attempt_student_lesson;index:idx_attempt_student_course"`
	CourseID    string `gorm:"size:64;not null;index:idx_attempt_student_course"`
	LessonID    string `gorm:"size:80;not null;uniqueIndex:idx_attempt_student_lesson"`
	Answers     datatypes.JSON
	Correctness datatypes.JSON
	Score       int
	Total       int
	SubmittedAt time.Time
}

func QuizAttemptFromDomain(a lms.QuizAttempt) (QuizAttempt, error) {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return QuizAttempt{}, err
	}
	correctness, err := json.Marshal(a.Correctness)
	if err != nil {
		return QuizAttempt{}, err
	}
	return QuizAttempt{
		ID:          a.ID,
		StudentID:   a.StudentID,
		CourseID:    a.CourseID,
		LessonID:    a.LessonID,
		Answers:     datatypes.JSON(answers),
		Correctness: datatypes.JSON(correctness),
		Score:       a.Score,
		Total:       a.Total,
		SubmittedAt: a.SubmittedAt,
	}, nil
}

func (a QuizAttempt) ToDomain() (lms.QuizAttempt, error) {
	out := lms.QuizAttempt{
		ID:          a.ID,
		StudentID:   a.StudentID,
		CourseID:    a.CourseID,
		LessonID:    a.LessonID,
		Answers:     map[int]int{},
		Score:       a.Score,
		Total:       a.Total,
		SubmittedAt: a.SubmittedAt,
	}
	if len(a.Answers) > 0 {
		if err := json.Unmarshal(a.Answers, &out.Answers); err != nil {
			return lms.QuizAttempt{}, err
		}
	}
	if len(a.Correctness) > 0 {
		if err := json.Unmarshal(a.Correctness, &out.Correctness); err != nil {
			return lms.QuizAttempt{}, err
		}
	}
	return out, nil
}
