package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"learnhub/backend/lms"
)

type Course struct {
	ID          string `gorm:"primaryKey;size:64"`
	Title       string `gorm:"size:200;not null"`
	Description string
	TeacherID   string `gorm:"size:64;index"`
	Lessons     []Lesson `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Lesson content is stored in its wire form: a JSON string, or a JSON array
// of questions for quizzes.
type Lesson struct {
	CourseID      string `gorm:"primaryKey;size:64"`
	ID            string `gorm:"primaryKey;size:80"`
	Title         string `gorm:"size:200"`
	Kind          string `gorm:"size:16;not null"`
	Content       datatypes.JSON
	RecordingURL  string
	SequenceOrder int
	CreatedAt     time.Time
}

func CourseFromDomain(c lms.Course) (Course, error) {
	out := Course{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		TeacherID:   c.TeacherID,
		Lessons:     make([]Lesson, 0, len(c.Lessons)),
		CreatedAt:   c.CreatedAt,
	}
	for _, l := range c.Lessons {
		rec, err := LessonFromDomain(c.ID, l)
		if err != nil {
			return Course{}, err
		}
		out.Lessons = append(out.Lessons, rec)
	}
	return out, nil
}

func LessonFromDomain(courseID string, l lms.Lesson) (Lesson, error) {
	kind, raw, err := lms.EncodeContent(l.Content)
	if err != nil {
		return Lesson{}, err
	}
	rec := Lesson{
		CourseID:      courseID,
		ID:            l.ID,
		Title:         l.Title,
		Kind:          string(kind),
		Content:       datatypes.JSON(raw),
		SequenceOrder: l.Order,
		CreatedAt:     l.CreatedAt,
	}
	if live, ok := l.Content.(lms.LiveContent); ok {
		rec.RecordingURL = live.RecordingURL
	}
	return rec, nil
}

func (c Course) ToDomain() (lms.Course, error) {
	out := lms.Course{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		TeacherID:   c.TeacherID,
		Lessons:     make([]lms.Lesson, 0, len(c.Lessons)),
		CreatedAt:   c.CreatedAt,
	}
	for _, rec := range c.Lessons {
		l, err := rec.ToDomain()
		if err != nil {
			return lms.Course{}, err
		}
		out.Lessons = append(out.Lessons, l)
	}
	return out, nil
}

func (l Lesson) ToDomain() (lms.Lesson, error) {
	content, err := lms.DecodeContent(lms.LessonKind(l.Kind), json.RawMessage(l.Content), l.RecordingURL)
	if err != nil {
		return lms.Lesson{}, err
	}
	return lms.Lesson{
		ID:        l.ID,
		Title:     l.Title,
		Order:     l.SequenceOrder,
		Content:   content,
		CreatedAt: l.CreatedAt,
	}, nil
}
