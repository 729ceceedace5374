package lms

import (
	"encoding/json"
	"fmt"
	"time"
)

type LessonKind string

const (
	LessonText  LessonKind = "text"
	LessonVideo LessonKind = "video"
	LessonPDF   LessonKind = "pdf"
	LessonLive  LessonKind = "live"
	LessonQuiz  LessonKind = "quiz"
)

func (k LessonKind) Valid() bool {
	switch k {
	case LessonText, LessonVideo, LessonPDF, LessonLive, LessonQuiz:
		return true
	}
	return false
}

// Content is the kind-specific payload of a lesson. The concrete types below
// are the only implementations.
type Content interface {
	Kind() LessonKind
	isContent()
}

type TextContent struct {
	Body string
}

type VideoContent struct {
	URL string
}

type PDFContent struct {
	URL string
}

// LiveContent is a live session room. RecordingURL is attached later, once the
// conferencing service reports the recording as ready.
type LiveContent struct {
	Room         string
	RecordingURL string
}

type QuizContent struct {
	Questions []Question
}

func (TextContent) Kind() LessonKind  { return LessonText }
func (VideoContent) Kind() LessonKind { return LessonVideo }
func (PDFContent) Kind() LessonKind   { return LessonPDF }
func (LiveContent) Kind() LessonKind  { return LessonLive }
func (QuizContent) Kind() LessonKind  { return LessonQuiz }

func (TextContent) isContent()  {}
func (VideoContent) isContent() {}
func (PDFContent) isContent()   {}
func (LiveContent) isContent()  {}
func (QuizContent) isContent()  {}

// QuestionOptions is the fixed number of options every quiz question carries.
const QuestionOptions = 4

type Question struct {
	Prompt  string   `json:"question" bson:"question"`
	Options []string `json:"options" bson:"options"`
	Correct int      `json:"correct" bson:"correct"`
}

type Lesson struct {
	ID        string
	Title     string
	Order     int
	Content   Content
	CreatedAt time.Time
}

func (l Lesson) Kind() LessonKind {
	if l.Content == nil {
		return ""
	}
	return l.Content.Kind()
}

type lessonJSON struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Type         LessonKind      `json:"type"`
	Content      json.RawMessage `json:"content"`
	RecordingURL string          `json:"recording_url,omitempty"`
	Order        int             `json:"order"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (l Lesson) MarshalJSON() ([]byte, error) {
	kind, raw, err := EncodeContent(l.Content)
	if err != nil {
		return nil, err
	}
	out := lessonJSON{
		ID:        l.ID,
		Title:     l.Title,
		Type:      kind,
		Content:   raw,
		Order:     l.Order,
		CreatedAt: l.CreatedAt,
	}
	if live, ok := l.Content.(LiveContent); ok {
		out.RecordingURL = live.RecordingURL
	}
	return json.Marshal(out)
}

func (l *Lesson) UnmarshalJSON(data []byte) error {
	var in lessonJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	content, err := DecodeContent(in.Type, in.Content, in.RecordingURL)
	if err != nil {
		return err
	}
	*l = Lesson{
		ID:        in.ID,
		Title:     in.Title,
		Order:     in.Order,
		Content:   content,
		CreatedAt: in.CreatedAt,
	}
	return nil
}

// EncodeContent returns the wire form of c: a JSON string for text, video, pdf
// and live lessons, and a JSON array of questions for quizzes.
func EncodeContent(c Content) (LessonKind, json.RawMessage, error) {
	var (
		raw []byte
		err error
	)
	switch v := c.(type) {
	case TextContent:
		raw, err = json.Marshal(v.Body)
	case VideoContent:
		raw, err = json.Marshal(v.URL)
	case PDFContent:
		raw, err = json.Marshal(v.URL)
	case LiveContent:
		raw, err = json.Marshal(v.Room)
	case QuizContent:
		questions := v.Questions
		if questions == nil {
			questions = []Question{}
		}
		raw, err = json.Marshal(questions)
	case nil:
		return "", nil, validationError("lms.EncodeContent", fmt.Errorf("lesson has no content"),
			FieldError{Field: "content", Error: "content is required"})
	default:
		return "", nil, fmt.Errorf("lms.EncodeContent: unsupported content %T", c)
	}
	if err != nil {
		return "", nil, err
	}
	return c.Kind(), raw, nil
}

// DecodeContent is the inverse of EncodeContent. recordingURL is only used by
// live lessons.
func DecodeContent(kind LessonKind, raw json.RawMessage, recordingURL string) (Content, error) {
	const op = "lms.DecodeContent"
	if !kind.Valid() {
		return nil, validationError(op, fmt.Errorf("unknown lesson type %q", kind),
			FieldError{Field: "type", Error: "type must be one of text, video, pdf, live, quiz"})
	}

	if kind == LessonQuiz {
		var questions []Question
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &questions); err != nil {
				return nil, validationError(op, err,
					FieldError{Field: "content", Error: "quiz content must be a list of questions"})
			}
		}
		return QuizContent{Questions: questions}, nil
	}

	var s string
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, validationError(op, err,
				FieldError{Field: "content", Error: fmt.Sprintf("%s content must be a string", kind)})
		}
	}
	switch kind {
	case LessonText:
		return TextContent{Body: s}, nil
	case LessonVideo:
		return VideoContent{URL: s}, nil
	case LessonPDF:
		return PDFContent{URL: s}, nil
	default:
		return LiveContent{Room: s, RecordingURL: recordingURL}, nil
	}
}

type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TeacherID   string    `json:"teacher_id"`
	Lessons     []Lesson  `json:"lessons"`
	CreatedAt   time.Time `json:"created_at"`
}

// OrderedLessons returns the lessons in display order.
func (c Course) OrderedLessons() []Lesson {
	return SortLessons(c.Lessons)
}

// Lesson looks a lesson up by ID.
func (c Course) Lesson(id string) (Lesson, bool) {
	for _, l := range c.Lessons {
		if l.ID == id {
			return l, true
		}
	}
	return Lesson{}, false
}

type Enrollment struct {
	ID                 string    `json:"id"`
	StudentID          string    `json:"student_id"`
	CourseID           string    `json:"course_id"`
	CompletedLessonIDs []string  `json:"completed_lesson_ids"`
	Grade              *float64  `json:"grade"`
	EnrolledAt         time.Time `json:"enrolled_at"`
}

func (e Enrollment) HasCompleted(lessonID string) bool {
	for _, id := range e.CompletedLessonIDs {
		if id == lessonID {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices or pointers with e.
func (e Enrollment) Clone() Enrollment {
	out := e
	out.CompletedLessonIDs = append([]string(nil), e.CompletedLessonIDs...)
	if e.Grade != nil {
		g := *e.Grade
		out.Grade = &g
	}
	return out
}

type QuizAttempt struct {
	ID          string      `json:"id"`
	StudentID   string      `json:"student_id"`
	CourseID    string      `json:"course_id"`
	LessonID    string      `json:"lesson_id"`
	Answers     map[int]int `json:"answers"`
	Correctness []bool      `json:"correctness"`
	Score       int         `json:"score"`
	Total       int         `json:"total"`
	SubmittedAt time.Time   `json:"submitted_at"`
}

// Review is a star rating with an optional comment. For course reviews
// TargetID equals CourseID; for lesson reviews it is the lesson ID.
type Review struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	CourseID  string    `json:"course_id"`
	TargetID  string    `json:"target_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
