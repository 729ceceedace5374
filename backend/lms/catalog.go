package lms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"learnhub/backend/logger"
)

type CourseInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
}

type LessonInput struct {
	Title   string  `json:"title" validate:"required,max=200"`
	Content Content `json:"-"`
}

// Catalog is the teacher-facing authoring side of courses.
type Catalog struct {
	courses CourseRepository
	log     *logger.Logger
}

func NewCatalog(courses CourseRepository, log *logger.Logger) *Catalog {
	return &Catalog{courses: courses, log: log.With("service", "catalog")}
}

func (c *Catalog) Course(ctx context.Context, courseID string) (*Course, error) {
	return loadCourse(ctx, c.courses, "catalog.Course", courseID)
}

func (c *Catalog) CreateCourse(ctx context.Context, teacherID string, in CourseInput) (*Course, error) {
	const op = "catalog.CreateCourse"
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := Validate(op, in); err != nil {
		return nil, err
	}

	course := &Course{
		ID:          newID(),
		Title:       in.Title,
		Description: in.Description,
		TeacherID:   teacherID,
		Lessons:     []Lesson{},
		CreatedAt:   nowFunc(),
	}
	if err := c.courses.SaveCourse(ctx, course); err != nil {
		return nil, classify(op, err)
	}
	c.log.Info("course created", "course_id", course.ID, "teacher_id", teacherID)
	return course, nil
}

// UpdateCourse replaces the course title and description. Lessons are left
// as they are.
func (c *Catalog) UpdateCourse(ctx context.Context, teacherID, courseID string, in CourseInput) (*Course, error) {
	const op = "catalog.UpdateCourse"
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := Validate(op, in); err != nil {
		return nil, err
	}

	course, err := loadCourse(ctx, c.courses, op, courseID)
	if err != nil {
		return nil, err
	}
	if course.TeacherID != teacherID {
		return nil, newError(KindForbidden, op, ErrNotCourseTeacher)
	}
	course.Title = in.Title
	course.Description = in.Description
	if err := c.courses.SaveCourse(ctx, course); err != nil {
		return nil, classify(op, err)
	}
	c.log.Info("course updated", "course_id", courseID, "teacher_id", teacherID)
	return course, nil
}

// SaveLesson adds a lesson to the end of the course, or replaces the lesson
// with ID lessonID keeping its position and creation time.
func (c *Catalog) SaveLesson(ctx context.Context, teacherID, courseID, lessonID string, in LessonInput) (*Lesson, error) {
	const op = "catalog.SaveLesson"
	in.Title = strings.TrimSpace(in.Title)
	if err := Validate(op, in); err != nil {
		return nil, err
	}

	course, err := loadCourse(ctx, c.courses, op, courseID)
	if err != nil {
		return nil, err
	}
	if course.TeacherID != teacherID {
		return nil, newError(KindForbidden, op, ErrNotCourseTeacher)
	}
	content, err := CheckContent(op, course.ID, in.Content)
	if err != nil {
		return nil, err
	}

	var lesson Lesson
	if lessonID == "" {
		lesson = Lesson{
			ID:        "les_" + newID(),
			Title:     in.Title,
			Order:     len(course.Lessons),
			Content:   content,
			CreatedAt: nowFunc(),
		}
		course.Lessons = append(course.Lessons, lesson)
	} else {
		idx := lessonIndex(course.Lessons, lessonID)
		if idx < 0 {
			return nil, newError(KindNotFound, op, fmt.Errorf("lesson %s not found", lessonID))
		}
		lesson = course.Lessons[idx]
		lesson.Title = in.Title
		lesson.Content = keepRecording(lesson.Content, content)
		course.Lessons[idx] = lesson
	}
	if err := checkLessonIDs(op, course.Lessons); err != nil {
		return nil, err
	}

	if err := c.courses.SaveCourse(ctx, course); err != nil {
		return nil, classify(op, err)
	}
	c.log.Info("lesson saved", "course_id", courseID, "lesson_id", lesson.ID, "kind", lesson.Kind())
	return &lesson, nil
}

// AttachRecording stores the recording URL on the live lesson held in
// roomName, which has the form <courseID>_<room>.
func (c *Catalog) AttachRecording(ctx context.Context, roomName, recordingURL string) (*Lesson, error) {
	const op = "catalog.AttachRecording"

	courseID, room, ok := strings.Cut(roomName, "_")
	if !ok || courseID == "" || room == "" {
		return nil, validationError(op, ErrInvalidRoomName, FieldError{Field: "room_name", Error: ErrInvalidRoomName.Error()})
	}
	if err := validate.Var(recordingURL, "required,http_url"); err != nil {
		return nil, validationError(op, errors.New("invalid recording url"),
			FieldError{Field: "location", Error: "location must be an http(s) URL"})
	}

	course, err := loadCourse(ctx, c.courses, op, courseID)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, l := range course.Lessons {
		if live, ok := l.Content.(LiveContent); ok && live.Room == roomName {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, newError(KindNotFound, op, fmt.Errorf("no live lesson for room %s", roomName))
	}

	live := course.Lessons[idx].Content.(LiveContent)
	live.RecordingURL = recordingURL
	course.Lessons[idx].Content = live
	if err := c.courses.SaveCourse(ctx, course); err != nil {
		return nil, classify(op, err)
	}
	c.log.Info("recording attached", "course_id", courseID, "lesson_id", course.Lessons[idx].ID)
	lesson := course.Lessons[idx]
	return &lesson, nil
}

// CheckContent validates lesson content for a course and returns it
// normalized: strings trimmed and live rooms prefixed with the course ID.
func CheckContent(op, courseID string, content Content) (Content, error) {
	invalid := func(msg string) error {
		return validationError(op, errors.New(msg), FieldError{Field: "content", Error: msg})
	}

	switch v := content.(type) {
	case TextContent:
		v.Body = strings.TrimSpace(v.Body)
		if v.Body == "" {
			return nil, invalid("text content cannot be empty")
		}
		return v, nil
	case VideoContent:
		v.URL = strings.TrimSpace(v.URL)
		if validate.Var(v.URL, "required,http_url") != nil {
			return nil, invalid("video content must be an http(s) URL")
		}
		return v, nil
	case PDFContent:
		v.URL = strings.TrimSpace(v.URL)
		if validate.Var(v.URL, "required,http_url") != nil || !strings.HasSuffix(strings.ToLower(v.URL), ".pdf") {
			return nil, invalid("pdf content must be a URL ending in .pdf")
		}
		return v, nil
	case LiveContent:
		v.Room = strings.TrimSpace(v.Room)
		if v.Room == "" {
			return nil, invalid("live content needs a room name")
		}
		if !strings.HasPrefix(v.Room, courseID+"_") {
			v.Room = courseID + "_" + v.Room
		}
		return v, nil
	case QuizContent:
		return checkQuiz(op, v)
	case nil:
		return nil, invalid("content is required")
	default:
		return nil, invalid(fmt.Sprintf("unsupported content %T", content))
	}
}

func checkQuiz(op string, q QuizContent) (Content, error) {
	if len(q.Questions) == 0 {
		return nil, validationError(op, errors.New("quiz needs at least one question"),
			FieldError{Field: "content", Error: "quiz needs at least one question"})
	}
	var fields []FieldError
	out := QuizContent{Questions: make([]Question, len(q.Questions))}
	for i, question := range q.Questions {
		field := fmt.Sprintf("content.%d", i)
		question.Prompt = strings.TrimSpace(question.Prompt)
		if question.Prompt == "" {
			fields = append(fields, FieldError{Field: field + ".question", Error: "question cannot be empty"})
		}
		if len(question.Options) != QuestionOptions {
			fields = append(fields, FieldError{Field: field + ".options", Error: fmt.Sprintf("exactly %d options are required", QuestionOptions)})
		} else {
			opts := make([]string, len(question.Options))
			for j, o := range question.Options {
				opts[j] = strings.TrimSpace(o)
				if opts[j] == "" {
					fields = append(fields, FieldError{Field: fmt.Sprintf("%s.options.%d", field, j), Error: "option cannot be empty"})
				}
			}
			question.Options = opts
		}
		if question.Correct < 0 || question.Correct >= QuestionOptions {
			fields = append(fields, FieldError{Field: field + ".correct", Error: fmt.Sprintf("correct must be between 0 and %d", QuestionOptions-1)})
		}
		out.Questions[i] = question
	}
	if len(fields) > 0 {
		return nil, validationError(op, errors.New("invalid quiz"), fields...)
	}
	return out, nil
}

// keepRecording carries an attached recording over when a live lesson is
// edited without changing its room.
func keepRecording(prev, next Content) Content {
	old, ok := prev.(LiveContent)
	live, ok2 := next.(LiveContent)
	if ok && ok2 && old.Room == live.Room && live.RecordingURL == "" {
		live.RecordingURL = old.RecordingURL
		return live
	}
	return next
}

func lessonIndex(lessons []Lesson, id string) int {
	for i, l := range lessons {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func checkLessonIDs(op string, lessons []Lesson) error {
	seen := make(map[string]struct{}, len(lessons))
	for _, l := range lessons {
		if _, dup := seen[l.ID]; dup {
			return validationError(op, fmt.Errorf("duplicate lesson id %s", l.ID),
				FieldError{Field: "id", Error: "lesson ids must be unique within a course"})
		}
		seen[l.ID] = struct{}{}
	}
	return nil
}
