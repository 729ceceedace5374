package lms_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub/backend/lms"
)

func TestCreateCourseAndLessons(t *testing.T) {
	f := newFixture()
	cat := lms.NewCatalog(f.store, f.log)

	_, err := cat.CreateCourse(f.ctx, "t1", lms.CourseInput{Title: "   "})
	require.True(t, lms.IsValidation(err))
	assert.Equal(t, "title", lms.FieldsOf(err)[0].Field)

	course, err := cat.CreateCourse(f.ctx, "t1", lms.CourseInput{Title: "Go", Description: "basics"})
	require.NoError(t, err)

	first, err := cat.SaveLesson(f.ctx, "t1", course.ID, "", lms.LessonInput{Title: "Intro", Content: lms.TextContent{Body: "hello"}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.ID, "les_"))
	assert.Equal(t, 0, first.Order)

	second, err := cat.SaveLesson(f.ctx, "t1", course.ID, "", lms.LessonInput{Title: "Video", Content: lms.VideoContent{URL: "https://example.com/v.mp4"}})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Order)

	edited, err := cat.SaveLesson(f.ctx, "t1", course.ID, first.ID, lms.LessonInput{Title: "Intro v2", Content: lms.TextContent{Body: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, first.ID, edited.ID)
	assert.Equal(t, first.Order, edited.Order)
	assert.Equal(t, first.CreatedAt, edited.CreatedAt)

	stored, err := cat.Course(f.ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, stored.Lessons, 2)
	assert.Equal(t, "Intro v2", stored.Lessons[0].Title)

	_, err = cat.SaveLesson(f.ctx, "t2", course.ID, "", lms.LessonInput{Title: "x", Content: lms.TextContent{Body: "x"}})
	assert.True(t, lms.IsForbidden(err))

	_, err = cat.SaveLesson(f.ctx, "t1", course.ID, "les_missing", lms.LessonInput{Title: "x", Content: lms.TextContent{Body: "x"}})
	assert.True(t, lms.IsNotFound(err))
}

func TestUpdateCourse(t *testing.T) {
	f := newFixture()
	f.addCourse(t, "c1", "t1", text("l1", 0), text("l2", 1))
	cat := lms.NewCatalog(f.store, f.log)

	_, err := cat.UpdateCourse(f.ctx, "t1", "c1", lms.CourseInput{Title: ""})
	assert.True(t, lms.IsValidation(err))

	_, err = cat.UpdateCourse(f.ctx, "t2", "c1", lms.CourseInput{Title: "Stolen"})
	assert.True(t, lms.IsForbidden(err))
	assert.ErrorIs(t, err, lms.ErrNotCourseTeacher)

	_, err = cat.UpdateCourse(f.ctx, "t1", "missing", lms.CourseInput{Title: "x"})
	assert.True(t, lms.IsNotFound(err))

	updated, err := cat.UpdateCourse(f.ctx, "t1", "c1", lms.CourseInput{Title: " Ethics II ", Description: "new"})
	require.NoError(t, err)
	assert.Equal(t, "Ethics II", updated.Title)

	stored, err := cat.Course(f.ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Ethics II", stored.Title)
	assert.Equal(t, "new", stored.Description)
	assert.Equal(t, "t1", stored.TeacherID)
	assert.Len(t, stored.Lessons, 2, "lessons untouched")
}

func TestCheckContent(t *testing.T) {
	fourOptions := []string{"a", "b", "c", "d"}
	bad := map[string]lms.Content{
		"empty text":       lms.TextContent{Body: "  "},
		"relative video":   lms.VideoContent{URL: "/v.mp4"},
		"pdf without .pdf": lms.PDFContent{URL: "https://example.com/doc.txt"},
		"live no room":     lms.LiveContent{},
		"quiz no question": lms.QuizContent{},
		"quiz 3 options":   lms.QuizContent{Questions: []lms.Question{{Prompt: "q", Options: []string{"a", "b", "c"}}}},
		"quiz bad correct": lms.QuizContent{Questions: []lms.Question{{Prompt: "q", Options: fourOptions, Correct: 4}}},
		"quiz empty opt":   lms.QuizContent{Questions: []lms.Question{{Prompt: "q", Options: []string{"a", "", "c", "d"}}}},
		"nil":              nil,
	}
	for name, c := range bad {
		t.Run(name, func(t *testing.T) {
			_, err := lms.CheckContent("test", "c1", c)
			assert.True(t, lms.IsValidation(err))
		})
	}

	out, err := lms.CheckContent("test", "c1", lms.PDFContent{URL: "https://example.com/Notes.PDF"})
	require.NoError(t, err)
	assert.Equal(t, lms.LessonPDF, out.Kind())

	out, err = lms.CheckContent("test", "c1", lms.LiveContent{Room: "weekly"})
	require.NoError(t, err)
	assert.Equal(t, "c1_weekly", out.(lms.LiveContent).Room)

	out, err = lms.CheckContent("test", "c1", lms.LiveContent{Room: "c1_weekly"})
	require.NoError(t, err)
	assert.Equal(t, "c1_weekly", out.(lms.LiveContent).Room)
}

func TestAttachRecording(t *testing.T) {
	f := newFixture()
	f.addCourse(t, "c1", "t1",
		text("l1", 0),
		lms.Lesson{ID: "live1", Title: "Live", Order: 1, Content: lms.LiveContent{Room: "c1_weekly"}},
	)
	cat := lms.NewCatalog(f.store, f.log)

	lesson, err := cat.AttachRecording(f.ctx, "c1_weekly", "https://cdn.example.com/rec.mp4")
	require.NoError(t, err)
	assert.Equal(t, "live1", lesson.ID)

	course, err := f.store.GetCourse(f.ctx, "c1")
	require.NoError(t, err)
	live, ok := course.Lessons[1].Content.(lms.LiveContent)
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/rec.mp4", live.RecordingURL)

	_, err = cat.AttachRecording(f.ctx, "noseparator", "https://cdn.example.com/rec.mp4")
	assert.True(t, lms.IsValidation(err))
	assert.ErrorIs(t, err, lms.ErrInvalidRoomName)

	_, err = cat.AttachRecording(f.ctx, "c1_other", "https://cdn.example.com/rec.mp4")
	assert.True(t, lms.IsNotFound(err))

	_, err = cat.AttachRecording(f.ctx, "c9_weekly", "https://cdn.example.com/rec.mp4")
	assert.True(t, lms.IsNotFound(err))
}

func TestLessonWireShape(t *testing.T) {
	raw := `[
		{"id":"l1","title":"T","type":"text","content":"hello","order":0},
		{"id":"l2","title":"L","type":"live","content":"c1_room","recording_url":"https://r/x.mp4","order":1},
		{"id":"l3","title":"Q","type":"quiz","content":[{"question":"2+2?","options":["1","2","3","4"],"correct":3}],"order":2}
	]`
	var lessons []lms.Lesson
	require.NoError(t, json.Unmarshal([]byte(raw), &lessons))

	assert.Equal(t, lms.TextContent{Body: "hello"}, lessons[0].Content)
	assert.Equal(t, lms.LiveContent{Room: "c1_room", RecordingURL: "https://r/x.mp4"}, lessons[1].Content)
	q := lessons[2].Content.(lms.QuizContent)
	assert.Equal(t, 3, q.Questions[0].Correct)

	out, err := json.Marshal(lessons[2])
	require.NoError(t, err)
	var generic map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &generic))
	assert.Equal(t, "quiz", generic["type"])
	assert.IsType(t, []interface{}{}, generic["content"])

	var bad lms.Lesson
	err = json.Unmarshal([]byte(`{"id":"x","type":"audio","content":"a"}`), &bad)
	assert.True(t, lms.IsValidation(err))
}
