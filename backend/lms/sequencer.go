package lms

import "sort"

// NoLesson is the index returned when a course has no lessons.
const NoLesson = -1

// SortLessons returns a copy of lessons ordered by Order. Lessons sharing an
// Order keep their relative position.
func SortLessons(lessons []Lesson) []Lesson {
	out := append([]Lesson(nil), lessons...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// NextPending returns the index of the first lesson not in completed. When
// every lesson is done it returns the last index, and NoLesson when there are
// no lessons at all.
func NextPending(lessons []Lesson, completed []string) int {
	if len(lessons) == 0 {
		return NoLesson
	}
	done := make(map[string]struct{}, len(completed))
	for _, id := range completed {
		done[id] = struct{}{}
	}
	for i, l := range lessons {
		if _, ok := done[l.ID]; !ok {
			return i
		}
	}
	return len(lessons) - 1
}

// Cursor tracks the currently displayed lesson of an ordered list.
type Cursor struct {
	lessons []Lesson
	index   int
}

// NewCursor positions a cursor on the next pending lesson.
func NewCursor(lessons []Lesson, completed []string) *Cursor {
	return &Cursor{lessons: lessons, index: NextPending(lessons, completed)}
}

func (c *Cursor) Index() int { return c.index }

// Current returns the lesson under the cursor.
func (c *Cursor) Current() (Lesson, bool) {
	if c.index < 0 || c.index >= len(c.lessons) {
		return Lesson{}, false
	}
	return c.lessons[c.index], true
}

// GoTo moves the cursor to i. Out of range indexes leave it where it is.
func (c *Cursor) GoTo(i int) bool {
	if i < 0 || i >= len(c.lessons) {
		return false
	}
	c.index = i
	return true
}

// GoNext advances one lesson. It is a no-op on the last lesson.
func (c *Cursor) GoNext() bool {
	return c.GoTo(c.index + 1)
}
