package lms

import (
	"context"
	"fmt"
	"sort"

	"learnhub/backend/logger"
)

// QuizResult is the outcome of grading one set of answers.
type QuizResult struct {
	Correctness []bool `json:"correctness"`
	Score       int    `json:"score"`
	Total       int    `json:"total"`
}

// Grade scores answers (question index to option index) against the answer
// key. A question without an answer is incorrect.
func Grade(questions []Question, answers map[int]int) QuizResult {
	res := QuizResult{
		Correctness: make([]bool, len(questions)),
		Total:       len(questions),
	}
	for i, q := range questions {
		chosen, ok := answers[i]
		if ok && chosen == q.Correct {
			res.Correctness[i] = true
			res.Score++
		}
	}
	return res
}

// Passed reports whether the score reaches ratio of the total. A quiz with no
// questions is never passed.
func (r QuizResult) Passed(ratio float64) bool {
	if r.Total == 0 {
		return false
	}
	return float64(r.Score)/float64(r.Total) >= ratio
}

func (a QuizAttempt) Result() QuizResult {
	return QuizResult{Correctness: a.Correctness, Score: a.Score, Total: a.Total}
}

type QuizService struct {
	courses     CourseRepository
	enrollments EnrollmentGateway
	attempts    AttemptStore
	passRatio   float64
	log         *logger.Logger
}

func NewQuizService(courses CourseRepository, enrollments EnrollmentGateway, attempts AttemptStore, passRatio float64, log *logger.Logger) *QuizService {
	return &QuizService{
		courses:     courses,
		enrollments: enrollments,
		attempts:    attempts,
		passRatio:   passRatio,
		log:         log.With("service", "quiz"),
	}
}

func (s *QuizService) PassRatio() float64 { return s.passRatio }

// Submit grades and stores a student's only attempt at a quiz lesson.
func (s *QuizService) Submit(ctx context.Context, studentID, courseID, lessonID string, answers map[int]int) (*QuizAttempt, error) {
	const op = "quiz.Submit"

	course, err := loadCourse(ctx, s.courses, op, courseID)
	if err != nil {
		return nil, err
	}
	lesson, ok := course.Lesson(lessonID)
	if !ok {
		return nil, validationError(op, ErrLessonNotInCourse, FieldError{Field: "lesson_id", Error: ErrLessonNotInCourse.Error()})
	}
	quiz, ok := lesson.Content.(QuizContent)
	if !ok {
		return nil, validationError(op, ErrNotAQuiz, FieldError{Field: "lesson_id", Error: ErrNotAQuiz.Error()})
	}
	if err := checkAnswers(op, quiz.Questions, answers); err != nil {
		return nil, err
	}

	if _, err := loadEnrollment(ctx, s.enrollments, op, studentID, courseID); err != nil {
		return nil, err
	}
	existing, err := s.attempts.GetQuizAttempt(ctx, studentID, lessonID)
	if err != nil {
		return nil, classify(op, err)
	}
	if existing != nil {
		return nil, newError(KindDuplicate, op, ErrDuplicateAttempt)
	}

	res := Grade(quiz.Questions, answers)
	attempt := &QuizAttempt{
		ID:          newID(),
		StudentID:   studentID,
		CourseID:    courseID,
		LessonID:    lessonID,
		Answers:     copyAnswers(answers),
		Correctness: res.Correctness,
		Score:       res.Score,
		Total:       res.Total,
		SubmittedAt: nowFunc(),
	}
	if err := s.attempts.SubmitQuizAttempt(ctx, attempt); err != nil {
		s.log.Warn("quiz attempt not stored", "student_id", studentID, "lesson_id", lessonID, "error", err)
		return nil, classify(op, err)
	}

	s.log.Info("quiz submitted",
		"student_id", studentID,
		"course_id", courseID,
		"lesson_id", lessonID,
		"score", res.Score,
		"total", res.Total,
	)
	return attempt, nil
}

// Attempt returns the stored attempt, or a not found error when the student
// has not taken that course's quiz yet.
func (s *QuizService) Attempt(ctx context.Context, studentID, courseID, lessonID string) (*QuizAttempt, error) {
	const op = "quiz.Attempt"
	a, err := s.attempts.GetQuizAttempt(ctx, studentID, lessonID)
	if err != nil {
		return nil, classify(op, err)
	}
	if a == nil || a.CourseID != courseID {
		return nil, newError(KindNotFound, op, fmt.Errorf("no attempt for lesson %s in course %s", lessonID, courseID))
	}
	return a, nil
}

func checkAnswers(op string, questions []Question, answers map[int]int) error {
	keys := make([]int, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var fields []FieldError
	for _, qi := range keys {
		field := fmt.Sprintf("answers.%d", qi)
		if qi < 0 || qi >= len(questions) {
			fields = append(fields, FieldError{Field: field, Error: "no such question"})
			continue
		}
		if opt := answers[qi]; opt < 0 || opt >= len(questions[qi].Options) {
			fields = append(fields, FieldError{Field: field, Error: "no such option"})
		}
	}
	if len(fields) > 0 {
		return validationError(op, fmt.Errorf("invalid answers"), fields...)
	}
	return nil
}

func copyAnswers(answers map[int]int) map[int]int {
	out := make(map[int]int, len(answers))
	for k, v := range answers {
		out[k] = v
	}
	return out
}
