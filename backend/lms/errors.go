package lms

import (
	"errors"
	"fmt"
)

// Gateway sentinels. Stores return these (possibly wrapped); services turn
// them into typed *Error values.
var (
	ErrCourseNotFound      = errors.New("course not found")
	ErrEnrollmentNotFound  = errors.New("enrollment not found")
	ErrDuplicateEnrollment = errors.New("student is already enrolled in this course")
	ErrDuplicateAttempt    = errors.New("quiz already submitted for this lesson")
	ErrDuplicateReview     = errors.New("review already submitted")
)

// Domain rule violations.
var (
	ErrLessonNotInCourse = errors.New("lesson does not belong to this course")
	ErrNotAQuiz          = errors.New("lesson is not a quiz")
	ErrCourseIncomplete  = errors.New("course must be completed before it can be reviewed")
	ErrNotCourseTeacher  = errors.New("only the course teacher can do this")
	ErrInvalidRoomName   = errors.New("room name must look like <courseId>_<room>")
)

type ErrorKind uint8

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindDuplicate
	KindPersistence
	KindForbidden
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindDuplicate:
		return "duplicate"
	case KindPersistence:
		return "persistence"
	case KindForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// FieldError is used to indicate an error with a specific input field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// Error is the typed error every lms operation returns.
type Error struct {
	Kind   ErrorKind
	Op     string
	Err    error
	Fields []FieldError
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.String()
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, op string, err error, fields ...FieldError) error {
	return &Error{Kind: kind, Op: op, Err: err, Fields: fields}
}

func validationError(op string, err error, fields ...FieldError) error {
	return newError(KindValidation, op, err, fields...)
}

// classify turns a gateway error into a typed *Error. Errors that are
// already typed pass through unchanged.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return err
	}
	switch {
	case errors.Is(err, ErrCourseNotFound), errors.Is(err, ErrEnrollmentNotFound):
		return newError(KindNotFound, op, err)
	case errors.Is(err, ErrDuplicateEnrollment),
		errors.Is(err, ErrDuplicateAttempt),
		errors.Is(err, ErrDuplicateReview):
		return newError(KindDuplicate, op, err)
	default:
		return newError(KindPersistence, op, err)
	}
}

// KindOf reports the kind of a typed error, or 0 for anything else.
func KindOf(err error) ErrorKind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return 0
}

func IsValidation(err error) bool  { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool    { return KindOf(err) == KindNotFound }
func IsDuplicate(err error) bool   { return KindOf(err) == KindDuplicate }
func IsPersistence(err error) bool { return KindOf(err) == KindPersistence }
func IsForbidden(err error) bool   { return KindOf(err) == KindForbidden }

// IsDuplicateEnrollment reports whether err is the rejection of a second
// enrollment for the same (student, course) pair.
func IsDuplicateEnrollment(err error) bool {
	return IsDuplicate(err) && errors.Is(err, ErrDuplicateEnrollment)
}

// FieldsOf returns the field errors carried by a validation error.
func FieldsOf(err error) []FieldError {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Fields
	}
	return nil
}
