package errors

import (
	"errors"
	"fmt"
)

// Error represents a typed domain error identified by a stable code.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so clones match their origin.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}
	return t.Code == e.Code
}

// New creates a new Error instance.
func New(code string, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Predefined errors for the record model.
var (
	ErrDuplicatePerson        = New("DUPLICATE_PERSON", "person already exists")
	ErrDuplicateStudent       = New("DUPLICATE_STUDENT", "student already exists in tutorial")
	ErrDuplicateAssessment    = New("DUPLICATE_ASSESSMENT", "assessment already exists")
	ErrDuplicateStudentResult = New("DUPLICATE_STUDENT_RESULT", "student result already exists")
	ErrDuplicateTutorial      = New("DUPLICATE_TUTORIAL", "tutorial already exists")
	ErrPersonNotFound         = New("PERSON_NOT_FOUND", "person not found")
	ErrStudentNotFound        = New("STUDENT_NOT_FOUND", "student not found")
	ErrTutorialNotFound       = New("TUTORIAL_NOT_FOUND", "tutorial not found")
	ErrAssessmentNotFound     = New("ASSESSMENT_NOT_FOUND", "assessment not found")
	ErrInvalidWeekOrStudent   = New("INVALID_WEEK_OR_STUDENT", "invalid week or student")
	ErrScoreOutOfRange        = New("SCORE_OUT_OF_RANGE", "score out of range")
	ErrValidation             = New("VALIDATION_ERROR", "validation failed")
	ErrInvalidIndex           = New("INVALID_INDEX", "index out of range")
	ErrReentrantMutation      = New("REENTRANT_MUTATION", "mutation attempted during view refresh")
	ErrInternal               = New("INTERNAL_ERROR", "internal error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
