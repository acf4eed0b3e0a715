package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed input; the whole operation is rejected.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when a referenced paper, student or submission does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotGradable is returned when a submission targets a paper without an answer key.
	ErrNotGradable = errors.New("paper has no answer key yet")
	// ErrConflict is returned when a student submits the same paper twice.
	ErrConflict = errors.New("paper already submitted by this student")
	// ErrTransient wraps storage timeouts and aborted transactions; the caller may retry.
	ErrTransient = errors.New("transient storage failure")
	// ErrUnauthenticated is returned when no valid identity accompanies a request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is returned when the identity lacks the required role.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError names the input field that failed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
