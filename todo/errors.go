package todo

import (
	"errors"
	"strings"
)

var (
	// ErrTodoNotFound is returned when a todo with the given ID doesn't exist.
	ErrTodoNotFound = errors.New("todo not found")

	// ErrAmbiguousTodoIDPrefix is returned when an ID prefix matches multiple todos.
	ErrAmbiguousTodoIDPrefix = errors.New("ambiguous todo ID prefix")

	// ErrInvalidArgument is returned for malformed requests such as an unknown
	// bulk action, a missing id list, or an unknown filter value.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrStorage is returned when the backend fails to load or save.
	ErrStorage = errors.New("storage failure")
)

// ValidationError reports every rule a candidate todo violates.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + strings.Join(e.Problems, "; ")
}

// Is makes errors.Is(err, ErrValidation) true for validation errors.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

// ValidationProblems returns the messages carried by a validation error,
// or nil if err is not one.
func ValidationProblems(err error) []string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Problems
	}
	return nil
}
