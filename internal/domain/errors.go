package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the kind shared by all missing-entity errors.
	ErrNotFound = errors.New("not found")
	// ErrInvalidField marks structural violations (too few questions/answers, bad input).
	ErrInvalidField = errors.New("invalid field")
	// ErrPermissionDenied is returned when the caller lacks the required company role.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrDataNotFound means the entity exists but has no recorded activity (or the cache view expired).
	ErrDataNotFound = errors.New("no data found")
)

var (
	// ErrQuizNotFound indicates the quiz could not be loaded.
	ErrQuizNotFound = fmt.Errorf("quiz %w", ErrNotFound)
	// ErrQuestionNotFound indicates a submitted question ID is invalid.
	ErrQuestionNotFound = fmt.Errorf("question %w", ErrNotFound)
	// ErrAnswerNotFound indicates a submitted answer ID is invalid.
	ErrAnswerNotFound = fmt.Errorf("answer %w", ErrNotFound)
	// ErrCompanyNotFound indicates the referenced company does not exist.
	ErrCompanyNotFound = fmt.Errorf("company %w", ErrNotFound)
)

// InvalidField wraps ErrInvalidField with a caller-facing message.
func InvalidField(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidField, msg)
}

// NotFoundID attaches the missing identifier to a not-found sentinel.
func NotFoundID(err error, id int64) error {
	return fmt.Errorf("%w: id %d", err, id)
}
