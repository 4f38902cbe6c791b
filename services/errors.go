package services

import (
	"errors"
	"fmt"
)

// ErrDuplicateRecord is returned when an explicit create collides with the
// attendance identity key. Routine generation never returns it; duplicate
// slots there are silently skipped.
var ErrDuplicateRecord = errors.New("attendance record already exists")

// ValidationError marks a request that failed boundary validation. It names
// the offending field so controllers can surface it to the caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
