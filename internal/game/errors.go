package game

import (
	"errors"
	"fmt"
)

// ValidationError is a rejected player submission. It is reported to the
// offending player only and leaves the game state untouched.
type ValidationError struct {
	Op     string // "join", "bid", "guess", "newGame"
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func reject(op, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is, or wraps, a ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
