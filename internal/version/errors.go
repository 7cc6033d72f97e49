package version

import (
	"errors"
	"fmt"
)

// Error reports a version or range string that could not be resolved.
type Error struct {
	// Input is the offending string as supplied by the caller.
	Input string

	// Reason is a short human-readable explanation.
	Reason string

	// Err is the underlying parser error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("invalid version %q: %s", e.Input, e.Reason)
}

// Unwrap exposes the underlying parser error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsError reports whether err is or wraps a version *Error.
func IsError(err error) bool {
	var verr *Error
	return errors.As(err, &verr)
}
