// Package apperr defines the error kinds shared by the settlement and OCR packages.
//
// Callers classify errors with errors.Is against the exported sentinels; the
// constructors below wrap a sentinel with a formatted message.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument marks malformed input (negative fee, empty roster, bad timestamp).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound marks a reference to a settlement or participant that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists marks a duplicate settlement for a meeting or a duplicate participant.
	ErrAlreadyExists = errors.New("already exists")
	// ErrConflict marks an operation refused because of recorded payments.
	ErrConflict = errors.New("conflict")
)

// InvalidArgument returns an error wrapping ErrInvalidArgument.
func InvalidArgument(format string, args ...any) error {
	return wrap(ErrInvalidArgument, format, args...)
}

// NotFound returns an error wrapping ErrNotFound.
func NotFound(format string, args ...any) error {
	return wrap(ErrNotFound, format, args...)
}

// AlreadyExists returns an error wrapping ErrAlreadyExists.
func AlreadyExists(format string, args ...any) error {
	return wrap(ErrAlreadyExists, format, args...)
}

// Conflict returns an error wrapping ErrConflict.
func Conflict(format string, args ...any) error {
	return wrap(ErrConflict, format, args...)
}

func wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
