package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds. Every operation in this package fails with exactly one of
// these; callers match with errors.Is and translate to their transport's
// representation.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrForbidden     = errors.New("forbidden")
	ErrValidation    = errors.New("validation failed")
	ErrSelfReference = errors.New("self reference")
	ErrStorage       = errors.New("storage failure")
)

// Error carries an error kind and a human-readable message, optionally
// wrapping an underlying storage error.
type Error struct {
	kind    error
	message string
	cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Is reports whether the error matches one of the kind sentinels
func (e *Error) Is(target error) bool {
	return target == e.kind
}

// Unwrap exposes the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.cause
}

func notFound(format string, args ...interface{}) error {
	return &Error{kind: ErrNotFound, message: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...interface{}) error {
	return &Error{kind: ErrConflict, message: fmt.Sprintf(format, args...)}
}

func forbidden(format string, args ...interface{}) error {
	return &Error{kind: ErrForbidden, message: fmt.Sprintf(format, args...)}
}

func invalid(format string, args ...interface{}) error {
	return &Error{kind: ErrValidation, message: fmt.Sprintf(format, args...)}
}

func selfReference(format string, args ...interface{}) error {
	return &Error{kind: ErrSelfReference, message: fmt.Sprintf(format, args...)}
}

func storage(cause error, format string, args ...interface{}) error {
	return &Error{kind: ErrStorage, message: fmt.Sprintf(format, args...), cause: cause}
}

// translateInsert maps a ledger insert failure: a duplicate-key
// violation means the row already exists (Conflict), anything else is a
// storage failure. The constraint check happens in the database, so two
// concurrent identical inserts cannot both succeed.
func translateInsert(err error, conflictMsg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return conflict("%s", conflictMsg)
	}
	return storage(err, "insert failed")
}
