// Package apperr defines the error kinds surfaced to API callers.
//
// Every operation returns plain Go errors. Errors that carry meaning for the
// caller wrap one of the sentinel kinds below, optionally together with a
// message and a reference to the offending field. Any error that does not
// wrap a kind is treated as an unexpected store failure.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed input such as an invalid email or a short password.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a lookup of an unknown id, username, email or name.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a uniqueness violation (duplicate username, email or name).
	ErrConflict = errors.New("already exists")

	// ErrAuthFailed marks bad or missing credentials.
	// It never tells unknown users apart from wrong passwords.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrDenied marks an authenticated caller that may not perform the action.
	ErrDenied = errors.New("permission denied")
)

// Error is a caller facing error with a message and the source it refers to.
type Error struct {
	Kind    error
	Message string
	Source  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}

	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Source)
}

// Unwrap returns the error kind so errors.Is works on the sentinels.
func (e *Error) Unwrap() error {
	return e.Kind
}

// New creates a caller facing error of the given kind.
func New(kind error, message, source string) *Error {
	return &Error{Kind: kind, Message: message, Source: source}
}

// Validation creates an ErrValidation error referencing a body field.
func Validation(message, field string) *Error {
	return New(ErrValidation, message, BodyField(field))
}

// NotFound creates an ErrNotFound error referencing a path parameter.
func NotFound(message, param string) *Error {
	return New(ErrNotFound, message, PathParam(param))
}

// Conflict creates an ErrConflict error referencing a body field.
func Conflict(message, field string) *Error {
	return New(ErrConflict, message, BodyField(field))
}

// BodyField formats a reference to a field in the request body.
func BodyField(name string) string {
	return fmt.Sprintf("Field '%s' in the request body.", name)
}

// PathParam formats a reference to a path parameter.
func PathParam(name string) string {
	return fmt.Sprintf("Field '%s' in path parameters.", name)
}

// Kind returns the sentinel kind wrapped by err, or nil for unexpected failures.
func Kind(err error) error {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrAuthFailed, ErrDenied} {
		if errors.Is(err, kind) {
			return kind
		}
	}

	return nil
}
