package core

import "github.com/pkg/errors"

// FieldError ties a validation failure to the struct field that caused it.
type FieldError struct {
	Field string
	Error string
}

// ValidationError aggregates per-field failures behind one error value.
// The HTTP layer flattens Fields into a field-to-message map; page handlers
// show the first field inline.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, fields ...FieldError) error {
	return &ValidationError{Err: err, Fields: fields}
}

func (e ValidationError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// fatal marks a condition the running process cannot recover from, such as
// a backend configuration that will never initialize. The HTTP error
// handler reacts by signalling a graceful shutdown.
type fatal struct {
	msg string
}

func NewShutdownError(msg string) error {
	return &fatal{msg: msg}
}

func (e *fatal) Error() string {
	return e.msg
}

// IsShutdown reports whether err, or its cause, asks for a shutdown.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*fatal)
	return ok
}
