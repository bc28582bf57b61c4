package core

import "github.com/pkg/errors"

// FieldError ties a validation message to the form field it belongs to; the
// toast pipeline renders one line per field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is the service-level rejection of a form submission. It
// travels as-is to FeedbackFromError, which turns the fields into toast lines.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func (err ValidationError) Unwrap() error { return err.Err }

type shutdown struct {
	message string
}

// NewShutdownError signals an integrity problem the web process should not
// survive; the error handler turns it into a graceful shutdown.
func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
