package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

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

// storeError marks a failed document-store round-trip (network, permission,
// quota). A failed write means the intended state change did not happen;
// callers surface it as a transient, retryable notice.
type storeError struct {
	err error
}

func NewStoreError(err error, msg string) error {
	return errors.Wrap(&storeError{err: err}, msg)
}

func (e storeError) Error() string {
	if e.err == nil {
		return "document store unavailable"
	}
	return "document store unavailable: " + e.err.Error()
}

func IsStoreUnavailable(err error) bool {
	_, ok := errors.Cause(err).(*storeError)
	return ok
}

type shutdown struct {
	message string
}

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
