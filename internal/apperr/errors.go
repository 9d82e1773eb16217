// Package apperr holds the error taxonomy shared by the editor, the export
// pipeline, the persistence adapters, the photo service and the AI helpers.
// The HTTP layer maps each kind to a status code in one place.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput is returned when a request is rejected before any work or
// network call is made.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInput wraps ErrInvalidInput with a human readable reason.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// FieldError reports one field that failed its constraint.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError carries every field-level failure of a document or entry.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Path+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// PersistenceError wraps a failed load or save in the storage layer.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return "persistence " + e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }

// UploadError is returned by the photo service. TooLarge distinguishes the
// size limit from the content-type check.
type UploadError struct {
	Reason   string
	TooLarge bool
	Err      error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return "upload: " + e.Reason + ": " + e.Err.Error()
	}
	return "upload: " + e.Reason
}

func (e *UploadError) Unwrap() error { return e.Err }

// ExportError names the pipeline stage that failed.
type ExportError struct {
	Stage string
	Err   error
}

func (e *ExportError) Error() string { return "export " + e.Stage + ": " + e.Err.Error() }
func (e *ExportError) Unwrap() error { return e.Err }

// ExternalServiceError wraps failures of the model backend, including replies
// that could not be parsed.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string { return e.Service + ": " + e.Err.Error() }
func (e *ExternalServiceError) Unwrap() error { return e.Err }

func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

func Export(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &ExportError{Stage: stage, Err: err}
}

func External(service string, err error) error {
	if err == nil {
		return nil
	}
	return &ExternalServiceError{Service: service, Err: err}
}
