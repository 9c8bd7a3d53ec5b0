package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a request fails validation.
	// ValidationError unwraps to it.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyInput is returned when the text source produced no items.
	ErrEmptyInput = errors.New("text source returned no items")
)

// EmptyInputMessage is the task error recorded when the text source
// produced nothing to classify.
const EmptyInputMessage = "Parsing error"

// FieldError describes a single invalid field of a request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects field-level validation failures.
type ValidationError struct {
	Errors []FieldError
}

// NewValidationError creates a ValidationError with a single field failure.
func NewValidationError(field, message string) *ValidationError {
	e := &ValidationError{}
	e.Add(field, message)
	return e
}

// Add records another field failure.
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any field failure was recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// Fields returns the failures keyed by field path.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		if _, exists := fields[fe.Field]; !exists {
			fields[fe.Field] = fe.Message
		}
	}
	return fields
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

// Unwrap allows errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// CollaboratorError wraps a failure raised by an external collaborator
// (text source or classifier). Its message is the collaborator's message,
// unchanged, because that is what a failed task reports to the caller.
type CollaboratorError struct {
	// Collaborator names the failing dependency, e.g. "classifier".
	Collaborator string
	Err          error
}

// NewCollaboratorError wraps err. A nil err yields nil.
func NewCollaboratorError(collaborator string, err error) error {
	if err == nil {
		return nil
	}
	var ce *CollaboratorError
	if errors.As(err, &ce) {
		return err
	}
	return &CollaboratorError{Collaborator: collaborator, Err: err}
}

// Error implements the error interface.
func (e *CollaboratorError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the collaborator's error.
func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// TimeoutError is returned when a task exceeds its processing deadline.
type TimeoutError struct {
	After time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("task timed out after %s", e.After)
}

// Unwrap allows errors.Is(err, context.DeadlineExceeded).
func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

// FailureMessage converts a processing error into the message stored on a
// failed task record.
func FailureMessage(err error) string {
	if err == nil {
		return ""
	}

	var timeoutErr *TimeoutError
	var collabErr *CollaboratorError
	switch {
	case errors.Is(err, ErrEmptyInput):
		return EmptyInputMessage
	case errors.As(err, &timeoutErr):
		return timeoutErr.Error()
	case errors.As(err, &collabErr):
		return collabErr.Error()
	default:
		return err.Error()
	}
}
