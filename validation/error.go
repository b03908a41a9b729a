package validation

import (
	"strings"

	apperrors "github.com/kbukum/errkit/errors"
)

// DefaultMessage is the summary message of a validation failure.
const DefaultMessage = "The given data was invalid."

// FieldErrorer is implemented by validation failures that expose per-field
// messages. Boundaries recognise any error with this shape, so validation
// libraries are interchangeable.
type FieldErrorer interface {
	error
	FieldErrors() apperrors.FieldErrors
}

// Error is a validation failure. It is deliberately not an AppError: the
// server boundary reclassifies it as a Validation error.
type Error struct {
	message string
	fields  apperrors.FieldErrors
}

var _ FieldErrorer = (*Error)(nil)

// NewError creates a validation failure. An empty message becomes DefaultMessage.
func NewError(message string, fields apperrors.FieldErrors) *Error {
	if message == "" {
		message = DefaultMessage
	}
	return &Error{message: message, fields: fields.Clone()}
}

// Error implements the error interface.
func (e *Error) Error() string {
	parts := make([]string, 0, e.fields.Len())
	for _, field := range e.fields.Fields() {
		parts = append(parts, field+": "+strings.Join(e.fields.Get(field), ", "))
	}
	if len(parts) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Message returns the summary message.
func (e *Error) Message() string { return e.message }

// FieldErrors returns a copy of the per-field messages.
func (e *Error) FieldErrors() apperrors.FieldErrors { return e.fields.Clone() }

// ToAppError converts the failure into a taxonomy Validation error for code
// that wants to return it from business logic.
func (e *Error) ToAppError() *apperrors.AppError {
	if e.fields.IsEmpty() {
		return apperrors.Validation(e.message, apperrors.NewFieldErrors("_", e.message))
	}
	return apperrors.Validation(e.message, e.fields)
}
