package errors

import (
	"fmt"
)

// AppError is the canonical typed application error. It is created where a
// business rule or lookup fails and travels up the stack unchanged until a
// boundary renders it. Fields are only readable through accessors.
type AppError struct {
	kind        Kind
	status      int
	message     string
	fieldErrors FieldErrors
	service     string
	cause       error
}

func newAppError(kind Kind, message string) *AppError {
	if message == "" {
		message = kind.DefaultMessage()
	}
	return &AppError{
		kind:    kind,
		status:  kind.Status(),
		message: message,
	}
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.kind, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.message)
}

// Unwrap returns the underlying cause, if any.
func (e *AppError) Unwrap() error { return e.cause }

// Kind returns the taxonomy kind.
func (e *AppError) Kind() Kind { return e.kind }

// StatusCode returns the HTTP status fixed by the kind.
func (e *AppError) StatusCode() int { return e.status }

// Message returns the human readable message.
func (e *AppError) Message() string { return e.message }

// FieldErrors returns a copy of the field errors. Empty unless Kind is Validation.
func (e *AppError) FieldErrors() FieldErrors { return e.fieldErrors.Clone() }

// Service returns the failed upstream name. Empty unless Kind is ExternalService.
func (e *AppError) Service() string { return e.service }

// Retryable reports whether the operation may succeed when retried.
func (e *AppError) Retryable() bool { return e.kind.Retryable() }

// WithCause returns a copy of e carrying cause. The cause is only used for
// logging and errors.Is/As; it is never rendered.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.fieldErrors = e.fieldErrors.Clone()
	cp.cause = cause
	return &cp
}

// --- Constructors, one per kind ---

// Validation creates a Validation error (422). fields must not be empty.
func Validation(message string, fields FieldErrors) *AppError {
	if fields.IsEmpty() {
		panic("errors: Validation requires at least one field error")
	}
	e := newAppError(KindValidation, message)
	e.fieldErrors = fields.Clone()
	return e
}

// DuplicateResource creates a DuplicateResource error (409).
func DuplicateResource(message string) *AppError {
	return newAppError(KindDuplicateResource, message)
}

// Unauthorized creates an Unauthorized error (401).
func Unauthorized(message string) *AppError {
	return newAppError(KindUnauthorized, message)
}

// Forbidden creates a Forbidden error (403).
func Forbidden(message string) *AppError {
	return newAppError(KindForbidden, message)
}

// NotFound creates a NotFound error (404).
func NotFound(message string) *AppError {
	return newAppError(KindNotFound, message)
}

// Conflict creates a Conflict error (409).
func Conflict(message string) *AppError {
	return newAppError(KindConflict, message)
}

// RateLimited creates a RateLimited error (429).
func RateLimited(message string) *AppError {
	return newAppError(KindRateLimited, message)
}

// ExternalService creates an ExternalService error (502). service must name the
// failed upstream.
func ExternalService(message, service string) *AppError {
	if service == "" {
		panic("errors: ExternalService requires a service name")
	}
	e := newAppError(KindExternalService, message)
	e.service = service
	return e
}

// Internal creates an Internal error (500).
func Internal(message string) *AppError {
	return newAppError(KindInternal, message)
}

// Translate re-expresses a taxonomy error as another kind, keeping err as the
// cause. It is the only sanctioned catch in business code, e.g. turning a
// repository NotFound into a service Forbidden. Translating into Validation or
// ExternalService is not supported because those kinds need extra payload;
// use their constructors directly.
func Translate(err error, kind Kind, message string) *AppError {
	if kind == KindValidation || kind == KindExternalService || !kind.Valid() {
		panic(fmt.Sprintf("errors: cannot translate into kind %q", kind))
	}
	return newAppError(kind, message).WithCause(err)
}
