package errors

import (
	stderrors "errors"
)

// Response is the JSON envelope returned to clients for every failed request.
type Response struct {
	Error Body `json:"error"`
}

// Body contains the error details sent to clients.
type Body struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Errors  *FieldErrors `json:"errors,omitempty"`
	Service string       `json:"service,omitempty"`
}

// ToResponse converts an AppError to its wire envelope.
func (e *AppError) ToResponse() Response {
	body := Body{
		Code:    e.kind.String(),
		Message: e.message,
		Service: e.service,
	}
	if !e.fieldErrors.IsEmpty() {
		fields := e.fieldErrors.Clone()
		body.Errors = &fields
	}
	return Response{Error: body}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.kind == kind
}
