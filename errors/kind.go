package errors

import "net/http"

// Kind identifies which taxonomy member an AppError is. Its string form is the
// machine-readable "code" sent on the wire.
type Kind string

const (
	// KindValidation indicates the input failed validation. Carries field errors.
	KindValidation Kind = "Validation"
	// KindDuplicateResource indicates the resource already exists.
	KindDuplicateResource Kind = "DuplicateResource"
	// KindUnauthorized indicates the caller is not authenticated.
	KindUnauthorized Kind = "Unauthorized"
	// KindForbidden indicates the caller may not perform the action.
	KindForbidden Kind = "Forbidden"
	// KindNotFound indicates the requested resource does not exist.
	KindNotFound Kind = "NotFound"
	// KindConflict indicates a conflict with the current state of the resource.
	KindConflict Kind = "Conflict"
	// KindRateLimited indicates the caller sent too many requests.
	KindRateLimited Kind = "RateLimited"
	// KindExternalService indicates an upstream dependency failed. Carries the service name.
	KindExternalService Kind = "ExternalService"
	// KindInternal indicates an unexpected server-side failure.
	KindInternal Kind = "Internal"
)

// HTTPErrorCode is the generic wire code used for transport-level HTTP
// exceptions that are not part of the taxonomy.
const HTTPErrorCode = "HTTP_ERROR"

type kindSpec struct {
	status         int
	retryable      bool
	defaultMessage string
}

var kinds = map[Kind]kindSpec{
	KindValidation:        {http.StatusUnprocessableEntity, false, "The given data was invalid."},
	KindDuplicateResource: {http.StatusConflict, false, "The resource already exists."},
	KindUnauthorized:      {http.StatusUnauthorized, false, "Authentication required."},
	KindForbidden:         {http.StatusForbidden, false, "You don't have permission to perform this action."},
	KindNotFound:          {http.StatusNotFound, false, "The requested resource was not found."},
	KindConflict:          {http.StatusConflict, false, "The request conflicts with the current state of the resource."},
	KindRateLimited:       {http.StatusTooManyRequests, true, "Too many requests. Please wait a moment and try again."},
	KindExternalService:   {http.StatusBadGateway, true, "An external service failed. Please try again."},
	KindInternal:          {http.StatusInternalServerError, false, "An unexpected error occurred. Please try again or contact support."},
}

// Kinds returns every taxonomy kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindValidation, KindDuplicateResource, KindUnauthorized, KindForbidden,
		KindNotFound, KindConflict, KindRateLimited, KindExternalService, KindInternal,
	}
}

// String returns the wire code.
func (k Kind) String() string { return string(k) }

// Valid reports whether k is a taxonomy member.
func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

// Status returns the canonical HTTP status for k, or 500 for unknown kinds.
func (k Kind) Status() int {
	if s, ok := kinds[k]; ok {
		return s.status
	}
	return http.StatusInternalServerError
}

// Retryable reports whether a failure of this kind may succeed when retried.
func (k Kind) Retryable() bool {
	return kinds[k].retryable
}

// DefaultMessage returns the message used when a constructor receives an empty one.
func (k Kind) DefaultMessage() string {
	if s, ok := kinds[k]; ok {
		return s.defaultMessage
	}
	return kinds[KindInternal].defaultMessage
}

// ParseKind converts a wire code into a Kind.
func ParseKind(code string) (Kind, bool) {
	k := Kind(code)
	return k, k.Valid()
}
