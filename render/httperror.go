package render

import (
	"fmt"
	"net/http"
)

// StatusCoder is implemented by transport-level errors that carry their own
// HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// HTTPError is a transport-level failure with an explicit status, such as an
// unmatched route or an unsupported method. It is not part of the taxonomy
// and renders with the HTTP_ERROR code.
type HTTPError struct {
	Status int
	// Message is shown to clients. Empty means http.StatusText(Status).
	Message string
	Err     error
}

// NewHTTPError creates an HTTPError with the given status and message.
func NewHTTPError(status int, message string) *HTTPError {
	return &HTTPError{Status: status, Message: message}
}

func (e *HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("http %d: %s: %v", e.Status, msg, e.Err)
	}
	return fmt.Sprintf("http %d: %s", e.Status, msg)
}

// StatusCode implements StatusCoder.
func (e *HTTPError) StatusCode() int { return e.Status }

func (e *HTTPError) Unwrap() error { return e.Err }

// DebugFlag reports whether raw messages of unclassified errors may be shown.
type DebugFlag interface {
	Enabled() bool
}

// StaticDebug is a DebugFlag fixed at construction.
type StaticDebug bool

// Enabled implements DebugFlag.
func (d StaticDebug) Enabled() bool { return bool(d) }
