package httpclient

import (
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/kbukum/errkit/errors"
)

// Rule identifies which normalization rule produced an Error.
type Rule int

const (
	// RuleUnauthenticated: the server answered 401.
	RuleUnauthenticated Rule = iota + 1
	// RuleFieldErrors: an error envelope with a field map.
	RuleFieldErrors
	// RuleEnvelope: an error envelope without a field map.
	RuleEnvelope
	// RuleNetwork: no response arrived.
	RuleNetwork
	// RuleTimeout: the request timed out.
	RuleTimeout
	// RuleFallback: anything else.
	RuleFallback
)

func (r Rule) String() string {
	switch r {
	case RuleUnauthenticated:
		return "unauthenticated"
	case RuleFieldErrors:
		return "field_errors"
	case RuleEnvelope:
		return "envelope"
	case RuleNetwork:
		return "network"
	case RuleTimeout:
		return "timeout"
	case RuleFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Error is the single local error value callers of Client receive.
type Error struct {
	// Message is ready to show to the user.
	Message string
	// StatusCode is 0 when no response arrived.
	StatusCode int
	// Code is the envelope code ("NotFound", "HTTP_ERROR", ...), if any.
	Code string
	Rule Rule
	// FieldErrors is set for RuleFieldErrors.
	FieldErrors apperrors.FieldErrors
	// Service names the failing upstream of an ExternalService error.
	Service string
	// Cause is the underlying transport or protocol failure.
	Cause error

	retryAfter time.Duration
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Cause }

// Kind maps Code back to the error taxonomy.
func (e *Error) Kind() (apperrors.Kind, bool) {
	return apperrors.ParseKind(e.Code)
}

// Retryable reports transport failures, retryable kinds and gateway
// statuses.
func (e *Error) Retryable() bool {
	switch e.Rule {
	case RuleNetwork, RuleTimeout:
		return true
	case RuleUnauthenticated:
		return false
	}
	if kind, ok := e.Kind(); ok {
		return kind.Retryable()
	}
	switch e.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// RetryAfter is the delay requested by the server's Retry-After header.
func (e *Error) RetryAfter() time.Duration { return e.retryAfter }

// Format supports %+v with rule and status detail for logs.
func (e *Error) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s (rule=%s status=%d code=%s)", e.Message, e.Rule, e.StatusCode, e.Code)
		if e.Cause != nil {
			fmt.Fprintf(s, ": %v", e.Cause)
		}
		return
	}
	fmt.Fprint(s, e.Message)
}
