package render

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/kbukum/errkit/errors"
	"github.com/kbukum/errkit/validation"
)

// Rule identifies which mapping rule produced a rendered error.
type Rule int

const (
	RuleAppError Rule = iota + 1
	RuleValidation
	RuleHTTPError
	RuleUnclassified
)

func (r Rule) String() string {
	switch r {
	case RuleAppError:
		return "app_error"
	case RuleValidation:
		return "validation"
	case RuleHTTPError:
		return "http_error"
	case RuleUnclassified:
		return "unclassified"
	default:
		return "rule(" + strconv.Itoa(int(r)) + ")"
	}
}

// Reported reports whether errors mapped by r are forwarded to the Reporter.
func (r Rule) Reported() bool {
	return r == RuleHTTPError || r == RuleUnclassified
}

// Result is the outcome of mapping one error.
type Result struct {
	Rule     Rule
	Status   int
	Response apperrors.Response
}

// Renderer maps errors to the wire envelope. It is safe for concurrent use.
type Renderer struct {
	reporter Reporter
	debug    DebugFlag
	metrics  *Metrics
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithReporter sets the sink for unexpected errors.
func WithReporter(r Reporter) Option {
	return func(rd *Renderer) { rd.reporter = r }
}

// WithDebug sets the debug flag consulted for unclassified errors.
func WithDebug(d DebugFlag) Option {
	return func(rd *Renderer) { rd.debug = d }
}

// WithMetrics counts every rendered error.
func WithMetrics(m *Metrics) Option {
	return func(rd *Renderer) { rd.metrics = m }
}

// New creates a Renderer. Without options it reports nothing and runs with
// debug off.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		reporter: NopReporter{},
		debug:    StaticDebug(false),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.reporter == nil {
		r.reporter = NopReporter{}
	}
	if r.debug == nil {
		r.debug = StaticDebug(false)
	}
	return r
}

// Render maps err to a status and envelope, reporting it when the matching
// rule requires.
func (r *Renderer) Render(ctx context.Context, err error) (int, apperrors.Response) {
	res := r.Resolve(ctx, err)
	return res.Status, res.Response
}

// Resolve is Render with the matched rule exposed.
func (r *Renderer) Resolve(ctx context.Context, err error) Result {
	if err == nil {
		err = stderrors.New("render: nil error")
	}

	res := r.classify(err)
	if res.Rule.Reported() {
		r.reporter.Report(ctx, err)
	}
	if r.metrics != nil {
		r.metrics.observe(res)
	}
	return res
}

func (r *Renderer) classify(err error) Result {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return Result{Rule: RuleAppError, Status: appErr.StatusCode(), Response: appErr.ToResponse()}
	}

	if vErr, ok := asValidationFailure(err); ok {
		appErr := vErr.ToAppError()
		return Result{Rule: RuleValidation, Status: appErr.StatusCode(), Response: appErr.ToResponse()}
	}

	if status, message, ok := asHTTPError(err); ok {
		if message == "" {
			message = http.StatusText(status)
		}
		return Result{
			Rule:   RuleHTTPError,
			Status: status,
			Response: apperrors.Response{Error: apperrors.Body{
				Code:    apperrors.HTTPErrorCode,
				Message: message,
			}},
		}
	}

	message := ""
	if r.debug.Enabled() {
		message = err.Error()
	}
	appErr := apperrors.Internal(message)
	return Result{Rule: RuleUnclassified, Status: appErr.StatusCode(), Response: appErr.ToResponse()}
}

// asValidationFailure recognises validation failures from this module or
// any library exposing per-field messages, plus raw validator errors.
func asValidationFailure(err error) (*validation.Error, bool) {
	var vErr *validation.Error
	if stderrors.As(err, &vErr) {
		return vErr, true
	}
	var fe validation.FieldErrorer
	if stderrors.As(err, &fe) {
		message := ""
		if m, ok := fe.(interface{ Message() string }); ok {
			message = m.Message()
		}
		return validation.NewError(message, fe.FieldErrors()), true
	}
	var raw validator.ValidationErrors
	if stderrors.As(err, &raw) {
		return validation.FromValidator(raw)
	}
	return nil, false
}

// asHTTPError extracts the status and public message of a transport error.
// Only HTTPError carries a public message; other status carriers render the
// status text.
func asHTTPError(err error) (int, string, bool) {
	var he *HTTPError
	if stderrors.As(err, &he) && validStatus(he.Status) {
		return he.Status, he.Message, true
	}
	var mbe *http.MaxBytesError
	if stderrors.As(err, &mbe) {
		return http.StatusRequestEntityTooLarge, "", true
	}
	var sc StatusCoder
	if stderrors.As(err, &sc) && validStatus(sc.StatusCode()) {
		return sc.StatusCode(), "", true
	}
	return 0, "", false
}

func validStatus(status int) bool {
	return status >= 400 && status <= 599
}
