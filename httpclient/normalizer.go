package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	apperrors "github.com/kbukum/errkit/errors"
	"github.com/kbukum/errkit/logger"
	"github.com/kbukum/errkit/tokenstore"
)

// Option configures a Normalizer or a Client.
type Option func(*settings)

type settings struct {
	navigator    Navigator
	loginPath    string
	lang         *language.Tag
	log          *logger.Logger
	meter        metric.Meter
	interceptors []Interceptor
}

// WithNavigator sets the collaborator that handles the 401 redirect.
// Defaults to a LogNavigator.
func WithNavigator(n Navigator) Option {
	return func(s *settings) { s.navigator = n }
}

// WithLoginPath overrides the 401 redirect target.
func WithLoginPath(path string) Option {
	return func(s *settings) { s.loginPath = path }
}

// WithLanguage selects the message catalog. Unsupported languages fall back
// to English.
func WithLanguage(tag language.Tag) Option {
	return func(s *settings) { s.lang = &tag }
}

// WithLogger sets the logger used for side-effect failures and debugging.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithMeter sets the meter for client metrics. Defaults to the global
// provider.
func WithMeter(m metric.Meter) Option {
	return func(s *settings) { s.meter = m }
}

// WithInterceptors adds outbound interceptors after BearerFromStore.
func WithInterceptors(ics ...Interceptor) Option {
	return func(s *settings) { s.interceptors = append(s.interceptors, ics...) }
}

func newSettings(opts []Option) *settings {
	s := &settings{}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.WithComponent("httpclient")
	}
	if s.navigator == nil {
		s.navigator = NewLogNavigator(s.log)
	}
	if s.loginPath == "" {
		s.loginPath = DefaultLoginPath
	}
	return s
}

// Normalizer converts responses and transport failures into *Error. It holds
// no state of its own; the token lives in the injected store.
type Normalizer struct {
	store     tokenstore.Store
	navigator Navigator
	loginPath string
	printer   *message.Printer
	log       *logger.Logger
}

// NewNormalizer creates a normalizer. store may be nil for clients without
// a session.
func NewNormalizer(store tokenstore.Store, opts ...Option) *Normalizer {
	return newNormalizer(store, newSettings(opts))
}

func newNormalizer(store tokenstore.Store, s *settings) *Normalizer {
	tag := language.English
	if s.lang != nil {
		tag = *s.lang
	}
	return &Normalizer{
		store:     store,
		navigator: s.navigator,
		loginPath: s.loginPath,
		printer:   newPrinter(tag),
		log:       s.log,
	}
}

type envelope struct {
	Error *struct {
		Code    string                `json:"code"`
		Message string                `json:"message"`
		Errors  apperrors.FieldErrors `json:"errors"`
		Service string                `json:"service"`
	} `json:"error"`
}

// Normalize returns nil for a successful response without error. Otherwise
// the first matching rule wins:
//
//  1. status 401: clear the token, redirect to the login path, fixed message
//  2. error envelope with field errors: the messages joined by ", "
//  3. error envelope with a message: that message
//  4. no response: fixed network message
//  5. timeout: fixed timeout message
//  6. the failure's own message, or a fixed generic message
func (n *Normalizer) Normalize(ctx context.Context, resp *Response, err error) *Error {
	if err == nil && (resp == nil || resp.StatusCode < 400) {
		return nil
	}
	var already *Error
	if errors.As(err, &already) {
		return already
	}

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	cause := err
	if cause == nil {
		cause = fmt.Errorf("unexpected status %d", status)
	}

	if status == 401 {
		n.endSession(ctx)
		return &Error{
			Message:    n.printer.Sprintf(msgAuthRequired),
			StatusCode: status,
			Code:       string(apperrors.KindUnauthorized),
			Rule:       RuleUnauthenticated,
			Cause:      cause,
		}
	}

	if resp != nil && status >= 400 {
		var env envelope
		if json.Unmarshal(resp.Body, &env) == nil && env.Error != nil {
			out := &Error{
				StatusCode: status,
				Code:       env.Error.Code,
				Service:    env.Error.Service,
				Cause:      cause,
				retryAfter: retryAfter(resp),
			}
			if msgs := env.Error.Errors.Messages(); len(msgs) > 0 {
				out.Rule = RuleFieldErrors
				out.Message = strings.Join(msgs, ", ")
				out.FieldErrors = env.Error.Errors
				return out
			}
			if env.Error.Message != "" {
				out.Rule = RuleEnvelope
				out.Message = env.Error.Message
				return out
			}
		}
	}

	// A body cut off mid-read reaches here with its partial response.
	var te *TransportError
	if errors.As(err, &te) {
		switch te.Kind {
		case TransportConnection:
			return &Error{Message: n.printer.Sprintf(msgNetwork), StatusCode: status, Rule: RuleNetwork, Cause: err}
		case TransportTimeout:
			return &Error{Message: n.printer.Sprintf(msgTimeout), StatusCode: status, Rule: RuleTimeout, Cause: err}
		}
	}

	out := &Error{StatusCode: status, Rule: RuleFallback, Cause: cause, retryAfter: retryAfter(resp)}
	switch {
	case te != nil && te.Err != nil:
		out.Message = te.Err.Error()
	case err != nil:
		out.Message = err.Error()
	default:
		out.Message = fmt.Sprintf("Request failed with status code %d", status)
	}
	if strings.TrimSpace(out.Message) == "" {
		out.Message = n.printer.Sprintf(msgGeneric)
	}
	return out
}

// endSession clears the token and redirects. Both steps are idempotent.
func (n *Normalizer) endSession(ctx context.Context) {
	if n.store != nil {
		if err := n.store.Clear(ctx); err != nil {
			n.log.WithContext(ctx).Warn("failed to clear token", map[string]interface{}{
				logger.FieldError: err.Error(),
			})
		}
	}
	n.navigator.RedirectTo(ctx, n.loginPath)
}

func retryAfter(resp *Response) time.Duration {
	if resp == nil {
		return 0
	}
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
