package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/text/language"

	"github.com/kbukum/errkit/logger"
	"github.com/kbukum/errkit/observability"
	"github.com/kbukum/errkit/resilience"
	"github.com/kbukum/errkit/tokenstore"
)

// Client sends requests through an Adapter and returns every failure as *Error.
type Client struct {
	adapter    *Adapter
	normalizer *Normalizer
	retry      *resilience.RetryConfig
	normalized metric.Int64Counter
	log        *logger.Logger
}

// NewClient builds a client whose requests carry the token held by store.
// store may be nil for anonymous clients.
func NewClient(cfg Config, store tokenstore.Store, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := newSettings(opts)
	if s.lang == nil {
		tag := language.Make(cfg.Language)
		s.lang = &tag
	}
	if cfg.LoginPath != "" && s.loginPath == DefaultLoginPath {
		s.loginPath = cfg.LoginPath
	}

	var interceptors []Interceptor
	if store != nil {
		interceptors = append(interceptors, BearerFromStore(store))
	}
	interceptors = append(interceptors, WithRequestID())
	interceptors = append(interceptors, s.interceptors...)

	adapter, err := NewAdapter(cfg, interceptors...)
	if err != nil {
		return nil, err
	}

	meter := s.meter
	if meter == nil {
		meter = observability.Meter(observability.InstrumentationName)
	}
	counter, err := meter.Int64Counter("errkit.client.normalized_errors",
		metric.WithDescription("Failures returned by the API client, by normalization rule"),
	)
	if err != nil {
		return nil, fmt.Errorf("httpclient: creating counter: %w", err)
	}

	c := &Client{
		adapter:    adapter,
		normalizer: newNormalizer(store, s),
		normalized: counter,
		log:        s.log,
	}
	if cfg.Retry != nil {
		retry := *cfg.Retry
		retry.RetryIf = isRetryable
		retry.OnRetry = c.logRetry
		c.retry = &retry
	}
	return c, nil
}

// Adapter returns the underlying adapter.
func (c *Client) Adapter() *Adapter { return c.adapter }

// Normalizer returns the client's normalizer.
func (c *Client) Normalizer() *Normalizer { return c.normalizer }

// Do sends req. A response with status >= 400 comes back together with its
// *Error; a transport failure returns a nil or partial response.
//
// Only idempotent requests are retried, see Request.Idempotent. A reader body
// is buffered first so every attempt sends it in full.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c.retry != nil && req.retryable() {
		if r, ok := req.Body.(io.Reader); ok {
			data, err := io.ReadAll(r)
			if err != nil {
				return nil, c.fail(ctx, &TransportError{Kind: TransportOther, Err: fmt.Errorf("read request body: %w", err)})
			}
			req.Body = data
		}
	}

	send := func(int) (*Response, error) {
		resp, err := c.adapter.Do(ctx, req)
		if nerr := c.normalizer.Normalize(ctx, resp, err); nerr != nil {
			return resp, nerr
		}
		return resp, nil
	}

	var (
		resp *Response
		err  error
	)
	if c.retry != nil && req.retryable() {
		resp, err = resilience.Retry(ctx, *c.retry, send)
	} else {
		resp, err = send(1)
	}
	if err == nil {
		return resp, nil
	}
	return resp, c.fail(ctx, err)
}

// fail normalizes errors produced outside a single attempt (context
// cancellation between retries, response decoding) and records the result.
func (c *Client) fail(ctx context.Context, err error) *Error {
	var nerr *Error
	if !errors.As(err, &nerr) {
		if errors.Is(err, context.DeadlineExceeded) {
			err = &TransportError{Kind: TransportTimeout, Err: err}
		}
		nerr = c.normalizer.Normalize(ctx, nil, err)
	}
	c.normalized.Add(ctx, 1, metric.WithAttributes(attribute.String("rule", nerr.Rule.String())))
	return nerr
}

func (c *Client) logRetry(attempt int, err error, backoff time.Duration) {
	c.log.Debug("retrying request", map[string]interface{}{
		"attempt":         attempt,
		logger.FieldError: err.Error(),
		"backoff":         backoff.String(),
	})
}

func isRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable()
}

// Meta mirrors the server's pagination metadata.
type Meta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Envelope is a decoded success response.
type Envelope[T any] struct {
	Data T     `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// RequestOption configures a single typed request.
type RequestOption func(*Request)

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		if r.Headers == nil {
			r.Headers = make(map[string]string)
		}
		r.Headers[key] = value
	}
}

// WithIdempotent marks a POST or PATCH as safe to retry, for example when
// the server deduplicates it by an idempotency key.
func WithIdempotent() RequestOption {
	return func(r *Request) { r.Idempotent = true }
}

// WithQueryParam sets a query parameter.
func WithQueryParam(key, value string) RequestOption {
	return func(r *Request) {
		if r.Query == nil {
			r.Query = make(map[string]string)
		}
		r.Query[key] = value
	}
}

// Get performs a GET and decodes the {"data": ...} envelope.
func Get[T any](c *Client, ctx context.Context, path string, opts ...RequestOption) (*Envelope[T], error) {
	return doTyped[T](c, ctx, http.MethodGet, path, nil, opts...)
}

// Post sends body as JSON and decodes the envelope.
func Post[T any](c *Client, ctx context.Context, path string, body any, opts ...RequestOption) (*Envelope[T], error) {
	return doTyped[T](c, ctx, http.MethodPost, path, body, opts...)
}

// Put sends body as JSON and decodes the envelope.
func Put[T any](c *Client, ctx context.Context, path string, body any, opts ...RequestOption) (*Envelope[T], error) {
	return doTyped[T](c, ctx, http.MethodPut, path, body, opts...)
}

// Patch sends body as JSON and decodes the envelope.
func Patch[T any](c *Client, ctx context.Context, path string, body any, opts ...RequestOption) (*Envelope[T], error) {
	return doTyped[T](c, ctx, http.MethodPatch, path, body, opts...)
}

// Delete performs a DELETE. A 204 yields an empty envelope.
func Delete[T any](c *Client, ctx context.Context, path string, opts ...RequestOption) (*Envelope[T], error) {
	return doTyped[T](c, ctx, http.MethodDelete, path, nil, opts...)
}

func doTyped[T any](c *Client, ctx context.Context, method, path string, body any, opts ...RequestOption) (*Envelope[T], error) {
	req := Request{Method: method, Path: path, Body: body}
	for _, opt := range opts {
		opt(&req)
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	env := &Envelope[T]{}
	if resp.StatusCode == http.StatusNoContent || len(resp.Body) == 0 {
		return env, nil
	}
	if err := json.Unmarshal(resp.Body, env); err != nil {
		return nil, c.fail(ctx, fmt.Errorf("decode response: %w", err))
	}
	return env, nil
}
