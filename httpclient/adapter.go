package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

// Request describes an outbound HTTP request.
type Request struct {
	Method string
	// Path is appended to the BaseURL unless it is already absolute.
	Path    string
	Headers map[string]string
	Query   map[string]string
	// Body accepts io.Reader, []byte, string, or any JSON-encodable value.
	Body any
	// Idempotent lets the client retry a POST or PATCH. GET, HEAD, OPTIONS,
	// PUT and DELETE are always retryable.
	Idempotent bool
}

func (r Request) retryable() bool {
	switch r.Method {
	case "", http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	}
	return r.Idempotent
}

// Response is a complete HTTP response, whatever its status.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Interceptor adjusts an outbound request before it is sent. Interceptors run
// on every attempt.
type Interceptor func(ctx context.Context, req *http.Request)

// Adapter sends requests over net/http. It never turns a status code into an
// error; only failures to obtain a complete response are returned, as
// *TransportError. When the headers arrived but the body could not be read,
// the partial response is returned together with the error.
type Adapter struct {
	httpClient   *http.Client
	config       Config
	interceptors []Interceptor
}

// NewAdapter creates an adapter. Interceptors run in the given order.
func NewAdapter(cfg Config, interceptors ...Interceptor) (*Adapter, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, fmt.Errorf("httpclient: %w", err)
	}
	if tlsCfg != nil {
		transport.TLSClientConfig = tlsCfg
	}
	return &Adapter{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		config:       cfg,
		interceptors: interceptors,
	}, nil
}

// Use appends interceptors.
func (a *Adapter) Use(interceptors ...Interceptor) {
	a.interceptors = append(a.interceptors, interceptors...)
}

// Do sends req and reads the full response body.
func (a *Adapter) Do(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := a.buildRequest(ctx, req)
	if err != nil {
		return nil, &TransportError{Kind: TransportOther, Err: err}
	}
	for _, ic := range a.interceptors {
		ic(ctx, httpReq)
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransport(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}
	if err != nil {
		return out, classifyTransport(ctx, fmt.Errorf("read response body: %w", err))
	}
	return out, nil
}

// Unwrap returns the underlying *http.Client.
func (a *Adapter) Unwrap() *http.Client {
	return a.httpClient
}

// Close releases idle connections.
func (a *Adapter) Close() {
	a.httpClient.CloseIdleConnections()
}

func (a *Adapter) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	url := req.Path
	if a.config.BaseURL != "" && !strings.HasPrefix(req.Path, "http://") && !strings.HasPrefix(req.Path, "https://") {
		url = strings.TrimRight(a.config.BaseURL, "/") + "/" + strings.TrimLeft(req.Path, "/")
	}

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	httpReq.Header.Set("Accept", "application/json")
	for k, v := range a.config.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if body != nil && httpReq.Header.Get("Content-Type") == "" && contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	return httpReq, nil
}

func encodeBody(body any) (io.Reader, string, error) {
	if body == nil {
		return nil, "", nil
	}
	switch v := body.(type) {
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// TransportKind classifies a failure to obtain a response.
type TransportKind int

const (
	// TransportOther covers failures that are neither connection nor timeout
	// problems, such as an unencodable body or a cancelled context.
	TransportOther TransportKind = iota
	// TransportConnection means no response arrived (refused, DNS, reset).
	TransportConnection
	// TransportTimeout means the request or the client deadline expired.
	TransportTimeout
)

func (k TransportKind) String() string {
	switch k {
	case TransportConnection:
		return "connection"
	case TransportTimeout:
		return "timeout"
	default:
		return "other"
	}
}

// TransportError is returned by Adapter.Do when no response was obtained.
type TransportError struct {
	Kind TransportKind
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("httpclient: %s: %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func classifyTransport(ctx context.Context, err error) *TransportError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TransportError{Kind: TransportTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TransportError{Kind: TransportTimeout, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &TransportError{Kind: TransportOther, Err: err}
	}
	return &TransportError{Kind: TransportConnection, Err: err}
}
