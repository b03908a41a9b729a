package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/errkit/auth/authctx"
	apperrors "github.com/kbukum/errkit/errors"
	"github.com/kbukum/errkit/render"
	"github.com/kbukum/errkit/server/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type counter struct{ n atomic.Int32 }

func (c *counter) Report(context.Context, error) { c.n.Add(1) }

func newEngine(rep render.Reporter, debug bool) *gin.Engine {
	r := render.New(render.WithReporter(rep), render.WithDebug(render.StaticDebug(debug)))
	e := gin.New()
	e.HandleMethodNotAllowed = true
	e.Use(middleware.RequestID(), middleware.ErrorHandler(r), middleware.Recovery(r))
	e.NoRoute(middleware.NoRoute())
	e.NoMethod(middleware.NoMethod())
	return e
}

func do(t *testing.T, h http.Handler, method, path string, header http.Header) (*httptest.ResponseRecorder, apperrors.Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, http.NoBody)
	for k, v := range header {
		req.Header[k] = v
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var body apperrors.Response
	if rr.Code >= 400 && rr.Body.Len() > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("response is not a JSON envelope: %v (%s)", err, rr.Body.String())
		}
	}
	return rr, body
}

// ---------------------------------------------------------------------------
// ErrorHandler
// ---------------------------------------------------------------------------

func TestErrorHandler_RendersLastError(t *testing.T) {
	rep := &counter{}
	e := newEngine(rep, false)
	e.GET("/articles/:id", func(c *gin.Context) {
		_ = c.Error(errors.New("first"))
		middleware.Fail(c, apperrors.NotFound("Article not found."))
	})

	rr, body := do(t, e, "GET", "/articles/9", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if body.Error.Code != "NotFound" || body.Error.Message != "Article not found." {
		t.Errorf("unexpected body %+v", body.Error)
	}
	if rep.n.Load() != 0 {
		t.Errorf("AppError must not be reported, got %d reports", rep.n.Load())
	}
}

func TestErrorHandler_SkipsWrittenResponses(t *testing.T) {
	e := newEngine(&counter{}, false)
	e.GET("/ok", func(c *gin.Context) {
		c.String(http.StatusOK, "done")
		_ = c.Error(errors.New("late"))
	})

	rr, _ := do(t, e, "GET", "/ok", nil)
	if rr.Code != http.StatusOK || rr.Body.String() != "done" {
		t.Fatalf("expected untouched response, got %d %q", rr.Code, rr.Body.String())
	}
}

func TestErrorHandler_UnclassifiedReportedOnce(t *testing.T) {
	rep := &counter{}
	e := newEngine(rep, false)
	e.GET("/boom", func(c *gin.Context) {
		middleware.Fail(c, errors.New("sql: database is closed"))
	})

	rr, body := do(t, e, "GET", "/boom", nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if strings.Contains(body.Error.Message, "database") {
		t.Errorf("raw message leaked: %q", body.Error.Message)
	}
	if rep.n.Load() != 1 {
		t.Errorf("expected exactly one report, got %d", rep.n.Load())
	}
}

func TestNoRouteAndNoMethod(t *testing.T) {
	rep := &counter{}
	e := newEngine(rep, false)
	e.GET("/only-get", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		method, path string
		status       int
		message      string
	}{
		{"GET", "/missing", 404, "Not Found"},
		{"DELETE", "/only-get", 405, "Method Not Allowed"},
	}
	for _, tc := range tests {
		rr, body := do(t, e, tc.method, tc.path, nil)
		if rr.Code != tc.status {
			t.Errorf("%s %s: expected %d, got %d", tc.method, tc.path, tc.status, rr.Code)
		}
		if body.Error.Code != apperrors.HTTPErrorCode || body.Error.Message != tc.message {
			t.Errorf("%s %s: unexpected body %+v", tc.method, tc.path, body.Error)
		}
	}
	if rep.n.Load() != 2 {
		t.Errorf("expected 2 reports, got %d", rep.n.Load())
	}
}

// ---------------------------------------------------------------------------
// Recovery
// ---------------------------------------------------------------------------

func TestRecovery_Panic(t *testing.T) {
	rep := &counter{}
	e := newEngine(rep, true)
	e.GET("/panic", func(c *gin.Context) { panic("test panic") })

	rr, body := do(t, e, "GET", "/panic", nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if body.Error.Code != "Internal" || body.Error.Message != "panic: test panic" {
		t.Errorf("unexpected body %+v", body.Error)
	}
	if rep.n.Load() != 1 {
		t.Errorf("expected exactly one report, got %d", rep.n.Load())
	}
}

func TestRecovery_PanicWithAppError(t *testing.T) {
	e := newEngine(&counter{}, false)
	e.GET("/panic", func(c *gin.Context) { panic(apperrors.Forbidden("")) })

	rr, body := do(t, e, "GET", "/panic", nil)
	if rr.Code != http.StatusForbidden || body.Error.Code != "Forbidden" {
		t.Fatalf("expected Forbidden, got %d %+v", rr.Code, body.Error)
	}
}

func TestPanicError(t *testing.T) {
	cause := errors.New("nil map")
	pe := &middleware.PanicError{Value: cause}
	if !errors.Is(pe, cause) {
		t.Error("expected panicked error to unwrap")
	}
	if (&middleware.PanicError{Value: 42}).Unwrap() != nil {
		t.Error("non-error value should not unwrap")
	}
}

// ---------------------------------------------------------------------------
// RequestID
// ---------------------------------------------------------------------------

func TestRequestID(t *testing.T) {
	e := newEngine(&counter{}, false)
	var seen string
	e.GET("/", func(c *gin.Context) {
		seen = middleware.GetRequestID(c)
		c.Status(http.StatusOK)
	})

	rr, _ := do(t, e, "GET", "/", nil)
	if got := rr.Header().Get(middleware.RequestIDHeader); got == "" || got != seen {
		t.Errorf("expected generated id echoed, header=%q seen=%q", got, seen)
	}

	rr, _ = do(t, e, "GET", "/", http.Header{middleware.RequestIDHeader: {"abc-123"}})
	if got := rr.Header().Get(middleware.RequestIDHeader); got != "abc-123" {
		t.Errorf("expected propagated id, got %q", got)
	}
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

func TestAuth(t *testing.T) {
	e := newEngine(&counter{}, false)
	validator := func(token string) (any, error) {
		if token == "good" {
			return "user-1", nil
		}
		return nil, errors.New("bad signature")
	}
	e.Use(middleware.Auth(middleware.AuthConfig{
		TokenValidator: validator,
		SubjectFunc:    func(claims any) string { return claims.(string) },
		SkipPaths:      []string{"/public"},
	}))
	e.GET("/me", func(c *gin.Context) {
		sub, _ := authctx.Get[string](c.Request.Context())
		c.String(http.StatusOK, sub)
	})
	e.GET("/public/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		header string
		path   string
		status int
	}{
		{"missing header", "", "/me", 401},
		{"wrong scheme", "Basic abc", "/me", 401},
		{"invalid token", "Bearer nope", "/me", 401},
		{"valid token", "Bearer good", "/me", 200},
		{"lowercase scheme", "bearer good", "/me", 200},
		{"skipped path", "", "/public/ping", 200},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := http.Header{}
			if tc.header != "" {
				h.Set("Authorization", tc.header)
			}
			rr, body := do(t, e, "GET", tc.path, h)
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rr.Code)
			}
			if tc.status == 401 && body.Error.Code != "Unauthorized" {
				t.Errorf("expected Unauthorized code, got %+v", body.Error)
			}
			if tc.status == 200 && tc.path == "/me" && rr.Body.String() != "user-1" {
				t.Errorf("claims not propagated, got %q", rr.Body.String())
			}
		})
	}
}

// ---------------------------------------------------------------------------
// RateLimit
// ---------------------------------------------------------------------------

func TestRateLimit(t *testing.T) {
	e := newEngine(&counter{}, false)
	e.Use(middleware.RateLimit(middleware.RateLimitConfig{RequestsPerMinute: 2}))
	e.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		if rr, _ := do(t, e, "GET", "/", nil); rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rr.Code)
		}
	}
	rr, body := do(t, e, "GET", "/", nil)
	if rr.Code != http.StatusTooManyRequests || body.Error.Code != "RateLimited" {
		t.Fatalf("expected RateLimited 429, got %d %+v", rr.Code, body.Error)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

// ---------------------------------------------------------------------------
// CORS and body size
// ---------------------------------------------------------------------------

func TestCORS_Preflight(t *testing.T) {
	cfg := &middleware.CORSConfig{
		AllowedOrigins: []string{"https://app.example.com"},
		AllowedMethods: []string{"GET", "POST"},
		MaxAge:         600,
	}
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	h := middleware.CORS(cfg)(next)

	req := httptest.NewRequest(http.MethodOptions, "/api", http.NoBody)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Error("missing allow origin")
	}
	if rr.Header().Get("Access-Control-Max-Age") != "600" {
		t.Error("missing max age")
	}

	req = httptest.NewRequest(http.MethodGet, "/api", http.NoBody)
	req.Header.Set("Origin", "https://evil.example.com")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusTeapot || rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Errorf("disallowed origin should pass through without headers")
	}
}

func TestBodySizeLimit_RendersPayloadTooLarge(t *testing.T) {
	rep := &counter{}
	e := newEngine(rep, false)
	e.POST("/upload", func(c *gin.Context) {
		var v map[string]any
		if err := c.ShouldBindJSON(&v); err != nil {
			middleware.Fail(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	h := middleware.BodySizeLimit("16B")(e)

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(`{"title":"this body is too long"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", rr.Code, rr.Body.String())
	}
	var body apperrors.Response
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	if body.Error.Code != apperrors.HTTPErrorCode {
		t.Errorf("expected HTTP_ERROR, got %q", body.Error.Code)
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"10MB", 10 << 20},
		{"512kb", 512 << 10},
		{"1GB", 1 << 30},
		{"2048", 2048},
		{"16B", 16},
		{"", 99},
		{"lots", 99},
		{"-5MB", 99},
	}
	for _, tc := range tests {
		if got := middleware.ParseSize(tc.in, 99); got != tc.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mk := func(name string) middleware.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := middleware.Chain(mk("a"), mk("b"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", http.NoBody))
	if strings.Join(order, ",") != "a,b,handler" {
		t.Errorf("unexpected order %v", order)
	}
}
