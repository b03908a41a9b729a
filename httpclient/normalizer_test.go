package httpclient

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"golang.org/x/text/language"

	apperrors "github.com/kbukum/errkit/errors"
	"github.com/kbukum/errkit/tokenstore"
)

type recordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *recordingNavigator) RedirectTo(_ context.Context, path string) {
	n.mu.Lock()
	n.paths = append(n.paths, path)
	n.mu.Unlock()
}

func response(status int, body string) *Response {
	return &Response{StatusCode: status, Header: http.Header{}, Body: []byte(body)}
}

func TestNormalize_Rules(t *testing.T) {
	tests := []struct {
		name    string
		resp    *Response
		err     error
		rule    Rule
		message string
	}{
		{
			name:    "401 with empty body",
			resp:    response(401, ""),
			rule:    RuleUnauthenticated,
			message: "Your session has expired. Please sign in again.",
		},
		{
			name:    "401 ignores envelope",
			resp:    response(401, `{"error":{"code":"Unauthorized","message":"Invalid or expired token."}}`),
			rule:    RuleUnauthenticated,
			message: "Your session has expired. Please sign in again.",
		},
		{
			name:    "field errors flattened in document order",
			resp:    response(422, `{"error":{"errors":{"name":["required"],"email":["invalid"]}}}`),
			rule:    RuleFieldErrors,
			message: "required, invalid",
		},
		{
			name:    "field errors with several messages per field",
			resp:    response(422, `{"error":{"code":"Validation","message":"The given data was invalid.","errors":{"title":["is required","too short"],"body":["is required"]}}}`),
			rule:    RuleFieldErrors,
			message: "is required, too short, is required",
		},
		{
			name:    "envelope message verbatim",
			resp:    response(404, `{"error":{"message":"X not found"}}`),
			rule:    RuleEnvelope,
			message: "X not found",
		},
		{
			name:    "empty field map uses message",
			resp:    response(409, `{"error":{"code":"Conflict","message":"Version mismatch.","errors":{}}}`),
			rule:    RuleEnvelope,
			message: "Version mismatch.",
		},
		{
			name:    "connection failure",
			err:     &TransportError{Kind: TransportConnection, Err: errors.New("dial tcp: connection refused")},
			rule:    RuleNetwork,
			message: "Unable to reach the server. Please check your connection.",
		},
		{
			name:    "timeout",
			err:     &TransportError{Kind: TransportTimeout, Err: context.DeadlineExceeded},
			rule:    RuleTimeout,
			message: "The request timed out. Please try again.",
		},
		{
			name:    "non-envelope body",
			resp:    response(500, "<html>bad gateway</html>"),
			rule:    RuleFallback,
			message: "Request failed with status code 500",
		},
		{
			name:    "other transport failure keeps its message",
			err:     &TransportError{Kind: TransportOther, Err: errors.New("encode body: unsupported type")},
			rule:    RuleFallback,
			message: "encode body: unsupported type",
		},
		{
			name:    "empty message falls back to generic",
			err:     errors.New(""),
			rule:    RuleFallback,
			message: "Something went wrong. Please try again.",
		},
	}

	n := NewNormalizer(tokenstore.NewMemory(), WithNavigator(&recordingNavigator{}))
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := n.Normalize(context.Background(), tc.resp, tc.err)
			if got == nil {
				t.Fatal("expected an error")
			}
			if got.Rule != tc.rule {
				t.Errorf("rule = %s, want %s", got.Rule, tc.rule)
			}
			if got.Message != tc.message {
				t.Errorf("message = %q, want %q", got.Message, tc.message)
			}
		})
	}
}

func TestNormalize_Success(t *testing.T) {
	n := NewNormalizer(nil)
	if got := n.Normalize(context.Background(), response(200, `{"data":{}}`), nil); got != nil {
		t.Errorf("expected nil for success, got %+v", got)
	}
}

func TestNormalize_UnauthorizedEndsSession(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemory()
	_ = store.Set(ctx, "stale")
	nav := &recordingNavigator{}
	n := NewNormalizer(store, WithNavigator(nav), WithLoginPath("/signin"))

	for i := 0; i < 2; i++ {
		got := n.Normalize(ctx, response(401, "not json"), nil)
		if kind, ok := got.Kind(); !ok || kind != apperrors.KindUnauthorized {
			t.Errorf("expected Unauthorized kind, got %q", got.Code)
		}
	}

	if _, ok, _ := store.Get(ctx); ok {
		t.Error("expected token to be cleared")
	}
	if len(nav.paths) != 2 || nav.paths[0] != "/signin" {
		t.Errorf("unexpected redirects %v", nav.paths)
	}
}

func TestNormalize_KeepsFieldErrorsAndKind(t *testing.T) {
	n := NewNormalizer(nil)
	got := n.Normalize(context.Background(),
		response(422, `{"error":{"code":"Validation","message":"m","errors":{"b":["x"],"a":["y"]}}}`), nil)

	if kind, _ := got.Kind(); kind != apperrors.KindValidation {
		t.Errorf("expected Validation kind, got %q", got.Code)
	}
	if fields := got.FieldErrors.Fields(); len(fields) != 2 || fields[0] != "b" {
		t.Errorf("expected field order preserved, got %v", fields)
	}
}

func TestNormalize_Retryable(t *testing.T) {
	n := NewNormalizer(nil)
	ctx := context.Background()

	rateLimited := response(429, `{"error":{"code":"RateLimited","message":"Slow down."}}`)
	rateLimited.Header.Set("Retry-After", "3")

	tests := []struct {
		name string
		resp *Response
		err  error
		want bool
	}{
		{"rate limited", rateLimited, nil, true},
		{"external service", response(502, `{"error":{"code":"ExternalService","message":"m","service":"mail"}}`), nil, true},
		{"not found", response(404, `{"error":{"code":"NotFound","message":"m"}}`), nil, false},
		{"gateway without envelope", response(503, ""), nil, true},
		{"network", nil, &TransportError{Kind: TransportConnection, Err: errors.New("x")}, true},
		{"unauthenticated", response(401, ""), nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := n.Normalize(ctx, tc.resp, tc.err).Retryable(); got != tc.want {
				t.Errorf("Retryable() = %v, want %v", got, tc.want)
			}
		})
	}

	if got := n.Normalize(ctx, rateLimited, nil).RetryAfter(); got.Seconds() != 3 {
		t.Errorf("expected Retry-After of 3s, got %v", got)
	}
}

func TestNormalize_Language(t *testing.T) {
	tests := []struct {
		tag  language.Tag
		want string
	}{
		{language.Turkish, "Sunucuya ulaşılamıyor. Lütfen bağlantınızı kontrol edin."},
		{language.MustParse("tr-TR"), "Sunucuya ulaşılamıyor. Lütfen bağlantınızı kontrol edin."},
		{language.German, "Unable to reach the server. Please check your connection."},
	}
	for _, tc := range tests {
		n := NewNormalizer(nil, WithLanguage(tc.tag))
		got := n.Normalize(context.Background(), nil, &TransportError{Kind: TransportConnection, Err: errors.New("x")})
		if got.Message != tc.want {
			t.Errorf("%s: message = %q, want %q", tc.tag, got.Message, tc.want)
		}
	}
}
