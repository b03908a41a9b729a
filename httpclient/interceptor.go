package httpclient

import (
	"context"
	"net/http"

	"github.com/kbukum/errkit/logger"
	"github.com/kbukum/errkit/tokenstore"
)

// BearerFromStore attaches "Authorization: Bearer <token>" when store holds a
// token. An empty store, or one that fails to read, sends no header.
func BearerFromStore(store tokenstore.Store) Interceptor {
	return func(ctx context.Context, req *http.Request) {
		token, ok, err := store.Get(ctx)
		if err != nil {
			logger.WithComponent("httpclient").WithContext(ctx).Warn("token store read failed", map[string]interface{}{
				logger.FieldError: err.Error(),
			})
			return
		}
		if ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

// WithRequestID propagates the request id carried by ctx (see
// logger.ContextWithRequestID) as X-Request-Id.
func WithRequestID() Interceptor {
	return func(ctx context.Context, req *http.Request) {
		if id := logger.RequestIDFromContext(ctx); id != "" && req.Header.Get("X-Request-Id") == "" {
			req.Header.Set("X-Request-Id", id)
		}
	}
}
