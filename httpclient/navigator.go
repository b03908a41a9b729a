package httpclient

import (
	"context"

	"github.com/kbukum/errkit/logger"
)

// Navigator moves the user to another screen, typically the login page after
// the session is torn down. Redirecting twice to the same path is harmless.
type Navigator interface {
	RedirectTo(ctx context.Context, path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string)

func (f NavigatorFunc) RedirectTo(ctx context.Context, path string) { f(ctx, path) }

// LogNavigator is the Navigator of headless clients: it logs the redirect.
type LogNavigator struct {
	log *logger.Logger
}

// NewLogNavigator returns a LogNavigator. A nil logger uses the registry's
// "httpclient" logger.
func NewLogNavigator(log *logger.Logger) *LogNavigator {
	if log == nil {
		log = logger.WithComponent("httpclient")
	}
	return &LogNavigator{log: log}
}

func (n *LogNavigator) RedirectTo(ctx context.Context, path string) {
	n.log.WithContext(ctx).Warn("session ended, sign in required", map[string]interface{}{
		"redirect": path,
	})
}
