package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/errkit/auth/authctx"
	apperrors "github.com/kbukum/errkit/errors"
	"github.com/kbukum/errkit/logger"
)

// AuthConfig configures the bearer token authentication middleware.
type AuthConfig struct {
	// TokenValidator validates a token string and returns the claims.
	TokenValidator func(token string) (any, error)
	// SubjectFunc extracts the user id from validated claims for logging.
	// Optional.
	SubjectFunc func(claims any) string
	// SkipPaths are URL path prefixes that bypass authentication.
	SkipPaths []string
}

// Auth returns a Gin middleware that validates Bearer tokens using the
// configured TokenValidator. Validated claims are stored on the request
// context (see authctx). Failures abort with an Unauthorized error.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if strings.HasPrefix(path, skip) {
				c.Next()
				return
			}
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			Fail(c, apperrors.Unauthorized(""))
			return
		}

		claims, err := cfg.TokenValidator(token)
		if err != nil {
			Fail(c, apperrors.Unauthorized("Invalid or expired token.").WithCause(err))
			return
		}

		ctx := authctx.Set(c.Request.Context(), claims)
		if cfg.SubjectFunc != nil {
			if uid := cfg.SubjectFunc(claims); uid != "" {
				c.Set(logger.FieldUserID, uid)
				ctx = logger.ContextWithUserID(ctx, uid)
			}
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
