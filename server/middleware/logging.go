package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/errkit/logger"
)

// RequestLogger returns a Gin middleware that logs every request with
// method, path, status, latency and, for failed requests, the wire error
// code. Health and metrics paths are skipped.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isProbeEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		fields := map[string]interface{}{
			logger.FieldMethod:     c.Request.Method,
			logger.FieldPath:       c.Request.URL.Path,
			logger.FieldHTTPStatus: status,
			logger.FieldDuration:   latency.Milliseconds(),
			"client":               c.ClientIP(),
		}
		if route := c.FullPath(); route != "" {
			fields["route"] = route
		}
		if code := c.GetString(ErrorCodeKey); code != "" {
			fields[logger.FieldErrorCode] = code
		}
		if latency > 500*time.Millisecond {
			fields["slow"] = true
		}

		logByStatus(log.WithContext(c.Request.Context()), fields, status)
	}
}

func isProbeEndpoint(path string) bool {
	switch path {
	case "/health", "/metrics", "/api/health":
		return true
	}
	return false
}

// logByStatus logs request fields at the level matching the HTTP status.
// Unexpected errors are already reported by the renderer, so 5xx here is a
// warning.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Info("Request completed", fields)
	}
}
