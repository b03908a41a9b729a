package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/errkit/render"
)

// Context keys set by ErrorHandler for downstream middleware (e.g. the
// request logger, which runs outside it).
const (
	ErrorCodeKey = "error_code"
	ErrorRuleKey = "error_rule"
)

// Fail records err on the context and aborts the chain. ErrorHandler renders
// it once the handlers return.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandler renders the last error recorded on the context into the JSON
// error envelope, unless a response has already been written.
func ErrorHandler(r *render.Renderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		writeError(c, r, c.Errors.Last().Err)
	}
}

// NoRoute renders unmatched routes as HTTP_ERROR 404.
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		Fail(c, render.NewHTTPError(http.StatusNotFound, ""))
	}
}

// NoMethod renders unsupported methods as HTTP_ERROR 405.
func NoMethod() gin.HandlerFunc {
	return func(c *gin.Context) {
		Fail(c, render.NewHTTPError(http.StatusMethodNotAllowed, ""))
	}
}

func writeError(c *gin.Context, r *render.Renderer, err error) {
	res := r.Resolve(c.Request.Context(), err)
	c.Set(ErrorCodeKey, res.Response.Error.Code)
	c.Set(ErrorRuleKey, res.Rule.String())
	c.AbortWithStatusJSON(res.Status, res.Response)
}
