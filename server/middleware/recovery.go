package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/errkit/render"
)

// PanicError is a recovered panic. It renders as an unclassified error.
type PanicError struct {
	Value any
	stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// Stack returns the goroutine stack captured at recovery.
func (e *PanicError) Stack() []byte { return e.stack }

// Unwrap exposes a panicked error value.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Recovery returns a Gin middleware that turns panics into rendered errors.
// The panic goes through the renderer like any other unexpected failure, so
// it is reported exactly once.
func Recovery(r *render.Renderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}
			pe := &PanicError{Value: rec, stack: debug.Stack()}
			if c.Writer.Written() {
				r.Resolve(c.Request.Context(), pe)
				c.Abort()
				return
			}
			writeError(c, r, pe)
		}()
		c.Next()
	}
}
