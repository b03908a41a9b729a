package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/errkit/render"
	"github.com/kbukum/errkit/server/middleware"
	"github.com/kbukum/errkit/validation"
)

// DataResponse is the standard success envelope.
type DataResponse struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta carries pagination metadata.
type Meta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta computes pagination metadata.
func NewMeta(page, perPage, total int) *Meta {
	pages := 0
	if perPage > 0 {
		pages = (total + perPage - 1) / perPage
	}
	return &Meta{Page: page, PerPage: perPage, Total: total, TotalPages: pages}
}

// RespondWithError hands err to the error handler middleware, which renders
// it once the handler returns.
func RespondWithError(c *gin.Context, err error) {
	middleware.Fail(c, err)
}

// RespondOK sends a 200 response wrapping data.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}

// RespondOKWithMeta sends a 200 response with data and metadata.
func RespondOKWithMeta(c *gin.Context, data any, meta *Meta) {
	c.JSON(http.StatusOK, DataResponse{Data: data, Meta: meta})
}

// RespondCreated sends a 201 response wrapping data.
func RespondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, DataResponse{Data: data})
}

// RespondNoContent sends a 204 with no body.
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BindJSON decodes the request body into dst and validates it with its
// `validate` struct tags. Malformed bodies become HTTP_ERROR 400, oversized ones keep their
// *http.MaxBytesError (413), and tag failures become a validation failure.
func BindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if verr, ok := validation.FromValidator(err); ok {
			return verr
		}
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return err
		}
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return &render.HTTPError{Status: http.StatusBadRequest, Message: "Request body is empty.", Err: err}
		case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.Is(err, io.ErrUnexpectedEOF):
			return &render.HTTPError{Status: http.StatusBadRequest, Message: "Malformed JSON body.", Err: err}
		default:
			return &render.HTTPError{Status: http.StatusBadRequest, Err: err}
		}
	}
	return validation.Validate(dst)
}
