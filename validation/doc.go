// Package validation produces validation failures for request input.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Both return a *Error carrying
// ordered per-field messages; the server boundary renders it as a Validation
// error with status 422.
//
// # Struct Tag Validation
//
//	type CreateArticle struct {
//	    Title string `json:"title" validate:"required,max=200"`
//	    Email string `json:"email" validate:"required,email"`
//	}
//	err := validation.Validate(req)
//
// # Programmatic Validation
//
//	err := validation.New().
//	    Required("title", req.Title).
//	    MaxLength("title", req.Title, 200).
//	    Validate()
package validation
