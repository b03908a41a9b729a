// Package errors implements the application error taxonomy: a closed set of
// kinds, each with exactly one HTTP status and payload shape, and the wire
// envelope those errors render to.
//
// # Kinds
//
//	Validation        422  field errors required
//	DuplicateResource 409
//	Unauthorized      401
//	Forbidden         403
//	NotFound          404
//	Conflict          409
//	RateLimited       429
//	ExternalService   502  service name required
//	Internal          500
//
// # Usage
//
//	return errors.NotFound("Article not found.")
//	return errors.Validation("", errors.NewFieldErrors("email", "is required"))
//	return errors.ExternalService("", "billing").WithCause(err)
//
// Business code returns these errors and never catches them, except through
// Translate to turn one kind into another.
package errors
