// Package render turns any error that reaches the server boundary into the
// JSON error envelope and an HTTP status.
//
// Render applies four rules, first match wins:
//
//  1. *errors.AppError renders its own code, status, message and extras.
//  2. A validation failure (validation.FieldErrorer or raw
//     validator.ValidationErrors) renders as Validation/422.
//  3. An error carrying its own HTTP status (StatusCoder, *HTTPError,
//     *http.MaxBytesError) renders as HTTP_ERROR at that status.
//  4. Anything else renders as Internal/500. The raw message is shown only
//     while the DebugFlag is enabled.
//
// Rules 3 and 4 hand the error to the Reporter exactly once. Rules 1 and 2
// are expected outcomes and are never reported.
package render
