// Package server provides the HTTP server for errkit services, built on Gin
// with h2c support.
//
// Every failure, whether returned by a handler through RespondWithError,
// raised by middleware (authentication, rate limiting), caused by a panic,
// or produced by an unknown route, is rendered by one render.Renderer into
// the error envelope:
//
//	{"error": {"code": "NotFound", "message": "Article not found."}}
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - RequestID: request id generation and propagation
//   - RequestLogger: structured request logging
//   - Tracing, Metrics: OpenTelemetry spans and request metrics
//   - ErrorHandler, Recovery: error and panic rendering
//   - RateLimit: sliding-window limits rendered as RateLimited
//   - Auth: bearer tokens, failures rendered as Unauthorized
//   - CORS, BodySizeLimit: applied before Gin
//
// # Endpoints
//
//   - /health: component health aggregation
//   - /info: build information
//   - /metrics: Prometheus metrics
package server
