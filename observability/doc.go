// Package observability wires OpenTelemetry tracing and metrics.
//
// Setup starts OTLP/HTTP tracer and meter providers when enabled:
//
//	shutdown, err := observability.Setup(ctx, cfg.Observability, "articles-api", version, env)
//	defer shutdown(ctx)
//
// Spans record failures through SetSpanError, which the error renderer's
// trace reporter uses. Metrics holds the HTTP server instruments, and
// CheckAll folds component health into the /health payload.
package observability
