package render

import (
	"context"
	stderrors "errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/errkit/logger"
	"github.com/kbukum/errkit/observability"
)

// Reporter receives errors that were not expected by the application.
type Reporter interface {
	Report(ctx context.Context, err error)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, err error)

// Report implements Reporter.
func (f ReporterFunc) Report(ctx context.Context, err error) { f(ctx, err) }

// NopReporter discards reports.
type NopReporter struct{}

// Report implements Reporter.
func (NopReporter) Report(context.Context, error) {}

// MultiReporter fans a report out to several reporters in order.
type MultiReporter []Reporter

// Report implements Reporter.
func (m MultiReporter) Report(ctx context.Context, err error) {
	for _, r := range m {
		if r != nil {
			r.Report(ctx, err)
		}
	}
}

// LogReporter writes reports to a structured logger.
type LogReporter struct {
	log *logger.Logger
}

// NewLogReporter creates a LogReporter. A nil logger uses the "render"
// component logger.
func NewLogReporter(l *logger.Logger) *LogReporter {
	if l == nil {
		l = logger.WithComponent("render")
	}
	return &LogReporter{log: l}
}

// Report implements Reporter.
func (r *LogReporter) Report(ctx context.Context, err error) {
	fields := map[string]interface{}{
		"error_type": errorType(err),
	}
	if status, _, ok := asHTTPError(err); ok {
		fields[logger.FieldHTTPStatus] = status
	}
	var st interface{ Stack() []byte }
	if stderrors.As(err, &st) {
		fields["stack"] = string(st.Stack())
	}
	if traceID, spanID := observability.TraceIDs(ctx); traceID != "" {
		fields[logger.FieldTraceID] = traceID
		fields[logger.FieldSpanID] = spanID
	}
	r.log.WithContext(ctx).WithError(err).Error("unhandled error", fields)
}

// TraceReporter records reports on the active span.
type TraceReporter struct{}

// Report implements Reporter.
func (TraceReporter) Report(ctx context.Context, err error) {
	attrs := []attribute.KeyValue{attribute.String("error.type", errorType(err))}
	if status, _, ok := asHTTPError(err); ok {
		attrs = append(attrs, attribute.Int(observability.AttrErrorStatus, status))
	}
	observability.SetSpanError(ctx, err, attrs...)
}

// errorType names the innermost error type in the chain, which is more
// useful than a wrapper like *fmt.wrapError.
func errorType(err error) string {
	for {
		next := stderrors.Unwrap(err)
		if next == nil {
			return fmt.Sprintf("%T", err)
		}
		err = next
	}
}
