package render

import (
	"context"
	stderrors "errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for rendered and reported errors.
type Metrics struct {
	rendered *prometheus.CounterVec
	reported *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors on reg. Registering twice
// on the same registry reuses the existing collectors. A nil reg uses a
// private registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	rendered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "errkit",
		Name:      "rendered_errors_total",
		Help:      "Errors rendered at the server boundary by wire code and status",
	}, []string{"code", "status"})
	reported := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "errkit",
		Name:      "reported_errors_total",
		Help:      "Unexpected errors forwarded to reporters by rule",
	}, []string{"rule"})

	return &Metrics{
		rendered: register(reg, rendered),
		reported: register(reg, reported),
	}
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if stderrors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *Metrics) observe(res Result) {
	m.rendered.WithLabelValues(res.Response.Error.Code, strconv.Itoa(res.Status)).Inc()
}

// MetricsReporter counts reports by the rule that mapped them.
type MetricsReporter struct {
	m *Metrics
}

// NewMetricsReporter creates a MetricsReporter on m's collectors.
func NewMetricsReporter(m *Metrics) *MetricsReporter {
	return &MetricsReporter{m: m}
}

// Report implements Reporter.
func (r *MetricsReporter) Report(_ context.Context, err error) {
	rule := RuleUnclassified
	if _, _, ok := asHTTPError(err); ok {
		rule = RuleHTTPError
	}
	r.m.reported.WithLabelValues(rule.String()).Inc()
}
