// Package observe provides observability primitives for the emergence
// toolkit: OpenTelemetry metrics, tracing, and HTTP middleware that ties them
// together.
//
// Metrics are recorded through the OpenTelemetry Metrics API and exposed via
// a Prometheus exporter bridge set up by [InitProvider], so the standard
// /metrics endpoint keeps working. A package-level default [Metrics] instance
// ([DefaultMetrics]) is provided for convenience; tests should use
// [NewMetrics] with a custom [metric.MeterProvider] to avoid cross-test
// pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all emergence metrics.
const meterName = "emergence"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use.
type Metrics struct {
	// AnalysisDuration tracks transcript analysis latency.
	AnalysisDuration metric.Float64Histogram

	// HTTPRequestDuration tracks HTTP request processing time. Use with
	// attributes: attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram

	// ExchangesScored counts analysed exchanges by pattern signature.
	ExchangesScored metric.Int64Counter

	// EmergenceEvents counts exchanges that crossed the detection threshold.
	EmergenceEvents metric.Int64Counter

	// ToolInvocations counts analysis tool runs by tool name.
	ToolInvocations metric.Int64Counter

	// ActiveSessions tracks the number of live detector sessions.
	ActiveSessions metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds). Analysis
// is pure arithmetic over text, so the buckets skew low.
var latencyBuckets = []float64{
	0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.AnalysisDuration, err = m.Float64Histogram("emergence.analysis.duration",
		metric.WithDescription("Latency of transcript analysis."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("emergence.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if met.ExchangesScored, err = m.Int64Counter("emergence.exchanges.scored",
		metric.WithDescription("Total analysed exchanges by pattern signature."),
	); err != nil {
		return nil, err
	}
	if met.EmergenceEvents, err = m.Int64Counter("emergence.events",
		metric.WithDescription("Total exchanges that crossed the detection threshold."),
	); err != nil {
		return nil, err
	}
	if met.ToolInvocations, err = m.Int64Counter("emergence.tool.invocations",
		metric.WithDescription("Total analysis tool runs by tool name."),
	); err != nil {
		return nil, err
	}

	if met.ActiveSessions, err = m.Int64UpDownCounter("emergence.active_sessions",
		metric.WithDescription("Number of live detector sessions."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordExchange records one analysed exchange with its pattern signature.
func (m *Metrics) RecordExchange(ctx context.Context, pattern string) {
	m.ExchangesScored.Add(ctx, 1,
		metric.WithAttributes(attribute.String("pattern", pattern)),
	)
}

// RecordEmergenceEvent records one exchange that crossed the detection
// threshold.
func (m *Metrics) RecordEmergenceEvent(ctx context.Context) {
	m.EmergenceEvents.Add(ctx, 1)
}

// RecordToolInvocation records one analysis tool run.
func (m *Metrics) RecordToolInvocation(ctx context.Context, tool string) {
	m.ToolInvocations.Add(ctx, 1,
		metric.WithAttributes(attribute.String("tool", tool)),
	)
}
