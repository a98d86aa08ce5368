package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/breakerops/breaker"
)

// Metrics records circuit breaker activity.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCall records one guarded call, including rejections.
	RecordCall(ctx context.Context, event breaker.CallEvent)

	// RecordStateChange records a circuit state transition.
	RecordStateChange(ctx context.Context, change breaker.StateChange)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	callCount    metric.Int64Counter
	transitions  metric.Int64Counter
	durationHist metric.Float64Histogram
	openState    metric.Int64UpDownCounter
}

// newMetrics creates a new Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	callCount, err := meter.Int64Counter(
		"breaker.calls.total",
		metric.WithDescription("Total number of guarded calls by outcome"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	transitions, err := meter.Int64Counter(
		"breaker.transitions.total",
		metric.WithDescription("Total number of circuit state transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"breaker.call.duration_ms",
		metric.WithDescription("Guarded call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	openState, err := meter.Int64UpDownCounter(
		"breaker.open",
		metric.WithDescription("1 while the circuit is open, 0 otherwise"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		callCount:    callCount,
		transitions:  transitions,
		durationHist: durationHist,
		openState:    openState,
	}, nil
}

// RecordCall records metrics for one guarded call.
func (m *metricsImpl) RecordCall(ctx context.Context, event breaker.CallEvent) {
	opt := metric.WithAttributes(
		attribute.String("breaker.name", event.Breaker),
		attribute.String("breaker.outcome", event.Outcome.String()),
	)

	m.callCount.Add(ctx, 1, opt)

	// Rejections never ran, so their zero duration would skew the
	// histogram.
	if event.Outcome != breaker.OutcomeRejected {
		m.durationHist.Record(ctx, float64(event.Duration.Milliseconds()), opt)
	}
}

// RecordStateChange records metrics for a state transition.
func (m *metricsImpl) RecordStateChange(ctx context.Context, change breaker.StateChange) {
	name := attribute.String("breaker.name", change.Breaker)

	m.transitions.Add(ctx, 1, metric.WithAttributes(
		name,
		attribute.String("breaker.from", change.From.String()),
		attribute.String("breaker.to", change.To.String()),
	))

	if change.To == breaker.StateOpen {
		m.openState.Add(ctx, 1, metric.WithAttributes(name))
	}
	if change.From == breaker.StateOpen {
		m.openState.Add(ctx, -1, metric.WithAttributes(name))
	}
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordCall(ctx context.Context, event breaker.CallEvent)          {}
func (m *noopMetrics) RecordStateChange(ctx context.Context, change breaker.StateChange) {}
