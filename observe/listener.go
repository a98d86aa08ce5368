package observe

import (
	"context"

	"github.com/jonwraymond/breakerops/breaker"
)

// BreakerListener bridges breaker events into logs and metrics. It
// implements breaker.Listener.
type BreakerListener struct {
	metrics Metrics
	logger  Logger
}

// NewBreakerListener creates a listener that reports breaker activity
// through the observer's meter and logger.
func NewBreakerListener(obs Observer) (*BreakerListener, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return &BreakerListener{
		metrics: metrics,
		logger:  obs.Logger(),
	}, nil
}

// OnStateChange logs and counts a circuit state transition.
func (l *BreakerListener) OnStateChange(change breaker.StateChange) {
	ctx := context.Background()
	l.metrics.RecordStateChange(ctx, change)

	logger := l.logger.WithBreaker(change.Breaker)
	fields := []Field{
		{Key: "from", Value: change.From.String()},
		{Key: "to", Value: change.To.String()},
	}

	switch change.To {
	case breaker.StateOpen:
		logger.Warn(ctx, "circuit opened", fields...)
	case breaker.StateHalfOpen:
		logger.Info(ctx, "circuit half-open, probing", fields...)
	default:
		logger.Info(ctx, "circuit closed", fields...)
	}
}

// OnCall counts a guarded call and logs failures.
func (l *BreakerListener) OnCall(event breaker.CallEvent) {
	ctx := context.Background()
	l.metrics.RecordCall(ctx, event)

	if event.Outcome != breaker.OutcomeFailure {
		return
	}
	l.logger.WithBreaker(event.Breaker).Debug(ctx, "guarded call failed",
		Field{Key: "error", Value: event.Err.Error()},
		Field{Key: "duration_ms", Value: float64(event.Duration.Milliseconds())},
	)
}

// Instrument attaches telemetry to b. The returned listener can be
// passed to b.RemoveListener to detach it again.
func Instrument(b *breaker.Breaker, obs Observer) (*BreakerListener, error) {
	if b == nil {
		return nil, ErrNilBreaker
	}
	l, err := NewBreakerListener(obs)
	if err != nil {
		return nil, err
	}
	b.AddListener(l)
	return l, nil
}

// Ensure BreakerListener implements breaker.Listener
var _ breaker.Listener = (*BreakerListener)(nil)
