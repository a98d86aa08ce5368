package observe

import (
	"context"

	"github.com/jonwraymond/breakerops/breaker"
)

// Middleware wraps guarded calls with tracing. Metrics and logging ride
// on the breaker's listener path (see Instrument); the middleware only
// adds the span around the call itself.
//
// Contract:
//   - Concurrency: Guard() returns a thread-safe function.
//   - Context: propagates context through tracing spans.
//   - Errors: errors from the breaker are recorded and propagated
//     unchanged.
type Middleware struct {
	tracer Tracer
}

// NewMiddleware creates a new Middleware with the given tracer.
func NewMiddleware(tracer Tracer) *Middleware {
	return &Middleware{tracer: tracer}
}

// Guard returns a function that runs op through b inside a span.
func (m *Middleware) Guard(b *breaker.Breaker, op func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		ctx, span := m.tracer.StartCall(ctx, b.Name())
		err := b.Call(ctx, op)
		m.tracer.EndCall(span, err)
		return err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
// This is a convenience function for common use cases.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	return NewMiddleware(newTracer(obs.Tracer())), nil
}
