package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/breakerops/breaker"
)

// Tracer wraps OpenTelemetry tracing with breaker-specific span
// management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndCall must be best-effort and must not panic.
type Tracer interface {
	// StartCall starts a span for one guarded call.
	StartCall(ctx context.Context, name string) (context.Context, trace.Span)

	// EndCall ends the span, recording the call's error if any.
	EndCall(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartCall starts a span named after the breaker.
func (t *tracerImpl) StartCall(ctx context.Context, name string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "breaker.call."+name,
		trace.WithAttributes(
			attribute.String("breaker.name", name),
			attribute.Bool("breaker.rejected", false),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndCall ends the span and records the error status if present.
// Open-circuit rejections are tagged separately from dependency errors.
func (t *tracerImpl) EndCall(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if breaker.IsOpen(err) {
			span.SetAttributes(attribute.Bool("breaker.rejected", true))
		} else {
			span.RecordError(err)
		}
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartCall(ctx context.Context, name string) (context.Context, trace.Span) {
	return t.noop.Start(ctx, "breaker.call."+name)
}

func (t *noopTracer) EndCall(span trace.Span, err error) {
	span.End()
}
