// Package observe provides telemetry for circuit breakers.
//
// It is a pure instrumentation library: breaker activity is turned into
// OpenTelemetry metrics and traces plus structured logs, with no effect
// on admission decisions. Attach it to a breaker as a listener via
// Instrument, or wrap guarded calls in spans with Middleware.
package observe
