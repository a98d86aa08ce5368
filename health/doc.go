// Package health exposes circuit breaker state as health checks.
//
// A BreakerChecker maps circuit state to a health status: closed is
// healthy, half-open is degraded while the probe runs, open is unhealthy
// with the retry window in the details. Checkers aggregate into a single
// readiness signal and serve over HTTP for orchestrator probes.
package health
