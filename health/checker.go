package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/breakerops/breaker"
)

// Status represents the health status of a component.
type Status int

const (
	// StatusHealthy indicates the component is functioning normally.
	StatusHealthy Status = iota
	// StatusDegraded indicates the component is functioning but with issues.
	StatusDegraded
	// StatusUnhealthy indicates the component is not functioning properly.
	StatusUnhealthy
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Result contains the outcome of a health check.
type Result struct {
	// Status is the health status.
	Status Status

	// Message provides additional context about the status.
	Message string

	// Details contains arbitrary metadata about the check.
	Details map[string]any

	// Duration is how long the check took.
	Duration time.Duration

	// Timestamp is when the check was performed.
	Timestamp time.Time

	// Error is the error if the check failed.
	Error error
}

// Healthy creates a healthy result.
func Healthy(message string) Result {
	return Result{
		Status:    StatusHealthy,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Degraded creates a degraded result.
func Degraded(message string) Result {
	return Result{
		Status:    StatusDegraded,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Unhealthy creates an unhealthy result.
func Unhealthy(message string, err error) Result {
	return Result{
		Status:    StatusUnhealthy,
		Message:   message,
		Error:     err,
		Timestamp: time.Now(),
	}
}

// WithDetails adds details to a result.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// Checker is the interface for health checks.
type Checker interface {
	// Name returns the name of this checker.
	Name() string

	// Check performs the health check and returns the result.
	Check(ctx context.Context) Result
}

// CheckerFunc is an adapter to allow ordinary functions to be used as Checkers.
type CheckerFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewCheckerFunc creates a new CheckerFunc.
func NewCheckerFunc(name string, fn func(context.Context) Result) *CheckerFunc {
	return &CheckerFunc{name: name, fn: fn}
}

// Name returns the name of this checker.
func (f *CheckerFunc) Name() string {
	return f.name
}

// Check performs the health check.
func (f *CheckerFunc) Check(ctx context.Context) Result {
	return f.fn(ctx)
}

// BreakerChecker reports the health of a dependency from its circuit
// state. No call is made to the dependency; the breaker's view of recent
// traffic is the signal.
type BreakerChecker struct {
	breaker *breaker.Breaker
}

// NewBreakerChecker creates a checker backed by b.
func NewBreakerChecker(b *breaker.Breaker) *BreakerChecker {
	return &BreakerChecker{breaker: b}
}

// Name returns the breaker's name.
func (c *BreakerChecker) Name() string {
	return c.breaker.Name()
}

// Check maps the circuit state to a health status.
func (c *BreakerChecker) Check(ctx context.Context) Result {
	m := c.breaker.Metrics()

	switch m.State {
	case breaker.StateOpen:
		return Unhealthy("circuit open", breaker.ErrOpen).WithDetails(map[string]any{
			"state":     m.State.String(),
			"opened_at": m.OpenedAt.UTC().Format(time.RFC3339),
		})
	case breaker.StateHalfOpen:
		return Degraded("circuit half-open, probing recovery").WithDetails(map[string]any{
			"state": m.State.String(),
		})
	default:
		return Healthy(fmt.Sprintf("circuit closed, %d recent failures", m.Failures)).WithDetails(map[string]any{
			"state":    m.State.String(),
			"failures": m.Failures,
		})
	}
}
