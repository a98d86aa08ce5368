// Package breaker implements the circuit breaker pattern for protecting
// calls to unreliable dependencies.
//
// A Breaker tracks consecutive failures of a protected operation. Once
// the failure threshold is reached the circuit opens and further calls
// are rejected immediately, without touching the dependency. After the
// reset timeout a single probe call is admitted; its success closes the
// circuit again, its failure reopens it for another window.
//
// # States
//
//	Closed (normal):
//	    - Calls flow through to the protected operation
//	    - Consecutive failures are counted, success resets the count
//	    - Reaching FailureThreshold opens the circuit
//
//	Open (tripped):
//	    - Calls are rejected with *OpenError
//	    - After ResetTimeout the circuit moves to half-open
//
//	HalfOpen (probing):
//	    - Exactly one call is admitted as the probe
//	    - Concurrent calls are rejected while the probe is in flight
//	    - Probe success closes the circuit, probe failure reopens it
//
// # Usage
//
//	b := breaker.New(breaker.Config{
//	    Name:             "billing",
//	    FailureThreshold: 3,
//	    ResetTimeout:     10 * time.Second,
//	})
//
//	err := b.Call(ctx, func(ctx context.Context) error {
//	    return client.Charge(ctx, amount)
//	})
//	if breaker.IsOpen(err) {
//	    return fallback()
//	}
//
// For operations that return a value, use the generic Run helper:
//
//	user, err := breaker.Run(ctx, b, func(ctx context.Context) (*User, error) {
//	    return client.GetUser(ctx, id)
//	})
//
// Errors that indicate caller bugs rather than dependency trouble can be
// excluded from failure counting:
//
//	breaker.Config{
//	    IsFailure: breaker.Exclude(ErrInvalidInput),
//	}
//
// Listeners observe state transitions and call outcomes for logging and
// metrics; they run outside the breaker's critical section and cannot
// affect admission decisions.
package breaker
