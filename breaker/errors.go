package breaker

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for breaker operations.
var (
	// ErrOpen is the match target for rejections. Rejections are returned
	// as *OpenError; errors.Is(err, ErrOpen) and IsOpen both report them.
	ErrOpen = errors.New("breaker: circuit open")

	// ErrCallTimeout is returned when a protected call exceeds the
	// configured CallTimeout.
	ErrCallTimeout = errors.New("breaker: call timed out")
)

// errPanic marks a protected call that panicked. The panic itself is
// re-raised to the caller; this value only feeds the failure counter.
var errPanic = errors.New("breaker: call panicked")

// OpenError is returned when a call is rejected because the circuit is
// open. The protected operation was not invoked.
type OpenError struct {
	// Name is the breaker that rejected the call.
	Name string

	// OpenedAt is when the circuit opened.
	OpenedAt time.Time

	// RetryAfter is how long until a probe call will be admitted.
	// Zero means the next call may be admitted as the probe.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *OpenError) Error() string {
	return fmt.Sprintf("breaker: circuit %q open, retry after %s", e.Name, e.RetryAfter)
}

// Is reports ErrOpen as a match so callers can use errors.Is.
func (e *OpenError) Is(target error) bool {
	return target == ErrOpen
}

// IsOpen reports whether err is a rejection from an open circuit, as
// opposed to an error from the protected operation itself.
func IsOpen(err error) bool {
	return errors.Is(err, ErrOpen)
}
