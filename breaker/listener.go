package breaker

import (
	"sync"
	"time"
)

// Outcome classifies the result of a guarded call.
type Outcome int

const (
	// OutcomeSuccess means the call completed without error.
	OutcomeSuccess Outcome = iota
	// OutcomeFailure means the call failed and counted toward the
	// failure threshold.
	OutcomeFailure
	// OutcomeIgnored means the call failed but the error was excluded by
	// the failure predicate; it did not count toward the threshold.
	OutcomeIgnored
	// OutcomeRejected means the circuit was open and the call was never
	// invoked.
	OutcomeRejected
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// StateChange describes a circuit state transition.
type StateChange struct {
	// Breaker is the name of the breaker that transitioned.
	Breaker string

	// From and To are the old and new states.
	From, To State

	// At is when the transition happened.
	At time.Time
}

// CallEvent describes the outcome of one guarded call, including
// rejections.
type CallEvent struct {
	// Breaker is the name of the breaker that handled the call.
	Breaker string

	// State is the circuit state after the call was recorded.
	State State

	// Outcome classifies the call result.
	Outcome Outcome

	// Err is the call's error, the rejection error, or nil. Ignored
	// outcomes carry the raw excluded error.
	Err error

	// Duration is how long the call ran. Zero for rejections.
	Duration time.Duration
}

// Listener observes breaker activity for logging and metrics. Listeners
// are invoked outside the breaker's critical section and have no effect
// on admission decisions; a panicking listener is isolated.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations should not panic; panics are swallowed.
type Listener interface {
	// OnStateChange is called after the circuit transitions states.
	OnStateChange(change StateChange)

	// OnCall is called after each guarded call, including rejections.
	OnCall(event CallEvent)
}

// ListenerFuncs adapts plain functions to the Listener interface. Nil
// fields are skipped. Register the pointer so RemoveListener can match
// it by identity.
type ListenerFuncs struct {
	StateChange func(change StateChange)
	Call        func(event CallEvent)
}

// OnStateChange calls the StateChange func if set.
func (l *ListenerFuncs) OnStateChange(change StateChange) {
	if l.StateChange != nil {
		l.StateChange(change)
	}
}

// OnCall calls the Call func if set.
func (l *ListenerFuncs) OnCall(event CallEvent) {
	if l.Call != nil {
		l.Call(event)
	}
}

// registry holds the breaker's listeners. Notification order follows
// registration order so tests can make deterministic assertions.
type registry struct {
	mu        sync.RWMutex
	listeners []Listener
}

func (r *registry) add(l Listener) {
	if l == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

func (r *registry) remove(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, registered := range r.listeners {
		if registered == l {
			r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
			return
		}
	}
}

func (r *registry) snapshot() []Listener {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Listener, len(r.listeners))
	copy(out, r.listeners)
	return out
}

// notify delivers queued transitions to every listener.
func (r *registry) notify(changes []StateChange) {
	if len(changes) == 0 {
		return
	}
	listeners := r.snapshot()
	for _, change := range changes {
		for _, l := range listeners {
			safeNotify(func() { l.OnStateChange(change) })
		}
	}
}

// notifyCall delivers a call event to every listener.
func (r *registry) notifyCall(event CallEvent) {
	for _, l := range r.snapshot() {
		safeNotify(func() { l.OnCall(event) })
	}
}

// safeNotify isolates a misbehaving listener from the caller's result
// path.
func safeNotify(fn func()) {
	defer func() {
		_ = recover()
	}()
	fn()
}
