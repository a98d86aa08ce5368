package breaker

import (
	"context"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means the circuit is operating normally.
	StateClosed State = iota
	// StateOpen means the circuit is rejecting all calls.
	StateOpen
	// StateHalfOpen means the circuit is probing whether the dependency recovered.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config configures a Breaker.
type Config struct {
	// Name identifies the breaker in errors, listener events and telemetry.
	// Default: "breaker"
	Name string

	// FailureThreshold is the number of consecutive failures before the
	// circuit opens.
	// Default: 5
	FailureThreshold int

	// ResetTimeout is how long the circuit stays open before a single
	// probe call is allowed through.
	// Default: 30 seconds
	ResetTimeout time.Duration

	// CallTimeout bounds each protected call. Zero means no timeout.
	// A timed-out call counts as a failure unless IsFailure says otherwise.
	CallTimeout time.Duration

	// IsFailure determines if an error should count as a failure.
	// Errors it rejects are ignored for state purposes but still reported
	// to listeners with OutcomeIgnored.
	// Default: all non-nil errors are failures.
	IsFailure func(err error) bool

	// Listeners are notified of state changes and call outcomes.
	// More can be attached later with AddListener.
	Listeners []Listener

	// Clock supplies time. Replace in tests to control the reset window.
	// Default: the real clock.
	Clock Clock
}

// Breaker implements the circuit breaker pattern. It admits or rejects
// calls based on the recent failure history of the protected dependency.
// Safe for concurrent use.
type Breaker struct {
	name      string
	config    Config
	listeners registry

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
	gen      uint64
	pending  []StateChange
}

// takeEventsLocked drains queued transition events so they can be
// delivered to listeners after the lock is released.
func (b *Breaker) takeEventsLocked() []StateChange {
	events := b.pending
	b.pending = nil
	return events
}

// permit is issued by allow and handed back to record. The generation
// ties the outcome to the admission decision so a call that straddles a
// Reset or force transition cannot disturb the new state.
type permit struct {
	state State
	probe bool
	gen   uint64
}

// New creates a new Breaker.
func New(config Config) *Breaker {
	// Apply defaults
	if config.Name == "" {
		config.Name = "breaker"
	}
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}
	if config.Clock == nil {
		config.Clock = realClock{}
	}

	b := &Breaker{
		name:   config.Name,
		config: config,
		state:  StateClosed,
	}
	for _, l := range config.Listeners {
		b.listeners.add(l)
	}
	return b
}

// Name returns the breaker name.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current circuit state.
func (b *Breaker) State() State {
	b.mu.Lock()
	state := b.currentStateLocked()
	events := b.takeEventsLocked()
	b.mu.Unlock()

	b.listeners.notify(events)
	return state
}

// Counts returns the current consecutive failure count.
func (b *Breaker) Counts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Call runs op through the circuit breaker.
//
// If the circuit is open the call is rejected with an *OpenError and op is
// never invoked; test for this with IsOpen. Otherwise op's result is
// returned unchanged and its outcome is recorded exactly once, on every
// exit path including panic and cancellation.
func (b *Breaker) Call(ctx context.Context, op func(context.Context) error) error {
	p, err := b.allow()
	if err != nil {
		b.listeners.notifyCall(CallEvent{
			Breaker: b.name,
			State:   p.state,
			Outcome: OutcomeRejected,
			Err:     err,
		})
		return err
	}

	start := b.config.Clock.Now()

	recorded := false
	defer func() {
		if !recorded {
			// op panicked: release the permit as a failure before
			// the panic continues up the stack.
			b.record(p, errPanic, b.config.Clock.Now().Sub(start))
		}
	}()

	opErr := b.invoke(ctx, op)
	recorded = true
	b.record(p, opErr, b.config.Clock.Now().Sub(start))
	return opErr
}

// invoke runs op, applying the configured call timeout if any.
func (b *Breaker) invoke(ctx context.Context, op func(context.Context) error) error {
	if b.config.CallTimeout <= 0 {
		return op(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, b.config.CallTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return ErrCallTimeout
		}
		return ctx.Err()
	}
}

// allow decides whether a call may proceed. On success the returned permit
// must be handed back through record.
func (b *Breaker) allow() (permit, error) {
	b.mu.Lock()

	state := b.currentStateLocked()
	p := permit{state: state, gen: b.gen}
	var err error

	switch state {
	case StateOpen:
		err = b.openErrorLocked()
	case StateHalfOpen:
		if b.probing {
			err = b.openErrorLocked()
		} else {
			b.probing = true
			p.probe = true
		}
	}

	events := b.takeEventsLocked()
	b.mu.Unlock()

	b.listeners.notify(events)
	if err != nil {
		return p, err
	}
	return p, nil
}

// record applies a permitted call's outcome to the state machine.
func (b *Breaker) record(p permit, err error, duration time.Duration) {
	outcome := b.classify(err)

	b.mu.Lock()

	if p.gen == b.gen {
		if p.probe {
			b.probing = false
		}

		switch b.currentStateLocked() {
		case StateClosed:
			if outcome == OutcomeFailure {
				b.failures++
				if b.failures >= b.config.FailureThreshold {
					b.transitionLocked(StateOpen)
				}
			} else {
				b.failures = 0
			}

		case StateHalfOpen:
			// Only the probe's outcome settles the half-open state. A
			// call admitted while closed that finishes here is stale.
			if p.probe {
				if outcome == OutcomeFailure {
					b.transitionLocked(StateOpen)
				} else {
					b.transitionLocked(StateClosed)
				}
			}
		}
	}

	state := b.state
	events := b.takeEventsLocked()
	b.mu.Unlock()

	b.listeners.notify(events)
	b.listeners.notifyCall(CallEvent{
		Breaker:  b.name,
		State:    state,
		Outcome:  outcome,
		Err:      err,
		Duration: duration,
	})
}

// classify maps a call error to an outcome, shielding the breaker from a
// misbehaving predicate. A panicking predicate counts the error as a
// failure rather than corrupting state.
func (b *Breaker) classify(err error) (outcome Outcome) {
	if err == nil {
		return OutcomeSuccess
	}
	outcome = OutcomeFailure
	defer func() {
		_ = recover()
	}()
	if !b.config.IsFailure(err) {
		outcome = OutcomeIgnored
	}
	return outcome
}

// Reset resets the breaker to closed with zeroed counters.
func (b *Breaker) Reset() {
	b.setState(StateClosed)
}

// ForceOpen opens the circuit immediately, bypassing the failure counter.
// The circuit stays open for ResetTimeout as if it had tripped.
func (b *Breaker) ForceOpen() {
	b.setState(StateOpen)
}

// ForceClosed closes the circuit immediately, bypassing the reset window.
func (b *Breaker) ForceClosed() {
	b.setState(StateClosed)
}

// AddListener registers a listener for state changes and call outcomes.
func (b *Breaker) AddListener(l Listener) {
	b.listeners.add(l)
}

// RemoveListener unregisters a previously added listener.
func (b *Breaker) RemoveListener(l Listener) {
	b.listeners.remove(l)
}

// Metrics returns a snapshot of the breaker's current counters.
func (b *Breaker) Metrics() Metrics {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Metrics{
		State:    b.currentStateLocked(),
		Failures: b.failures,
		OpenedAt: b.openedAt,
	}
}

// Metrics contains breaker statistics.
type Metrics struct {
	State    State
	Failures int
	OpenedAt time.Time
}

func (b *Breaker) setState(to State) {
	b.mu.Lock()
	b.transitionLocked(to)
	events := b.takeEventsLocked()
	b.mu.Unlock()

	b.listeners.notify(events)
}

// currentStateLocked lazily moves an expired open circuit to half-open.
func (b *Breaker) currentStateLocked() State {
	if b.state == StateOpen && !b.config.Clock.Now().Before(b.openedAt.Add(b.config.ResetTimeout)) {
		b.transitionLocked(StateHalfOpen)
	}
	return b.state
}

// transitionLocked moves to the target state and queues the listener
// event. Counters and the probe slot are reset on every transition;
// stale permits are invalidated by bumping the generation.
func (b *Breaker) transitionLocked(to State) {
	from := b.state
	b.state = to
	b.failures = 0
	b.probing = false
	b.gen++

	if to == StateOpen {
		b.openedAt = b.config.Clock.Now()
	}

	if from != to {
		b.pending = append(b.pending, StateChange{
			Breaker: b.name,
			From:    from,
			To:      to,
			At:      b.config.Clock.Now(),
		})
	}
}

func (b *Breaker) openErrorLocked() error {
	now := b.config.Clock.Now()
	retry := b.openedAt.Add(b.config.ResetTimeout).Sub(now)
	if retry < 0 {
		retry = 0
	}
	return &OpenError{
		Name:       b.name,
		OpenedAt:   b.openedAt,
		RetryAfter: retry,
	}
}
