package breaker

import "time"

// Clock supplies time to the breaker. Inject a fake in tests to step
// through the reset window without sleeping.
type Clock interface {
	Now() time.Time
}

// realClock is the default Clock backed by time.Now.
type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}
