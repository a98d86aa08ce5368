package breaker

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestOpenError_Message(t *testing.T) {
	err := &OpenError{
		Name:       "billing",
		OpenedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		RetryAfter: 5 * time.Second,
	}

	want := `breaker: circuit "billing" open, retry after 5s`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestOpenError_MatchesSentinel(t *testing.T) {
	err := &OpenError{Name: "billing"}

	if !errors.Is(err, ErrOpen) {
		t.Error("errors.Is(err, ErrOpen) = false, want true")
	}
	if !IsOpen(err) {
		t.Error("IsOpen(err) = false, want true")
	}
	if !IsOpen(fmt.Errorf("call: %w", err)) {
		t.Error("IsOpen(wrapped) = false, want true")
	}
}

func TestIsOpen_OtherErrors(t *testing.T) {
	if IsOpen(nil) {
		t.Error("IsOpen(nil) = true, want false")
	}
	if IsOpen(errors.New("down")) {
		t.Error("IsOpen(other) = true, want false")
	}
	if IsOpen(ErrCallTimeout) {
		t.Error("IsOpen(ErrCallTimeout) = true, want false")
	}
}
