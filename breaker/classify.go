package breaker

import (
	"context"
	"errors"
)

// Exclude builds a failure predicate that ignores the given errors.
// Matching uses errors.Is, so wrapped errors are excluded too. Everything
// else counts as a failure.
//
// Use it to keep caller bugs, such as validation errors, from tripping
// the circuit:
//
//	breaker.Config{
//	    IsFailure: breaker.Exclude(ErrInvalidInput, ErrNotFound),
//	}
func Exclude(targets ...error) func(error) bool {
	return func(err error) bool {
		for _, target := range targets {
			if errors.Is(err, target) {
				return false
			}
		}
		return err != nil
	}
}

// ExcludeFunc builds a failure predicate that ignores errors matched by
// ignore. Everything else counts as a failure.
func ExcludeFunc(ignore func(error) bool) func(error) bool {
	return func(err error) bool {
		if err == nil {
			return false
		}
		return !ignore(err)
	}
}

// IgnoreCancellation is a failure predicate that does not count caller
// cancellation against the dependency. Deadline overruns, including
// ErrCallTimeout, still count.
func IgnoreCancellation(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	return err != nil
}
