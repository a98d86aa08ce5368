package breaker

import (
	"context"
	"fmt"
	"net/http"
)

// Transport is an http.RoundTripper that guards outbound requests with a
// circuit breaker. Rejected requests fail with *OpenError before any
// connection is made.
//
// Usage:
//
//	client := &http.Client{
//	    Transport: breaker.NewTransport(b, http.DefaultTransport),
//	}
type Transport struct {
	breaker *Breaker
	next    http.RoundTripper

	// FailOnServerError counts HTTP 5xx responses as failures even
	// though the round trip itself succeeded.
	FailOnServerError bool
}

// serverError marks a 5xx response counted as a breaker failure. The
// response is still returned to the caller.
type serverError struct {
	status int
}

func (e *serverError) Error() string {
	return fmt.Sprintf("breaker: upstream returned %d", e.status)
}

// NewTransport creates a Transport guarding next with b. A nil next
// defaults to http.DefaultTransport.
func NewTransport(b *Breaker, next http.RoundTripper) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Transport{breaker: b, next: next}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	err := t.breaker.Call(req.Context(), func(ctx context.Context) error {
		var rtErr error
		resp, rtErr = t.next.RoundTrip(req.WithContext(ctx))
		if rtErr != nil {
			return rtErr
		}
		if t.FailOnServerError && resp.StatusCode >= http.StatusInternalServerError {
			return &serverError{status: resp.StatusCode}
		}
		return nil
	})
	if err != nil {
		// A 5xx counted against the breaker is still a valid response
		// for the caller.
		if _, ok := err.(*serverError); ok {
			return resp, nil
		}
		return nil, err
	}
	return resp, nil
}
