package breaker

import "context"

// Run executes fn through b and returns its result. This is a
// convenience wrapper for protected functions that return a value.
func Run[T any](ctx context.Context, b *Breaker, fn func(context.Context) (T, error)) (T, error) {
	var result T
	err := b.Call(ctx, func(ctx context.Context) error {
		var fnErr error
		result, fnErr = fn(ctx)
		return fnErr
	})
	return result, err
}

// Wrap returns a function that runs op through b on every invocation.
// Handy for guarding a client method once and passing the guarded form
// around.
func Wrap(b *Breaker, op func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		return b.Call(ctx, op)
	}
}
