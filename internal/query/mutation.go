package query

import "context"

// Mutation declares what happens around one write: the keys to invalidate
// on success and the caller's success/error hooks. Invalidation is
// all-or-nothing — the whole set fires after a success, none of it after a
// failure.
type Mutation[T any] struct {
	OnSuccess   func(T)
	OnError     func(error)
	Invalidates []Key
}

// Mutate runs fn once. On success it invalidates the declared key set and
// then calls OnSuccess with the result; on failure it calls OnError and
// touches nothing. Optimistic rollback is the caller's job inside OnError;
// the store only guarantees eventual correctness through invalidation.
func Mutate[T any](ctx context.Context, s *Store, fn func(context.Context) (T, error), m Mutation[T]) (T, error) {
	out, err := fn(ctx)
	if err != nil {
		if m.OnError != nil {
			m.OnError(err)
		}
		var zero T
		return zero, err
	}
	s.Invalidate(ctx, m.Invalidates...)
	if m.OnSuccess != nil {
		m.OnSuccess(out)
	}
	return out, nil
}
