package query

import "sync"

// Optimistic is the two-phase local state a view flips before its mutation
// resolves: Apply records a tentative value rendered immediately, then the
// mutation's outcome either Confirms it or Reverts to the last committed
// state. It is an explicit state change, not a transaction — pair it with
// Mutate's OnError to get the documented flip-then-rollback behavior.
type Optimistic[T any] struct {
	mu        sync.Mutex
	committed T
	tentative *T
}

func NewOptimistic[T any](v T) *Optimistic[T] {
	return &Optimistic[T]{committed: v}
}

// Current returns the tentative value if one is pending, otherwise the
// committed one. This is what a view renders.
func (o *Optimistic[T]) Current() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.tentative != nil {
		return *o.tentative
	}
	return o.committed
}

// Apply records a tentative value.
func (o *Optimistic[T]) Apply(v T) {
	o.mu.Lock()
	o.tentative = &v
	o.mu.Unlock()
}

// Confirm commits v (normally the server's authoritative response) and
// clears any tentative state.
func (o *Optimistic[T]) Confirm(v T) {
	o.mu.Lock()
	o.committed = v
	o.tentative = nil
	o.mu.Unlock()
}

// Revert drops the tentative value and returns the committed state.
func (o *Optimistic[T]) Revert() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tentative = nil
	return o.committed
}
