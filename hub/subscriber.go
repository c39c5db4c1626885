package hub

import "context"

// Subscriber receives published values. Implementations should be comparable
// (pointer receivers are the norm); the hub uses the registered value itself
// as the registration identity.
type Subscriber[T any] interface {
	Receive(ctx context.Context, value T) error
}

// Func adapts a function to the Subscriber interface. Every call allocates a
// distinct subscriber, so the same closure wrapped twice yields two
// independent registrations.
func Func[T any](fn func(ctx context.Context, value T) error) Subscriber[T] {
	return &funcSubscriber[T]{fn: fn}
}

type funcSubscriber[T any] struct {
	fn func(context.Context, T) error
}

func (s *funcSubscriber[T]) Receive(ctx context.Context, value T) error {
	return s.fn(ctx, value)
}

// Registration carries optional per-subscriber delivery settings.
type Registration[T any] struct {
	// Priority orders delivery: higher priorities receive values first.
	// Subscribers sharing a priority keep their registration order.
	Priority int
	// Filter skips delivery when it returns false for a value. A nil filter
	// accepts everything.
	Filter func(T) bool
}
