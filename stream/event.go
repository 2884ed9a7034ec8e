package stream

import (
	"context"
)

// FromEvent adapts an event to a stream. On every subscription convert
// builds a callback of type H that emits into the subscription, add
// registers it with the event source, and remove unregisters the same value
// once the subscription ends.
func FromEvent[H any, T any](ctx context.Context, convert func(emit func(T)) H, add func(H), remove func(H)) *Stream[T] {
	return New(ctx, func(emit func(T)) func() {
		h := convert(emit)
		add(h)
		return func() { remove(h) }
	})
}

// FromAction adapts an event whose callback takes no arguments. Every
// invocation emits Unit.
func FromAction[H ~func()](ctx context.Context, add func(H), remove func(H)) *Stream[Unit] {
	return FromEvent(ctx, func(emit func(Unit)) H {
		return H(func() { emit(Unit{}) })
	}, add, remove)
}
