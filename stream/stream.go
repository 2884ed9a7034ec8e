// Package stream is the push-stream runtime generated adapters return.
//
// A Stream is cold: nothing happens until Subscribe, and every subscription
// runs its own producer. For event adapters that means each subscription
// registers its own handler with the event source and unregisters it
// exactly once when the subscription ends, whichever way it ends:
//
//	sub := ext.OnPressedAsStream(ctx, button).Subscribe(nil, func(code int) {
//	    fmt.Println("pressed", code)
//	})
//	defer sub.Cancel()
//
// Streams do not buffer, replay or share values between subscriptions.
package stream

import (
	"context"
	"iter"
	"sync"
	"sync/atomic"
)

// Unit is the element of streams whose events carry no payload.
type Unit struct{}

// Producer starts delivering values to emit and returns the function that
// stops it. It is called once per subscription.
type Producer[T any] func(emit func(T)) (stop func())

// Stream is a lazily subscribed, cancellable push-stream of T.
type Stream[T any] struct {
	ctx     context.Context
	produce Producer[T]
}

// New creates a stream bound to ctx: when ctx ends, every subscription
// of the stream ends. A nil ctx never ends.
func New[T any](ctx context.Context, produce Producer[T]) *Stream[T] {
	return &Stream[T]{ctx: orBackground(ctx), produce: produce}
}

// Subscription is one running subscription.
type Subscription struct {
	once     sync.Once
	done     chan struct{}
	stop     func()
	canceled atomic.Bool
}

// Cancel ends the subscription. It is safe to call more than once and from
// any goroutine; the producer is stopped exactly once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.canceled.Store(true)
		if s.stop != nil {
			s.stop()
		}
		close(s.done)
	})
}

// Done is closed once the subscription has ended.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Active reports whether the subscription still delivers values.
func (s *Subscription) Active() bool {
	return !s.canceled.Load()
}

// Subscribe starts a subscription delivering every value to onNext. It ends
// on Cancel, when ctx ends, or when the stream's own context ends. A nil ctx
// never ends. onNext is not called once Cancel has returned.
func (s *Stream[T]) Subscribe(ctx context.Context, onNext func(T)) *Subscription {
	ctx = orBackground(ctx)
	sub := &Subscription{done: make(chan struct{})}
	if ctx.Err() != nil || s.ctx.Err() != nil {
		sub.Cancel()
		return sub
	}

	sub.stop = s.produce(func(v T) {
		if sub.Active() {
			onNext(v)
		}
	})

	if ctx.Done() != nil || s.ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
			case <-s.ctx.Done():
			case <-sub.done:
			}
			sub.Cancel()
		}()
	}
	return sub
}

// Chan subscribes and delivers values on a channel with the given buffer
// size. The channel is closed when ctx ends. A producer blocked on a full
// channel is released when the subscription ends.
func (s *Stream[T]) Chan(ctx context.Context, buffer int) <-chan T {
	ch := make(chan T, buffer)
	quit := make(chan struct{})
	var (
		mu     sync.Mutex
		closed bool
	)
	sub := s.Subscribe(ctx, func(v T) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- v:
		case <-quit:
		}
	})

	go func() {
		<-sub.Done()
		close(quit)
		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
	}()
	return ch
}

// All returns an iterator over the stream's values. Each range loop runs
// its own subscription, which ends when the loop exits or ctx ends.
func (s *Stream[T]) All(ctx context.Context) iter.Seq[T] {
	return func(yield func(T) bool) {
		ctx, cancel := context.WithCancel(orBackground(ctx))
		defer cancel()
		for v := range s.Chan(ctx, 0) {
			if !yield(v) {
				return
			}
		}
	}
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
