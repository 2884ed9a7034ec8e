package stream

import (
	"context"
	"reflect"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pressable is an event source with an Add/Remove accessor pair.
type pressable struct {
	mu       sync.Mutex
	handlers []func(int)
	added    int
	removed  int
}

func (p *pressable) AddPressed(h func(int)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, h)
	p.added++
}

func (p *pressable) RemovePressed(h func(int)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ptr := reflect.ValueOf(h).Pointer()
	for i, registered := range p.handlers {
		if reflect.ValueOf(registered).Pointer() == ptr {
			p.handlers = append(p.handlers[:i], p.handlers[i+1:]...)
			break
		}
	}
	p.removed++
}

func (p *pressable) Press(code int) {
	p.mu.Lock()
	handlers := slices.Clone(p.handlers)
	p.mu.Unlock()
	for _, h := range handlers {
		h(code)
	}
}

func (p *pressable) counts() (added, removed, live int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.added, p.removed, len(p.handlers)
}

func pressedStream(ctx context.Context, p *pressable) *Stream[int] {
	return FromEvent[func(int), int](ctx,
		func(h func(int)) func(int) { return func(code int) { h(code) } },
		func(h func(int)) { p.AddPressed(h) },
		func(h func(int)) { p.RemovePressed(h) },
	)
}

type ticker struct {
	mu       sync.Mutex
	handlers []func()
	removed  int
}

type tick func()

func (t *ticker) AddTick(h tick) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers = append(t.handlers, h)
}

func (t *ticker) RemoveTick(h tick) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers = nil
	t.removed++
}

func (t *ticker) Tick() {
	t.mu.Lock()
	handlers := slices.Clone(t.handlers)
	t.mu.Unlock()
	for _, h := range handlers {
		h()
	}
}

func TestStream_IsLazy(t *testing.T) {
	p := &pressable{}
	s := pressedStream(nil, p)

	added, _, _ := p.counts()
	assert.Equal(t, 0, added, "creating a stream must not subscribe")

	sub := s.Subscribe(nil, func(int) {})
	defer sub.Cancel()
	added, _, _ = p.counts()
	assert.Equal(t, 1, added)
}

func TestSubscription_CancelRemovesExactlyOnce(t *testing.T) {
	p := &pressable{}
	var got []int
	sub := pressedStream(nil, p).Subscribe(nil, func(code int) { got = append(got, code) })

	p.Press(1)
	p.Press(2)
	sub.Cancel()
	sub.Cancel()
	p.Press(3)

	added, removed, live := p.counts()
	assert.Equal(t, []int{1, 2}, got)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 0, live)
	assert.False(t, sub.Active())

	select {
	case <-sub.Done():
	default:
		t.Fatal("Done not closed after Cancel")
	}
}

func TestSubscription_ContextCancellation(t *testing.T) {
	p := &pressable{}
	ctx, cancel := context.WithCancel(context.Background())
	sub := pressedStream(nil, p).Subscribe(ctx, func(int) {})

	cancel()
	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("subscription did not end with its context")
	}
	_, removed, _ := p.counts()
	assert.Equal(t, 1, removed)
}

func TestStream_ContextEndsAllSubscriptions(t *testing.T) {
	p := &pressable{}
	ctx, cancel := context.WithCancel(context.Background())
	s := pressedStream(ctx, p)
	first := s.Subscribe(nil, func(int) {})
	second := s.Subscribe(nil, func(int) {})

	cancel()
	for _, sub := range []*Subscription{first, second} {
		select {
		case <-sub.Done():
		case <-time.After(time.Second):
			t.Fatal("subscription did not end with the stream context")
		}
	}
	added, removed, live := p.counts()
	assert.Equal(t, 2, added)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 0, live)
}

func TestSubscribe_CanceledContextNeverSubscribes(t *testing.T) {
	p := &pressable{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sub := pressedStream(nil, p).Subscribe(ctx, func(int) {})
	added, removed, _ := p.counts()
	assert.Equal(t, 0, added)
	assert.Equal(t, 0, removed)
	assert.False(t, sub.Active())
}

func TestStream_SubscriptionsAreIndependent(t *testing.T) {
	p := &pressable{}
	s := pressedStream(nil, p)

	var a, b []int
	subA := s.Subscribe(nil, func(code int) { a = append(a, code) })
	subB := s.Subscribe(nil, func(code int) { b = append(b, code) })

	p.Press(7)
	subA.Cancel()
	p.Press(8)
	subB.Cancel()

	assert.Equal(t, []int{7}, a)
	assert.Equal(t, []int{7, 8}, b)
	added, removed, _ := p.counts()
	assert.Equal(t, 2, added)
	assert.Equal(t, 2, removed)
}

func TestFromAction_EmitsUnit(t *testing.T) {
	tk := &ticker{}
	s := FromAction[tick](nil,
		func(h tick) { tk.AddTick(h) },
		func(h tick) { tk.RemoveTick(h) },
	)

	count := 0
	sub := s.Subscribe(nil, func(u Unit) {
		assert.Equal(t, Unit{}, u)
		count++
	})
	tk.Tick()
	tk.Tick()
	sub.Cancel()
	tk.Tick()

	assert.Equal(t, 2, count)
	assert.Equal(t, 1, tk.removed)
}

func TestStream_Chan(t *testing.T) {
	p := &pressable{}
	ctx, cancel := context.WithCancel(context.Background())
	ch := pressedStream(nil, p).Chan(ctx, 4)

	p.Press(1)
	p.Press(2)
	assert.Equal(t, 1, <-ch)
	assert.Equal(t, 2, <-ch)

	cancel()
	require.Eventually(t, func() bool {
		_, ok := <-ch
		return !ok
	}, time.Second, 10*time.Millisecond)
	_, removed, _ := p.counts()
	assert.Equal(t, 1, removed)
}

func TestStream_All(t *testing.T) {
	p := &pressable{}
	go func() {
		for {
			if added, _, _ := p.counts(); added > 0 {
				break
			}
			time.Sleep(time.Millisecond)
		}
		for code := 1; code <= 5; code++ {
			p.Press(code)
		}
	}()

	var got []int
	for code := range pressedStream(nil, p).All(t.Context()) {
		got = append(got, code)
		if len(got) == 3 {
			break
		}
	}

	assert.Equal(t, []int{1, 2, 3}, got)
	require.Eventually(t, func() bool {
		_, removed, _ := p.counts()
		return removed == 1
	}, time.Second, 10*time.Millisecond)
}
