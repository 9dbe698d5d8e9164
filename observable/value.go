package observable

import (
	"context"
	"sync"
)

// Value holds the latest state and pushes changes to subscribers. Each subscriber
// owns a one-slot channel; a slow subscriber sees the most recent value, not every
// intermediate one.
type Value[T comparable] struct {
	mu      sync.Mutex
	current T
	subs    map[chan T]struct{}
}

func New[T comparable](initial T) *Value[T] {
	return &Value[T]{current: initial, subs: make(map[chan T]struct{})}
}

func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Set stores next and notifies subscribers when it differs from the current value.
func (v *Value[T]) Set(next T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if next == v.current {
		return
	}
	v.current = next
	for ch := range v.subs {
		offer(ch, next)
	}
}

// Subscribe returns a channel that receives the current value immediately and every
// later change. The channel is closed when ctx is done.
func (v *Value[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	v.mu.Lock()
	ch <- v.current
	v.subs[ch] = struct{}{}
	v.mu.Unlock()

	go func() {
		<-ctx.Done()
		v.mu.Lock()
		delete(v.subs, ch)
		close(ch)
		v.mu.Unlock()
	}()
	return ch
}

// offer replaces any undelivered value in ch with value. Callers hold v.mu.
func offer[T any](ch chan T, value T) {
	select {
	case ch <- value:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- value
}
