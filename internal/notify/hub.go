// Package notify fans state changes out to subscribers. Every subscriber
// gets a one-slot channel: a newer value replaces an unread older one, so a
// slow reader never blocks the publisher and always ends on the latest
// state.
package notify

import (
	"context"
	"sync"
)

// Hub is safe for concurrent use. The zero value is ready.
type Hub[T any] struct {
	mu     sync.Mutex
	next   int
	subs   map[int]chan T
	closed bool
}

// Subscribe registers a subscriber primed with initial. cancel closes the
// channel and may be called more than once.
func (h *Hub[T]) Subscribe(initial T) (<-chan T, func()) {
	ch := make(chan T, 1)
	ch <- initial

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	if h.subs == nil {
		h.subs = make(map[int]chan T)
	}
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() { h.remove(id) })
	}
}

// SubscribeContext is Subscribe bound to ctx: the channel closes when ctx
// ends.
func (h *Hub[T]) SubscribeContext(ctx context.Context, initial T) <-chan T {
	ch, cancel := h.Subscribe(initial)
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ch
}

func (h *Hub[T]) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Publish delivers v to every subscriber without blocking.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}

// Len reports the number of live subscribers.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close closes every subscriber channel. Later subscribers get a closed
// channel holding only their initial value.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
