package eventbus

import "sync"

// DefaultBuffer is the channel capacity of each subscriber.
const DefaultBuffer = 8

// Bus is a type-safe publish/subscribe bus using fan-out channels.
type Bus[T any] struct {
	mu      sync.RWMutex
	subs    []chan T
	buffer  int
	dropped uint64
	closed  bool
}

// New creates a Bus whose subscribers buffer DefaultBuffer events.
func New[T any]() *Bus[T] { return NewBuffered[T](DefaultBuffer) }

// NewBuffered creates a Bus with the given subscriber buffer size.
func NewBuffered[T any](buffer int) *Bus[T] {
	if buffer < 0 {
		buffer = 0
	}
	return &Bus[T]{buffer: buffer}
}

// Publish sends the event to all subscribers. Delivery is non-blocking: a
// subscriber with a full buffer misses the event.
func (b *Bus[T]) Publish(e T) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	var missed uint64
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			missed++
		}
	}
	b.mu.RUnlock()
	if missed > 0 {
		b.mu.Lock()
		b.dropped += missed
		b.mu.Unlock()
	}
}

// Dropped returns the number of deliveries missed because of full buffers.
func (b *Bus[T]) Dropped() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}

// Subscribe registers a subscriber and returns its channel.
func (b *Bus[T]) Subscribe() <-chan T {
	ch := make(chan T, b.buffer)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs = append(b.subs, ch)
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus[T]) Unsubscribe(sub <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			if !b.closed {
				close(ch)
			}
			return
		}
	}
}

// Close closes the bus and all subscriber channels.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
