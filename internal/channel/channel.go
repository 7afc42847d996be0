package channel

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrClosed is returned by Recv once the sender closed and the queue is drained.
	ErrClosed = errors.New("channel closed")
	// ErrDisconnected is returned by Send once the receiver went away.
	ErrDisconnected = errors.New("channel receiver disconnected")
)

// queue is the state shared by both channel ends.
type queue[T any] struct {
	mu sync.Mutex
	// items holds messages not yet received, oldest first.
	items []T
	// closed is set when the sender closed the channel.
	closed bool
	// disconnected is set when the receiver closed the channel.
	disconnected bool
	// notify wakes the receiver after a send or close.
	notify chan struct{}
}

// Sender is the producing end of a channel.
type Sender[T any] struct {
	q *queue[T]
}

// Receiver is the consuming end of a channel.
type Receiver[T any] struct {
	q *queue[T]
}

// New creates a connected sender/receiver pair.
func New[T any]() (*Sender[T], *Receiver[T]) {
	q := &queue[T]{
		notify: make(chan struct{}, 1),
	}

	return &Sender[T]{q: q}, &Receiver[T]{q: q}
}

// Send enqueues msg without blocking.
func (s *Sender[T]) Send(msg T) error {
	s.q.mu.Lock()

	switch {
	case s.q.disconnected:
		s.q.mu.Unlock()
		return ErrDisconnected
	case s.q.closed:
		s.q.mu.Unlock()
		return ErrClosed
	}

	s.q.items = append(s.q.items, msg)
	s.q.mu.Unlock()

	s.q.wake()

	return nil
}

// Close marks the end of the stream. Messages already sent are still delivered.
func (s *Sender[T]) Close() {
	s.q.mu.Lock()
	s.q.closed = true
	s.q.mu.Unlock()

	s.q.wake()
}

// Recv blocks until a message is available, the channel is closed and
// drained (ErrClosed) or ctx is done.
func (r *Receiver[T]) Recv(ctx context.Context) (T, error) {
	for {
		if msg, ok, closed := r.pop(); ok {
			return msg, nil
		} else if closed {
			return msg, ErrClosed
		}

		select {
		case <-r.q.notify:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// TryRecv returns the oldest queued message without blocking.
func (r *Receiver[T]) TryRecv() (T, bool) {
	msg, ok, _ := r.pop()

	return msg, ok
}

// Len reports how many messages are queued.
func (r *Receiver[T]) Len() int {
	r.q.mu.Lock()
	defer r.q.mu.Unlock()

	return len(r.q.items)
}

// Close drops the receiving end; later sends fail with ErrDisconnected.
func (r *Receiver[T]) Close() {
	r.q.mu.Lock()
	defer r.q.mu.Unlock()

	r.q.disconnected = true
	r.q.items = nil
}

// pop removes the oldest message. closed reports a closed, drained queue.
func (r *Receiver[T]) pop() (msg T, ok, closed bool) {
	r.q.mu.Lock()
	defer r.q.mu.Unlock()

	if len(r.q.items) == 0 {
		return msg, false, r.q.closed
	}

	var zero T

	msg = r.q.items[0]
	r.q.items[0] = zero
	r.q.items = r.q.items[1:]

	if len(r.q.items) == 0 {
		r.q.items = nil
	}

	return msg, true, false
}

// wake signals the receiver without blocking; one pending signal is enough.
func (q *queue[T]) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
