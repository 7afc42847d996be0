package eventloop

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oshokin/aevum/internal/channel"
)

// Loop dispatches callbacks against a state value of type S.
type Loop[S any] struct {
	tx *channel.Sender[func(*S)]
	rx *channel.Receiver[func(*S)]

	// sourcesCtx is cancelled by Close to stop source goroutines.
	sourcesCtx context.Context
	cancel     context.CancelFunc
	sources    sync.WaitGroup
}

// New creates an empty loop.
func New[S any]() *Loop[S] {
	tx, rx := channel.New[func(*S)]()
	ctx, cancel := context.WithCancel(context.Background())

	return &Loop[S]{
		tx:         tx,
		rx:         rx,
		sourcesCtx: ctx,
		cancel:     cancel,
	}
}

// Post queues fn to run on the dispatching goroutine. It is safe to call from
// any goroutine and never blocks. Posting to a closed loop is a no-op.
func (l *Loop[S]) Post(fn func(*S)) {
	_ = l.tx.Send(fn)
}

// Dispatch waits up to timeout for an event (forever when timeout <= 0),
// runs it, then runs every event already queued without waiting again.
// A timeout without events is not an error.
func (l *Loop[S]) Dispatch(ctx context.Context, timeout time.Duration, state *S) error {
	waitCtx := ctx

	if timeout > 0 {
		var cancel context.CancelFunc

		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	fn, err := l.rx.Recv(waitCtx)

	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		return nil
	default:
		return err
	}

	fn(state)

	for {
		fn, ok := l.rx.TryRecv()
		if !ok {
			return nil
		}

		fn(state)
	}
}

// Run dispatches until stop reports true after a dispatch cycle or ctx is done.
func (l *Loop[S]) Run(ctx context.Context, state *S, stop func(*S) bool) error {
	for !stop(state) {
		if err := l.Dispatch(ctx, 0, state); err != nil {
			return err
		}
	}

	return nil
}

// InsertTimer runs fn on the loop after d.
func (l *Loop[S]) InsertTimer(d time.Duration, fn func(*S)) *time.Timer {
	return time.AfterFunc(d, func() {
		l.Post(fn)
	})
}

// InsertSource runs source on its own goroutine until Close. The source
// forwards its events with post.
func (l *Loop[S]) InsertSource(source func(ctx context.Context, post func(func(*S)))) {
	l.sources.Go(func() {
		source(l.sourcesCtx, l.Post)
	})
}

// Close stops all sources, waits for them and rejects further posts.
func (l *Loop[S]) Close() {
	l.cancel()
	l.sources.Wait()
	l.tx.Close()
}

// ChannelEvent is delivered for every message of an inserted channel and
// once more, with Closed set, when the channel's sender closes it.
type ChannelEvent[T any] struct {
	Msg    T
	Closed bool
}

// InsertChannel forwards every message of rx into the loop, in order.
func InsertChannel[S, T any](l *Loop[S], rx *channel.Receiver[T], handler func(ChannelEvent[T], *S)) {
	l.InsertSource(func(ctx context.Context, post func(func(*S))) {
		for {
			msg, err := rx.Recv(ctx)

			switch {
			case err == nil:
				post(func(state *S) {
					handler(ChannelEvent[T]{Msg: msg}, state)
				})
			case errors.Is(err, channel.ErrClosed):
				post(func(state *S) {
					handler(ChannelEvent[T]{Closed: true}, state)
				})

				return
			default:
				return
			}
		}
	})
}
