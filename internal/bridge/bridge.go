package bridge

import (
	"context"
	"runtime"
	"slices"

	"github.com/oshokin/aevum/internal/channel"
	"github.com/oshokin/aevum/internal/domain/alarm"
	"github.com/oshokin/aevum/internal/logger"
)

// Subscriber is a live alarm store subscription.
type Subscriber interface {
	// Alarms returns the alarms known when the subscription was created.
	Alarms() []alarm.Alarm
	// Next blocks for the next event; false means the stream has ended.
	Next(ctx context.Context) (alarm.Event, bool)
	Close() error
}

// Factory creates the subscription on the worker thread.
type Factory func(ctx context.Context) (Subscriber, error)

// Spawn starts the worker and returns the receiving end of its event
// channel. The first event is AlarmsChanged with the initial snapshot,
// followed by every subscription event in order. The channel is closed when
// the subscription cannot be created or its stream ends.
func Spawn(ctx context.Context, factory Factory) *channel.Receiver[alarm.Event] {
	tx, rx := channel.New[alarm.Event]()

	go run(logger.WithName(ctx, "bridge"), factory, tx)

	return rx
}

func run(ctx context.Context, factory Factory, tx *channel.Sender[alarm.Event]) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	defer tx.Close()

	subscriber, err := factory(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Failed to subscribe to alarm store", "error", err)
		return
	}

	defer func() {
		if err := subscriber.Close(); err != nil {
			logger.WarnKV(ctx, "Failed to close alarm subscription", "error", err)
		}
	}()

	snapshot := alarm.AlarmsChanged{Alarms: slices.Clone(subscriber.Alarms())}
	if err := tx.Send(snapshot); err != nil {
		return
	}

	for {
		event, ok := subscriber.Next(ctx)
		if !ok {
			logger.Warn(ctx, "Alarm subscription ended")
			return
		}

		if err := tx.Send(event.Clone()); err != nil {
			// The receiver is gone; nobody is listening anymore.
			return
		}
	}
}
