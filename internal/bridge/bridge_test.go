package bridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/aevum/internal/channel"
	"github.com/oshokin/aevum/internal/domain/alarm"
)

// scriptedSubscriber replays a fixed list of events.
type scriptedSubscriber struct {
	alarms []alarm.Alarm
	events []alarm.Event
	closed chan struct{}
}

func (s *scriptedSubscriber) Alarms() []alarm.Alarm { return s.alarms }

func (s *scriptedSubscriber) Next(ctx context.Context) (alarm.Event, bool) {
	if len(s.events) == 0 {
		return nil, false
	}

	event := s.events[0]
	s.events = s.events[1:]

	return event, true
}

func (s *scriptedSubscriber) Close() error {
	close(s.closed)
	return nil
}

func recvAll(t *testing.T, rx *channel.Receiver[alarm.Event]) []alarm.Event {
	t.Helper()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	var events []alarm.Event

	for {
		event, err := rx.Recv(ctx)
		if errors.Is(err, channel.ErrClosed) {
			return events
		}

		require.NoError(t, err)

		events = append(events, event)
	}
}

// TestSpawn_ForwardsInOrder checks the snapshot comes first and order is preserved.
func TestSpawn_ForwardsInOrder(t *testing.T) {
	t.Parallel()

	a1 := alarm.Alarm{ID: "a1", UnixTime: 100}
	a2 := alarm.Alarm{ID: "a2", UnixTime: 200}

	sub := &scriptedSubscriber{
		alarms: []alarm.Alarm{a1},
		events: []alarm.Event{
			alarm.AlarmsChanged{Alarms: []alarm.Alarm{a1, a2}},
			alarm.Ring{Alarm: a1},
			alarm.AlarmsChanged{Alarms: []alarm.Alarm{a2}},
		},
		closed: make(chan struct{}),
	}

	rx := Spawn(t.Context(), func(context.Context) (Subscriber, error) { return sub, nil })

	require.Equal(t, []alarm.Event{
		alarm.AlarmsChanged{Alarms: []alarm.Alarm{a1}},
		alarm.AlarmsChanged{Alarms: []alarm.Alarm{a1, a2}},
		alarm.Ring{Alarm: a1},
		alarm.AlarmsChanged{Alarms: []alarm.Alarm{a2}},
	}, recvAll(t, rx))

	<-sub.closed
}

// TestSpawn_CopiesEvents ensures forwarded events share no memory with the subscriber.
func TestSpawn_CopiesEvents(t *testing.T) {
	t.Parallel()

	snapshot := []alarm.Alarm{{ID: "a1"}}
	changed := []alarm.Alarm{{ID: "a2"}}

	sub := &scriptedSubscriber{
		alarms: snapshot,
		events: []alarm.Event{alarm.AlarmsChanged{Alarms: changed}},
		closed: make(chan struct{}),
	}

	rx := Spawn(t.Context(), func(context.Context) (Subscriber, error) { return sub, nil })
	events := recvAll(t, rx)

	snapshot[0].ID = "mutated"
	changed[0].ID = "mutated"

	require.Equal(t, "a1", events[0].(alarm.AlarmsChanged).Alarms[0].ID)
	require.Equal(t, "a2", events[1].(alarm.AlarmsChanged).Alarms[0].ID)
}

// TestSpawn_FactoryFailureClosesChannel closes the channel without any event.
func TestSpawn_FactoryFailureClosesChannel(t *testing.T) {
	t.Parallel()

	rx := Spawn(t.Context(), func(context.Context) (Subscriber, error) {
		return nil, errors.New("store unavailable")
	})

	require.Empty(t, recvAll(t, rx))
}

// TestSpawn_ReceiverGoneStopsWorker closes the subscription once nobody listens.
func TestSpawn_ReceiverGoneStopsWorker(t *testing.T) {
	t.Parallel()

	sub := &endlessSubscriber{closed: make(chan struct{})}

	rx := Spawn(t.Context(), func(context.Context) (Subscriber, error) { return sub, nil })
	rx.Close()

	select {
	case <-sub.closed:
	case <-time.After(5 * time.Second):
		t.Fatal("worker kept running after the receiver closed")
	}
}

// endlessSubscriber produces ring events forever.
type endlessSubscriber struct {
	closed chan struct{}
}

func (s *endlessSubscriber) Alarms() []alarm.Alarm { return nil }

func (s *endlessSubscriber) Next(context.Context) (alarm.Event, bool) {
	time.Sleep(time.Millisecond)

	return alarm.Ring{Alarm: alarm.Alarm{ID: "a1"}}, true
}

func (s *endlessSubscriber) Close() error {
	close(s.closed)
	return nil
}
