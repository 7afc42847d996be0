package eventloop

import (
	"context"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/aevum/internal/channel"
)

// testState is a minimal presentation state.
type testState struct {
	seen       []string
	terminated bool
}

// TestDispatch_RunsQueuedInOrder posts from the outside and dispatches once.
func TestDispatch_RunsQueuedInOrder(t *testing.T) {
	t.Parallel()

	loop := New[testState]()
	defer loop.Close()

	for _, name := range []string{"a", "b", "c"} {
		loop.Post(func(s *testState) { s.seen = append(s.seen, name) })
	}

	var state testState
	require.NoError(t, loop.Dispatch(context.Background(), time.Second, &state))
	require.Equal(t, []string{"a", "b", "c"}, state.seen)
}

// TestDispatch_TimeoutIsNotAnError returns nil when nothing happened.
func TestDispatch_TimeoutIsNotAnError(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		loop := New[testState]()
		defer loop.Close()

		var state testState
		require.NoError(t, loop.Dispatch(context.Background(), 10*time.Millisecond, &state))
		require.Empty(t, state.seen)
	})
}

// TestDispatch_ContextCancelled surfaces the caller's cancellation.
func TestDispatch_ContextCancelled(t *testing.T) {
	t.Parallel()

	loop := New[testState]()
	defer loop.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var state testState
	require.ErrorIs(t, loop.Dispatch(ctx, time.Second, &state), context.Canceled)
}

// TestInsertChannel_OrderAndClosure checks producer order and that closing the
// channel terminates the loop within one dispatch cycle.
func TestInsertChannel_OrderAndClosure(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		loop := New[testState]()
		defer loop.Close()

		tx, rx := channel.New[string]()
		InsertChannel(loop, rx, func(event ChannelEvent[string], s *testState) {
			if event.Closed {
				s.terminated = true
				return
			}

			s.seen = append(s.seen, event.Msg)
		})

		require.NoError(t, tx.Send("alarms-changed"))
		require.NoError(t, tx.Send("ring"))

		// Let the forwarder queue both messages.
		synctest.Wait()

		var state testState
		require.NoError(t, loop.Dispatch(context.Background(), 0, &state))
		require.Equal(t, []string{"alarms-changed", "ring"}, state.seen)
		require.False(t, state.terminated)

		tx.Close()

		require.NoError(t, loop.Dispatch(context.Background(), 0, &state))
		require.True(t, state.terminated)
	})
}

// TestRun_StopsOnTermination runs until the state asks to stop.
func TestRun_StopsOnTermination(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		loop := New[testState]()
		defer loop.Close()

		loop.InsertTimer(time.Second, func(s *testState) { s.seen = append(s.seen, "tick") })
		loop.InsertTimer(2*time.Second, func(s *testState) { s.terminated = true })

		var state testState
		err := loop.Run(context.Background(), &state, func(s *testState) bool { return s.terminated })
		require.NoError(t, err)
		require.Equal(t, []string{"tick"}, state.seen)
	})
}
