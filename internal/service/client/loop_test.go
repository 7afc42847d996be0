package client

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/aevum/internal/bridge"
	"github.com/oshokin/aevum/internal/config"
	domain "github.com/oshokin/aevum/internal/domain/alarm"
	"github.com/oshokin/aevum/internal/ui"
)

const waitFor = 5 * time.Second

// feedSubscriber delivers events pushed by the test.
type feedSubscriber struct {
	alarms []domain.Alarm
	events chan domain.Event
}

func (s *feedSubscriber) Alarms() []domain.Alarm { return s.alarms }

func (s *feedSubscriber) Next(ctx context.Context) (domain.Event, bool) {
	select {
	case event, ok := <-s.events:
		return event, ok
	case <-ctx.Done():
		return nil, false
	}
}

func (s *feedSubscriber) Close() error { return nil }

// recordingStore records removed ids.
type recordingStore struct {
	mu      sync.Mutex
	removed []string
}

func (s *recordingStore) Add(context.Context, domain.Alarm) error { return nil }

func (s *recordingStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removed = append(s.removed, id)

	return nil
}

func (s *recordingStore) Removed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.removed...)
}

type silentSound struct{}

func (silentSound) Stop() {}

// harness runs the client loop against a simulated terminal.
type harness struct {
	sim        tcell.SimulationScreen
	subscriber *feedSubscriber
	store      *recordingStore
	plays      chan struct{}
	result     chan error
	cancel     context.CancelFunc
}

func startHarness(t *testing.T, alarms ...domain.Alarm) *harness {
	t.Helper()

	sim := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, sim.Init())
	t.Cleanup(sim.Fini)
	sim.SetSize(40, 30)

	ctx, cancel := context.WithCancel(t.Context())

	h := &harness{
		sim:        sim,
		subscriber: &feedSubscriber{alarms: alarms, events: make(chan domain.Event)},
		store:      &recordingStore{},
		plays:      make(chan struct{}, 1),
		result:     make(chan error, 1),
		cancel:     cancel,
	}

	deps := dependencies{
		screen: sim,
		store:  h.store,
		subscribe: func(context.Context) (bridge.Subscriber, error) {
			return h.subscriber, nil
		},
		player: ui.PlayerFunc(func(context.Context) (ui.Sound, error) {
			h.plays <- struct{}{}

			return silentSound{}, nil
		}),
	}

	go func() {
		h.result <- run(ctx, config.Default(), deps)
	}()

	t.Cleanup(cancel)

	return h
}

// text returns the visible screen contents.
func (h *harness) text() string {
	cells, width, _ := h.sim.GetContents()

	var b strings.Builder

	for i, cell := range cells {
		if i > 0 && i%width == 0 {
			b.WriteByte('\n')
		}

		if len(cell.Runes) == 0 {
			b.WriteByte(' ')
			continue
		}

		b.WriteString(string(cell.Runes))
	}

	return b.String()
}

func (h *harness) waitText(t *testing.T, want string) {
	t.Helper()

	require.Eventually(t, func() bool {
		return strings.Contains(h.text(), want)
	}, waitFor, 10*time.Millisecond, "screen never showed %q", want)
}

func (h *harness) wait(t *testing.T) error {
	t.Helper()

	select {
	case err := <-h.result:
		return err
	case <-time.After(waitFor):
		t.Fatal("run did not return")

		return nil
	}
}

func TestRun_ShowsAlarms(t *testing.T) {
	t.Parallel()

	wake := domain.New("a1", time.Date(2030, 1, 2, 7, 30, 0, 0, time.Local), domain.DefaultRingDuration)
	h := startHarness(t, wake)

	h.waitText(t, "07:30")

	later := domain.New("a2", time.Date(2030, 1, 2, 9, 45, 0, 0, time.Local), domain.DefaultRingDuration)
	h.subscriber.events <- domain.AlarmsChanged{Alarms: []domain.Alarm{wake, later}}

	h.waitText(t, "09:45")

	h.cancel()
	require.NoError(t, h.wait(t))
}

func TestRun_RingRemovesAndPlays(t *testing.T) {
	t.Parallel()

	wake := domain.New("a1", time.Date(2030, 1, 2, 7, 30, 0, 0, time.Local), domain.DefaultRingDuration)
	h := startHarness(t, wake)

	h.subscriber.events <- domain.Ring{Alarm: wake}

	select {
	case <-h.plays:
	case <-time.After(waitFor):
		t.Fatal("alarm sound was not started")
	}

	h.waitText(t, "Stop Alarm")

	require.Eventually(t, func() bool {
		return len(h.store.Removed()) == 1
	}, waitFor, 10*time.Millisecond)
	require.Equal(t, []string{"a1"}, h.store.Removed())

	h.cancel()
	require.NoError(t, h.wait(t))
}

func TestRun_StreamEndIsAnError(t *testing.T) {
	t.Parallel()

	h := startHarness(t)

	close(h.subscriber.events)

	require.ErrorIs(t, h.wait(t), ErrBridgeClosed)
}

func TestRun_QuitKey(t *testing.T) {
	t.Parallel()

	h := startHarness(t)
	h.waitText(t, "+")

	h.sim.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	require.NoError(t, h.wait(t))
}

func TestResolveLogFile(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/var/state")

	path, err := resolveLogFile("")
	require.NoError(t, err)
	require.Equal(t, "/var/state/aevum/aevum.log", path)

	path, err = resolveLogFile("custom.log")
	require.NoError(t, err)
	require.Equal(t, "custom.log", path)
}
