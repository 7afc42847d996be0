package client

import (
	"context"
	"errors"

	"github.com/gdamore/tcell/v2"

	"github.com/oshokin/aevum/internal/backend/terminal"
	"github.com/oshokin/aevum/internal/bridge"
	"github.com/oshokin/aevum/internal/config"
	domain "github.com/oshokin/aevum/internal/domain/alarm"
	"github.com/oshokin/aevum/internal/eventloop"
	"github.com/oshokin/aevum/internal/logger"
	"github.com/oshokin/aevum/internal/ui"
)

// ErrBridgeClosed is returned when the alarm store stream ends.
var ErrBridgeClosed = errors.New("alarm store connection closed")

// dependencies are the collaborators of run; tests replace them with fakes.
type dependencies struct {
	screen    tcell.Screen
	store     ui.AlarmStore
	subscribe bridge.Factory
	player    ui.Player
	// configPath is watched for changes when set.
	configPath string
	// logLevel pins the log level across settings reloads when set.
	logLevel string
}

// state is owned by the event loop goroutine.
type state struct {
	ctx    context.Context //nolint:containedctx // Logging context of the loop.
	window *ui.Window
	screen *terminal.Screen
	// err is returned by run once done is set.
	err  error
	done bool
}

// run drives the window until the user quits, ctx is done or the alarm
// store stream ends.
func run(ctx context.Context, settings *config.Config, deps dependencies) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := eventloop.New[state]()
	defer loop.Close()

	deps.screen.EnableMouse(tcell.MouseDragEvents)
	deps.screen.HideCursor()

	screen := terminal.NewScreen(deps.screen, func() {
		loop.Post(func(s *state) {
			s.window.Frame()
		})
	})
	defer screen.Close()

	mutator := ui.NewMutator(ctx, deps.store)
	defer mutator.Wait()

	window := ui.NewWindow(ctx, ui.WindowOptions{
		Surface: screen,
		Flusher: screen,
		Mutator: mutator,
		Player:  deps.player,
		Config:  settings,
	})
	defer window.Close()

	st := &state{
		ctx:    ctx,
		window: window,
		screen: screen,
	}

	events := bridge.Spawn(ctx, deps.subscribe)
	defer events.Close()

	eventloop.InsertChannel(loop, events, func(event eventloop.ChannelEvent[domain.Event], s *state) {
		s.handleAlarmEvent(event)
	})

	loop.InsertSource(func(ctx context.Context, post func(func(*state))) {
		screen.PollEvents(ctx, func(event terminal.Event) {
			post(func(s *state) {
				s.handleInput(event)
			})
		})
	})

	if deps.configPath != "" {
		watchConfig(ctx, loop, deps.configPath, deps.logLevel)
	}

	// Nothing was drawn yet, so the window starts stalled.
	loop.Post(func(s *state) {
		s.window.SetSize(s.screen.Size())
		s.window.Unstall()
	})

	err := loop.Run(ctx, st, func(s *state) bool { return s.done })

	switch {
	case err != nil && ctx.Err() != nil:
		logger.Info(ctx, "Alarm clock stopped")

		return nil
	case err != nil:
		return err //nolint:wrapcheck // Loop errors are context errors.
	default:
		return st.err
	}
}

// handleAlarmEvent applies one alarm store event.
func (s *state) handleAlarmEvent(event eventloop.ChannelEvent[domain.Event]) {
	if event.Closed {
		logger.Error(s.ctx, "Alarm store connection lost")

		s.err = ErrBridgeClosed
		s.done = true

		return
	}

	switch e := event.Msg.(type) {
	case domain.AlarmsChanged:
		s.window.SetAlarms(e.Alarms)
	case domain.Ring:
		logger.InfoKV(s.ctx, "Alarm ringing", "id", e.Alarm.ID)
		s.window.Ring(e.Alarm)
	}
}

// handleInput applies one terminal input event.
func (s *state) handleInput(event terminal.Event) {
	switch event.Kind {
	case terminal.EventTouchDown:
		s.window.TouchDown(event.Point)
	case terminal.EventTouchMotion:
		s.window.TouchMotion(event.Point)
	case terminal.EventTouchUp:
		s.window.TouchUp()
	case terminal.EventResize:
		s.window.SetSize(event.Size)
	case terminal.EventQuit:
		s.done = true
	}
}

// watchConfig reloads the settings file into the window whenever it changes.
func watchConfig(ctx context.Context, loop *eventloop.Loop[state], path, logLevel string) {
	watcher, err := config.NewWatcher(path)
	if err != nil {
		logger.WarnKV(ctx, "Settings will not be reloaded", "path", path, "error", err)

		return
	}

	loop.InsertSource(func(sourceCtx context.Context, post func(func(*state))) {
		watcher.Run(sourceCtx, func(cfg *config.Config) {
			post(func(s *state) {
				if level, err := logger.ResolveLevel(logLevel, cfg.LogLevel); err == nil {
					logger.SetLevel(level)
				}

				logger.Info(s.ctx, "Settings reloaded")
				s.window.UpdateConfig(cfg)
			})
		}, func(err error) {
			logger.WarnKV(ctx, "Failed to reload settings", "error", err)
		})
	})
}
