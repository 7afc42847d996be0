package terminal

import (
	"context"

	"github.com/gdamore/tcell/v2"

	"github.com/oshokin/aevum/internal/ui"
)

// EventKind identifies an input event.
type EventKind int

// Input event kinds.
const (
	EventTouchDown EventKind = iota
	EventTouchMotion
	EventTouchUp
	EventResize
	EventQuit
)

// Event is a terminal input event in layout units.
type Event struct {
	Kind  EventKind
	Point ui.Point
	Size  ui.Size
}

// touchTracker turns mouse button state into touch transitions.
type touchTracker struct {
	down bool
	last ui.Point
}

// translate maps one tcell event. ok is false for events without meaning
// to the window.
func (t *touchTracker) translate(ev tcell.Event) (Event, bool) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		width, height := ev.Size()

		return Event{Kind: EventResize, Size: ui.Size{Width: float64(width), Height: float64(height)}}, true
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			return Event{Kind: EventQuit}, true
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return Event{Kind: EventQuit}, true
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		point := ui.Point{X: float64(x), Y: float64(y)}
		pressed := ev.Buttons()&tcell.Button1 != 0

		switch {
		case pressed && !t.down:
			t.down, t.last = true, point

			return Event{Kind: EventTouchDown, Point: point}, true
		case pressed && point != t.last:
			t.last = point

			return Event{Kind: EventTouchMotion, Point: point}, true
		case !pressed && t.down:
			t.down = false

			return Event{Kind: EventTouchUp, Point: point}, true
		}
	}

	return Event{}, false
}

// PollEvents reads terminal input until ctx is done, emitting every
// meaningful event. It runs on its own goroutine.
func (s *Screen) PollEvents(ctx context.Context, emit func(Event)) {
	stop := context.AfterFunc(ctx, func() {
		_ = s.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	var tracker touchTracker

	for {
		ev := s.screen.PollEvent()
		if ev == nil || ctx.Err() != nil {
			return
		}

		if event, ok := tracker.translate(ev); ok {
			emit(event)
		}
	}
}
