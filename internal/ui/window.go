package ui

import (
	"context"
	"time"

	"github.com/oshokin/aevum/internal/config"
	"github.com/oshokin/aevum/internal/domain/alarm"
	"github.com/oshokin/aevum/internal/logger"
)

// Sound is a playing alarm sound.
type Sound interface {
	Stop()
}

// Player starts the alarm sound.
type Player interface {
	Play(ctx context.Context) (Sound, error)
}

// PlayerFunc adapts a function to Player.
type PlayerFunc func(ctx context.Context) (Sound, error)

// Play calls f.
//
//nolint:ireturn // Sound is implemented by the audio backend.
func (f PlayerFunc) Play(ctx context.Context) (Sound, error) {
	return f(ctx)
}

// View identifies the active window content.
type View int

// Window views.
const (
	ViewListAlarms View = iota
	ViewCreateAlarm
	ViewRingAlarm
)

// String returns the view name for logs.
func (v View) String() string {
	switch v {
	case ViewListAlarms:
		return "list"
	case ViewCreateAlarm:
		return "create"
	case ViewRingAlarm:
		return "ring"
	default:
		return "unknown"
	}
}

// view is the behaviour shared by all window contents.
type view interface {
	Draw(size Size, scale float64, canvas Canvas, rc *RenderConfig)
	Dirty() bool
	TouchDown(logical Point)
	TouchMotion(rc *RenderConfig, logical Point)
	TouchUp(rc *RenderConfig) TouchAction
}

// defaultSize is used until the compositor reports a size.
var defaultSize = Size{Width: 40, Height: 30} //nolint:gochecknoglobals // Immutable fallback.

// WindowOptions are the collaborators of a Window.
type WindowOptions struct {
	Surface Surface
	Flusher Flusher
	Mutator *Mutator
	Player  Player
	Config  *config.Config
	// Now is the wall clock used by the create view; defaults to time.Now.
	Now func() time.Time
}

// Window owns the views and schedules redraws against the compositor's
// frame callbacks. All methods must be called from the event loop goroutine.
//
// A Draw that finds nothing dirty stalls the window: no frame is requested
// and nothing renders until Unstall is called after the next state change.
type Window struct {
	ctx context.Context //nolint:containedctx // Logging and audio playback context.

	surface Surface
	flusher Flusher
	mutator *Mutator
	player  Player

	listAlarms  *ListAlarms
	createAlarm *CreateAlarm
	ringAlarm   *RingAlarm
	view        View
	sound       Sound

	renderConfig RenderConfig

	initialDrawDone bool
	stalled         bool
	dirty           bool
	size            Size
	scale           float64
}

// NewWindow creates a stalled, dirty window showing the alarm list.
func NewWindow(ctx context.Context, opts WindowOptions) *Window {
	return &Window{
		ctx:          ctx,
		surface:      opts.Surface,
		flusher:      opts.Flusher,
		mutator:      opts.Mutator,
		player:       opts.Player,
		listAlarms:   NewListAlarms(opts.Mutator),
		createAlarm:  NewCreateAlarm(opts.Mutator, opts.Now),
		ringAlarm:    NewRingAlarm(),
		view:         ViewListAlarms,
		renderConfig: NewRenderConfig(opts.Config),
		stalled:      true,
		dirty:        true,
		size:         defaultSize,
		scale:        1,
	}
}

// View returns the active view.
func (w *Window) View() View {
	return w.view
}

// Stalled reports whether the window waits for an Unstall.
func (w *Window) Stalled() bool {
	return w.stalled
}

// InitialDrawDone reports whether at least one frame was rendered.
func (w *Window) InitialDrawDone() bool {
	return w.initialDrawDone
}

// Alarms returns the alarms shown by the list view.
func (w *Window) Alarms() []alarm.Alarm {
	return w.listAlarms.Alarms()
}

// RingingAlarm returns the alarm of the ringing view.
func (w *Window) RingingAlarm() alarm.Alarm {
	return w.ringAlarm.Alarm()
}

// Draw renders a frame if anything is dirty and requests the next frame
// callback; otherwise the window stalls.
func (w *Window) Draw() {
	if !w.Dirty() {
		w.stalled = true
		return
	}

	w.initialDrawDone = true
	w.dirty = false

	w.surface.Damage(int(w.size.Width), int(w.size.Height))

	size := w.size.Scale(w.scale)
	active := w.active()

	w.surface.Render(size, func(canvas Canvas) {
		active.Draw(size, w.scale, canvas, &w.renderConfig)
	})

	w.surface.RequestFrame()
	w.surface.Commit()

	w.stalled = false
}

// Unstall redraws immediately when no frame callback is pending.
func (w *Window) Unstall() {
	if !w.stalled {
		return
	}

	w.stalled = false

	w.Draw()

	if err := w.flusher.Flush(); err != nil {
		logger.WarnKV(w.ctx, "Failed to flush display connection", "error", err)
	}
}

// Frame handles the compositor's frame-completion callback.
func (w *Window) Frame() {
	w.Draw()
}

// MarkDirty forces a full redraw.
func (w *Window) MarkDirty() {
	w.dirty = true
	w.Unstall()
}

// Dirty reports whether the next Draw renders.
func (w *Window) Dirty() bool {
	return w.dirty || w.active().Dirty()
}

// SetAlarms replaces the alarm list.
func (w *Window) SetAlarms(alarms []alarm.Alarm) {
	w.listAlarms.SetAlarms(alarms)
	w.Unstall()
}

// Ring removes the alarm from the store, starts the alarm sound and
// switches to the ringing view. The view is shown even without sound.
func (w *Window) Ring(a alarm.Alarm) {
	// Remove right away so other clients do not ring it as well.
	w.mutator.Remove(a.ID)

	w.stopSound()

	sound, err := w.player.Play(w.ctx)
	if err != nil {
		logger.ErrorKV(w.ctx, "Failed to play alarm", "id", a.ID, "error", err)
	} else {
		w.sound = sound
	}

	w.ringAlarm.SetAlarm(a)
	w.switchView(ViewRingAlarm)

	w.Unstall()
}

// SetSize updates the logical window size.
func (w *Window) SetSize(size Size) {
	if w.size == size {
		return
	}

	w.size = size
	w.dirty = true

	w.Unstall()
}

// SetScale updates the window's scale factor.
func (w *Window) SetScale(scale float64) {
	if w.scale == scale {
		return
	}

	w.scale = scale
	w.dirty = true

	w.Unstall()
}

// UpdateConfig applies a reloaded configuration.
func (w *Window) UpdateConfig(cfg *config.Config) {
	if w.renderConfig.Update(cfg) {
		w.dirty = true
		w.Unstall()
	}
}

// TouchDown handles a touch press at a logical point.
func (w *Window) TouchDown(point Point) {
	w.active().TouchDown(point)
	w.Unstall()
}

// TouchMotion handles touch movement.
func (w *Window) TouchMotion(point Point) {
	w.active().TouchMotion(&w.renderConfig, point)
	w.Unstall()
}

// TouchUp handles a touch release.
func (w *Window) TouchUp() {
	switch w.active().TouchUp(&w.renderConfig) {
	case TouchActionListAlarms:
		w.switchView(ViewListAlarms)
	case TouchActionCreateAlarm:
		w.createAlarm.Reset()
		w.switchView(ViewCreateAlarm)
	case TouchActionNone:
	}

	w.Unstall()
}

// Close stops any playing alarm sound.
func (w *Window) Close() {
	w.stopSound()
}

func (w *Window) switchView(v View) {
	// Leaving the ringing view silences the alarm.
	if w.view == ViewRingAlarm && v != ViewRingAlarm {
		w.stopSound()
	}

	w.view = v
	w.dirty = true

	logger.DebugKV(w.ctx, "Switched view", "view", v.String())
}

func (w *Window) stopSound() {
	if w.sound == nil {
		return
	}

	w.sound.Stop()
	w.sound = nil
}

//nolint:ireturn // Views are internal.
func (w *Window) active() view {
	switch w.view {
	case ViewCreateAlarm:
		return w.createAlarm
	case ViewRingAlarm:
		return w.ringAlarm
	case ViewListAlarms:
		return w.listAlarms
	default:
		return w.listAlarms
	}
}
