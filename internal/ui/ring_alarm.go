package ui

import (
	"time"

	"github.com/oshokin/aevum/internal/domain/alarm"
)

// stopLabel is the caption of the button silencing a ringing alarm.
const stopLabel = "Stop Alarm"

// RingAlarm is the view shown while an alarm is ringing.
type RingAlarm struct {
	alarm alarm.Alarm

	touch struct {
		stop  bool
		point Point
	}

	size  Size
	scale float64

	dirty bool
}

// NewRingAlarm creates the ringing view.
func NewRingAlarm() *RingAlarm {
	return &RingAlarm{scale: 1, dirty: true}
}

// SetAlarm selects the alarm shown by the view.
func (r *RingAlarm) SetAlarm(a alarm.Alarm) {
	r.alarm = a
	r.dirty = true
}

// Alarm returns the ringing alarm.
func (r *RingAlarm) Alarm() alarm.Alarm {
	return r.alarm
}

// Draw renders the view into canvas.
func (r *RingAlarm) Draw(size Size, scale float64, canvas Canvas, rc *RenderConfig) {
	r.dirty = false

	r.size = size
	r.scale = scale

	canvas.Clear(rc.Background)

	canvas.Text(NewRect(0, 0, size.Width, size.Height),
		r.alarm.Time().In(time.Local).Format("15:04"),
		TextStyle{Color: rc.Text, Align: AlignCenter, Heading: true})

	stop := fullWidthButton(size, scale)
	canvas.FillRect(stop, rc.Button)
	canvas.Text(stop, stopLabel, TextStyle{Color: rc.Text, Align: AlignCenter})
}

// Dirty reports whether the view needs another frame.
func (r *RingAlarm) Dirty() bool {
	return r.dirty
}

// TouchDown starts a touch sequence at a logical point.
func (r *RingAlarm) TouchDown(logical Point) {
	r.touch.point = logical.Scale(r.scale)
	r.touch.stop = fullWidthButton(r.size, r.scale).Contains(r.touch.point)
}

// TouchMotion tracks the touch position.
func (r *RingAlarm) TouchMotion(_ *RenderConfig, logical Point) {
	r.touch.point = logical.Scale(r.scale)
}

// TouchUp returns to the list when the stop button was tapped.
func (r *RingAlarm) TouchUp(*RenderConfig) TouchAction {
	stop := r.touch.stop
	r.touch.stop = false

	if stop && fullWidthButton(r.size, r.scale).Contains(r.touch.point) {
		return TouchActionListAlarms
	}

	return TouchActionNone
}
