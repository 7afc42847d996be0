package ui

import (
	"math"
	"time"

	"github.com/oshokin/aevum/internal/domain/alarm"
)

const (
	// alarmsPadding is the horizontal inset of the alarm list.
	alarmsPadding = 2.
	// alarmHeight is the height of one alarm row.
	alarmHeight = 3.
	// deleteWidth is the width of the per-alarm delete button.
	deleteWidth = 5.
)

// listTouch is the intention of the current touch sequence on the list.
type listTouch int

const (
	listTouchNone listTouch = iota
	listTouchCreate
	listTouchAlarm
	listTouchDrag
)

// ListAlarms is the scrollable overview of pending alarms.
type ListAlarms struct {
	mutator *Mutator

	velocity     Velocity
	scrollOffset float64

	touch struct {
		action listTouch
		id     string
		delete bool
		start  Point
		point  Point
	}

	size  Size
	scale float64

	alarms []alarm.Alarm

	dirty bool
}

// NewListAlarms creates the alarm overview.
func NewListAlarms(mutator *Mutator) *ListAlarms {
	return &ListAlarms{
		mutator: mutator,
		scale:   1,
		dirty:   true,
	}
}

// Draw renders the list into canvas.
func (l *ListAlarms) Draw(size Size, scale float64, canvas Canvas, rc *RenderConfig) {
	l.dirty = false

	l.size = size
	l.scale = scale

	l.velocity.Apply(rc.Input, &l.scrollOffset)

	// Alarms may have been removed or the geometry changed.
	l.clampScrollOffset()

	canvas.Clear(rc.Background)

	last := l.lastAlarmRect()
	restore := canvas.Clip(Rect{Left: last.Left, Top: 0, Right: last.Right, Bottom: last.Bottom})

	rowHeight := last.Height()
	end := last.Bottom
	row := last
	row.Top += l.scrollOffset
	row.Bottom += l.scrollOffset

	// The newest alarm sits right above the "new" button.
	for i := len(l.alarms) - 1; i >= 0; i-- {
		if row.Bottom > 0 && row.Top < end {
			l.drawAlarm(canvas, rc, row, l.alarms[i])
		}

		row.Top -= rowHeight
		row.Bottom -= rowHeight
	}

	restore()

	newRect := fullWidthButton(size, scale)
	canvas.FillRect(newRect, rc.Button)
	canvas.Icon(newRect, IconPlus, rc.Text)
}

func (l *ListAlarms) drawAlarm(canvas Canvas, rc *RenderConfig, row Rect, a alarm.Alarm) {
	deleteRect := l.deleteRect()
	canvas.Icon(NewRect(row.Left+deleteRect.Left, row.Top+deleteRect.Top, deleteRect.Width(), deleteRect.Height()),
		IconDelete, rc.Text)

	local := a.Time().In(time.Local)
	half := row.Height() / 2

	canvas.Text(Rect{Left: row.Left, Top: row.Top, Right: row.Right, Bottom: row.Top + half},
		local.Format("15:04"), TextStyle{Color: rc.Text, Align: AlignLeft, Heading: true})
	canvas.Text(Rect{Left: row.Left, Top: row.Top + half, Right: row.Right, Bottom: row.Bottom},
		local.Format("2006-01-02"), TextStyle{Color: rc.Text, Align: AlignLeft})
}

// Dirty reports whether the list needs another frame.
func (l *ListAlarms) Dirty() bool {
	return l.dirty || l.velocity.IsMoving()
}

// SetAlarms replaces the displayed alarms.
func (l *ListAlarms) SetAlarms(alarms []alarm.Alarm) {
	l.alarms = append(l.alarms[:0], alarms...)
	l.dirty = true
}

// Alarms returns the displayed alarms.
func (l *ListAlarms) Alarms() []alarm.Alarm {
	return l.alarms
}

// TouchDown starts a touch sequence at a logical point.
func (l *ListAlarms) TouchDown(logical Point) {
	// A new touch stops any fling.
	l.velocity.Set(0)

	point := logical.Scale(l.scale)
	l.touch.point = point
	l.touch.start = point

	if fullWidthButton(l.size, l.scale).Contains(point) {
		l.touch.action = listTouchCreate

		return
	}

	if a, del, ok := l.alarmAt(point); ok {
		l.touch.action = listTouchAlarm
		l.touch.id = a.ID
		l.touch.delete = del

		return
	}

	l.touch.action = listTouchNone
}

// TouchMotion scrolls the list once the touch left the tap radius.
func (l *ListAlarms) TouchMotion(rc *RenderConfig, logical Point) {
	point := logical.Scale(l.scale)
	old := l.touch.point
	l.touch.point = point

	if l.touch.action != listTouchAlarm && l.touch.action != listTouchDrag {
		return
	}

	delta := l.touch.point.Sub(l.touch.start)
	if delta.X*delta.X+delta.Y*delta.Y <= rc.Input.MaxTapDistance {
		return
	}

	l.touch.action = listTouchDrag

	dy := point.Y - old.Y
	l.velocity.Set(dy)

	oldOffset := l.scrollOffset
	l.scrollOffset += dy
	l.clampScrollOffset()

	if l.scrollOffset != oldOffset {
		l.dirty = true
	}
}

// TouchUp finishes the touch sequence.
func (l *ListAlarms) TouchUp(*RenderConfig) TouchAction {
	action := l.touch.action
	l.touch.action = listTouchNone

	switch action {
	case listTouchCreate:
		if fullWidthButton(l.size, l.scale).Contains(l.touch.point) {
			return TouchActionCreateAlarm
		}
	case listTouchAlarm:
		if l.touch.delete {
			l.mutator.Remove(l.touch.id)
		}
	case listTouchNone, listTouchDrag:
	}

	return TouchActionNone
}

// lastAlarmRect is the physical rectangle of the bottommost alarm row.
func (l *ListAlarms) lastAlarmRect() Rect {
	newRect := fullWidthButton(l.size, l.scale)
	inset := (outsidePadding + alarmsPadding) * l.scale

	height := alarmHeight * l.scale
	width := l.size.Width - 2*inset
	y := newRect.Top - buttonPadding*l.scale - height

	return NewRect(inset, y, width, height)
}

// deleteRect is the delete button relative to its row origin.
func (l *ListAlarms) deleteRect() Rect {
	row := l.lastAlarmRect()
	width := deleteWidth * l.scale

	return NewRect(row.Width()-width, 0, width, row.Height())
}

// alarmAt finds the alarm under a physical point and whether its delete
// button was hit.
func (l *ListAlarms) alarmAt(point Point) (alarm.Alarm, bool, bool) {
	last := l.lastAlarmRect()
	if len(l.alarms) == 0 || point.X < last.Left || point.X >= last.Right || point.Y >= last.Bottom {
		return alarm.Alarm{}, false, false
	}

	point.Y -= l.scrollOffset

	rowHeight := last.Height()
	fromBottom := last.Bottom - point.Y
	rindex := int(math.Floor(fromBottom / rowHeight))

	index := max(len(l.alarms)-rindex-1, 0)

	relative := Point{
		X: point.X - last.Left,
		Y: rowHeight - 1 - math.Mod(fromBottom, rowHeight),
	}

	return l.alarms[index], l.deleteRect().Contains(relative), true
}

// clampScrollOffset keeps the list inside its bounds and stops the fling at the edges.
func (l *ListAlarms) clampScrollOffset() {
	old := l.scrollOffset
	l.scrollOffset = math.Min(math.Max(l.scrollOffset, 0), l.maxScrollOffset())

	if old != l.scrollOffset {
		l.velocity.Set(0)
		l.dirty = true
	}
}

func (l *ListAlarms) maxScrollOffset() float64 {
	last := l.lastAlarmRect()
	total := last.Height() * float64(len(l.alarms))

	return math.Max(math.Ceil(total-last.Bottom+buttonPadding*l.scale), 0)
}
