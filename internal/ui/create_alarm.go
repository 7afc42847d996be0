package ui

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/aevum/internal/domain/alarm"
)

const (
	// minuteStep is the granularity of the minute wheel.
	minuteStep = 5
	// resetLead is how far into the future the wheels start.
	resetLead = 5 * time.Minute
)

// createTouch is the intention of the current touch sequence on the create view.
type createTouch int

const (
	createTouchNone createTouch = iota
	createTouchConfirm
	createTouchBack
	createTouchQuick1
	createTouchQuick2
	createTouchMinutes
	createTouchHours
)

// CreateAlarm is the view for picking the time of a new alarm.
type CreateAlarm struct {
	mutator *Mutator
	now     func() time.Time

	hours   *Carousel
	minutes *Carousel

	touch struct {
		action createTouch
		point  Point
	}

	size  Size
	scale float64

	dirty bool
}

// NewCreateAlarm creates the alarm creation view. now is the wall clock.
func NewCreateAlarm(mutator *Mutator, now func() time.Time) *CreateAlarm {
	if now == nil {
		now = time.Now
	}

	return &CreateAlarm{
		mutator: mutator,
		now:     now,
		hours:   NewCarousel(24, 1),
		minutes: NewCarousel(60/minuteStep, minuteStep),
		scale:   1,
		dirty:   true,
	}
}

// Draw renders the view into canvas.
func (c *CreateAlarm) Draw(size Size, scale float64, canvas Canvas, rc *RenderConfig) {
	c.dirty = false

	c.size = size
	c.scale = scale

	canvas.Clear(rc.Background)

	centered := TextStyle{Color: rc.Text, Align: AlignCenter}

	canvas.Text(c.deltaRect(), c.DeltaText(), centered)

	hourRect := c.hourRect()
	c.hours.Draw(scale, canvas, rc, hourRect)
	c.minutes.Draw(scale, canvas, rc, c.minuteRect())

	colon := Rect{Left: hourRect.Right, Top: hourRect.Top, Right: c.minuteRect().Left, Bottom: hourRect.Bottom}
	canvas.Text(colon, ":", TextStyle{Color: rc.Text, Align: AlignCenter, Heading: true})

	quick1 := c.quickRect1()
	canvas.FillRect(quick1, rc.Button)
	canvas.Text(quick1, QuickText(rc.Input.QuickMinutes1), centered)

	quick2 := c.quickRect2()
	canvas.FillRect(quick2, rc.Button)
	canvas.Text(quick2, QuickText(rc.Input.QuickMinutes2), centered)

	back := c.backRect()
	canvas.FillRect(back, rc.Button)
	canvas.Icon(back, IconBack, rc.Text)

	confirm := c.confirmRect()
	canvas.FillRect(confirm, rc.Button)
	canvas.Icon(confirm, IconConfirm, rc.Text)
}

// Dirty reports whether the view or one of its wheels needs another frame.
func (c *CreateAlarm) Dirty() bool {
	return c.dirty || c.hours.Dirty() || c.minutes.Dirty()
}

// Reset scrolls the wheels to five minutes from now.
func (c *CreateAlarm) Reset() {
	at := c.now().Add(resetLead)

	c.minutes.ScrollTo(at.Minute() / minuteStep)
	c.hours.ScrollTo(at.Hour())
	c.dirty = true
}

// Selected returns the hour and minute on the wheels.
func (c *CreateAlarm) Selected() (int, int) {
	return c.hours.Value(), c.minutes.Value()
}

// AlarmTime is the next occurrence of the selected time.
func (c *CreateAlarm) AlarmTime() time.Time {
	hour, minute := c.Selected()

	return NextOccurrence(c.now(), hour, minute)
}

// NextOccurrence returns the first hour:minute at or after now, in now's location.
func NextOccurrence(now time.Time, hour, minute int) time.Time {
	at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if at.Before(now) {
		at = time.Date(now.Year(), now.Month(), now.Day()+1, hour, minute, 0, 0, now.Location())
	}

	return at
}

// AddMinutes moves the selection interval minutes forward, carrying into the hour.
func (c *CreateAlarm) AddMinutes(interval uint16) {
	hour, minute := c.Selected()

	total := minute + int(interval)

	c.minutes.ScrollTo((total % 60) / minuteStep)
	c.hours.ScrollTo((hour + total/60) % 24)
	c.dirty = true
}

// DeltaText describes how far away the selected alarm is.
func (c *CreateAlarm) DeltaText() string {
	delta := c.AlarmTime().Sub(c.now())

	hours := int(delta / time.Hour)
	minutes := int(delta/time.Minute) - 60*hours

	minuteUnit := "minute"
	if minutes > 1 {
		minuteUnit = "minutes"
	}

	switch {
	case hours == 0 && minutes == 0:
		return "now"
	case hours == 0:
		return fmt.Sprintf("in %d %s", minutes, minuteUnit)
	}

	hourUnit := "hour"
	if hours > 1 {
		hourUnit = "hours"
	}

	return fmt.Sprintf("in %d %s and %d %s", hours, hourUnit, minutes, minuteUnit)
}

// QuickText labels a quick-add button.
func QuickText(minutes uint16) string {
	if minutes%60 == 0 {
		return fmt.Sprintf("+ %d Hours", minutes/60)
	}

	return fmt.Sprintf("+ %d Minutes", minutes)
}

// TouchDown starts a touch sequence at a logical point.
func (c *CreateAlarm) TouchDown(logical Point) {
	point := logical.Scale(c.scale)
	c.touch.point = point

	switch {
	case c.confirmRect().Contains(point):
		c.touch.action = createTouchConfirm
	case c.backRect().Contains(point):
		c.touch.action = createTouchBack
	case c.quickRect1().Contains(point):
		c.touch.action = createTouchQuick1
	case c.quickRect2().Contains(point):
		c.touch.action = createTouchQuick2
	case c.minuteRect().Contains(point):
		c.touch.action = createTouchMinutes
		c.minutes.TouchDown(point)
	case c.hourRect().Contains(point):
		c.touch.action = createTouchHours
		c.hours.TouchDown(point)
	default:
		c.touch.action = createTouchNone
	}
}

// TouchMotion forwards drags to the touched wheel.
func (c *CreateAlarm) TouchMotion(_ *RenderConfig, logical Point) {
	point := logical.Scale(c.scale)
	c.touch.point = point

	switch c.touch.action {
	case createTouchMinutes:
		c.minutes.TouchMotion(point)
	case createTouchHours:
		c.hours.TouchMotion(point)
	case createTouchNone, createTouchConfirm, createTouchBack, createTouchQuick1, createTouchQuick2:
	}
}

// TouchUp finishes the touch sequence.
func (c *CreateAlarm) TouchUp(rc *RenderConfig) TouchAction {
	switch c.touch.action {
	case createTouchBack:
		if c.backRect().Contains(c.touch.point) {
			return TouchActionListAlarms
		}
	case createTouchConfirm:
		if c.confirmRect().Contains(c.touch.point) {
			c.mutator.Add(alarm.New(uuid.NewString(), c.AlarmTime(), alarm.DefaultRingDuration))

			return TouchActionListAlarms
		}
	case createTouchQuick1:
		c.AddMinutes(rc.Input.QuickMinutes1)
	case createTouchQuick2:
		c.AddMinutes(rc.Input.QuickMinutes2)
	case createTouchMinutes:
		c.minutes.TouchUp()
	case createTouchHours:
		c.hours.TouchUp()
	case createTouchNone:
	}

	return TouchActionNone
}

func (c *CreateAlarm) backRect() Rect {
	width := squareButtonWidth * c.scale
	height := buttonHeight * c.scale
	padding := outsidePadding * c.scale

	return NewRect(padding, c.size.Height-height-padding, width, height)
}

func (c *CreateAlarm) confirmRect() Rect {
	width := squareButtonWidth * c.scale
	height := buttonHeight * c.scale
	padding := outsidePadding * c.scale

	return NewRect(c.size.Width-width-padding, c.size.Height-height-padding, width, height)
}

func (c *CreateAlarm) quickRect1() Rect {
	back := c.backRect()
	space := carouselSpace * c.scale
	y := back.Top - buttonPadding*c.scale - back.Height()

	return Rect{Left: outsidePadding * c.scale, Top: y, Right: (c.size.Width - space) / 2, Bottom: y + back.Height()}
}

func (c *CreateAlarm) quickRect2() Rect {
	quick1 := c.quickRect1()
	space := carouselSpace * c.scale

	return Rect{
		Left:   (c.size.Width + space) / 2,
		Top:    quick1.Top,
		Right:  c.size.Width - outsidePadding*c.scale,
		Bottom: quick1.Bottom,
	}
}

func (c *CreateAlarm) hourRect() Rect {
	quick := c.quickRect1()
	width := carouselItemWidth * c.scale
	height := carouselItemHeight * carouselVisible * c.scale
	space := carouselSpace * c.scale

	y := quick.Top - buttonPadding*c.scale - height
	x := c.size.Width/2 - width - space/2

	return NewRect(x, y, width, height)
}

func (c *CreateAlarm) minuteRect() Rect {
	hour := c.hourRect()
	space := carouselSpace * c.scale

	return NewRect(c.size.Width/2+space/2, hour.Top, hour.Width(), hour.Height())
}

func (c *CreateAlarm) deltaRect() Rect {
	hour := c.hourRect()
	height := buttonHeight * c.scale
	y := hour.Top - buttonPadding*c.scale - height

	return NewRect(0, y, c.size.Width, height)
}
