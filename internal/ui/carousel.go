package ui

import (
	"fmt"
	"math"
)

const (
	// carouselItemHeight is the height of one carousel entry.
	carouselItemHeight = 3.
	// carouselItemWidth is the width of a carousel wheel.
	carouselItemWidth = 8.
	// carouselSpace separates the hour and minute wheels.
	carouselSpace = 6.
	// carouselVisible is the number of fully visible entries.
	carouselVisible = 3

	// snapTolerance absorbs float error left by scaling a snapped offset.
	snapTolerance = 1e-9
)

// Carousel is an infinitely wrapping wheel of numbers that snaps to the
// nearest entry once released.
type Carousel struct {
	velocity     Velocity
	touchPoint   Point
	touchActive  bool
	scrollOffset float64

	count int
	step  int

	scale float64
	dirty bool
}

// NewCarousel creates a wheel of count values 0, step, 2*step, ...
func NewCarousel(count, step int) *Carousel {
	return &Carousel{
		count: count,
		step:  step,
		scale: 1,
		dirty: true,
	}
}

// Draw renders the wheel into rect.
func (c *Carousel) Draw(scale float64, canvas Canvas, rc *RenderConfig, rect Rect) {
	c.dirty = false

	if c.scale != scale {
		c.scrollOffset *= scale / c.scale
	}

	c.scale = scale

	c.velocity.Apply(rc.Input, &c.scrollOffset)

	// Snap to the nearest item after the fling has finished.
	if !c.velocity.IsMoving() && !c.touchActive {
		c.scrollOffset = c.roundedOffset()
	}

	c.clampScrollOffset()

	canvas.FillRect(rect, rc.Button)
	restore := canvas.Clip(rect)

	itemHeight := c.itemHeight()
	index := int(math.Floor(-c.scrollOffset/itemHeight)) - 1
	offset := -math.Mod(itemHeight-math.Mod(c.scrollOffset, itemHeight), itemHeight)

	visible := carouselVisible + 1
	if offset == 0 {
		visible = carouselVisible
	}

	for i := range visible {
		top := rect.Top + float64(i)*itemHeight + offset
		item := Rect{Left: rect.Left, Top: top, Right: rect.Right, Bottom: top + itemHeight}

		canvas.Text(item, c.label(index+i), TextStyle{Color: rc.Text, Align: AlignCenter})
	}

	restore()
}

// Dirty reports whether the wheel is moving or still has to snap.
func (c *Carousel) Dirty() bool {
	return c.dirty ||
		c.velocity.IsMoving() ||
		(!c.touchActive && math.Abs(c.scrollOffset-c.roundedOffset()) > snapTolerance)
}

// TouchDown stops the wheel and starts dragging it.
func (c *Carousel) TouchDown(physical Point) {
	c.velocity.Set(0)
	c.touchPoint = physical
	c.touchActive = true
}

// TouchMotion drags the wheel.
func (c *Carousel) TouchMotion(physical Point) {
	old := c.touchPoint
	c.touchPoint = physical

	delta := physical.Y - old.Y
	c.velocity.Set(delta)

	oldOffset := c.scrollOffset
	c.scrollOffset += delta
	c.clampScrollOffset()

	if c.scrollOffset != oldOffset {
		c.dirty = true
	}
}

// TouchUp releases the wheel so it may fling and snap.
func (c *Carousel) TouchUp() {
	c.touchActive = false
}

// Value is the number closest to the wheel centre.
func (c *Carousel) Value() int {
	index := int(math.Round(-c.scrollOffset / c.itemHeight()))

	return c.wrap(index) * c.step
}

// ScrollTo centres the entry at index, wrapping around.
func (c *Carousel) ScrollTo(index int) {
	c.velocity.Set(0)
	c.scrollOffset = -c.itemHeight() * float64(c.wrap(index))
	c.dirty = true
}

func (c *Carousel) label(index int) string {
	return fmt.Sprintf("%02d", c.wrap(index)*c.step)
}

func (c *Carousel) wrap(index int) int {
	return ((index % c.count) + c.count) % c.count
}

func (c *Carousel) itemHeight() float64 {
	return carouselItemHeight * c.scale
}

// clampScrollOffset keeps the unbounded offset inside one revolution.
func (c *Carousel) clampScrollOffset() {
	old := c.scrollOffset
	c.scrollOffset = math.Mod(c.scrollOffset, float64(c.count)*c.itemHeight())

	if old != c.scrollOffset {
		c.dirty = true
	}
}

// roundedOffset is the offset of the nearest entry; halves round away from zero.
// Rounding an already rounded offset returns it unchanged.
func (c *Carousel) roundedOffset() float64 {
	itemHeight := c.itemHeight()

	return math.Round(c.scrollOffset/itemHeight) * itemHeight
}
