package ui

// Color is a #rrggbb colour.
type Color string

// Icon is a button glyph.
type Icon int

// Button icons.
const (
	IconConfirm Icon = iota
	IconDelete
	IconBack
	IconPlus
)

// Align is horizontal text alignment.
type Align int

// Text alignments.
const (
	AlignCenter Align = iota
	AlignLeft
)

// TextStyle describes how a label is painted.
type TextStyle struct {
	Color   Color
	Align   Align
	Heading bool
}

// Canvas is the drawing surface handed to views during a render. Text is
// vertically centred inside its rectangle.
type Canvas interface {
	Clear(background Color)
	FillRect(rect Rect, color Color)
	Text(rect Rect, text string, style TextStyle)
	Icon(rect Rect, icon Icon, color Color)
	// Clip restricts drawing to rect until the returned function is called.
	Clip(rect Rect) (restore func())
}

// Surface is the compositor-facing side of a window.
type Surface interface {
	// Render runs draw against a canvas of the given physical size.
	Render(size Size, draw func(Canvas))
	// Damage marks a region of the next commit as changed.
	Damage(width, height int)
	// RequestFrame asks for one frame-completion notification.
	RequestFrame()
	// Commit submits the rendered buffer and the damaged region.
	Commit()
}

// Flusher pushes queued protocol messages to the compositor.
type Flusher interface {
	Flush() error
}
