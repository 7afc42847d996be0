package terminal

import (
	"math"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oshokin/aevum/internal/ui"
)

// FrameInterval is the delay between a frame request and its callback.
const FrameInterval = time.Second / 60

// iconGlyphs maps button icons to terminal glyphs.
//
//nolint:gochecknoglobals // Immutable lookup table.
var iconGlyphs = map[ui.Icon]string{
	ui.IconConfirm: "✓",
	ui.IconDelete:  "✗",
	ui.IconBack:    "←",
	ui.IconPlus:    "+",
}

// Screen is a ui.Surface backed by a tcell screen.
type Screen struct {
	screen tcell.Screen
	// onFrame runs on a timer goroutine for every requested frame.
	onFrame func()

	// clips is the stack of active clip rectangles, innermost last.
	clips []ui.Rect
	// colors caches parsed colours.
	colors map[ui.Color]tcell.Color

	mu sync.Mutex
	// frame is the pending frame timer, if any.
	frame *time.Timer
	// damaged is the region marked since the last commit.
	damaged ui.Size
}

// NewScreen wraps an initialised tcell screen. onFrame is called from a
// timer goroutine after every RequestFrame; it must hand the callback over
// to the event loop.
func NewScreen(screen tcell.Screen, onFrame func()) *Screen {
	return &Screen{
		screen:  screen,
		onFrame: onFrame,
		colors:  make(map[ui.Color]tcell.Color),
	}
}

// Size returns the terminal size in cells.
func (s *Screen) Size() ui.Size {
	width, height := s.screen.Size()

	return ui.Size{Width: float64(width), Height: float64(height)}
}

// Render runs draw against the terminal cells.
func (s *Screen) Render(_ ui.Size, draw func(ui.Canvas)) {
	s.clips = s.clips[:0]

	draw(s)
}

// Damage records the changed region; tcell diffs the cells itself.
func (s *Screen) Damage(width, height int) {
	s.damaged = ui.Size{Width: float64(width), Height: float64(height)}
}

// RequestFrame schedules one frame callback.
func (s *Screen) RequestFrame() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frame != nil {
		s.frame.Stop()
	}

	s.frame = time.AfterFunc(FrameInterval, s.onFrame)
}

// Commit shows the rendered cells.
func (s *Screen) Commit() {
	s.screen.Show()
	s.damaged = ui.Size{}
}

// Flush is a no-op: Commit already wrote the frame to the terminal.
func (s *Screen) Flush() error {
	return nil
}

// Close cancels the pending frame callback.
func (s *Screen) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frame != nil {
		s.frame.Stop()
		s.frame = nil
	}
}

// Clear fills the whole screen with background.
func (s *Screen) Clear(background ui.Color) {
	style := tcell.StyleDefault.Background(s.color(background))
	s.screen.Fill(' ', style)
}

// FillRect paints every cell of rect.
func (s *Screen) FillRect(rect ui.Rect, color ui.Color) {
	style := tcell.StyleDefault.Background(s.color(color))

	left, top, right, bottom := s.cells(rect)
	for y := top; y < bottom; y++ {
		for x := left; x < right; x++ {
			s.screen.SetContent(x, y, ' ', nil, style)
		}
	}
}

// Text writes text vertically centred in rect, keeping cell backgrounds.
func (s *Screen) Text(rect ui.Rect, text string, style ui.TextStyle) {
	width := float64(runewidth.StringWidth(text))

	x := rect.Left
	if style.Align == ui.AlignCenter {
		x += math.Floor((rect.Width() - width) / 2)
	}

	y := rect.Top + math.Floor((rect.Height()-1)/2)

	s.write(x, y, text, s.color(style.Color), style.Heading)
}

// Icon draws the icon glyph centred in rect.
func (s *Screen) Icon(rect ui.Rect, icon ui.Icon, color ui.Color) {
	s.Text(rect, iconGlyphs[icon], ui.TextStyle{Color: color, Align: ui.AlignCenter, Heading: true})
}

// Clip restricts drawing to rect, intersected with the active clip.
func (s *Screen) Clip(rect ui.Rect) func() {
	if len(s.clips) > 0 {
		rect = intersect(rect, s.clips[len(s.clips)-1])
	}

	s.clips = append(s.clips, rect)
	depth := len(s.clips)

	return func() {
		s.clips = s.clips[:depth-1]
	}
}

// write writes text starting at the cell containing (x, y).
func (s *Screen) write(x, y float64, text string, fg tcell.Color, bold bool) {
	row := int(math.Floor(y))
	left, top, right, bottom := s.cells(ui.NewRect(x, y, math.Inf(1), 1))

	if top > row || bottom <= row {
		return
	}

	col := int(math.Floor(x))
	for _, r := range text {
		w := runewidth.RuneWidth(r)

		if col >= left && col+w <= right {
			_, _, current, _ := s.screen.GetContent(col, row)
			s.screen.SetContent(col, row, r, nil, current.Foreground(fg).Bold(bold))
		}

		col += w
	}
}

// cells converts rect to the covered cell range clipped to the active clip
// and the screen.
func (s *Screen) cells(rect ui.Rect) (left, top, right, bottom int) {
	width, height := s.screen.Size()
	bounds := ui.NewRect(0, 0, float64(width), float64(height))

	rect = intersect(rect, bounds)
	if len(s.clips) > 0 {
		rect = intersect(rect, s.clips[len(s.clips)-1])
	}

	left, top = int(math.Floor(rect.Left)), int(math.Floor(rect.Top))
	right, bottom = int(math.Ceil(rect.Right)), int(math.Ceil(rect.Bottom))

	return left, top, max(right, left), max(bottom, top)
}

func (s *Screen) color(c ui.Color) tcell.Color {
	if cached, ok := s.colors[c]; ok {
		return cached
	}

	parsed := tcell.GetColor(string(c))
	s.colors[c] = parsed

	return parsed
}

func intersect(a, b ui.Rect) ui.Rect {
	return ui.Rect{
		Left:   max(a.Left, b.Left),
		Top:    max(a.Top, b.Top),
		Right:  min(a.Right, b.Right),
		Bottom: min(a.Bottom, b.Bottom),
	}
}
