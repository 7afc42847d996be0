package ui

import (
	"github.com/oshokin/aevum/internal/config"
)

// Layout constants in logical cells at scale 1.
const (
	// outsidePadding separates the outermost elements from the window edges.
	outsidePadding = 1.
	// buttonPadding separates stacked elements.
	buttonPadding = 1.
	// buttonHeight is the height of every button.
	buttonHeight = 3.
	// squareButtonWidth makes a button of buttonHeight look square.
	squareButtonWidth = 7.
)

// RenderConfig caches the configuration values views draw with.
type RenderConfig struct {
	Background Color
	Button     Color
	Text       Color

	Input config.Input
}

// NewRenderConfig extracts the render-relevant parts of cfg.
func NewRenderConfig(cfg *config.Config) RenderConfig {
	return RenderConfig{
		Background: Color(cfg.Colors.Background),
		Button:     Color(cfg.Colors.AltBackground),
		Text:       Color(cfg.Colors.Foreground),
		Input:      cfg.Input,
	}
}

// Update applies cfg and reports whether a redraw is required.
// Input changes take effect silently.
func (rc *RenderConfig) Update(cfg *config.Config) bool {
	updated := NewRenderConfig(cfg)
	dirty := updated.Background != rc.Background ||
		updated.Button != rc.Button ||
		updated.Text != rc.Text

	*rc = updated

	return dirty
}

// TouchAction is a window-level action requested by a view on touch release.
type TouchAction int

// Window touch actions.
const (
	TouchActionNone TouchAction = iota
	TouchActionListAlarms
	TouchActionCreateAlarm
)

// fullWidthButton is a button spanning the window width above the bottom edge.
func fullWidthButton(size Size, scale float64) Rect {
	padding := outsidePadding * scale
	height := buttonHeight * scale

	return NewRect(padding, size.Height-height-padding, size.Width-2*padding, height)
}
