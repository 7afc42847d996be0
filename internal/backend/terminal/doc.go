// Package terminal runs the alarm clock window inside a terminal.
//
// Screen implements the ui surface, canvas and flusher on top of a tcell
// screen: one layout unit is one character cell, frame callbacks are emulated
// with a timer at the display refresh rate, and left mouse button presses are
// translated into touch events.
package terminal
