// Package ui implements the touch interface of the alarm clock: the views,
// their scroll physics and the window that schedules redraws against the
// compositor's frame callbacks.
//
// Everything in this package runs on the event loop goroutine. The only
// work leaving it is alarm store mutations, dispatched by Mutator.
package ui
