// Package eventloop implements the single-goroutine cooperative loop that
// owns all presentation state.
//
// Sources (compositor events, timers, channels fed by other goroutines) never
// touch the state themselves: they post callbacks into the loop's queue, and
// Dispatch runs those callbacks one after another on the caller's goroutine.
// State passed to Dispatch therefore needs no locking.
package eventloop
