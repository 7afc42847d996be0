// Package bridge moves alarm store events from a dedicated worker onto the
// presentation event loop.
//
// The subscriber lives on one goroutine locked to its OS thread and is never
// touched from anywhere else. Events cross over through an unbounded
// channel, so the worker never waits for the user interface.
package bridge
