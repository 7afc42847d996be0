// Package client runs the aevum touchscreen alarm clock.
//
// Run connects to the alarm store, opens the terminal, and drives the window
// from a single event loop fed by terminal input, frame callbacks, alarm
// store events and configuration reloads.
package client
