// Package store implements the alarm store daemon.
//
// The service keeps the pending alarms ordered by trigger time, persists every
// change through a repository, rings alarms when their time comes, drops them
// once their ring duration elapsed and fans every change out to subscribers.
// Run exposes it over gRPC until the context is cancelled.
package store
