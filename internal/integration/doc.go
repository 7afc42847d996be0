// Package integration holds end-to-end tests running the alarm store daemon
// over real gRPC connections.
package integration
