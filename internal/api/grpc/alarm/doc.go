// Package alarm implements the gRPC transport for the alarm store.
//
// It adapts domain types to wire messages and exposes a server that calls
// into a provided business-service interface.
package alarm
