// Package common holds the alarm store client shared by the services.
//
// It provides a gRPC client wrapper with call timeouts, the event stream
// subscriber fed into the client's bridge and a helper detecting the
// current system actor (hostname/username) for the store's audit log.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
