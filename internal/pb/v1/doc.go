// Package v1 defines the wire messages and the gRPC service descriptor of the
// alarm store API. Messages travel as JSON through the codec registered
// under CodecName.
package v1
