package audio

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/aevum/internal/logger"
)

// ErrConnection is returned when the audio server connection fails or terminates.
var ErrConnection = errors.New("audio server connection failed")

// State is the connection state of an audio server session.
type State int

// Connection states.
const (
	StateDisconnected State = iota
	StateConnecting
	StateReady
	StateFailed
	StateTerminated
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Server is an audio server session driven by explicit dispatch iterations.
type Server interface {
	// Connect starts connecting; progress is made by Iterate.
	Connect(ctx context.Context) error
	// Iterate blocks until the next server event has been processed.
	Iterate() error
	// State returns the current connection state.
	State() State
	// SetDefaultSinkVolume queues a volume change of the default output.
	SetDefaultSinkVolume(percent uint8)
	// Disconnect closes the session.
	Disconnect()
}

// settleIterations is how many events are dispatched after the volume
// request so it reaches the server before disconnecting.
const settleIterations = 2

// RaiseVolume connects to server, sets the default output volume and
// disconnects again. It blocks until the connection is ready or fails.
func RaiseVolume(ctx context.Context, server Server, percent uint8) error {
	if err := server.Connect(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}

	defer server.Disconnect()

	for {
		state := server.State()
		if state == StateReady {
			break
		}

		if state == StateFailed || state == StateTerminated {
			return fmt.Errorf("%w: %s", ErrConnection, state)
		}

		if err := server.Iterate(); err != nil {
			return fmt.Errorf("%w: %w", ErrConnection, err)
		}
	}

	logger.DebugKV(ctx, "Audio server connected", "volume", percent)

	server.SetDefaultSinkVolume(percent)

	for range settleIterations {
		if err := server.Iterate(); err != nil {
			return fmt.Errorf("%w: %w", ErrConnection, err)
		}
	}

	return nil
}
