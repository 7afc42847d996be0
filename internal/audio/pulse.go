package audio

import (
	"context"
	"fmt"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"

	"github.com/oshokin/aevum/internal/logger"
)

// applicationName identifies the client to the PulseAudio server.
const applicationName = "aevum"

// defaultChannels is assumed when the server reports no channel map.
const defaultChannels = 2

// pulseConn is the part of a PulseAudio connection the volume raise needs.
type pulseConn interface {
	SetDefaultSinkVolume(percent uint8) error
	Close()
}

// pulseEvent is the completion of an asynchronous PulseAudio operation.
type pulseEvent struct {
	conn pulseConn
	// volume is set for SetDefaultSinkVolume completions.
	volume bool
	err    error
}

// PulseServer is a Server speaking the PulseAudio native protocol.
//
// Operations run asynchronously and report their completion on an internal
// channel; Iterate processes one completion. Iterate returns immediately
// when nothing is in flight, so dispatching after the last event never hangs.
type PulseServer struct {
	dial func() (pulseConn, error)

	ctx     context.Context //nolint:containedctx // Logging only.
	conn    pulseConn
	state   State
	pending int
	events  chan pulseEvent
}

// NewPulseServer creates a disconnected PulseAudio session.
func NewPulseServer() *PulseServer {
	return newPulseServer(dialPulse)
}

func newPulseServer(dial func() (pulseConn, error)) *PulseServer {
	return &PulseServer{
		dial:   dial,
		ctx:    context.Background(),
		state:  StateDisconnected,
		events: make(chan pulseEvent, 1),
	}
}

// Connect starts connecting in the background.
func (s *PulseServer) Connect(ctx context.Context) error {
	if s.state != StateDisconnected {
		return fmt.Errorf("connect in state %s", s.state)
	}

	s.ctx = ctx
	s.state = StateConnecting
	s.pending++

	go func() {
		conn, err := s.dial()
		s.events <- pulseEvent{conn: conn, err: err}
	}()

	return nil
}

// Iterate processes the next completed operation.
func (s *PulseServer) Iterate() error {
	if s.pending == 0 {
		return nil
	}

	evt := <-s.events
	s.pending--

	switch {
	case evt.volume && evt.err != nil:
		logger.ErrorKV(s.ctx, "Failed to set audio volume", "error", evt.err)
	case evt.volume:
		logger.DebugKV(s.ctx, "Audio volume updated")
	case evt.err != nil:
		logger.ErrorKV(s.ctx, "Failed to connect to audio server", "error", evt.err)

		s.state = StateFailed
	default:
		s.conn = evt.conn
		s.state = StateReady
	}

	return nil
}

// State returns the connection state.
func (s *PulseServer) State() State {
	return s.state
}

// SetDefaultSinkVolume queues a volume change of the default sink.
func (s *PulseServer) SetDefaultSinkVolume(percent uint8) {
	if s.state != StateReady {
		logger.WarnKV(s.ctx, "Skipping volume change", "state", s.state.String())
		return
	}

	conn := s.conn
	s.pending++

	go func() {
		s.events <- pulseEvent{volume: true, err: conn.SetDefaultSinkVolume(percent)}
	}()
}

// Disconnect closes the connection once every queued operation completed.
func (s *PulseServer) Disconnect() {
	for s.pending > 0 {
		_ = s.Iterate()
	}

	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}

	if s.state == StateReady {
		s.state = StateTerminated
	}
}

// pulseClient adapts *pulse.Client to pulseConn.
type pulseClient struct {
	client *pulse.Client
}

func dialPulse() (pulseConn, error) {
	client, err := pulse.NewClient(pulse.ClientApplicationName(applicationName))
	if err != nil {
		return nil, fmt.Errorf("connect to pulseaudio: %w", err)
	}

	return &pulseClient{client: client}, nil
}

// SetDefaultSinkVolume sets every channel of the default sink to percent.
func (c *pulseClient) SetDefaultSinkVolume(percent uint8) error {
	sink, err := c.client.DefaultSink()
	if err != nil {
		return fmt.Errorf("get default sink: %w", err)
	}

	channels := sink.Channels()
	if channels <= 0 {
		channels = defaultChannels
	}

	volume := uint32(proto.VolumeNorm) * uint32(percent) / 100

	volumes := make(proto.ChannelVolumes, channels)
	for i := range volumes {
		volumes[i] = volume
	}

	err = c.client.RawRequest(&proto.SetSinkVolume{
		SinkIndex:      proto.Undefined,
		SinkName:       sink.ID(),
		ChannelVolumes: volumes,
	}, nil)
	if err != nil {
		return fmt.Errorf("set sink volume: %w", err)
	}

	return nil
}

// Close closes the connection.
func (c *pulseClient) Close() {
	c.client.Close()
}
