package audio

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/aevum/internal/config"
)

// fakeOutput captures the played stream.
type fakeOutput struct {
	format   beep.Format
	streamer beep.Streamer
	sink     *fakeSink
	err      error
}

//nolint:ireturn // Test double.
func (o *fakeOutput) Play(format beep.Format, streamer beep.Streamer) (Sink, error) {
	if o.err != nil {
		return nil, o.err
	}

	o.format = format
	o.streamer = streamer
	o.sink = &fakeSink{}

	return o.sink, nil
}

type fakeSink struct {
	stops int
}

func (s *fakeSink) Stop() { s.stops++ }

func newTestController(server Server, output Output) *Controller {
	return NewController(Options{
		Settings:  config.Audio{ClipLength: 1500 * time.Millisecond, Volume: 100},
		NewServer: func() Server { return server },
		Output:    output,
	})
}

// TestController_PlayLoopsClip checks the clip keeps streaming past its truncated length.
func TestController_PlayLoopsClip(t *testing.T) {
	t.Parallel()

	server := &scriptedServer{states: []State{StateReady}}
	output := &fakeOutput{}

	sound, err := newTestController(server, output).Play(t.Context())
	require.NoError(t, err)
	require.Equal(t, 2, server.itersAfterVol)

	rate := output.format.SampleRate
	require.Positive(t, int(rate))

	// Stream three clip lengths; a non-looping stream would run dry after one.
	total := rate.N(4500 * time.Millisecond)
	samples := make([][2]float64, 512)

	for streamed := 0; streamed < total; {
		n, ok := output.streamer.Stream(samples)
		require.True(t, ok)
		require.Positive(t, n)

		streamed += n
	}

	sound.Stop()
	sound.Stop()
	require.Equal(t, 1, output.sink.stops)
}

// TestController_VolumeFailureStillPlays ignores audio server errors.
func TestController_VolumeFailureStillPlays(t *testing.T) {
	t.Parallel()

	server := &scriptedServer{states: []State{StateFailed}}
	output := &fakeOutput{}

	sound, err := newTestController(server, output).Play(t.Context())
	require.NoError(t, err)
	require.NotNil(t, sound)
	require.False(t, server.volumeSet)
}

// TestController_OutputFailure surfaces playback errors.
func TestController_OutputFailure(t *testing.T) {
	t.Parallel()

	server := &scriptedServer{states: []State{StateReady}}
	output := &fakeOutput{err: errors.New("no device")}

	sound, err := newTestController(server, output).Play(t.Context())
	require.Error(t, err)
	require.Nil(t, sound)
}

// TestController_BadClip rejects clips that are not WAV.
func TestController_BadClip(t *testing.T) {
	t.Parallel()

	controller := NewController(Options{
		NewServer: func() Server { return &scriptedServer{states: []State{StateReady}} },
		Output:    &fakeOutput{},
		Clip:      []byte("not a wav file"),
	})

	_, err := controller.Play(t.Context())
	require.Error(t, err)
}

// fakeDevice counts sound device lifecycle calls.
type fakeDevice struct {
	mu      sync.Mutex
	inits   int
	closes  int
	playing []beep.Streamer
}

func (d *fakeDevice) Init(beep.SampleRate, int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.inits++

	return nil
}

func (d *fakeDevice) Play(streamer beep.Streamer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.playing = append(d.playing, streamer)
}

func (d *fakeDevice) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closes++
}

// TestSpeakerOutput_ReleasesDeviceAfterStop closes the device once the last
// sound stops and reopens it for the next alarm.
func TestSpeakerOutput_ReleasesDeviceAfterStop(t *testing.T) {
	t.Parallel()

	dev := &fakeDevice{}
	output := &SpeakerOutput{device: dev}
	format := beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}

	first, err := output.Play(format, beep.Silence(-1))
	require.NoError(t, err)

	second, err := output.Play(format, beep.Silence(-1))
	require.NoError(t, err)
	require.Equal(t, 1, dev.inits)

	first.Stop()
	require.Zero(t, dev.closes, "device closed while a sound is still playing")

	second.Stop()
	require.Equal(t, 1, dev.closes)

	third, err := output.Play(format, beep.Silence(-1))
	require.NoError(t, err)
	require.Equal(t, 2, dev.inits)
	require.Len(t, dev.playing, 3)

	third.Stop()
	require.Equal(t, 2, dev.closes)
}
