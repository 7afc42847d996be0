package audio

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"

	"github.com/oshokin/aevum/internal/config"
	"github.com/oshokin/aevum/internal/logger"
)

// alarmClip is the alarm sound, an alternating 880Hz beep.
//
//go:embed alarm.wav
var alarmClip []byte

// errNoClip is returned when the truncated clip contains no samples.
var errNoClip = errors.New("alarm clip is empty")

// Sink is a playing stream on an Output.
type Sink interface {
	// Stop ends playback and releases the stream.
	Stop()
}

// Output is an audio device streams can be played on.
type Output interface {
	Play(format beep.Format, streamer beep.Streamer) (Sink, error)
}

// Controller plays the alarm sound on demand.
type Controller struct {
	newServer func() Server
	output    Output
	clip      []byte
	settings  config.Audio
}

// Options configure a Controller. Zero values select the real backends.
type Options struct {
	Settings config.Audio
	// NewServer creates the audio server session used for the volume raise.
	NewServer func() Server
	Output    Output
	// Clip is a WAV file; defaults to the embedded alarm sound.
	Clip []byte
}

// NewController creates an alarm sound controller.
func NewController(opts Options) *Controller {
	c := &Controller{
		newServer: opts.NewServer,
		output:    opts.Output,
		clip:      opts.Clip,
		settings:  opts.Settings,
	}

	if c.newServer == nil {
		c.newServer = func() Server { return NewPulseServer() }
	}

	if c.output == nil {
		c.output = &SpeakerOutput{}
	}

	if c.clip == nil {
		c.clip = alarmClip
	}

	if c.settings.ClipLength <= 0 {
		c.settings.ClipLength = config.DefaultClipLength
	}

	return c
}

// Play raises the output volume and starts looping the alarm clip.
// Volume failures are only logged. The sound plays until Stop is called.
func (c *Controller) Play(ctx context.Context) (*Sound, error) {
	if err := RaiseVolume(ctx, c.newServer(), c.settings.Volume); err != nil {
		logger.WarnKV(ctx, "Failed to raise alarm volume", "error", err)
	}

	streamer, format, err := c.loop()
	if err != nil {
		return nil, err
	}

	sink, err := c.output.Play(format, streamer)
	if err != nil {
		return nil, fmt.Errorf("open audio output: %w", err)
	}

	logger.InfoKV(ctx, "Alarm sound started", "clip_length", c.settings.ClipLength)

	return &Sound{sink: sink}, nil
}

// loop decodes the clip, truncates it and repeats it forever.
func (c *Controller) loop() (beep.Streamer, beep.Format, error) {
	decoded, format, err := wav.Decode(bytes.NewReader(c.clip))
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("decode alarm clip: %w", err)
	}

	defer decoded.Close()

	buffer := beep.NewBuffer(format)
	buffer.Append(beep.Take(format.SampleRate.N(c.settings.ClipLength), decoded))

	if buffer.Len() == 0 {
		return nil, beep.Format{}, errNoClip
	}

	return beep.Loop(-1, buffer.Streamer(0, buffer.Len())), format, nil
}

// Sound is a playing alarm sound.
type Sound struct {
	sink Sink
	once sync.Once
}

// Stop silences the alarm. Calling it again has no effect.
func (s *Sound) Stop() {
	s.once.Do(s.sink.Stop)
}

// speakerBuffer is the playback latency of the speaker.
const speakerBuffer = 100 * time.Millisecond

// device is the process-wide sound device behind a SpeakerOutput.
type device interface {
	Init(sampleRate beep.SampleRate, bufferSize int) error
	Play(streamer beep.Streamer)
	Close()
}

// speakerDevice is the default sound device.
type speakerDevice struct{}

func (speakerDevice) Init(sampleRate beep.SampleRate, bufferSize int) error {
	return speaker.Init(sampleRate, bufferSize)
}

func (speakerDevice) Play(streamer beep.Streamer) { speaker.Play(streamer) }

func (speakerDevice) Close() { speaker.Close() }

// SpeakerOutput plays streams on the default sound device.
// The device is opened by the first Play and closed when the last sink stops,
// so the sound server does not keep an idle stream open between alarms.
type SpeakerOutput struct {
	mu         sync.Mutex
	device     device
	sampleRate beep.SampleRate
	active     int
}

// Play starts streamer on the speaker, resampling to the device rate if needed.
//
//nolint:ireturn // Sink is implemented per output.
func (o *SpeakerOutput) Play(format beep.Format, streamer beep.Streamer) (Sink, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.device == nil {
		o.device = speakerDevice{}
	}

	if o.sampleRate == 0 {
		if err := o.device.Init(format.SampleRate, format.SampleRate.N(speakerBuffer)); err != nil {
			return nil, fmt.Errorf("init speaker: %w", err)
		}

		o.sampleRate = format.SampleRate
	}

	if format.SampleRate != o.sampleRate {
		streamer = beep.Resample(4, format.SampleRate, o.sampleRate, streamer)
	}

	ctrl := &beep.Ctrl{Streamer: streamer}
	o.device.Play(ctrl)
	o.active++

	return &speakerSink{output: o, ctrl: ctrl}, nil
}

// release closes the device once no sink is playing.
func (o *SpeakerOutput) release() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.active--
	if o.active > 0 {
		return
	}

	o.device.Close()
	o.sampleRate = 0
}

// speakerSink detaches its stream from the speaker mixer on Stop.
type speakerSink struct {
	output *SpeakerOutput
	ctrl   *beep.Ctrl
}

func (s *speakerSink) Stop() {
	speaker.Lock()
	s.ctrl.Streamer = nil
	speaker.Unlock()

	s.output.release()
}
