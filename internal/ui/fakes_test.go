package ui

import (
	"context"
	"errors"
	"sync"

	"github.com/oshokin/aevum/internal/domain/alarm"
)

var errPlayback = errors.New("no audio device")

// fakeCanvas records the labels drawn into it.
type fakeCanvas struct {
	texts []string
}

func (c *fakeCanvas) Clear(Color) {}
func (c *fakeCanvas) FillRect(Rect, Color) {}
func (c *fakeCanvas) Icon(Rect, Icon, Color) {}
func (c *fakeCanvas) Clip(Rect) func() { return func() {} }
func (c *fakeCanvas) Text(_ Rect, text string, _ TextStyle) { c.texts = append(c.texts, text) }

// fakeSurface counts compositor requests.
type fakeSurface struct {
	renders  int
	frames   int
	commits  int
	damage   [2]int
	lastSize Size
	canvas   *fakeCanvas
}

func (s *fakeSurface) Render(size Size, draw func(Canvas)) {
	s.renders++
	s.lastSize = size
	s.canvas = &fakeCanvas{}
	draw(s.canvas)
}

func (s *fakeSurface) Damage(width, height int) { s.damage = [2]int{width, height} }
func (s *fakeSurface) RequestFrame() { s.frames++ }
func (s *fakeSurface) Commit() { s.commits++ }

// fakeFlusher counts flushes.
type fakeFlusher struct {
	flushes int
}

func (f *fakeFlusher) Flush() error {
	f.flushes++
	return nil
}

// fakeStore records mutations.
type fakeStore struct {
	mu      sync.Mutex
	added   []alarm.Alarm
	removed []string
	err     error
}

func (s *fakeStore) Add(_ context.Context, a alarm.Alarm) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.added = append(s.added, a)

	return s.err
}

func (s *fakeStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removed = append(s.removed, id)

	return s.err
}

func (s *fakeStore) Added() []alarm.Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]alarm.Alarm(nil), s.added...)
}

func (s *fakeStore) Removed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.removed...)
}

// fakeSound tracks whether it was stopped.
type fakeSound struct {
	stopped int
}

func (s *fakeSound) Stop() { s.stopped++ }

// fakePlayer hands out fakeSounds or fails.
type fakePlayer struct {
	plays  int
	err    error
	sounds []*fakeSound
}

//nolint:ireturn // Test double.
func (p *fakePlayer) Play(context.Context) (Sound, error) {
	p.plays++

	if p.err != nil {
		return nil, p.err
	}

	sound := &fakeSound{}
	p.sounds = append(p.sounds, sound)

	return sound, nil
}
