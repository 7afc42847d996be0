package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay coalesces the burst of events editors produce for one save.
const reloadDelay = 100 * time.Millisecond

// Watcher reloads the settings file whenever it changes on disk.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher

	closeOnce sync.Once
}

// NewWatcher watches the directory holding path, since editors usually
// replace the file instead of writing it in place.
func NewWatcher(path string) (*Watcher, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	path, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create config watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()

		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	return &Watcher{
		path:    path,
		watcher: watcher,
	}, nil
}

// Run delivers every successfully reloaded configuration to onChange and
// every reload failure to onError until ctx is done or Close is called.
// Both callbacks run on the watcher goroutine.
func (w *Watcher) Run(ctx context.Context, onChange func(*Config), onError func(error)) {
	defer w.Close()

	var (
		timer  *time.Timer
		reload = make(chan struct{}, 1)
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			onError(fmt.Errorf("watch config: %w", err))
		case evt, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(evt.Name) != w.path || evt.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if timer == nil {
				timer = time.AfterFunc(reloadDelay, func() {
					select {
					case reload <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(reloadDelay)
			}
		case <-reload:
			cfg, err := Load(w.path)
			if err != nil {
				onError(err)
				continue
			}

			onChange(cfg)
		}
	}
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		_ = w.watcher.Close()
	})
}
