package alarms

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"github.com/oshokin/aevum/internal/config"
	domain "github.com/oshokin/aevum/internal/domain/alarm"
)

// document is the on-disk layout of the JSON state file.
type document struct {
	Alarms []domain.Alarm `json:"alarms"`
}

// FileRepository persists the alarms to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the JSON state file.
	path string
	// mu protects concurrent access to the state file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the alarms from disk.
func (r *FileRepository) Load(_ context.Context) ([]domain.Alarm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var doc document
	if err = json.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	return doc.Alarms, nil
}

// Save writes the alarms next to the state file and renames the result
// over it, so a crash never leaves a truncated document behind.
func (r *FileRepository) Save(_ context.Context, alarms []domain.Alarm) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if alarms == nil {
		alarms = []domain.Alarm{}
	}

	data, err := json.MarshalIndent(document{Alarms: alarms}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode alarms: %w", err)
	}

	tmp := r.path + ".tmp"

	if err = os.WriteFile(tmp, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	if err = os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)

		return fmt.Errorf("replace state file: %w", err)
	}

	return nil
}

// Close is a no-op; the file is opened per call.
func (r *FileRepository) Close() error {
	return nil
}
