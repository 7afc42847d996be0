package alarms

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/aevum/internal/config"
	domain "github.com/oshokin/aevum/internal/domain/alarm"
)

// Repository defines persistence operations for the pending alarms.
type Repository interface {
	// Load returns the stored alarms or ErrNotFound when nothing was saved yet.
	Load(ctx context.Context) ([]domain.Alarm, error)
	// Save replaces the stored alarms.
	Save(ctx context.Context, alarms []domain.Alarm) error
	// Close releases the underlying storage.
	Close() error
}

var (
	// ErrNotFound is returned when no alarms were persisted yet.
	ErrNotFound = errors.New("alarms not found")
	// errUnknownStorage is returned for a storage name Open does not know.
	errUnknownStorage = errors.New("unknown storage")
)

// Open creates the repository selected by settings.Storage.
// The path override, when set, replaces the configured file or database path.
//
//nolint:ireturn // Callers choose the backend at runtime.
func Open(ctx context.Context, settings *config.Config, path string) (Repository, error) {
	switch settings.Storage {
	case config.StorageFile, "":
		if path == "" {
			path = settings.StateFile
		}

		return NewFileRepository(path), nil
	case config.StorageSQLite:
		if path == "" {
			path = settings.Database
		}

		return OpenSQLite(ctx, path)
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownStorage, settings.Storage)
	}
}
