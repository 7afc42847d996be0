package alarms

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // Registers the "sqlite" driver.

	domain "github.com/oshokin/aevum/internal/domain/alarm"
)

// SQLiteRepository persists the alarms in a SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and migrates it.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite serialises writers anyway; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()

			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	repo := &SQLiteRepository{db: db}

	if err := repo.migrate(ctx); err != nil {
		_ = db.Close()

		return nil, err
	}

	return repo, nil
}

func (r *SQLiteRepository) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS alarms (
			id            TEXT PRIMARY KEY,
			unix_time     INTEGER NOT NULL,
			ring_duration INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create alarms: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS metadata (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create metadata: %w", err)
	}

	return nil
}

// Load returns the stored alarms ordered by trigger time. A database that
// was never saved to reports ErrNotFound.
func (r *SQLiteRepository) Load(ctx context.Context) ([]domain.Alarm, error) {
	var saved string

	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = 'saved'`).Scan(&saved)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, unix_time, ring_duration FROM alarms ORDER BY unix_time, id`)
	if err != nil {
		return nil, fmt.Errorf("query alarms: %w", err)
	}
	defer rows.Close()

	var alarms []domain.Alarm

	for rows.Next() {
		var alarm domain.Alarm
		if err := rows.Scan(&alarm.ID, &alarm.UnixTime, &alarm.RingDuration); err != nil {
			return nil, fmt.Errorf("scan alarm: %w", err)
		}

		alarms = append(alarms, alarm)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alarms: %w", err)
	}

	return alarms, nil
}

// Save replaces the table contents in one transaction.
func (r *SQLiteRepository) Save(ctx context.Context, alarms []domain.Alarm) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM alarms`); err != nil {
		return fmt.Errorf("clear alarms: %w", err)
	}

	for _, alarm := range alarms {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO alarms (id, unix_time, ring_duration) VALUES (?, ?, ?)`,
			alarm.ID, alarm.UnixTime, alarm.RingDuration,
		)
		if err != nil {
			return fmt.Errorf("insert alarm %s: %w", alarm.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO metadata (key, value) VALUES ('saved', '1')
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`)
	if err != nil {
		return fmt.Errorf("mark saved: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// Close closes the database.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
