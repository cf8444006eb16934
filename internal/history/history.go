// Package history keeps a log of finished downloads in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ytget/yt-queue/internal/model"
)

// Outcome values
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// DefaultListLimit caps List when no limit is given
const DefaultListLimit = 200

const schema = `
CREATE TABLE IF NOT EXISTS downloads (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id TEXT NOT NULL,
	url TEXT NOT NULL,
	media_type TEXT NOT NULL,
	quality TEXT,
	destination TEXT,
	output_path TEXT,
	status TEXT NOT NULL,
	error TEXT,
	finished_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_downloads_finished_at ON downloads(finished_at);
`

// Entry is one finished download
type Entry struct {
	ID          int64
	TaskID      string
	URL         string
	MediaType   model.MediaType
	Quality     string
	Destination string
	OutputPath  string
	Status      string
	Error       string
	FinishedAt  time.Time
}

// Succeeded reports whether the download completed
func (e Entry) Succeeded() bool {
	return e.Status == StatusSucceeded
}

// Store is the history database
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the history database at path
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// WAL is not critical; ignore if unsupported
	db.Exec(`PRAGMA busy_timeout = 5000; PRAGMA journal_mode = WAL;`)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Record stores the outcome of a finished task
func (s *Store) Record(ctx context.Context, task model.Task, outputPath string, taskErr error) error {
	status, errText := StatusSucceeded, ""
	if taskErr != nil {
		status, errText = StatusFailed, taskErr.Error()
	}

	query := `INSERT INTO downloads (task_id, url, media_type, quality, destination, output_path, status, error, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		task.ID, task.URL, string(task.MediaType), task.Quality, task.Destination,
		outputPath, status, errText, s.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to record history for %s: %w", task.ID, err)
	}
	return nil
}

// List returns the most recent entries first
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `SELECT id, task_id, url, media_type, quality, destination, output_path, status, error, finished_at
		FROM downloads ORDER BY finished_at DESC, id DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			mediaType  string
			quality    sql.NullString
			dest       sql.NullString
			output     sql.NullString
			errText    sql.NullString
			finishedMs int64
		)
		if err := rows.Scan(&e.ID, &e.TaskID, &e.URL, &mediaType, &quality, &dest, &output, &e.Status, &errText, &finishedMs); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.MediaType = model.MediaType(mediaType)
		e.Quality = quality.String
		e.Destination = dest.String
		e.OutputPath = output.String
		e.Error = errText.String
		e.FinishedAt = time.UnixMilli(finishedMs)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return entries, nil
}

// Clear deletes every entry
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM downloads`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
