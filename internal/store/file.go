package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ytget/yt-queue/internal/model"
)

// File permissions
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
	tempFilePattern        = ".queue-*.tmp"
)

type fileSnapshot struct {
	Version int               `json:"version"`
	Tasks   []json.RawMessage `json:"tasks"`
}

// FileStore keeps the queue in a single JSON document
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store writing to path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the snapshot location
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the snapshot
func (s *FileStore) Load(ctx context.Context) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrCorrupt, s.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var snap fileSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	tasks := make([]model.Task, 0, len(snap.Tasks))
	for _, raw := range snap.Tasks {
		task, err := decodeTask(raw)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Save writes the full queue to a temp file and renames it over the snapshot
func (s *FileStore) Save(ctx context.Context, current *model.Task, pending []model.Task) error {
	tasks := Flatten(current, pending)
	snap := fileSnapshot{Version: FormatVersion, Tasks: make([]json.RawMessage, 0, len(tasks))}
	for _, task := range tasks {
		data, err := encodeTask(task)
		if err != nil {
			return err
		}
		snap.Tasks = append(snap.Tasks, data)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal queue: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFileAtomic(s.path, data)
}

// Close is a no-op for file stores
func (s *FileStore) Close() error {
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
