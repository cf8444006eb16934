// Package store persists the download queue. Every Save overwrites the whole
// queue as "current task followed by pending tasks", so a process killed at
// any point restarts with the interrupted task first in line.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ytget/yt-queue/internal/model"
)

// Backend names
const (
	BackendFile  = "file"
	BackendBolt  = "bolt"
	BackendRedis = "redis"
)

// FormatVersion is written into file snapshots
const FormatVersion = 1

var (
	// ErrCorrupt is returned by Load when stored data cannot be decoded
	ErrCorrupt = errors.New("queue store is corrupt")

	// ErrUnknownBackend is returned by Open for an unsupported backend name
	ErrUnknownBackend = errors.New("unknown queue store backend")
)

// Store is a durable ordered list of queued tasks
type Store interface {
	// Load returns the stored tasks in order. A missing store is empty, not an error.
	Load(ctx context.Context) ([]model.Task, error)
	// Save replaces the stored list with current (if any) followed by pending.
	Save(ctx context.Context, current *model.Task, pending []model.Task) error
	Close() error
}

// Config selects and configures a backend
type Config struct {
	Backend  string
	Path     string
	RedisURL string
	RedisKey string
}

// Open creates the store described by cfg
func Open(cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendFile:
		return NewFileStore(cfg.Path), nil
	case BackendBolt:
		return OpenBoltStore(cfg.Path)
	case BackendRedis:
		return OpenRedisStore(cfg.RedisURL, cfg.RedisKey)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}

// Flatten returns current followed by pending as a fresh slice
func Flatten(current *model.Task, pending []model.Task) []model.Task {
	tasks := make([]model.Task, 0, len(pending)+1)
	if current != nil {
		tasks = append(tasks, *current)
	}
	return append(tasks, pending...)
}

func encodeTask(task model.Task) ([]byte, error) {
	data, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task %s: %w", task.ID, err)
	}
	return data, nil
}

func decodeTask(data []byte) (model.Task, error) {
	var task model.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return model.Task{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return task.Normalize(), nil
}
