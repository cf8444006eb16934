package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/ytget/yt-queue/internal/model"
)

const (
	QueueBucketName = "queue"
	boltOpenTimeout = time.Second
)

// BoltStore keeps one JSON record per queue position in a bbolt bucket
type BoltStore struct {
	db *bbolt.DB
}

// OpenBoltStore opens or creates the database at path
func OpenBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), DefaultDirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: boltOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt store %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(QueueBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create queue bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Load returns records in key order
func (s *BoltStore) Load(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(QueueBucketName))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(_, v []byte) error {
			task, err := decodeTask(v)
			if err != nil {
				return err
			}
			tasks = append(tasks, task)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load bolt queue: %w", err)
	}
	return tasks, nil
}

// Save replaces the bucket contents in a single transaction
func (s *BoltStore) Save(ctx context.Context, current *model.Task, pending []model.Task) error {
	tasks := Flatten(current, pending)
	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(QueueBucketName)) != nil {
			if err := tx.DeleteBucket([]byte(QueueBucketName)); err != nil {
				return fmt.Errorf("failed to reset queue bucket: %w", err)
			}
		}
		bucket, err := tx.CreateBucket([]byte(QueueBucketName))
		if err != nil {
			return fmt.Errorf("failed to create queue bucket: %w", err)
		}

		for i, task := range tasks {
			data, err := encodeTask(task)
			if err != nil {
				return err
			}
			if err := bucket.Put(positionKey(i), data); err != nil {
				return fmt.Errorf("failed to put task %s: %w", task.ID, err)
			}
		}
		return nil
	})
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func positionKey(i int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(i))
	return key
}
