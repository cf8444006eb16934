package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ytget/yt-queue/internal/model"
)

const (
	DefaultRedisKey  = "ytqueue:tasks"
	redisPingTimeout = 5 * time.Second
)

// RedisStore keeps the queue as a Redis list of JSON records
type RedisStore struct {
	client *redis.Client
	key    string
}

// OpenRedisStore connects to redisURL and uses key for the list
func OpenRedisStore(redisURL, key string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisStore(client, key), nil
}

// NewRedisStore wraps an existing client
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// Load reads the whole list
func (s *RedisStore) Load(ctx context.Context) ([]model.Task, error) {
	values, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read redis queue: %w", err)
	}

	tasks := make([]model.Task, 0, len(values))
	for _, v := range values {
		task, err := decodeTask([]byte(v))
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Save replaces the list inside MULTI/EXEC
func (s *RedisStore) Save(ctx context.Context, current *model.Task, pending []model.Task) error {
	tasks := Flatten(current, pending)
	values := make([]interface{}, 0, len(tasks))
	for _, task := range tasks {
		data, err := encodeTask(task)
		if err != nil {
			return err
		}
		values = append(values, data)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(values) > 0 {
			pipe.RPush(ctx, s.key, values...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save redis queue: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
