package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/taskmaster/board/internal/ports"
)

// RedisBackend stores the document under a single string key.
type RedisBackend struct {
	client *redis.Client
	key    string
}

// NewRedisBackend creates a backend over key
func NewRedisBackend(client *redis.Client, key string) ports.DocumentBackend {
	return &RedisBackend{client: client, key: key}
}

func (b *RedisBackend) Load(ctx context.Context) ([]byte, error) {
	payload, err := b.client.Get(ctx, b.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get %s: %v", ports.ErrBackendUnavailable, b.key, err)
	}
	return payload, nil
}

func (b *RedisBackend) Save(ctx context.Context, payload []byte) error {
	if err := b.client.Set(ctx, b.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ports.ErrBackendUnavailable, b.key, err)
	}
	return nil
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBackend) Name() string {
	return "redis"
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}
