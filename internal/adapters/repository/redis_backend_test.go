package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/board/internal/ports"
)

func redisTestClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 500 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("redis not available at %s: %v", addr, err)
	}
	return client
}

func TestRedisBackend_RoundTrip(t *testing.T) {
	client := redisTestClient(t)
	key := "board:test:" + uuid.NewString()
	ctx := context.Background()

	t.Cleanup(func() {
		client.Del(context.Background(), key)
		client.Close()
	})

	backend := NewRedisBackend(client, key)

	payload, err := backend.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, payload)

	require.NoError(t, backend.Save(ctx, []byte(`{"projects":[{"id":"p1"}]}`)))

	payload, err = backend.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"projects":[{"id":"p1"}]}`, string(payload))

	assert.NoError(t, backend.Ping(ctx))
	assert.Equal(t, "redis", backend.Name())
}

func TestRedisBackend_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	backend := NewRedisBackend(client, "board:document")
	defer backend.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := backend.Load(ctx)
	assert.ErrorIs(t, err, ports.ErrBackendUnavailable)

	err = backend.Save(ctx, []byte(`{}`))
	assert.ErrorIs(t, err, ports.ErrBackendUnavailable)

	assert.Error(t, backend.Ping(ctx))
}
