package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/board/internal/ports"
)

// countingBackend records how often it is read and written
type countingBackend struct {
	payload []byte
	err     error
	loads   int
	saves   int
	closed  bool
}

func (b *countingBackend) Load(ctx context.Context) ([]byte, error) {
	b.loads++
	return b.payload, b.err
}

func (b *countingBackend) Save(ctx context.Context, payload []byte) error {
	b.saves++
	b.payload = payload
	return nil
}

func (b *countingBackend) Ping(ctx context.Context) error { return nil }
func (b *countingBackend) Name() string                   { return "counting" }

func (b *countingBackend) Close() error {
	b.closed = true
	return nil
}

func TestMemoryBackend_SeedsOnce(t *testing.T) {
	seed := &countingBackend{payload: []byte(`{"users":[{"id":"u1"}]}`)}
	backend := NewMemoryBackend(seed)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		payload, err := backend.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, `{"users":[{"id":"u1"}]}`, string(payload))
	}
	assert.Equal(t, 1, seed.loads)
}

func TestMemoryBackend_WritesStayInMemory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tasks":[]}`), 0o644))

	backend := NewMemoryBackend(NewFileBackend(path))
	ctx := context.Background()

	require.NoError(t, backend.Save(ctx, []byte(`{"tasks":[{"id":"t1"}]}`)))

	payload, err := backend.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"tasks":[{"id":"t1"}]}`, string(payload))

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"tasks":[]}`, string(onDisk))
}

func TestMemoryBackend_ReturnsCopies(t *testing.T) {
	backend := NewMemoryBackend(nil)
	ctx := context.Background()

	input := []byte(`{"a":1}`)
	require.NoError(t, backend.Save(ctx, input))
	input[2] = 'b'

	first, err := backend.Load(ctx)
	require.NoError(t, err)
	first[2] = 'c'

	second, err := backend.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(second))
}

func TestMemoryBackend_WithoutSeed(t *testing.T) {
	backend := NewMemoryBackend(nil)

	payload, err := backend.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, payload)
	assert.Equal(t, "memory", backend.Name())
	assert.NoError(t, backend.Ping(context.Background()))
}

func TestMemoryBackend_SeedErrors(t *testing.T) {
	ctx := context.Background()

	denied := &countingBackend{err: errors.New("permission denied")}
	unreadable := NewMemoryBackend(denied)
	_, err := unreadable.Load(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")

	denied.err = nil
	denied.payload = []byte(`{"users":[]}`)
	payload, err := unreadable.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"users":[]}`, string(payload))

	down := &countingBackend{err: fmt.Errorf("%w: timeout", ports.ErrBackendUnavailable)}
	backend := NewMemoryBackend(down)
	_, err = backend.Load(ctx)
	assert.ErrorIs(t, err, ports.ErrBackendUnavailable)

	down.err = nil
	down.payload = []byte(`{}`)
	payload, err = backend.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(payload))
	assert.Equal(t, 2, down.loads)
}

func TestMemoryBackend_CancelledLoadDoesNotLatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"users":[{"id":"u1"}]}`), 0o644))

	backend := NewMemoryBackend(NewFileBackend(path))

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	payload, err := backend.Load(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, payload)

	payload, err = backend.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `{"users":[{"id":"u1"}]}`, string(payload))
}

func TestMemoryBackend_MissingSeedLatches(t *testing.T) {
	seed := &countingBackend{}
	backend := NewMemoryBackend(seed)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		payload, err := backend.Load(ctx)
		require.NoError(t, err)
		assert.Nil(t, payload)
	}
	assert.Equal(t, 1, seed.loads)
}

func TestMemoryBackend_CloseClosesSeed(t *testing.T) {
	seed := &countingBackend{}
	backend := NewMemoryBackend(seed)

	assert.Equal(t, "memory+counting", backend.Name())
	require.NoError(t, backend.Close())
	assert.True(t, seed.closed)
	assert.Zero(t, seed.saves)
}

type pooledBackend struct{ countingBackend }

func (b *pooledBackend) Stats() map[string]interface{} {
	return map[string]interface{}{"open_connections": 2}
}

func TestMemoryBackend_ForwardsSeedStats(t *testing.T) {
	assert.Nil(t, NewMemoryBackend(nil).Stats())
	assert.Nil(t, NewMemoryBackend(&countingBackend{}).Stats())

	backend := NewMemoryBackend(&pooledBackend{})
	assert.Equal(t, map[string]interface{}{"open_connections": 2}, backend.Stats())
}
