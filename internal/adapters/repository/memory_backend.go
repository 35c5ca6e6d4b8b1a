package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/taskmaster/board/internal/ports"
)

// MemoryBackend holds the document for the lifetime of the process. The
// seed backend is read until one Load succeeds; every later Save stays in
// memory, so nothing written here survives a restart.
type MemoryBackend struct {
	seed ports.DocumentBackend

	mu      sync.Mutex
	loaded  bool
	payload []byte
}

// NewMemoryBackend creates a process-scoped backend. seed may be nil.
func NewMemoryBackend(seed ports.DocumentBackend) *MemoryBackend {
	return &MemoryBackend{seed: seed}
}

func (b *MemoryBackend) Load(ctx context.Context) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.loaded && b.seed != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// a failed seed read is retried on the next Load
		payload, err := b.seed.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load seed document: %w", err)
		}
		b.payload = payload
	}
	b.loaded = true

	return clone(b.payload), nil
}

func (b *MemoryBackend) Save(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.payload = clone(payload)
	b.loaded = true
	return nil
}

func (b *MemoryBackend) Ping(ctx context.Context) error {
	return nil
}

// Stats forwards pool statistics of the seed backend, if it keeps any
func (b *MemoryBackend) Stats() map[string]interface{} {
	if reporter, ok := b.seed.(ports.StatsReporter); ok {
		return reporter.Stats()
	}
	return nil
}

func (b *MemoryBackend) Name() string {
	if b.seed == nil {
		return "memory"
	}
	return "memory+" + b.seed.Name()
}

func (b *MemoryBackend) Close() error {
	if b.seed != nil {
		return b.seed.Close()
	}
	return nil
}

func clone(p []byte) []byte {
	if p == nil {
		return nil
	}
	out := make([]byte, len(p))
	copy(out, p)
	return out
}
