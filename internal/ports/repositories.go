package ports

import (
	"context"
	"errors"
)

// ErrBackendUnavailable marks load/save failures caused by an unreachable
// backend. The record store surfaces these instead of self-healing.
var ErrBackendUnavailable = errors.New("document backend unavailable")

// DocumentBackend persists the whole board document as one JSON payload.
//
// Load returns (nil, nil) when no document has been stored yet. Callers treat
// a payload that fails to parse the same way.
type DocumentBackend interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, payload []byte) error
	Ping(ctx context.Context) error
	Name() string
	Close() error
}

// StatsReporter is implemented by backends that keep a connection pool.
type StatsReporter interface {
	Stats() map[string]interface{}
}
