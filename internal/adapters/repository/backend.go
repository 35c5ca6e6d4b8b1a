package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskmaster/board/internal/infrastructure/config"
	"github.com/taskmaster/board/internal/infrastructure/database"
	"github.com/taskmaster/board/internal/infrastructure/logger"
	"github.com/taskmaster/board/internal/ports"
)

// NewDocumentBackend builds the backend selected by cfg.Store. When the
// store is read-only the backend is wrapped in a process-scoped MemoryBackend.
func NewDocumentBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (ports.DocumentBackend, error) {
	var (
		backend ports.DocumentBackend
		err     error
	)

	switch cfg.Store.Backend {
	case "file":
		backend = NewFileBackend(cfg.Store.Path)
	case "postgres":
		backend, err = newPostgres(cfg)
	case "redis":
		backend, err = newRedis(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Store.ReadOnly {
		log.Warnw("Store is read-only: writes are kept in memory and lost on restart",
			"backend", backend.Name(),
		)
		backend = NewMemoryBackend(backend)
	}

	log.Infow("Document backend ready", "backend", backend.Name())
	return backend, nil
}

func newPostgres(cfg *config.Config) (ports.DocumentBackend, error) {
	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, err
	}

	if _, err := db.Migrate("up"); err != nil {
		db.Close()
		return nil, err
	}

	return NewPostgresBackend(db, cfg.Store.Document), nil
}

func newRedis(ctx context.Context, cfg config.RedisConfig) (ports.DocumentBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.GetAddr(), err)
	}

	return NewRedisBackend(client, cfg.Key), nil
}
