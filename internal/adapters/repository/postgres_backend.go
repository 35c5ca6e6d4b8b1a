package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/taskmaster/board/internal/infrastructure/database"
	"github.com/taskmaster/board/internal/ports"
)

// PostgresBackend stores the document as one jsonb row of the documents table.
type PostgresBackend struct {
	db   *database.DB
	name string
}

// NewPostgresBackend creates a backend over the row keyed by name
func NewPostgresBackend(db *database.DB, name string) ports.DocumentBackend {
	return &PostgresBackend{db: db, name: name}
}

func (b *PostgresBackend) Load(ctx context.Context) ([]byte, error) {
	query := `SELECT body FROM documents WHERE name = $1`

	var body []byte
	err := b.db.DB.GetContext(ctx, &body, query, b.name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: load document %q: %v", ports.ErrBackendUnavailable, b.name, err)
	}

	return body, nil
}

func (b *PostgresBackend) Save(ctx context.Context, payload []byte) error {
	query := `
		INSERT INTO documents (name, body, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (name) DO UPDATE
		SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`

	if _, err := b.db.DB.ExecContext(ctx, query, b.name, string(payload)); err != nil {
		return fmt.Errorf("%w: save document %q: %v", ports.ErrBackendUnavailable, b.name, err)
	}

	return nil
}

func (b *PostgresBackend) Ping(ctx context.Context) error {
	return b.db.HealthCheck(ctx)
}

// Stats reports connection pool usage
func (b *PostgresBackend) Stats() map[string]interface{} {
	return b.db.GetConnectionInfo()
}

func (b *PostgresBackend) Name() string {
	return "postgres"
}

func (b *PostgresBackend) Close() error {
	return b.db.Close()
}
