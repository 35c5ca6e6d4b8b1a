package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/taskmaster/board/internal/ports"
)

// FileBackend keeps the document in a single JSON file on local disk.
// Writes replace the file in place; a crash mid-write can leave it truncated.
type FileBackend struct {
	path string
	perm os.FileMode
}

// NewFileBackend creates a backend over the file at path
func NewFileBackend(path string) ports.DocumentBackend {
	return &FileBackend{path: path, perm: 0o644}
}

func (b *FileBackend) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payload, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read document file: %w", err)
	}

	return payload, nil
}

func (b *FileBackend) Save(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if dir := filepath.Dir(b.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create document directory: %w", err)
		}
	}

	if err := os.WriteFile(b.path, payload, b.perm); err != nil {
		return fmt.Errorf("write document file: %w", err)
	}

	return nil
}

// Ping checks that the file is readable, or absent in a directory that exists.
func (b *FileBackend) Ping(ctx context.Context) error {
	if _, err := os.Stat(b.path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat document file: %w", err)
		}
		if _, err := os.Stat(filepath.Dir(b.path)); err != nil {
			return fmt.Errorf("stat document directory: %w", err)
		}
	}
	return nil
}

func (b *FileBackend) Name() string {
	return "file"
}

func (b *FileBackend) Close() error {
	return nil
}

// Path returns the backing file path
func (b *FileBackend) Path() string {
	return b.path
}
