package storage

import (
	"context"
	"errors"
	"io"
)

var ErrInvalidPath = errors.New("storage: path escapes base directory")

// FileStorage keeps payroll exports and backup archives.
type FileStorage interface {
	// Upload writes the object at key, replacing any previous content.
	Upload(ctx context.Context, file io.Reader, key string) (string, error)

	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete is a no-op for a missing key.
	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)

	// List returns the keys directly under prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}
