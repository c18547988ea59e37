package storage

import (
	"context"
	"io"
)

// BlobStore stores book and test files under opaque string references.
// Save returns the reference the caller persists alongside the book record;
// the other operations take that reference back.
type BlobStore interface {
	Save(ctx context.Context, key string, r io.Reader, size int64) (string, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	Exists(ctx context.Context, ref string) bool
	Delete(ctx context.Context, ref string) error
}
