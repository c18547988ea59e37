package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileStore saves files to disk under a base directory. References are
// absolute file paths.
type FileStore struct {
	basePath string
}

// NewFileStore creates the base directory if missing.
func NewFileStore(basePath string) (*FileStore, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("storage base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve storage dir: %w", err)
	}
	return &FileStore{basePath: abs}, nil
}

// Save writes the file under the base directory and returns its path.
func (f *FileStore) Save(_ context.Context, key string, r io.Reader, _ int64) (string, error) {
	target := filepath.Join(f.basePath, safeFilename(key))
	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, r); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return target, nil
}

// Open returns the stored file for reading.
func (f *FileStore) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	file, err := os.Open(ref)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return file, nil
}

// Exists reports whether the reference still resolves on disk.
func (f *FileStore) Exists(_ context.Context, ref string) bool {
	info, err := os.Stat(ref)
	return err == nil && !info.IsDir()
}

// Delete removes the stored file. A missing file is not an error.
func (f *FileStore) Delete(_ context.Context, ref string) error {
	if err := os.Remove(ref); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

func safeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
	name = strings.TrimSpace(name)
	if name == "" {
		return "book"
	}
	return name
}
