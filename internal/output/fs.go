package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FS writes tables below a root directory. Each write goes to a temp file
// in the destination directory and is renamed into place, so readers never
// see a partial table.
type FS struct {
	root string
}

// NewFS returns a sink rooted at dir. The directory is created on first
// write.
func NewFS(dir string) (*FS, error) {
	if dir == "" {
		return nil, fmt.Errorf("output directory required for fs driver")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute output directory.
func (s *FS) Root() string { return s.root }

func (s *FS) Driver() Driver { return DriverFS }

// Path returns where key is stored on disk.
func (s *FS) Path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// Put writes data to key atomically.
func (s *FS) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}
	return atomicWrite(s.Path(key), data, 0644)
}

func atomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".lanesim-tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if tmp != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	tmp = nil
	return nil
}
