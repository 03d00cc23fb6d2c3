package output

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/danieljhkim/lanesim/internal/config"
)

// Driver names a sink implementation.
type Driver string

const (
	DriverFS     Driver = "fs"
	DriverS3     Driver = "s3"
	DriverMemory Driver = "memory"
)

// ErrInvalidKey is returned for keys that are empty, absolute or escape the
// sink root.
var ErrInvalidKey = errors.New("invalid output key")

// Sink stores encoded tables by key. Keys are slash-separated relative
// names. Writing an existing key replaces it.
type Sink interface {
	Driver() Driver
	Put(ctx context.Context, key string, data []byte) error
}

// Open builds the sink selected by cfg. defaultDir is used by the fs
// driver when cfg.Dir is empty.
func Open(ctx context.Context, cfg config.OutputConfig, defaultDir string) (Sink, error) {
	switch Driver(cfg.Driver) {
	case DriverFS, "":
		dir := cfg.Dir
		if dir == "" {
			dir = defaultDir
		}
		fs, err := NewFS(dir)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case DriverS3:
		s3, err := NewS3(ctx, S3Options{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			Prefix:    cfg.S3.Prefix,
			PathStyle: cfg.S3.PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return s3, nil
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported output driver %q", cfg.Driver)
	}
}

// validateKey rejects keys that are not clean relative names.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return fmt.Errorf("%w: %q must be relative", ErrInvalidKey, key)
	}
	cleaned := path.Clean(key)
	if cleaned != key || cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
