// Package config manages lanesim configuration and filesystem paths.
//
// A sweep is described by a YAML file layered over built-in defaults that
// reproduce the reference phase-diagram sweep, followed by environment
// overrides. Output locations default to ./results and can be moved with
// LANESIM_HOME.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains the filesystem locations used by lanesim.
type Paths struct {
	// Root is the base directory for all output (default: ./results)
	Root string

	// Archive is the SQLite run archive
	Archive string

	// Metrics is the default Prometheus textfile location
	Metrics string

	// Config is the sweep file picked up when --config is not given
	Config string
}

// DefaultPaths returns the default paths for lanesim.
// Paths can be overridden with environment variables:
// - LANESIM_HOME: Override the output root directory
// - LANESIM_CONFIG: Override the sweep file location
func DefaultPaths() (*Paths, error) {
	root := os.Getenv("LANESIM_HOME")
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		root = filepath.Join(cwd, "results")
	}

	cfgPath := os.Getenv("LANESIM_CONFIG")
	if cfgPath == "" {
		cfgPath = "lanesim.yaml"
	}

	return &Paths{
		Root:    root,
		Archive: filepath.Join(root, "runs.db"),
		Metrics: filepath.Join(root, "metrics.prom"),
		Config:  cfgPath,
	}, nil
}

// EnsureDirectories creates the output root if it doesn't exist.
func (p *Paths) EnsureDirectories() error {
	if err := os.MkdirAll(p.Root, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", p.Root, err)
	}
	return nil
}
