package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/danieljhkim/lanesim/internal/archive"
	"github.com/danieljhkim/lanesim/internal/config"
	"github.com/danieljhkim/lanesim/internal/logging"
)

// loadConfig resolves the sweep configuration. An explicit --config file
// must exist; the default file is optional.
func loadConfig(paths *config.Paths) (*config.Config, error) {
	path, required := paths.Config, false
	if configFile != "" {
		path, required = configFile, true
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

// newLogger builds the operational logger. Logs go to stderr.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return logging.NewLogger(cfg.Logging.Level, w)
}

// archivePath returns the archive database for cfg.
func archivePath(cfg *config.Config, paths *config.Paths) string {
	if cfg.Archive.Path != "" {
		return cfg.Archive.Path
	}
	return paths.Archive
}

// openArchive opens the run archive, or returns nil when it is disabled.
func openArchive(ctx context.Context, cfg *config.Config, paths *config.Paths) (*archive.Store, error) {
	if cfg.Archive.Disabled {
		return nil, nil
	}
	store, err := archive.Open(ctx, archivePath(cfg, paths))
	if err != nil {
		return nil, fmt.Errorf("failed to open run archive: %w", err)
	}
	return store, nil
}

// FormatError formats an error for display.
func FormatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
