package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPaths(t *testing.T) {
	t.Run("defaults to results under the working directory", func(t *testing.T) {
		t.Setenv("LANESIM_HOME", "")
		t.Setenv("LANESIM_CONFIG", "")

		paths, err := DefaultPaths()
		if err != nil {
			t.Fatalf("DefaultPaths failed: %v", err)
		}

		cwd, _ := os.Getwd()
		if paths.Root != filepath.Join(cwd, "results") {
			t.Errorf("Root = %s, want %s", paths.Root, filepath.Join(cwd, "results"))
		}
		if paths.Archive != filepath.Join(paths.Root, "runs.db") {
			t.Errorf("Archive path incorrect: got %s", paths.Archive)
		}
		if paths.Metrics != filepath.Join(paths.Root, "metrics.prom") {
			t.Errorf("Metrics path incorrect: got %s", paths.Metrics)
		}
		if paths.Config != "lanesim.yaml" {
			t.Errorf("Config = %s, want lanesim.yaml", paths.Config)
		}
	})

	t.Run("respects LANESIM_HOME environment variable", func(t *testing.T) {
		customRoot := "/custom/lanesim/path"
		t.Setenv("LANESIM_HOME", customRoot)

		paths, err := DefaultPaths()
		if err != nil {
			t.Fatalf("DefaultPaths failed: %v", err)
		}

		if paths.Root != customRoot {
			t.Errorf("Expected root %s, got %s", customRoot, paths.Root)
		}
		if paths.Archive != filepath.Join(customRoot, "runs.db") {
			t.Errorf("Archive path should use custom root, got %s", paths.Archive)
		}
	})

	t.Run("respects LANESIM_CONFIG environment variable", func(t *testing.T) {
		t.Setenv("LANESIM_CONFIG", "/etc/lanesim/sweep.yaml")

		paths, err := DefaultPaths()
		if err != nil {
			t.Fatalf("DefaultPaths failed: %v", err)
		}
		if paths.Config != "/etc/lanesim/sweep.yaml" {
			t.Errorf("Config = %s", paths.Config)
		}
	})
}

func TestEnsureDirectories(t *testing.T) {
	t.Run("creates the output root", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "nested", "results")
		paths := &Paths{Root: root}

		if err := paths.EnsureDirectories(); err != nil {
			t.Fatalf("EnsureDirectories failed: %v", err)
		}

		info, err := os.Stat(root)
		if err != nil {
			t.Fatalf("root was not created: %v", err)
		}
		if !info.IsDir() {
			t.Error("root is not a directory")
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		paths := &Paths{Root: t.TempDir()}
		if err := paths.EnsureDirectories(); err != nil {
			t.Fatalf("first call failed: %v", err)
		}
		if err := paths.EnsureDirectories(); err != nil {
			t.Fatalf("second call failed: %v", err)
		}
	})
}
