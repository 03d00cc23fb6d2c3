package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/danieljhkim/lanesim/internal/lattice"
	"github.com/danieljhkim/lanesim/internal/sim"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Lattice.Length != 500 || cfg.Lattice.Particles != 250 {
		t.Errorf("lattice = %+v, want 500 sites and 250 particles", cfg.Lattice)
	}
	if cfg.Rates.HopA != 0.8 || cfg.Rates.HopB != 0.8 {
		t.Errorf("hop rates = %v/%v, want 0.8/0.8", cfg.Rates.HopA, cfg.Rates.HopB)
	}
	if cfg.Steps != 5_000_000 || cfg.Warmup != 1_000_000 {
		t.Errorf("steps/warmup = %d/%d", cfg.Steps, cfg.Warmup)
	}

	wantCases := map[string]int{"a": 7, "b": 8, "c": 10, "d": 10}
	if len(cfg.Cases) != len(wantCases) {
		t.Fatalf("got %d cases, want %d", len(cfg.Cases), len(wantCases))
	}
	for _, k := range cfg.Cases {
		if n, ok := wantCases[k.ID]; !ok || len(k.Values) != n {
			t.Errorf("case %s has %d values, want %d", k.ID, len(k.Values), n)
		}
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestParse(t *testing.T) {
	t.Run("overlays file values on defaults", func(t *testing.T) {
		cfg, err := Parse([]byte(`
lattice:
  length: 100
  particles: 40
steps: 2000
warmup: 500
seed: 42
cases:
  - id: x
    vary: beta
    values: [0.1, 0.2]
    fixed: 0.6
`))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}

		if cfg.Lattice.Length != 100 || cfg.Lattice.Particles != 40 {
			t.Errorf("lattice = %+v", cfg.Lattice)
		}
		if cfg.Rates.HopA != 0.8 {
			t.Errorf("unspecified rates should keep defaults, got HopA=%v", cfg.Rates.HopA)
		}
		if cfg.Seed != 42 {
			t.Errorf("Seed = %d, want 42", cfg.Seed)
		}
		if len(cfg.Cases) != 1 || cfg.Cases[0].ID != "x" {
			t.Errorf("cases should be replaced by the file, got %+v", cfg.Cases)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("rejects malformed YAML", func(t *testing.T) {
		if _, err := Parse([]byte("steps: [oops")); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("missing optional file returns defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), false)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Lattice.Length != 500 {
			t.Errorf("expected defaults, got %+v", cfg.Lattice)
		}
	})

	t.Run("missing required file is an error", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), true); err == nil {
			t.Error("expected error for missing required file")
		}
	})

	t.Run("reads file and applies env overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sweep.yaml")
		if err := os.WriteFile(path, []byte("workers: 2\nlogging:\n  level: debug\n"), 0644); err != nil {
			t.Fatal(err)
		}
		t.Setenv("LANESIM_WORKERS", "6")

		cfg, err := Load(path, true)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Workers != 6 {
			t.Errorf("Workers = %d, want env override 6", cfg.Workers)
		}
		if cfg.Logging.Level != "debug" {
			t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
		}
	})
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("LANESIM_LOG_LEVEL", "trace")
	t.Setenv("LANESIM_SEED", "99")
	t.Setenv("LANESIM_OUTPUT_DRIVER", "s3")
	t.Setenv("LANESIM_OUTPUT_DIR", "/tmp/out")
	t.Setenv("LANESIM_S3_BUCKET", "phase-data")
	t.Setenv("LANESIM_S3_REGION", "eu-west-1")
	t.Setenv("LANESIM_S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("LANESIM_S3_PREFIX", "sweeps/2024")
	t.Setenv("LANESIM_S3_PATH_STYLE", "true")
	t.Setenv("LANESIM_ARCHIVE", "off")

	cfg := Default()
	applyEnvOverrides(cfg)

	if cfg.Logging.Level != "trace" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	if cfg.Seed != 99 {
		t.Errorf("Seed = %d", cfg.Seed)
	}
	want := OutputConfig{
		Driver: "s3",
		Dir:    "/tmp/out",
		S3: S3Config{
			Bucket:    "phase-data",
			Region:    "eu-west-1",
			Endpoint:  "http://localhost:9000",
			Prefix:    "sweeps/2024",
			PathStyle: true,
		},
	}
	if cfg.Output != want {
		t.Errorf("Output = %+v, want %+v", cfg.Output, want)
	}
	if !cfg.Archive.Disabled {
		t.Error("LANESIM_ARCHIVE=off should disable the archive")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"no cases", func(c *Config) { c.Cases = nil }, true},
		{"negative workers", func(c *Config) { c.Workers = -1 }, true},
		{"unknown driver", func(c *Config) { c.Output.Driver = "ftp" }, true},
		{"s3 without bucket", func(c *Config) { c.Output.Driver = "s3" }, true},
		{"s3 with bucket", func(c *Config) { c.Output.Driver = "s3"; c.Output.S3.Bucket = "b" }, false},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"empty case id", func(c *Config) { c.Cases[0].ID = "" }, true},
		{"case id with slash", func(c *Config) { c.Cases[0].ID = "a/b" }, true},
		{"duplicate case id", func(c *Config) { c.Cases[1].ID = "a" }, true},
		{"bad vary", func(c *Config) { c.Cases[0].Vary = "gamma" }, true},
		{"no values", func(c *Config) { c.Cases[0].Values = nil }, true},
		{"value above one", func(c *Config) { c.Cases[0].Values = []float64{1.2} }, true},
		{"too many particles", func(c *Config) { c.Lattice.Particles = 1001 }, true},
		{"warmup not below steps", func(c *Config) { c.Warmup = c.Steps }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	t.Run("particle overflow is a run configuration error", func(t *testing.T) {
		cfg := Default()
		cfg.Lattice.Particles = 1001
		err := cfg.Validate()
		if !errors.Is(err, sim.ErrInvalidConfig) || !errors.Is(err, lattice.ErrTooManyParticles) {
			t.Errorf("expected ErrTooManyParticles inside ErrInvalidConfig, got %v", err)
		}
	})
}

func TestCase_RunConfig(t *testing.T) {
	template := Default().Template()

	t.Run("varying alpha fixes beta", func(t *testing.T) {
		k := Case{ID: "a", Vary: ParamAlpha, Fixed: 0.05}
		rc := k.RunConfig(template, 0.3)
		if rc.Alpha != 0.3 || rc.Beta != 0.05 {
			t.Errorf("alpha/beta = %v/%v, want 0.3/0.05", rc.Alpha, rc.Beta)
		}
	})

	t.Run("varying beta fixes alpha", func(t *testing.T) {
		k := Case{ID: "b", Vary: ParamBeta, Fixed: 0.35}
		rc := k.RunConfig(template, 0.2)
		if rc.Alpha != 0.35 || rc.Beta != 0.2 {
			t.Errorf("alpha/beta = %v/%v, want 0.35/0.2", rc.Alpha, rc.Beta)
		}
	})

	t.Run("keeps the shared template", func(t *testing.T) {
		k := Case{ID: "a", Vary: ParamAlpha}
		rc := k.RunConfig(template, 0.5)
		if rc.Length != 500 || rc.Steps != 5_000_000 {
			t.Errorf("template fields lost: %+v", rc)
		}
	})
}

func TestSelect(t *testing.T) {
	t.Run("keeps listed cases in given order", func(t *testing.T) {
		cfg := Default()
		if err := cfg.Select([]string{"d", "b"}); err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		if len(cfg.Cases) != 2 || cfg.Cases[0].ID != "d" || cfg.Cases[1].ID != "b" {
			t.Errorf("cases = %+v", cfg.Cases)
		}
	})

	t.Run("empty selection keeps everything", func(t *testing.T) {
		cfg := Default()
		if err := cfg.Select(nil); err != nil {
			t.Fatal(err)
		}
		if len(cfg.Cases) != 4 {
			t.Errorf("got %d cases, want 4", len(cfg.Cases))
		}
	})

	t.Run("unknown case is an error", func(t *testing.T) {
		cfg := Default()
		if err := cfg.Select([]string{"z"}); !errors.Is(err, ErrInvalid) {
			t.Errorf("expected ErrInvalid, got %v", err)
		}
	})
}

func TestMarshal_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Seed = 7

	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if back.Seed != 7 || len(back.Cases) != 4 || back.Cases[2].Values[4] != 0.65 {
		t.Errorf("round trip lost data: %+v", back)
	}
}

func TestEffectiveWorkers(t *testing.T) {
	cfg := Default()
	if cfg.EffectiveWorkers() < 1 {
		t.Error("EffectiveWorkers should be at least one")
	}
	cfg.Workers = 3
	if cfg.EffectiveWorkers() != 3 {
		t.Errorf("EffectiveWorkers() = %d, want 3", cfg.EffectiveWorkers())
	}
}
