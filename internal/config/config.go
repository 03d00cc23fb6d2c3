package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danieljhkim/lanesim/internal/planner"
	"github.com/danieljhkim/lanesim/internal/sim"
)

// ErrInvalid indicates a sweep configuration that cannot be run.
var ErrInvalid = errors.New("invalid configuration")

// Param names the boundary rate a sweep case varies.
type Param string

const (
	// ParamAlpha varies the injection rate.
	ParamAlpha Param = "alpha"
	// ParamBeta varies the extraction rate.
	ParamBeta Param = "beta"
)

// Config is a complete sweep description.
type Config struct {
	// Lattice sets the lane length and initial particle count.
	Lattice LatticeConfig `json:"lattice" yaml:"lattice"`

	// Rates are the interior transition probabilities shared by every run.
	Rates planner.Rates `json:"rates" yaml:"rates"`

	// Steps is the total number of updates per run.
	Steps int `json:"steps" yaml:"steps"`

	// Warmup is the number of initial steps excluded from the statistics.
	Warmup int `json:"warmup" yaml:"warmup"`

	// Seed is the base seed of the sweep. Zero picks one at startup.
	Seed uint64 `json:"seed" yaml:"seed"`

	// Workers bounds the number of runs executing at once. Zero means one
	// per CPU.
	Workers int `json:"workers" yaml:"workers"`

	// Cases are the sweep cases, run in order of declaration.
	Cases []Case `json:"cases" yaml:"cases"`

	// Output selects where density tables are written.
	Output OutputConfig `json:"output" yaml:"output"`

	// Archive configures the SQLite run archive.
	Archive ArchiveConfig `json:"archive" yaml:"archive"`

	// Logging configures operational logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// LatticeConfig sets the lattice geometry.
type LatticeConfig struct {
	Length    int `json:"length" yaml:"length"`
	Particles int `json:"particles" yaml:"particles"`
}

// Case is one family of runs that varies a single boundary rate.
type Case struct {
	// ID is a short identifier used in output names (e.g. "a").
	ID string `json:"id" yaml:"id"`

	// Title is a human-readable label (e.g. "(a) beta=0.05").
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Vary is the rate swept over Values.
	Vary Param `json:"vary" yaml:"vary"`

	// Values are the values taken by the varied rate.
	Values []float64 `json:"values" yaml:"values"`

	// Fixed is the value of the other boundary rate.
	Fixed float64 `json:"fixed" yaml:"fixed"`
}

// OutputConfig selects the density table sink.
type OutputConfig struct {
	// Driver is one of "fs", "s3" or "memory".
	Driver string `json:"driver" yaml:"driver"`

	// Dir is the output directory for the fs driver. Empty means the
	// default results directory.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// S3 configures the s3 driver.
	S3 S3Config `json:"s3,omitempty" yaml:"s3,omitempty"`
}

// S3Config configures the S3-compatible sink.
type S3Config struct {
	Bucket    string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Region    string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Prefix    string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	PathStyle bool   `json:"path_style,omitempty" yaml:"path_style,omitempty"`
}

// ArchiveConfig configures the run archive.
type ArchiveConfig struct {
	// Disabled turns the archive off.
	Disabled bool `json:"disabled,omitempty" yaml:"disabled,omitempty"`

	// Path is the database file. Empty means the default location.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// LoggingConfig configures operational logging.
type LoggingConfig struct {
	// Level is "info" (default), "debug" or "trace".
	Level string `json:"level" yaml:"level"`
}

// Default returns the reference sweep: four cases over a 500-site lattice
// holding 250 particles.
func Default() *Config {
	return &Config{
		Lattice: LatticeConfig{
			Length:    500,
			Particles: 250,
		},
		Rates: planner.Rates{
			HopA:      0.8,
			ConvertAB: 0.01,
			HopB:      0.8,
			ConvertBA: 0.01,
		},
		Steps:  5_000_000,
		Warmup: 1_000_000,
		Cases: []Case{
			{
				ID:     "a",
				Title:  "(a) beta=0.05",
				Vary:   ParamAlpha,
				Values: []float64{0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9},
				Fixed:  0.05,
			},
			{
				ID:     "b",
				Title:  "(b) alpha=0.35",
				Vary:   ParamBeta,
				Values: []float64{0.20, 0.30, 0.32, 0.34, 0.36, 0.38, 0.40, 0.50},
				Fixed:  0.35,
			},
			{
				ID:     "c",
				Title:  "(c) alpha=0.7",
				Vary:   ParamBeta,
				Values: []float64{0.3, 0.4, 0.5, 0.6, 0.65, 0.7, 0.75, 0.8, 0.85, 0.9},
				Fixed:  0.7,
			},
			{
				ID:     "d",
				Title:  "(d) beta=0.4",
				Vary:   ParamAlpha,
				Values: []float64{0, 0.15, 0.30, 0.45, 0.50, 0.53, 0.56, 0.60, 0.75, 0.90},
				Fixed:  0.4,
			},
		},
		Output: OutputConfig{
			Driver: "fs",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load returns the defaults, overlaid with path if it exists, then with
// environment variables. A missing file at path is not an error unless
// required is set.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			fileCfg, err := LoadFromFile(path)
			if err != nil {
				return nil, fmt.Errorf("loading config file: %w", err)
			}
			cfg = fileCfg
		} else if required || !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromFile loads a sweep from a YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Template returns the run configuration shared by every run of the sweep.
// Alpha and Beta are left at zero.
func (c *Config) Template() sim.Config {
	return sim.Config{
		Length:    c.Lattice.Length,
		Particles: c.Lattice.Particles,
		Rates:     c.Rates,
		Steps:     c.Steps,
		Warmup:    c.Warmup,
	}
}

// EffectiveWorkers returns Workers, or the CPU count when unset.
func (c *Config) EffectiveWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// RunConfig returns the run configuration of this case at value v.
func (k Case) RunConfig(template sim.Config, v float64) sim.Config {
	rc := template
	switch k.Vary {
	case ParamAlpha:
		rc.Alpha, rc.Beta = v, k.Fixed
	case ParamBeta:
		rc.Alpha, rc.Beta = k.Fixed, v
	}
	return rc
}

// Validate checks the sweep and every run it describes.
func (c *Config) Validate() error {
	if len(c.Cases) == 0 {
		return fmt.Errorf("%w: no sweep cases", ErrInvalid)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalid, c.Workers)
	}

	validDrivers := map[string]bool{"fs": true, "s3": true, "memory": true}
	if !validDrivers[c.Output.Driver] {
		return fmt.Errorf("%w: invalid output driver: %s (valid: fs, s3, memory)", ErrInvalid, c.Output.Driver)
	}
	if c.Output.Driver == "s3" && c.Output.S3.Bucket == "" {
		return fmt.Errorf("%w: output.s3.bucket required for s3 driver", ErrInvalid)
	}

	validLevels := map[string]bool{"": true, "info": true, "debug": true, "trace": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("%w: invalid log level: %s (valid: info, debug, trace)", ErrInvalid, c.Logging.Level)
	}

	template := c.Template()
	seen := make(map[string]bool, len(c.Cases))
	for _, k := range c.Cases {
		if k.ID == "" {
			return fmt.Errorf("%w: case id must not be empty", ErrInvalid)
		}
		if strings.ContainsAny(k.ID, `/\ `) {
			return fmt.Errorf("%w: case id %q must not contain separators or spaces", ErrInvalid, k.ID)
		}
		if seen[k.ID] {
			return fmt.Errorf("%w: duplicate case id %q", ErrInvalid, k.ID)
		}
		seen[k.ID] = true

		if k.Vary != ParamAlpha && k.Vary != ParamBeta {
			return fmt.Errorf("%w: case %s: vary must be alpha or beta, got %q", ErrInvalid, k.ID, k.Vary)
		}
		if len(k.Values) == 0 {
			return fmt.Errorf("%w: case %s: no values", ErrInvalid, k.ID)
		}
		for _, v := range k.Values {
			if err := k.RunConfig(template, v).Validate(); err != nil {
				return fmt.Errorf("case %s, %s=%.2f: %w", k.ID, k.Vary, v, err)
			}
		}
	}
	return nil
}

// Select keeps only the cases whose ids are listed. An empty list keeps
// every case.
func (c *Config) Select(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	byID := make(map[string]Case, len(c.Cases))
	for _, k := range c.Cases {
		byID[k.ID] = k
	}
	selected := make([]Case, 0, len(ids))
	for _, id := range ids {
		k, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: unknown case %q", ErrInvalid, id)
		}
		selected = append(selected, k)
	}
	c.Cases = selected
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LANESIM_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LANESIM_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("LANESIM_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Seed = n
		}
	}

	if v := os.Getenv("LANESIM_OUTPUT_DRIVER"); v != "" {
		cfg.Output.Driver = v
	}
	if v := os.Getenv("LANESIM_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("LANESIM_S3_BUCKET"); v != "" {
		cfg.Output.S3.Bucket = v
	}
	if v := os.Getenv("LANESIM_S3_REGION"); v != "" {
		cfg.Output.S3.Region = v
	}
	if v := os.Getenv("LANESIM_S3_ENDPOINT"); v != "" {
		cfg.Output.S3.Endpoint = v
	}
	if v := os.Getenv("LANESIM_S3_PREFIX"); v != "" {
		cfg.Output.S3.Prefix = v
	}
	if v := os.Getenv("LANESIM_S3_PATH_STYLE"); v != "" {
		cfg.Output.S3.PathStyle = strings.EqualFold(v, "true") || v == "1"
	}

	if v := os.Getenv("LANESIM_ARCHIVE"); v != "" {
		switch strings.ToLower(v) {
		case "off", "false", "0":
			cfg.Archive.Disabled = true
		default:
			cfg.Archive.Path = v
		}
	}
}
