package sim

import (
	"errors"
	"fmt"

	"github.com/danieljhkim/lanesim/internal/lattice"
	"github.com/danieljhkim/lanesim/internal/planner"
)

// ErrInvalidConfig indicates a run configuration that cannot be simulated.
var ErrInvalidConfig = errors.New("invalid run configuration")

// Config fully specifies one simulation run.
type Config struct {
	// Length is the number of sites per lane.
	Length int `json:"length" yaml:"length"`

	// Particles is the number of particles placed before the first step.
	Particles int `json:"particles" yaml:"particles"`

	// Rates are the interior hop and conversion probabilities.
	Rates planner.Rates `json:"rates" yaml:"rates"`

	// Alpha is the injection probability at lane A site 0.
	Alpha float64 `json:"alpha" yaml:"alpha"`

	// Beta is the extraction probability at lane B site 0.
	Beta float64 `json:"beta" yaml:"beta"`

	// Steps is the total number of parallel updates.
	Steps int `json:"steps" yaml:"steps"`

	// Warmup is the number of initial steps excluded from the statistics.
	Warmup int `json:"warmup" yaml:"warmup"`
}

// Validate reports the first problem that would make the run undefined.
func (c Config) Validate() error {
	if c.Length < 1 {
		return fmt.Errorf("%w: lane length must be positive, got %d", ErrInvalidConfig, c.Length)
	}
	if c.Particles < 0 {
		return fmt.Errorf("%w: particle count must not be negative, got %d", ErrInvalidConfig, c.Particles)
	}
	if c.Particles > 2*c.Length {
		return fmt.Errorf("%w: %w: %d particles on %d sites",
			ErrInvalidConfig, lattice.ErrTooManyParticles, c.Particles, 2*c.Length)
	}

	probs := []struct {
		name string
		v    float64
	}{
		{"hop_a", c.Rates.HopA},
		{"convert_ab", c.Rates.ConvertAB},
		{"hop_b", c.Rates.HopB},
		{"convert_ba", c.Rates.ConvertBA},
		{"alpha", c.Alpha},
		{"beta", c.Beta},
	}
	for _, p := range probs {
		// written as a negated range check so NaN is rejected too
		if !(p.v >= 0 && p.v <= 1) {
			return fmt.Errorf("%w: %s must be within [0,1], got %v", ErrInvalidConfig, p.name, p.v)
		}
	}

	if c.Steps < 1 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, c.Steps)
	}
	if c.Warmup < 0 || c.Warmup >= c.Steps {
		return fmt.Errorf("%w: warmup must be within [0,%d), got %d", ErrInvalidConfig, c.Steps, c.Warmup)
	}
	return nil
}

// MeasuredSteps returns the number of steps that contribute to the densities.
func (c Config) MeasuredSteps() int {
	return c.Steps - c.Warmup
}
