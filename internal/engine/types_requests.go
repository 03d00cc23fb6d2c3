package engine

import (
	"github.com/danieljhkim/lanesim/internal/config"
	"github.com/danieljhkim/lanesim/internal/sim"
)

// RunRequest represents a request for a single run.
type RunRequest struct {
	// Config holds the lattice, rates and step counts.
	Config sim.Config

	// Seed seeds the run. Zero picks one from the clock.
	Seed uint64
}

// SweepRequest represents a request to run a sweep.
type SweepRequest struct {
	// Config is the sweep description. Its Seed is the base seed from
	// which every run's seed is derived.
	Config *config.Config

	// Workers overrides Config.Workers when positive.
	Workers int

	// DryRun plans the sweep without running it.
	DryRun bool
}
