package engine

import (
	"time"

	"github.com/danieljhkim/lanesim/internal/config"
	"github.com/danieljhkim/lanesim/internal/sim"
)

// RunResult is the outcome of one simulation run.
type RunResult struct {
	// ID identifies the run by its parameters and seed.
	ID string `json:"id"`

	// Seed is the seed the run used.
	Seed uint64 `json:"seed"`

	// Config is the run configuration.
	Config sim.Config `json:"config"`

	// DensityA and DensityB are the time-averaged occupancy profiles.
	DensityA []float64 `json:"density_a"`
	DensityB []float64 `json:"density_b"`

	// MeanA and MeanB are the lane-averaged densities.
	MeanA float64 `json:"mean_a"`
	MeanB float64 `json:"mean_b"`

	// Totals are the diagnostic event counts over the whole run.
	Totals sim.Totals `json:"totals"`

	// Duration is the wall time of the run.
	Duration time.Duration `json:"duration"`
}

// RunSpec is one planned run of a sweep.
type RunSpec struct {
	ID     string       `json:"id"`
	Case   string       `json:"case"`
	Param  config.Param `json:"param"`
	Value  float64      `json:"value"`
	Seed   uint64       `json:"seed"`
	Config sim.Config   `json:"config"`

	// FileA and FileB are the output table names.
	FileA string `json:"file_a"`
	FileB string `json:"file_b"`
}

// RunOutcome is what happened to a planned run.
type RunOutcome struct {
	Spec   RunSpec    `json:"spec"`
	Result *RunResult `json:"result,omitempty"`

	// Status is one of the metrics run statuses.
	Status string `json:"status"`

	// PersistErrors lists the output writes that failed.
	PersistErrors []string `json:"persist_errors,omitempty"`
}

// SweepResult is the outcome of a sweep.
type SweepResult struct {
	// Seed is the base seed of the sweep.
	Seed uint64 `json:"seed"`

	// Planned lists every run in plan order.
	Planned []RunSpec `json:"planned"`

	// Outcomes maps run ids to outcomes. Runs that never started are
	// absent.
	Outcomes map[string]*RunOutcome `json:"outcomes"`

	// Failed counts runs with missing output.
	Failed int `json:"failed"`

	// DryRun is set when nothing was run.
	DryRun bool `json:"dry_run"`
}

// Ordered returns the outcomes in plan order, skipping runs that never
// started.
func (r *SweepResult) Ordered() []*RunOutcome {
	out := make([]*RunOutcome, 0, len(r.Outcomes))
	for _, spec := range r.Planned {
		if o, ok := r.Outcomes[spec.ID]; ok {
			out = append(out, o)
		}
	}
	return out
}
