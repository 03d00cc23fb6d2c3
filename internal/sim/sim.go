// Package sim runs the parallel-update simulation of a single parameter
// configuration.
//
// A run moves through three phases. It starts Initialized with N particles
// placed on the lattice, repeats Stepping for the configured number of
// steps (plan, resolve, boundary, swap, accumulate) and ends Finalized with
// the counters normalized into density profiles. A run always executes its
// full step count.
package sim

import (
	"errors"
	"fmt"

	"github.com/danieljhkim/lanesim/internal/lattice"
	"github.com/danieljhkim/lanesim/internal/planner"
	"github.com/danieljhkim/lanesim/internal/rng"
)

// ErrRunComplete is returned by Step once every configured step has run.
var ErrRunComplete = errors.New("run already complete")

// Phase is the lifecycle state of a Simulation.
type Phase int

const (
	PhaseInitialized Phase = iota
	PhaseStepping
	PhaseFinalized
)

func (p Phase) String() string {
	switch p {
	case PhaseInitialized:
		return "initialized"
	case PhaseStepping:
		return "stepping"
	case PhaseFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// StepStats describes the outcome of a single step.
type StepStats struct {
	Proposed int
	Resolution
	BoundaryEvents
}

// Resolution aliases the conflict resolver's summary.
type Resolution = planner.Resolution

// Totals aggregates StepStats over a whole run.
type Totals struct {
	Proposed  int64 `json:"proposed"`
	Accepted  int64 `json:"accepted"`
	Dropped   int64 `json:"dropped"`
	Injected  int64 `json:"injected"`
	Extracted int64 `json:"extracted"`
}

func (t *Totals) add(st StepStats) {
	t.Proposed += int64(st.Proposed)
	t.Accepted += int64(st.Accepted)
	t.Dropped += int64(st.Dropped)
	if st.Injected {
		t.Injected++
	}
	if st.Extracted {
		t.Extracted++
	}
}

// Result is the output of a finished run.
type Result struct {
	// DensityA is the time-averaged occupancy of each lane A site.
	DensityA []float64 `json:"density_a"`

	// DensityB is the time-averaged occupancy of each lane B site.
	DensityB []float64 `json:"density_b"`

	// Totals counts proposals and boundary events over all steps.
	Totals Totals `json:"totals"`
}

// Simulation is a single run. It is not safe for concurrent use.
type Simulation struct {
	cfg   Config
	src   rng.Source
	cur   *lattice.State
	next  *lattice.State
	plan  *planner.Plan
	res   *planner.Resolver
	acc   *Accumulator
	step  int
	phase Phase
	tot   Totals
}

// New validates cfg and places cfg.Particles particles using src.
func New(cfg Config, src rng.Source) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	initial, err := lattice.Place(cfg.Length, cfg.Particles, src)
	if err != nil {
		return nil, fmt.Errorf("failed to place particles: %w", err)
	}
	return newSimulation(cfg, initial, src), nil
}

// NewFromState starts a run from an explicit initial state. cfg.Particles
// is ignored; the lane length must match cfg.Length.
func NewFromState(cfg Config, initial *lattice.State, src rng.Source) (*Simulation, error) {
	cfg.Particles = initial.Count()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if initial.Len() != cfg.Length {
		return nil, fmt.Errorf("%w: state has %d sites per lane, config has %d",
			ErrInvalidConfig, initial.Len(), cfg.Length)
	}
	if err := initial.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return newSimulation(cfg, initial.Clone(), src), nil
}

func newSimulation(cfg Config, initial *lattice.State, src rng.Source) *Simulation {
	return &Simulation{
		cfg:   cfg,
		src:   src,
		cur:   initial,
		next:  lattice.New(cfg.Length),
		plan:  planner.NewPlan(cfg.Length),
		res:   planner.NewResolver(cfg.Length),
		acc:   NewAccumulator(cfg.Length),
		phase: PhaseInitialized,
	}
}

// Phase returns the current lifecycle phase.
func (s *Simulation) Phase() Phase {
	return s.phase
}

// StepIndex returns the number of steps executed so far.
func (s *Simulation) StepIndex() int {
	return s.step
}

// Done reports whether every configured step has run.
func (s *Simulation) Done() bool {
	return s.step >= s.cfg.Steps
}

// State returns a copy of the current lattice state.
func (s *Simulation) State() *lattice.State {
	return s.cur.Clone()
}

// Moves returns the interior moves accepted in the last step.
// The slice is overwritten by the next step.
func (s *Simulation) Moves() []planner.Move {
	return s.res.Moves()
}

// Step advances the lattice by one parallel update.
func (s *Simulation) Step() (StepStats, error) {
	if s.Done() {
		return StepStats{}, ErrRunComplete
	}
	s.phase = PhaseStepping

	s.next.CopyFrom(s.cur)

	planner.Generate(s.plan, s.cur, s.cfg.Rates, s.src)
	st := StepStats{Proposed: s.plan.Count()}
	st.Resolution = s.res.Resolve(s.plan, s.next)
	st.BoundaryEvents = applyBoundary(s.cur, s.next, s.cfg.Alpha, s.cfg.Beta, s.src)

	s.cur, s.next = s.next, s.cur

	if s.step >= s.cfg.Warmup {
		s.acc.Add(s.cur)
	}
	s.step++
	s.tot.add(st)
	return st, nil
}

// Finish runs the remaining steps and normalizes the counters.
func (s *Simulation) Finish() *Result {
	for !s.Done() {
		if _, err := s.Step(); err != nil {
			break
		}
	}
	s.phase = PhaseFinalized

	rhoA, rhoB := s.acc.Densities(s.cfg.MeasuredSteps())
	return &Result{
		DensityA: rhoA,
		DensityB: rhoB,
		Totals:   s.tot,
	}
}

// Run executes one full simulation of cfg driven by src.
func Run(cfg Config, src rng.Source) (*Result, error) {
	s, err := New(cfg, src)
	if err != nil {
		return nil, err
	}
	return s.Finish(), nil
}
