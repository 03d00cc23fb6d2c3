package engine

import (
	"context"
	"fmt"

	"github.com/danieljhkim/lanesim/internal/clock"
	"github.com/danieljhkim/lanesim/internal/hash"
	"github.com/danieljhkim/lanesim/internal/logging"
	"github.com/danieljhkim/lanesim/internal/rng"
	"github.com/danieljhkim/lanesim/internal/sim"
)

// Run executes a single run and returns its density profiles. Nothing is
// persisted.
func (e *Engine) Run(ctx context.Context, req *RunRequest) (*RunResult, error) {
	if err := req.Config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seed := e.pickSeed(req.Seed)
	return e.simulate(ctx, req.Config, seed)
}

// simulate runs cfg to completion with its own random source. The step
// loop does not observe ctx.
func (e *Engine) simulate(ctx context.Context, cfg sim.Config, seed uint64) (*RunResult, error) {
	start := e.clock.Now()
	res, err := sim.Run(cfg, rng.New(seed))
	if err != nil {
		return nil, fmt.Errorf("failed to run simulation: %w", err)
	}

	out := &RunResult{
		ID:       hash.RunID(cfg, seed),
		Seed:     seed,
		Config:   cfg,
		DensityA: res.DensityA,
		DensityB: res.DensityB,
		MeanA:    mean(res.DensityA),
		MeanB:    mean(res.DensityB),
		Totals:   res.Totals,
		Duration: clock.Since(e.clock, start),
	}
	e.logger.Log(ctx, logging.LevelTrace, "run totals",
		"id", out.ID,
		"accepted", out.Totals.Accepted,
		"dropped", out.Totals.Dropped,
		"injected", out.Totals.Injected,
		"extracted", out.Totals.Extracted)
	return out, nil
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
