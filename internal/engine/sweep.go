package engine

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/danieljhkim/lanesim/internal/archive"
	"github.com/danieljhkim/lanesim/internal/logging"
	"github.com/danieljhkim/lanesim/internal/metrics"
)

// Sweep plans and executes every run of a sweep.
//
// The whole sweep is validated before any run starts. Runs execute on up to
// Workers goroutines; each writes its two tables to the sink and its record
// to the archive once it completes. A failed write is recorded on that
// run's outcome and does not stop the others; Sweep then returns the
// result together with ErrPersist. Cancelling ctx stops new runs from
// starting, lets in-flight runs finish and persist, and returns the
// partial result with the context error.
func (e *Engine) Sweep(ctx context.Context, req *SweepRequest) (*SweepResult, error) {
	if req.Config == nil {
		return nil, fmt.Errorf("%w: sweep configuration is required", ErrValidation)
	}
	if err := req.Config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	base := e.pickSeed(req.Config.Seed)
	specs, err := Plan(req.Config, base)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{
		Seed:     base,
		Planned:  specs,
		Outcomes: make(map[string]*RunOutcome, len(specs)),
		DryRun:   req.DryRun,
	}
	if req.DryRun {
		return result, nil
	}

	workers := req.Workers
	if workers <= 0 {
		workers = req.Config.EffectiveWorkers()
	}
	e.logger.Info("starting sweep", "runs", len(specs), "workers", workers, "seed", base)

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(workers)

	for _, spec := range specs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			outcome, err := e.execute(ctx, spec)
			if err != nil {
				return err
			}

			mu.Lock()
			result.Outcomes[spec.ID] = outcome
			if outcome.Status != metrics.StatusOK {
				result.Failed++
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("sweep interrupted after %d of %d runs: %w", len(result.Outcomes), len(specs), err)
	}
	if result.Failed > 0 {
		return result, fmt.Errorf("%w: %d of %d runs have missing output", ErrPersist, result.Failed, len(specs))
	}

	e.logger.Info("sweep complete", "runs", len(specs))
	return result, nil
}

// execute runs one spec and persists its output. Only simulation errors are
// returned; persistence failures land on the outcome.
func (e *Engine) execute(ctx context.Context, spec RunSpec) (*RunOutcome, error) {
	e.logger.Info("simulating", "case", spec.Case, "param", string(spec.Param), "value", spec.Value)

	res, err := e.simulate(ctx, spec.Config, spec.Seed)
	if err != nil {
		e.metrics.ObserveRun(spec.Case, metrics.StatusFailed, 0, 0)
		return nil, fmt.Errorf("run %s: %w", spec.ID, err)
	}

	outcome := &RunOutcome{Spec: spec, Result: res, Status: metrics.StatusOK}

	// Finished runs are written even when the sweep is being cancelled.
	pctx := context.WithoutCancel(ctx)

	if e.sink != nil {
		if err := WriteTables(pctx, e.sink, spec.FileA, spec.FileB, res); err != nil {
			e.persistFailed(outcome, metrics.TargetSink, err)
		} else {
			e.logger.Log(ctx, logging.LevelTrace, "tables written", "id", spec.ID, "file_a", spec.FileA, "file_b", spec.FileB)
		}
	}

	if e.archive != nil {
		rec := archive.RunRecord{
			ID:        spec.ID,
			Case:      spec.Case,
			Param:     string(spec.Param),
			Value:     spec.Value,
			Seed:      spec.Seed,
			Config:    spec.Config,
			Totals:    res.Totals,
			MeanA:     res.MeanA,
			MeanB:     res.MeanB,
			Duration:  res.Duration,
			CreatedAt: e.clock.Now(),
		}
		if err := e.archive.Record(pctx, rec, res.DensityA, res.DensityB); err != nil {
			e.persistFailed(outcome, metrics.TargetArchive, err)
		}
	}

	e.metrics.ObserveRun(spec.Case, outcome.Status, res.Duration.Seconds(), spec.Config.Steps)
	e.logger.Debug("run complete",
		"id", spec.ID,
		"case", spec.Case,
		"mean_a", res.MeanA,
		"mean_b", res.MeanB,
		"duration", res.Duration)
	return outcome, nil
}

func (e *Engine) persistFailed(o *RunOutcome, target string, err error) {
	o.Status = metrics.StatusPersistFailed
	o.PersistErrors = append(o.PersistErrors, fmt.Sprintf("%s: %v", target, err))
	e.metrics.PersistFailed(target)
	e.logger.Warn("failed to persist run", "id", o.Spec.ID, "target", target, "error", err)
}
