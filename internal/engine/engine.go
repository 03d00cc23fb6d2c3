// Package engine orchestrates simulation runs for the CLI.
//
// The engine sits between the commands and the lower-level packages. It
// validates requests, derives per-run seeds, runs the lattice simulation,
// writes density tables to an output sink, records runs in the archive and
// counts everything in the metrics recorder.
//
// Key operations:
//   - Run: a single run from explicit parameters, no persistence
//   - Plan: expansion of a sweep configuration into run specs
//   - Sweep: parallel execution and persistence of a whole sweep
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/danieljhkim/lanesim/internal/archive"
	"github.com/danieljhkim/lanesim/internal/clock"
	"github.com/danieljhkim/lanesim/internal/logging"
	"github.com/danieljhkim/lanesim/internal/metrics"
	"github.com/danieljhkim/lanesim/internal/output"
)

// Archive records completed runs. *archive.Store implements it.
type Archive interface {
	Record(ctx context.Context, rec archive.RunRecord, rhoA, rhoB []float64) error
}

// Engine orchestrates lanesim operations.
// It is the main API surface called by the CLI.
type Engine struct {
	sink    output.Sink
	archive Archive
	clock   clock.Clock
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// New creates a new Engine with the given dependencies. sink and arch may
// be nil, in which case sweeps skip that persistence step. A nil logger
// discards logs and a nil recorder records nothing.
func New(
	sink output.Sink,
	arch Archive,
	clk clock.Clock,
	logger *slog.Logger,
	rec *metrics.Recorder,
) *Engine {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Engine{
		sink:    sink,
		archive: arch,
		clock:   clk,
		logger:  logger,
		metrics: rec,
	}
}

// pickSeed returns seed, or a clock-derived seed when it is zero.
func (e *Engine) pickSeed(seed uint64) uint64 {
	if seed != 0 {
		return seed
	}
	picked := uint64(e.clock.Now().UnixNano())
	if picked == 0 {
		picked = 1
	}
	e.logger.Info("picked seed", "seed", picked)
	return picked
}

// WriteTables encodes both profiles of res and writes them to sink.
func WriteTables(ctx context.Context, sink output.Sink, keyA, keyB string, res *RunResult) error {
	for _, t := range []struct {
		key string
		rho []float64
	}{{keyA, res.DensityA}, {keyB, res.DensityB}} {
		data, err := output.EncodeCSV(t.rho)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", t.key, err)
		}
		if err := sink.Put(ctx, t.key, data); err != nil {
			return fmt.Errorf("failed to write %s: %w", t.key, err)
		}
	}
	return nil
}
