package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/lanesim/internal/clock"
	"github.com/danieljhkim/lanesim/internal/config"
	"github.com/danieljhkim/lanesim/internal/engine"
	"github.com/danieljhkim/lanesim/internal/metrics"
	"github.com/danieljhkim/lanesim/internal/output"
)

var (
	sweepWorkers     int
	sweepCases       []string
	sweepMetricsFile string
	sweepDryRun      bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a parameter sweep",
	Long: `Run every case of the sweep configuration and write two density tables
per run.

Runs execute in parallel. Each run's seed is derived from the base seed and
the run's case and value, so results do not depend on --workers. A run whose
tables cannot be written is reported and the sweep continues; the command
then exits non-zero. Run metrics are written as a Prometheus textfile.`,
	Example: `  lanesim sweep
  lanesim sweep --config phase.yaml --workers 8
  lanesim sweep --case a --case d --metrics-file results/lanesim.prom
  lanesim sweep --dry-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := config.DefaultPaths()
		if err != nil {
			return fmt.Errorf("failed to get config paths: %w", err)
		}
		cfg, err := loadConfig(paths)
		if err != nil {
			return err
		}
		if err := cfg.Select(sweepCases); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("%w: %w", engine.ErrValidation, err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := newLogger(cfg, cmd.ErrOrStderr())
		req := &engine.SweepRequest{Config: cfg, Workers: sweepWorkers, DryRun: sweepDryRun}

		if sweepDryRun {
			res, err := engine.New(nil, nil, clock.System{}, logger, nil).Sweep(ctx, req)
			if err != nil {
				return err
			}
			return printPlan(res)
		}

		if cfg.Output.Driver == string(output.DriverFS) || cfg.Output.Driver == "" {
			if err := paths.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to ensure directories: %w", err)
			}
		}
		sink, err := output.Open(ctx, cfg.Output, paths.Root)
		if err != nil {
			return fmt.Errorf("failed to open output sink: %w", err)
		}
		arch, err := openArchive(ctx, cfg, paths)
		if err != nil {
			return err
		}
		var archiveDep engine.Archive
		if arch != nil {
			defer arch.Close()
			archiveDep = arch
		}

		rec := metrics.New()
		eng := engine.New(sink, archiveDep, clock.System{}, logger, rec)

		res, runErr := eng.Sweep(ctx, req)
		if res == nil {
			return runErr
		}

		metricsPath := sweepMetricsFile
		if metricsPath == "" {
			metricsPath = paths.Metrics
		}
		if err := rec.WriteTextfile(metricsPath); err != nil {
			logger.Warn("failed to write metrics", "path", metricsPath, "error", err)
		}

		if jsonOutput {
			if err := outputJSON(res); err != nil {
				return err
			}
			return runErr
		}

		printSweep(res, sink)
		if errors.Is(runErr, context.Canceled) {
			PrintWarning("Sweep interrupted")
		}
		return runErr
	},
}

func printPlan(res *engine.SweepResult) error {
	if jsonOutput {
		return outputJSON(res)
	}

	PrintSection("Planned runs")
	PrintLabelValue("Base seed", strconv.FormatUint(res.Seed, 10))
	fmt.Fprintln(stdout)

	rows := make([][]string, 0, len(res.Planned))
	for _, s := range res.Planned {
		rows = append(rows, []string{s.Case, string(s.Param), formatFloat(s.Value), s.FileA, s.FileB})
	}
	PrintTable([]string{"Case", "Param", "Value", "Lane A", "Lane B"}, rows)
	fmt.Fprintln(stdout)
	PrintSuccess(PrintCount(len(res.Planned), "run", "runs") + " planned")
	return nil
}

func printSweep(res *engine.SweepResult, sink output.Sink) {
	PrintSection("Sweep results")
	PrintLabelValue("Base seed", strconv.FormatUint(res.Seed, 10))
	if fs, ok := sink.(*output.FS); ok {
		PrintLabelValue("Output", fs.Root())
	}
	fmt.Fprintln(stdout)

	outcomes := res.Ordered()
	if len(outcomes) == 0 {
		PrintEmptyState("No runs completed")
		return
	}

	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		rows = append(rows, []string{
			o.Spec.Case,
			string(o.Spec.Param),
			formatFloat(o.Spec.Value),
			formatFloat(o.Result.MeanA),
			formatFloat(o.Result.MeanB),
			o.Result.Duration.Round(time.Millisecond).String(),
			o.Status,
		})
	}
	PrintTable([]string{"Case", "Param", "Value", "Mean A", "Mean B", "Duration", "Status"}, rows)
	fmt.Fprintln(stdout)

	for _, o := range outcomes {
		for _, msg := range o.PersistErrors {
			PrintError(fmt.Sprintf("%s (%s=%s): %s", o.Spec.ID, o.Spec.Param, formatFloat(o.Spec.Value), msg))
		}
	}
	if res.Failed == 0 {
		PrintSuccess(PrintCount(len(outcomes), "run", "runs") + " completed")
	} else {
		PrintWarning(fmt.Sprintf("%s with missing output", PrintCount(res.Failed, "run", "runs")))
	}
}

func init() {
	flags := sweepCmd.Flags()
	flags.IntVar(&sweepWorkers, "workers", 0, "Concurrent runs (default from config, else one per CPU)")
	flags.StringSliceVar(&sweepCases, "case", nil, "Only run these case ids (repeatable)")
	flags.StringVar(&sweepMetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile (default $LANESIM_HOME/metrics.prom)")
	flags.BoolVar(&sweepDryRun, "dry-run", false, "List planned runs and output names without running")
}
