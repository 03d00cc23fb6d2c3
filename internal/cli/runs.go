package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/lanesim/internal/archive"
	"github.com/danieljhkim/lanesim/internal/config"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect archived runs",
	Long:  `List and inspect runs recorded in the SQLite run archive by previous sweeps.`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchiveForRead(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.List(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput {
			if runs == nil {
				runs = []archive.RunRecord{}
			}
			return outputJSON(runs)
		}

		PrintSection("Archived runs")
		if len(runs) == 0 {
			PrintEmptyState("No runs archived")
			return nil
		}

		rows := make([][]string, 0, len(runs))
		for _, r := range runs {
			rows = append(rows, []string{
				r.ID,
				r.Case,
				r.Param,
				formatFloat(r.Value),
				formatFloat(r.MeanA),
				formatFloat(r.MeanB),
				r.CreatedAt.Local().Format(time.DateTime),
			})
		}
		PrintTable([]string{"ID", "Case", "Param", "Value", "Mean A", "Mean B", "Recorded"}, rows)
		fmt.Fprintln(stdout)
		PrintSuccess(PrintCount(len(runs), "run", "runs"))
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an archived run and its density profiles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchiveForRead(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()
		rec, err := store.Get(ctx, args[0])
		if err != nil {
			return err
		}
		rhoA, rhoB, err := store.Densities(ctx, rec.ID)
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(struct {
				*archive.RunRecord
				DensityA []float64 `json:"density_a"`
				DensityB []float64 `json:"density_b"`
			}{rec, rhoA, rhoB})
		}

		c := rec.Config
		PrintSection("Run " + rec.ID)
		PrintLabelValue("Case", fmt.Sprintf("%s (%s=%s)", rec.Case, rec.Param, formatFloat(rec.Value)))
		PrintLabelValue("Seed", strconv.FormatUint(rec.Seed, 10))
		PrintLabelValue("Lattice", fmt.Sprintf("L=%d N=%d", c.Length, c.Particles))
		PrintLabelValue("Rates", fmt.Sprintf("hop_a=%s convert_ab=%s hop_b=%s convert_ba=%s",
			formatFloat(c.Rates.HopA), formatFloat(c.Rates.ConvertAB), formatFloat(c.Rates.HopB), formatFloat(c.Rates.ConvertBA)))
		PrintLabelValue("Boundary", fmt.Sprintf("alpha=%s beta=%s", formatFloat(c.Alpha), formatFloat(c.Beta)))
		PrintLabelValue("Steps", fmt.Sprintf("%d (warm-up %d)", c.Steps, c.Warmup))
		PrintLabelValue("Mean density A", formatFloat(rec.MeanA))
		PrintLabelValue("Mean density B", formatFloat(rec.MeanB))
		PrintLabelValue("Recorded", rec.CreatedAt.Local().Format(time.DateTime))

		PrintSection("Density profile")
		rows := make([][]string, 0, len(rhoA))
		for i := range rhoA {
			rows = append(rows, []string{strconv.Itoa(i + 1), formatFloat(rhoA[i]), formatFloat(rhoB[i])})
		}
		PrintTable([]string{"i", "rho A", "rho B"}, rows)
		return nil
	},
}

func openArchiveForRead(cmd *cobra.Command) (*archive.Store, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get config paths: %w", err)
	}
	cfg, err := loadConfig(paths)
	if err != nil {
		return nil, err
	}
	if cfg.Archive.Disabled {
		return nil, fmt.Errorf("run archive is disabled")
	}
	return archive.Open(cmd.Context(), archivePath(cfg, paths))
}

func init() {
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
}
