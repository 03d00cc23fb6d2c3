package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/lanesim/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the sweep configuration after defaults, the config file and
LANESIM_* environment overrides have been applied. The YAML output can be
saved and edited as a starting point for a custom sweep.`,
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

		if jsonOutput {
			return outputJSON(cfg)
		}

		data, err := cfg.Marshal()
		if err != nil {
			return fmt.Errorf("failed to encode configuration: %w", err)
		}
		_, err = stdout.Write(data)
		return err
	},
}
