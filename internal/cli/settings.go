package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccbar/ccbar/internal/config"
)

func newSetCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set <option> <value>",
		Short: "Set a configuration option",
		Long: `Set a persisted configuration option. Options are dotted paths, e.g.:

  ccbar set mode local
  ccbar set style compact
  ccbar set thresholds.green_max 60
  ccbar set cache.ttl_minutes 30`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateConfig(*configPath, func(cfg *config.Config) error {
				return cfg.Set(args[0], args[1])
			})
		},
	}
}

func newToggleCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <option>",
		Short: "Flip a boolean configuration option",
		Long: `Flip a persisted boolean option, e.g.:

  ccbar toggle gradient
  ccbar toggle debug`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateConfig(*configPath, func(cfg *config.Config) error {
				_, err := cfg.Toggle(args[0])
				return err
			})
		},
	}
}

// mutateConfig applies one mutation and persists it immediately. The next
// render picks the change up; there is no other output.
func mutateConfig(flagPath string, mutate func(*config.Config) error) error {
	path, err := resolveConfigPath(flagPath)
	if err != nil {
		return err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if err := mutate(cfg); err != nil {
		return err
	}

	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}
