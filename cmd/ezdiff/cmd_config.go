package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect ezdiff configuration",
		Long: `View the effective ezdiff configuration.

Configuration is read from ~/.ezdiff/config.yaml and then overridden by
EZDIFF_SAMPLE_SIZES, EZDIFF_SEED, EZDIFF_LOG_LEVEL, EZDIFF_DATA_DIR and
EZDIFF_STORAGE_ENABLED.`,
	}

	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dataDir, err := cfg.DataDir()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]any{
					"config":   cfg,
					"data_dir": dataDir,
				})
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			fmt.Fprintln(out, "# Effective configuration (~/.ezdiff/config.yaml + environment)")
			fmt.Fprintf(out, "# data dir: %s\n", dataDir)
			fmt.Fprint(out, string(data))
			return nil
		},
	}
}
