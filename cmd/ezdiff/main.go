package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/ezdiff/internal/config"
	"github.com/nvandessel/ezdiff/internal/logging"
)

// Set via ldflags at build time.
var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ezdiff",
		Short: "EZ-diffusion parameter recovery simulator",
		Long: `ezdiff simulates the EZ-diffusion model of two-choice decisions.

It predicts summary statistics from boundary separation (a), drift rate (v)
and nondecision time (t), samples noisy observed statistics for a given
number of trials, inverts them back into parameter estimates, and reports
how biased that recovery is as the number of trials grows.

Run with no flags, 'ezdiff sweep' draws random true parameters and prints
the bias for N = 10, 40 and 4000.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("log-level", "", "Log verbosity: info, debug, or trace (overrides config)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newPredictCmd(),
		newRecoverCmd(),
		newSweepCmd(),
		newHistoryCmd(),
		newExportCmd(),
		newMCPServerCmd(),
		newConfigCmd(),
	)

	return rootCmd
}

// loadConfig loads and validates configuration, applying the --log-level flag.
func loadConfig(cmd *cobra.Command) (*config.EZDiffConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger returns the operational logger. It always writes to stderr so
// stdout stays clean for results and the MCP protocol.
func newLogger(cmd *cobra.Command, cfg *config.EZDiffConfig) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
}
