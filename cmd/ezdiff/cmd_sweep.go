package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nvandessel/ezdiff/internal/config"
	"github.com/nvandessel/ezdiff/internal/diffusion"
	"github.com/nvandessel/ezdiff/internal/logging"
	"github.com/nvandessel/ezdiff/internal/simulation"
	"github.com/nvandessel/ezdiff/internal/store"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a parameter recovery sweep over several sample sizes",
		Long: `Draw true parameters uniformly from their valid ranges (or take them from
--a, --v and --t), then report the recovery bias for each sample size.

Sample sizes and seed come from the config file unless overridden. With
--save, or storage.enabled in config, the sweep is written to the run
history database in the data directory.

Examples:
  ezdiff sweep
  ezdiff sweep --sizes 10,40,400,4000 --seed 42
  ezdiff sweep --a 1.2 --v 1.1 --t 0.3 --save`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			save, _ := cmd.Flags().GetBool("save")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cmd, cfg)

			if s, _ := cmd.Flags().GetString("sizes"); s != "" {
				sizes, err := config.ParseSampleSizes(s)
				if err != nil {
					return fmt.Errorf("invalid --sizes: %w", err)
				}
				cfg.Simulation.SampleSizes = sizes
				if err := cfg.Validate(); err != nil {
					return fmt.Errorf("invalid --sizes: %w", err)
				}
			}
			sizes := cfg.Simulation.SampleSizes

			seed := resolveSeed(cmd, cfg.Simulation.Seed)
			src := simulation.NewSource(seed)

			p, err := sweepParams(cmd, src)
			if err != nil {
				return err
			}

			dataDir, err := cfg.DataDir()
			if err != nil {
				return err
			}
			events := logging.NewEventLogger(dataDir, cfg.Logging.Level)
			defer events.Close()

			logger.Info("sweep starting", "a", p.A, "v", p.V, "t", p.T, "seed", seed, "sizes", sizes)
			events.Log(map[string]any{
				"event": "sweep_start", "seed": seed, "a": p.A, "v": p.V, "t": p.T, "sizes": sizes,
			})

			out := cmd.OutOrStdout()
			ctx, cancel := withInterrupt(cmd.Context())
			defer cancel()

			report, sweepErr := simulation.Sweep(ctx, p, sizes, src, func(r simulation.Result) {
				logger.Debug("recovery finished", "n", r.N, "bias", r.Bias)
				events.Log(map[string]any{
					"event": "recovery", "seed": seed, "n": r.N, "bias": r.Bias, "bias_squared": r.BiasSquared,
				})
				if !jsonOut {
					fmt.Fprintln(out, simulation.FormatResult(r))
				}
			})
			report.Seed = seed
			if sweepErr != nil {
				return sweepErr
			}

			var runID int64
			if save || cfg.Storage.Enabled {
				runID, err = saveReport(cmd, dataDir, report)
				if err != nil {
					return err
				}
				logger.Info("sweep saved", "run_id", runID)
			}
			events.Log(map[string]any{"event": "sweep_done", "seed": seed, "run_id": runID})
			logger.Info("sweep finished", "seed", seed)

			if jsonOut {
				results := make([]map[string]any, 0, len(report.Results))
				for _, r := range report.Results {
					results = append(results, resultJSON(r))
				}
				payload := map[string]any{
					"seed":    seed,
					"params":  report.Params,
					"results": results,
				}
				if runID != 0 {
					payload["run_id"] = runID
				}
				return json.NewEncoder(out).Encode(payload)
			}
			return nil
		},
	}

	addParamFlags(cmd)
	cmd.Flags().String("sizes", "", "Comma-separated sample sizes (default from config: 10,40,4000)")
	cmd.Flags().Uint64("seed", 0, "Random seed (0 derives one from the clock)")
	cmd.Flags().Bool("save", false, "Save the sweep to run history")
	return cmd
}

// sweepParams returns the true parameters from --a/--v/--t when all three
// are given, or draws them from src when none are.
func sweepParams(cmd *cobra.Command, src rand.Source) (diffusion.Parameters, error) {
	set := 0
	for _, name := range []string{"a", "v", "t"} {
		if cmd.Flags().Changed(name) {
			set++
		}
	}
	switch set {
	case 0:
		return simulation.DrawParameters(src), nil
	case 3:
		p := paramsFromFlags(cmd)
		return p, p.Validate()
	default:
		return diffusion.Parameters{}, errors.New("--a, --v and --t must be given together")
	}
}

func saveReport(cmd *cobra.Command, dataDir string, report simulation.Report) (int64, error) {
	runs, err := store.NewSQLiteRunStore(dataDir)
	if err != nil {
		return 0, fmt.Errorf("failed to open run history: %w", err)
	}
	defer runs.Close()

	id, err := runs.SaveRun(cmd.Context(), report)
	if err != nil {
		return 0, fmt.Errorf("failed to save sweep: %w", err)
	}
	if jsonOut, _ := cmd.Flags().GetBool("json"); !jsonOut {
		fmt.Fprintln(cmd.OutOrStdout(), "Saved as run "+strconv.FormatInt(id, 10))
	}
	return id, nil
}
