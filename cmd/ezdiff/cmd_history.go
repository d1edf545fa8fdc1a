package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nvandessel/ezdiff/internal/export"
	"github.com/nvandessel/ezdiff/internal/simulation"
	"github.com/nvandessel/ezdiff/internal/store"
)

// openRunStore opens the history database in the configured data directory.
func openRunStore(cmd *cobra.Command) (*store.SQLiteRunStore, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dataDir, err := cfg.DataDir()
	if err != nil {
		return nil, err
	}
	runs, err := store.NewSQLiteRunStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open run history: %w", err)
	}
	return runs, nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved sweeps, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			limit, _ := cmd.Flags().GetInt("limit")

			runs, err := openRunStore(cmd)
			if err != nil {
				return err
			}
			defer runs.Close()

			list, err := runs.ListRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				items := make([]map[string]any, 0, len(list))
				for _, run := range list {
					results := make([]map[string]any, 0, len(run.Results))
					for _, r := range run.Results {
						results = append(results, resultJSON(r))
					}
					items = append(items, map[string]any{
						"id":         run.ID,
						"created_at": run.CreatedAt,
						"seed":       run.Seed,
						"params":     run.Params,
						"results":    results,
					})
				}
				return json.NewEncoder(out).Encode(map[string]any{
					"runs":  items,
					"count": len(items),
				})
			}

			if len(list) == 0 {
				fmt.Fprintln(out, "No saved sweeps. Run 'ezdiff sweep --save' to record one.")
				return nil
			}
			for _, run := range list {
				fmt.Fprintf(out, "Run %d  %s  seed=%d  a=%s v=%s t=%s\n",
					run.ID, run.CreatedAt.Local().Format("2006-01-02 15:04:05"), run.Seed,
					formatFloat(run.Params.A), formatFloat(run.Params.V), formatFloat(run.Params.T))
				for _, r := range run.Results {
					fmt.Fprintf(out, "  %s\n", simulation.FormatResult(r))
				}
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "Maximum number of runs to show (0 for all)")
	return cmd
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export saved sweeps as an Arrow IPC file",
		Long: `Write saved sweeps to an Apache Arrow IPC file, one row per
(run, sample size), for analysis in pandas, polars, DuckDB or R.

Examples:
  ezdiff export --out sweeps.arrow
  ezdiff export --out recent.arrow --limit 10 --verify`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			outPath, _ := cmd.Flags().GetString("out")
			limit, _ := cmd.Flags().GetInt("limit")
			verify, _ := cmd.Flags().GetBool("verify")

			runs, err := openRunStore(cmd)
			if err != nil {
				return err
			}
			defer runs.Close()

			list, err := runs.ListRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", outPath, err)
			}
			written, err := export.WriteArrow(f, list)
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return fmt.Errorf("failed to export: %w", err)
			}

			if verify {
				if err := verifyExport(outPath, written); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]any{
					"file":     outPath,
					"runs":     len(list),
					"rows":     written,
					"verified": verify,
				})
			}
			fmt.Fprintf(out, "Exported %d rows from %d runs to %s\n", written, len(list), outPath)
			if verify {
				fmt.Fprintln(out, "OK: export verified")
			}
			return nil
		},
	}

	cmd.Flags().String("out", "", "Output file path (required)")
	cmd.Flags().Int("limit", 0, "Export only the newest N runs (0 for all)")
	cmd.Flags().Bool("verify", false, "Read the file back and check the row count")
	cmd.MarkFlagRequired("out")
	return cmd
}

func verifyExport(path string, want int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to reopen export: %w", err)
	}
	defer f.Close()

	rows, err := export.ReadArrow(f)
	if err != nil {
		return fmt.Errorf("export verification failed: %w", err)
	}
	if len(rows) != want {
		return fmt.Errorf("export verification failed: read %d rows, wrote %d", len(rows), want)
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

