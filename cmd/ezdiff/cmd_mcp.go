package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/ezdiff/internal/mcp"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve ezdiff tools over MCP (stdio)",
		Long: `Start a Model Context Protocol server on stdin/stdout exposing the
ezdiff_predict, ezdiff_recover, ezdiff_sweep, ezdiff_history and ezdiff_export
tools.

Tool calls are audited to audit.jsonl in the data directory, and
ezdiff_export may only write under its exports/ subdirectory. Logs go to
stderr; stdout carries only the protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cmd, cfg)

			runs, err := openRunStore(cmd)
			if err != nil {
				return err
			}
			defer runs.Close()

			dataDir, err := cfg.DataDir()
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(&mcp.Config{
				Name:        "ezdiff",
				Version:     version,
				Store:       runs,
				DataDir:     dataDir,
				SampleSizes: cfg.Simulation.SampleSizes,
				Logger:      logger,
			})
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}
			defer server.Close()

			logger.Info("mcp server starting", "data_dir", dataDir, "db", runs.Path())
			return server.Run(cmd.Context())
		},
	}
}
