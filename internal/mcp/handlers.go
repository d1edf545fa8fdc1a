package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/ezdiff/internal/constants"
	"github.com/nvandessel/ezdiff/internal/diffusion"
	"github.com/nvandessel/ezdiff/internal/export"
	"github.com/nvandessel/ezdiff/internal/pathutil"
	"github.com/nvandessel/ezdiff/internal/ratelimit"
	"github.com/nvandessel/ezdiff/internal/simulation"
)

// ErrNoHistory is returned by tools that need run history when the server
// was started without a store.
var ErrNoHistory = errors.New("run history is disabled")

const defaultHistoryLimit = 10

// registerTools registers all ezdiff MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "ezdiff_predict",
		Description: "Compute the EZ-diffusion predicted accuracy, mean RT and RT variance for a, v, t",
	}, s.handlePredict)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "ezdiff_recover",
		Description: "Simulate 1000 experiments of size n and report the parameter recovery bias",
	}, s.handleRecover)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "ezdiff_sweep",
		Description: "Run a parameter recovery sweep over several sample sizes, optionally saving it to history",
	}, s.handleSweep)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "ezdiff_history",
		Description: "List saved recovery sweeps, newest first",
	}, s.handleHistory)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "ezdiff_export",
		Description: "Write saved sweeps to an Apache Arrow IPC file in the ezdiff exports directory",
	}, s.handleExport)
}

// handlePredict implements the ezdiff_predict tool.
func (s *Server) handlePredict(ctx context.Context, req *sdk.CallToolRequest, args PredictInput) (_ *sdk.CallToolResult, _ PredictOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("ezdiff_predict", start, retErr, paramsOf(args.A, args.V, args.T))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "ezdiff_predict"); err != nil {
		return nil, PredictOutput{}, err
	}

	pred, err := diffusion.Predict(diffusion.Parameters{A: args.A, V: args.V, T: args.T})
	if err != nil {
		return nil, PredictOutput{}, err
	}
	return nil, PredictOutput{R: pred.R, M: pred.M, V: pred.V}, nil
}

// handleRecover implements the ezdiff_recover tool.
func (s *Server) handleRecover(ctx context.Context, req *sdk.CallToolRequest, args RecoverInput) (_ *sdk.CallToolResult, _ RecoverOutput, retErr error) {
	start := time.Now()
	defer func() {
		params := paramsOf(args.A, args.V, args.T)
		params["n"] = strconv.Itoa(args.N)
		s.auditTool("ezdiff_recover", start, retErr, params)
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "ezdiff_recover"); err != nil {
		return nil, RecoverOutput{}, err
	}

	seed := seedOrClock(args.Seed)
	p := diffusion.Parameters{A: args.A, V: args.V, T: args.T}
	result, err := simulation.Recover(p, args.N, simulation.NewSource(seed))
	if err != nil {
		return nil, RecoverOutput{}, err
	}

	s.logger.Debug("recovery finished", "seed", seed, "n", result.N, "bias", result.Bias)
	return nil, RecoverOutput{Seed: seed, Result: summarize(result)}, nil
}

// handleSweep implements the ezdiff_sweep tool.
func (s *Server) handleSweep(ctx context.Context, req *sdk.CallToolRequest, args SweepInput) (_ *sdk.CallToolResult, _ SweepOutput, retErr error) {
	start := time.Now()
	defer func() {
		params := paramsOf(args.A, args.V, args.T)
		params["save"] = strconv.FormatBool(args.Save)
		if len(args.SampleSizes) > 0 {
			params["sample_sizes"] = joinInts(args.SampleSizes)
		}
		s.auditTool("ezdiff_sweep", start, retErr, params)
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "ezdiff_sweep"); err != nil {
		return nil, SweepOutput{}, err
	}
	if args.Save && s.store == nil {
		return nil, SweepOutput{}, fmt.Errorf("cannot save sweep: %w", ErrNoHistory)
	}

	sizes := args.SampleSizes
	if len(sizes) == 0 {
		sizes = s.sampleSizes
	}
	for _, n := range sizes {
		if n < constants.MinSampleSize {
			return nil, SweepOutput{}, fmt.Errorf("sample size %d: %w", n, diffusion.ErrSampleSize)
		}
	}

	seed := seedOrClock(args.Seed)
	src := simulation.NewSource(seed)

	p := diffusion.Parameters{A: args.A, V: args.V, T: args.T}
	if p == (diffusion.Parameters{}) {
		p = simulation.DrawParameters(src)
	}

	report, err := simulation.Sweep(ctx, p, sizes, src, nil)
	if err != nil {
		return nil, SweepOutput{}, err
	}
	report.Seed = seed

	out := SweepOutput{
		Seed:    seed,
		A:       p.A,
		V:       p.V,
		T:       p.T,
		Results: summarizeAll(report.Results),
	}

	if args.Save {
		id, err := s.store.SaveRun(ctx, report)
		if err != nil {
			return nil, SweepOutput{}, fmt.Errorf("failed to save sweep: %w", err)
		}
		out.RunID = id
		s.logger.Info("sweep saved", "run_id", id, "seed", seed)
	}

	return nil, out, nil
}

// handleHistory implements the ezdiff_history tool.
func (s *Server) handleHistory(ctx context.Context, req *sdk.CallToolRequest, args HistoryInput) (_ *sdk.CallToolResult, _ HistoryOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("ezdiff_history", start, retErr, map[string]string{"limit": strconv.Itoa(args.Limit)})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "ezdiff_history"); err != nil {
		return nil, HistoryOutput{}, err
	}
	if s.store == nil {
		return nil, HistoryOutput{}, ErrNoHistory
	}

	limit := args.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	runs, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, HistoryOutput{}, fmt.Errorf("failed to list runs: %w", err)
	}

	out := HistoryOutput{Runs: make([]RunSummary, 0, len(runs)), Count: len(runs)}
	for _, run := range runs {
		out.Runs = append(out.Runs, RunSummary{
			ID:        run.ID,
			CreatedAt: run.CreatedAt.UTC().Format(time.RFC3339),
			Seed:      run.Seed,
			A:         run.Params.A,
			V:         run.Params.V,
			T:         run.Params.T,
			Results:   summarizeAll(run.Results),
		})
	}
	return nil, out, nil
}

// handleExport implements the ezdiff_export tool.
func (s *Server) handleExport(ctx context.Context, req *sdk.CallToolRequest, args ExportInput) (_ *sdk.CallToolResult, _ ExportOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("ezdiff_export", start, retErr, map[string]string{
			"path":  pathutil.RedactPath(args.Path),
			"limit": strconv.Itoa(args.Limit),
		})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "ezdiff_export"); err != nil {
		return nil, ExportOutput{}, err
	}
	if s.store == nil {
		return nil, ExportOutput{}, ErrNoHistory
	}
	if s.dataDir == "" {
		return nil, ExportOutput{}, errors.New("export is disabled: no data directory configured")
	}

	exportDir := pathutil.ExportDir(s.dataDir)
	outputPath := args.Path
	if outputPath == "" {
		outputPath = filepath.Join(exportDir, "ezdiff-"+time.Now().UTC().Format("20060102-150405")+".arrow")
	}
	if err := pathutil.ValidatePath(outputPath, []string{exportDir}); err != nil {
		return nil, ExportOutput{}, fmt.Errorf("export path rejected: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0700); err != nil {
		return nil, ExportOutput{}, fmt.Errorf("failed to create export directory: %w", err)
	}

	runs, err := s.store.ListRuns(ctx, args.Limit)
	if err != nil {
		return nil, ExportOutput{}, fmt.Errorf("failed to list runs: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return nil, ExportOutput{}, fmt.Errorf("failed to create export file: %w", err)
	}
	rows, err := export.WriteArrow(f, runs)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, ExportOutput{}, fmt.Errorf("export failed: %w", err)
	}

	s.logger.Info("runs exported", "path", outputPath, "rows", rows)
	return nil, ExportOutput{Path: outputPath, Runs: len(runs), Rows: rows}, nil
}

func seedOrClock(seed uint64) uint64 {
	if seed == 0 {
		return simulation.TimeSeed()
	}
	return seed
}

func paramsOf(a, v, t float64) map[string]string {
	return map[string]string{"a": formatParam(a), "v": formatParam(v), "t": formatParam(t)}
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
