package mcp

import (
	"math"

	"github.com/nvandessel/ezdiff/internal/simulation"
)

// PredictInput defines the input for the ezdiff_predict tool.
type PredictInput struct {
	A float64 `json:"a" jsonschema:"Boundary separation, between 0.5 and 2"`
	V float64 `json:"v" jsonschema:"Drift rate, between 0.5 and 2"`
	T float64 `json:"t" jsonschema:"Nondecision time in seconds, between 0.1 and 0.5"`
}

// PredictOutput defines the output for the ezdiff_predict tool.
type PredictOutput struct {
	R float64 `json:"r" jsonschema:"Predicted accuracy rate"`
	M float64 `json:"m" jsonschema:"Predicted mean response time in seconds"`
	V float64 `json:"v" jsonschema:"Predicted response time variance"`
}

// RecoverInput defines the input for the ezdiff_recover tool.
type RecoverInput struct {
	A    float64 `json:"a" jsonschema:"Boundary separation, between 0.5 and 2"`
	V    float64 `json:"v" jsonschema:"Drift rate, between 0.5 and 2"`
	T    float64 `json:"t" jsonschema:"Nondecision time in seconds, between 0.1 and 0.5"`
	N    int     `json:"n" jsonschema:"Trials per simulated experiment, at least 2"`
	Seed uint64  `json:"seed,omitempty" jsonschema:"Random seed; omitted or 0 picks one from the clock"`
}

// RecoverOutput defines the output for the ezdiff_recover tool.
type RecoverOutput struct {
	Seed   uint64        `json:"seed" jsonschema:"Seed the run used"`
	Result ResultSummary `json:"result" jsonschema:"Recovery bias for the requested sample size"`
}

// SweepInput defines the input for the ezdiff_sweep tool. When all of
// A, V and T are zero the true parameters are drawn at random.
type SweepInput struct {
	A           float64 `json:"a,omitempty" jsonschema:"Boundary separation; omit a, v and t to draw them at random"`
	V           float64 `json:"v,omitempty" jsonschema:"Drift rate; omit a, v and t to draw them at random"`
	T           float64 `json:"t,omitempty" jsonschema:"Nondecision time; omit a, v and t to draw them at random"`
	SampleSizes []int   `json:"sample_sizes,omitempty" jsonschema:"Sample sizes to sweep (default 10, 40, 4000)"`
	Seed        uint64  `json:"seed,omitempty" jsonschema:"Random seed; omitted or 0 picks one from the clock"`
	Save        bool    `json:"save,omitempty" jsonschema:"Persist the sweep to run history"`
}

// SweepOutput defines the output for the ezdiff_sweep tool.
type SweepOutput struct {
	RunID   int64           `json:"run_id,omitempty" jsonschema:"History ID when the sweep was saved"`
	Seed    uint64          `json:"seed" jsonschema:"Seed the sweep used"`
	A       float64         `json:"a" jsonschema:"True boundary separation"`
	V       float64         `json:"v" jsonschema:"True drift rate"`
	T       float64         `json:"t" jsonschema:"True nondecision time"`
	Results []ResultSummary `json:"results" jsonschema:"One entry per sample size, in sweep order"`
}

// HistoryInput defines the input for the ezdiff_history tool.
type HistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of runs to return, newest first (default 10)"`
}

// HistoryOutput defines the output for the ezdiff_history tool.
type HistoryOutput struct {
	Runs  []RunSummary `json:"runs" jsonschema:"Saved sweeps, newest first"`
	Count int          `json:"count" jsonschema:"Number of runs returned"`
}

// ExportInput defines the input for the ezdiff_export tool.
type ExportInput struct {
	Path  string `json:"path,omitempty" jsonschema:"Output file inside the exports directory; default is a timestamped name there"`
	Limit int    `json:"limit,omitempty" jsonschema:"Export only the newest N runs (default all)"`
}

// ExportOutput defines the output for the ezdiff_export tool.
type ExportOutput struct {
	Path string `json:"path" jsonschema:"File written"`
	Runs int    `json:"runs" jsonschema:"Number of runs exported"`
	Rows int    `json:"rows" jsonschema:"Number of (run, sample size) rows written"`
}

// RunSummary is a saved sweep as reported by ezdiff_history.
type RunSummary struct {
	ID        int64           `json:"id"`
	CreatedAt string          `json:"created_at" jsonschema:"RFC 3339 UTC timestamp"`
	Seed      uint64          `json:"seed"`
	A         float64         `json:"a"`
	V         float64         `json:"v"`
	T         float64         `json:"t"`
	Results   []ResultSummary `json:"results"`
}

// ResultSummary is a simulation.Result safe for JSON. Bias values that are
// NaN or infinite are null; Line always carries the textual form.
type ResultSummary struct {
	N           int      `json:"n"`
	Bias        *float64 `json:"bias"`
	BiasSquared *float64 `json:"bias_squared"`
	Line        string   `json:"line"`
}

func summarize(r simulation.Result) ResultSummary {
	return ResultSummary{
		N:           r.N,
		Bias:        finite(r.Bias),
		BiasSquared: finite(r.BiasSquared),
		Line:        simulation.FormatResult(r),
	}
}

func summarizeAll(results []simulation.Result) []ResultSummary {
	out := make([]ResultSummary, 0, len(results))
	for _, r := range results {
		out = append(out, summarize(r))
	}
	return out
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
