package simulation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/nvandessel/ezdiff/internal/constants"
	"github.com/nvandessel/ezdiff/internal/diffusion"
)

// Report is the outcome of one sweep over sample sizes.
type Report struct {
	Seed    uint64               `json:"seed"`
	Params  diffusion.Parameters `json:"params"`
	Results []Result             `json:"results"`
}

// NewSource returns a PCG source for seed. The same seed always yields
// the same stream.
func NewSource(seed uint64) *rand.PCG {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// TimeSeed returns a seed derived from the wall clock, for runs where the
// caller did not pick one. It is never zero.
func TimeSeed() uint64 {
	s := uint64(time.Now().UnixNano())
	if s == 0 {
		return 1
	}
	return s
}

// DrawParameters draws a, v and t independently and uniformly from their
// valid ranges.
func DrawParameters(src rand.Source) diffusion.Parameters {
	a := distuv.Uniform{Min: constants.MinBoundary, Max: constants.MaxBoundary, Src: src}
	v := distuv.Uniform{Min: constants.MinDrift, Max: constants.MaxDrift, Src: src}
	t := distuv.Uniform{Min: constants.MinNondecision, Max: constants.MaxNondecision, Src: src}
	return diffusion.Parameters{A: a.Rand(), V: v.Rand(), T: t.Rand()}
}

// Sweep calls Recover once per sample size, in order, sharing src.
// onResult, if non-nil, is called after each size completes. The context
// is checked between sizes; a single Recover call is not interruptible.
func Sweep(ctx context.Context, p diffusion.Parameters, sizes []int, src rand.Source, onResult func(Result)) (Report, error) {
	if len(sizes) == 0 {
		return Report{}, fmt.Errorf("sweep: no sample sizes")
	}
	if err := p.Validate(); err != nil {
		return Report{}, err
	}

	report := Report{Params: p, Results: make([]Result, 0, len(sizes))}
	for _, n := range sizes {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("sweep interrupted before N=%d: %w", n, err)
		}
		r, err := Recover(p, n, src)
		if err != nil {
			return report, fmt.Errorf("recover N=%d: %w", n, err)
		}
		report.Results = append(report.Results, r)
		if onResult != nil {
			onResult(r)
		}
	}
	return report, nil
}

// FormatResult renders r as a single human-readable report line.
func FormatResult(r Result) string {
	return fmt.Sprintf("When N is %d, b = %s, b^2 = %s",
		r.N, strconv.FormatFloat(r.Bias, 'g', -1, 64), strconv.FormatFloat(r.BiasSquared, 'g', -1, 64))
}
