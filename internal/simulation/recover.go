package simulation

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"

	"github.com/nvandessel/ezdiff/internal/constants"
	"github.com/nvandessel/ezdiff/internal/diffusion"
)

// Result summarizes the recovery error for one sample size.
type Result struct {
	N           int     `json:"n"`
	Bias        float64 `json:"bias"`
	BiasSquared float64 `json:"bias_squared"`
}

// Recover runs constants.Trials simulated experiments of size n for the
// true parameters p and returns the mean signed recovery error.
//
// Invalid parameters fail with the *diffusion.DomainError from Predict.
// Degenerate trials are not retried: their NaN or ±Inf error flows into
// the bias unchanged.
func Recover(p diffusion.Parameters, n int, src rand.Source) (Result, error) {
	errs := make([]float64, constants.Trials)
	for i := range errs {
		e, err := Trial(p, n, src)
		if err != nil {
			return Result{}, err
		}
		errs[i] = e
	}
	return meanBias(n, errs), nil
}

// meanBias folds per-trial errors into a Result. A single NaN or infinite
// error makes the bias non-finite.
func meanBias(n int, errs []float64) Result {
	bias := stat.Mean(errs, nil)
	return Result{
		N:           n,
		Bias:        bias,
		BiasSquared: bias * bias,
	}
}

// Trial runs one Predict -> Observe -> Estimate pass and returns the
// summed signed error over v, a and t, each rounded before summing.
func Trial(p diffusion.Parameters, n int, src rand.Source) (float64, error) {
	pred, err := diffusion.Predict(p)
	if err != nil {
		return 0, err
	}
	obs, err := diffusion.Observe(pred, n, src)
	if err != nil {
		return 0, fmt.Errorf("observe: %w", err)
	}
	est := diffusion.Estimate(obs)

	return roundTo(p.V-est.V, constants.ErrorPrecision) +
		roundTo(p.A-est.A, constants.ErrorPrecision) +
		roundTo(p.T-est.T, constants.ErrorPrecision), nil
}

// roundTo rounds x to the given number of decimal digits, half away from zero.
func roundTo(x float64, digits int) float64 {
	scale := math.Pow10(digits)
	return math.Round(x*scale) / scale
}
