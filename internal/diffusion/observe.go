package diffusion

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/nvandessel/ezdiff/internal/constants"
)

// Observed holds the summary statistics of one simulated experiment.
type Observed struct {
	N int     `json:"n"` // sample size
	T int     `json:"t"` // number of correct trials, in [0, N]
	R float64 `json:"r"` // observed accuracy, T/N
	M float64 `json:"m"` // observed mean RT
	V float64 `json:"v"` // observed RT variance
}

// Observe samples the statistics of an n-trial experiment whose
// population statistics are p:
//
//	T ~ Binomial(n, p.R),              R = T/n
//	M ~ Normal(p.M, variance p.V/n)
//	V ~ Gamma(shape (n-1)/2, scale 2·p.V/(n-1))
//
// Each call consumes three independent draws from src.
func Observe(p Predicted, n int, src rand.Source) (Observed, error) {
	if src == nil {
		return Observed{}, ErrNilSource
	}
	if n < constants.MinSampleSize {
		return Observed{}, fmt.Errorf("%w: got %d", ErrSampleSize, n)
	}
	if !(p.R >= 0 && p.R <= 1) {
		return Observed{}, fmt.Errorf("%w: accuracy %g outside [0, 1]", ErrInvalidPrediction, p.R)
	}
	if !(p.V > 0) || math.IsInf(p.V, 0) {
		return Observed{}, fmt.Errorf("%w: variance %g must be positive and finite", ErrInvalidPrediction, p.V)
	}

	nf := float64(n)

	hits := distuv.Binomial{N: nf, P: p.R, Src: src}
	rt := distuv.Normal{Mu: p.M, Sigma: math.Sqrt(p.V / nf), Src: src}
	// gonum parameterizes the gamma by rate, the inverse of the scale.
	spread := distuv.Gamma{Alpha: (nf - 1) / 2, Beta: (nf - 1) / (2 * p.V), Src: src}

	t := int(hits.Rand())
	return Observed{
		N: n,
		T: t,
		R: float64(t) / nf,
		M: rt.Rand(),
		V: spread.Rand(),
	}, nil
}

// Noiseless returns the observation an infinitely precise experiment of
// size n would report: the predicted statistics with T rounded to the
// nearest whole trial and R left unrounded.
func Noiseless(p Predicted, n int) Observed {
	return Observed{
		N: n,
		T: int(math.Round(p.R * float64(n))),
		R: p.R,
		M: p.M,
		V: p.V,
	}
}
