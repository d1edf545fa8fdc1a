package diffusion

import (
	"math"

	"github.com/nvandessel/ezdiff/internal/constants"
)

// Estimated holds parameter estimates recovered from observed statistics.
// Any field may be NaN or ±Inf when the observation is degenerate.
type Estimated struct {
	V float64 `json:"v"` // drift rate
	A float64 `json:"a"` // boundary separation
	T float64 `json:"t"` // nondecision time
}

// Estimate inverts observed statistics into EZ-diffusion estimates.
func Estimate(o Observed) Estimated {
	return EstimateFrom(o.R, o.M, o.V)
}

// EstimateFrom inverts an accuracy rate r, mean RT m and RT variance vrt.
//
// Only the guards below are applied; every other degeneracy (vrt near
// zero, a negative radicand under the fourth root) yields NaN or ±Inf.
func EstimateFrom(r, m, vrt float64) Estimated {
	r = clampAccuracy(r)

	l := math.Log(r / (1 - r))
	radicand := l * (r*r*l - r*l + r - 0.5) / vrt
	// math.Pow returns NaN for a negative radicand.
	v := sign(r-0.5) * math.Pow(radicand, 0.25)
	v = clampDrift(v)

	a := l / v
	decay := math.Exp(-v * a)
	t := m - (a/(2*v))*((1-decay)/(1+decay))

	return Estimated{V: v, A: a, T: t}
}

// clampAccuracy keeps the log-odds finite at perfect accuracy.
//
// Heuristic safeguard, not part of the closed-form model. The upper guard
// only catches r == 1; the lower guard catches the whole range below
// LowAccuracyCutoff, not just values near zero.
func clampAccuracy(r float64) float64 {
	if r == 1 {
		return constants.PerfectAccuracyClamp
	} else if r < constants.LowAccuracyCutoff {
		return constants.LowAccuracyClamp
	}
	return r
}

// clampDrift avoids dividing by a zero drift estimate, which happens
// whenever the clamped accuracy is exactly 0.5.
func clampDrift(v float64) float64 {
	if v == 0 {
		return constants.ZeroDriftClamp
	}
	return v
}

// sign returns -1, 0 or +1. NaN maps to NaN.
func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	case x == 0:
		return 0
	default:
		return math.NaN()
	}
}
