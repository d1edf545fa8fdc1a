package diffusion

import (
	"math"

	"github.com/nvandessel/ezdiff/internal/constants"
)

// Parameters are the true diffusion parameters of a simulated participant.
type Parameters struct {
	A float64 `json:"a"` // boundary separation
	V float64 `json:"v"` // drift rate
	T float64 `json:"t"` // nondecision time
}

// Predicted holds the theoretical summary statistics implied by Parameters.
type Predicted struct {
	R float64 `json:"r"` // accuracy rate
	M float64 `json:"m"` // mean response time
	V float64 `json:"v"` // response-time variance
}

// bound describes the valid range of one true parameter.
type bound struct {
	param string
	label string
	min   float64
	max   float64
}

var (
	boundaryBound    = bound{"a", "Boundary separation", constants.MinBoundary, constants.MaxBoundary}
	driftBound       = bound{"v", "Drift rate", constants.MinDrift, constants.MaxDrift}
	nondecisionBound = bound{"t", "Nondecision time", constants.MinNondecision, constants.MaxNondecision}
)

func (b bound) check(x float64) error {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return &DomainError{Kind: KindType, Param: b.param, Label: b.label, Value: x, Min: b.min, Max: b.max}
	}
	if x < b.min || x > b.max {
		return &DomainError{Kind: KindRange, Param: b.param, Label: b.label, Value: x, Min: b.min, Max: b.max}
	}
	return nil
}

// Validate checks a, v and t against their ranges, in that order, and
// returns the first violation as a *DomainError.
func (p Parameters) Validate() error {
	if err := boundaryBound.check(p.A); err != nil {
		return err
	}
	if err := driftBound.check(p.V); err != nil {
		return err
	}
	return nondecisionBound.check(p.T)
}

// Predict computes the theoretical accuracy, mean RT and RT variance for p.
func Predict(p Parameters) (Predicted, error) {
	if err := p.Validate(); err != nil {
		return Predicted{}, err
	}

	a, v, t := p.A, p.V, p.T
	y := math.Exp(-a * v)

	return Predicted{
		R: 1 / (1 + y),
		M: t + (a/(2*v))*((1-y)/(1+y)),
		V: (a / (2 * v * v * v)) * ((1 - 2*a*v*y - y*y) / ((y + 1) * (y + 1))),
	}, nil
}
