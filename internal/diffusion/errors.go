package diffusion

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors returned (possibly wrapped) by this package.
var (
	// ErrOutOfRange indicates a true parameter outside its valid range.
	ErrOutOfRange = errors.New("parameter out of range")

	// ErrNotNumeric indicates a true parameter that is NaN or infinite.
	ErrNotNumeric = errors.New("parameter is not a finite number")

	// ErrSampleSize indicates a sample size too small to simulate.
	ErrSampleSize = errors.New("sample size must be at least 2")

	// ErrNilSource indicates a missing random source.
	ErrNilSource = errors.New("random source is nil")

	// ErrInvalidPrediction indicates predicted statistics that cannot
	// parameterize the sampling distributions.
	ErrInvalidPrediction = errors.New("invalid predicted statistics")
)

// Kind classifies a DomainError.
type Kind int

const (
	// KindRange means the value is a number but lies outside the valid range.
	KindRange Kind = iota
	// KindType means the value is not a usable number (NaN or ±Inf).
	KindType
)

func (k Kind) String() string {
	switch k {
	case KindRange:
		return "range"
	case KindType:
		return "type"
	default:
		return "unknown"
	}
}

// DomainError reports a true parameter rejected by Predict.
// It names the parameter, the offending value and the valid range.
type DomainError struct {
	Kind  Kind
	Param string // "a", "v" or "t"
	Label string // human-readable parameter name
	Value float64
	Min   float64
	Max   float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s '%s' must be a number between %s and %s, got %s",
		e.Label, e.Param, formatFloat(e.Min), formatFloat(e.Max), formatFloat(e.Value))
}

// Unwrap maps the error onto ErrOutOfRange or ErrNotNumeric.
func (e *DomainError) Unwrap() error {
	if e.Kind == KindType {
		return ErrNotNumeric
	}
	return ErrOutOfRange
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
