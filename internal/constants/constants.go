// Package constants provides named constants used throughout the ezdiff codebase.
// This centralizes magic numbers for better maintainability and documentation.
package constants

// Parameter bounds for the true diffusion parameters. Both ends are inclusive.
const (
	// MinBoundary and MaxBoundary bound the boundary separation a.
	MinBoundary = 0.5
	MaxBoundary = 2.0

	// MinDrift and MaxDrift bound the drift rate v.
	MinDrift = 0.5
	MaxDrift = 2.0

	// MinNondecision and MaxNondecision bound the nondecision time t.
	MinNondecision = 0.1
	MaxNondecision = 0.5
)

// Recovery loop constants
const (
	// Trials is the number of simulated experiments per recovery call.
	Trials = 1000

	// ErrorPrecision is the number of decimal digits each per-parameter
	// error is rounded to before the three are summed.
	ErrorPrecision = 6

	// MinSampleSize is the smallest N the observer accepts. The variance
	// draw has shape (N-1)/2, which must be positive.
	MinSampleSize = 2
)

// Estimator guard values. These are heuristic safeguards, not part of the
// closed-form model.
const (
	// PerfectAccuracyClamp replaces an observed accuracy of exactly 1.
	PerfectAccuracyClamp = 0.999

	// LowAccuracyCutoff is the accuracy below which LowAccuracyClamp applies.
	LowAccuracyCutoff = 0.1

	// LowAccuracyClamp replaces any observed accuracy below LowAccuracyCutoff.
	LowAccuracyClamp = 0.001

	// ZeroDriftClamp replaces an estimated drift of exactly 0.
	ZeroDriftClamp = 0.001
)

// DefaultSampleSizes returns the sample sizes swept when none are configured.
func DefaultSampleSizes() []int {
	return []int{10, 40, 4000}
}
