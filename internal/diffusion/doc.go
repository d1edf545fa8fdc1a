// Package diffusion implements the EZ-diffusion forward and inverse transforms.
//
// The model relates three behavioral summary statistics (accuracy rate,
// mean response time, response-time variance) to three latent diffusion
// parameters (boundary separation a, drift rate v, nondecision time t).
// The package exposes the three stages of a recovery experiment:
//
//   - Predict maps true parameters to theoretical statistics.
//   - Observe samples finite-N statistics around a prediction.
//   - Estimate inverts observed statistics into parameter estimates.
//
// Predict and Estimate are pure. Observe draws from an explicit
// math/rand/v2 Source supplied by the caller; nothing here touches a
// process-wide generator.
//
// Estimate never returns an error. Degenerate statistics that slip past
// its guard clauses (a negative radicand, a near-zero variance) produce
// NaN or ±Inf estimates, which callers are expected to propagate.
package diffusion
