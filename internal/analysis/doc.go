// Package analysis characterizes planar orbits sampled from a vector field.
//
//   - [Summarize]: bounds, centroid, spread and arc length of a sampled orbit
//   - [DominantPeriod]: period of the strongest oscillation in a series
//   - [Crossings]: Poincaré section of an orbit on a horizontal or vertical line
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//   - [Sweep]: parameter sweep recording the settled values of an orbit
//
// A positive largest Lyapunov exponent indicates sensitive dependence on
// initial conditions; planar autonomous flows cannot be chaotic, so for
// them it separates converging orbits from neutral cycles:
//
//	lambda := analysis.LyapunovExponent(f, origin, 0, dt, duration, 1e-8)
//	if lambda < 0 {
//	    // nearby orbits converge
//	}
package analysis
