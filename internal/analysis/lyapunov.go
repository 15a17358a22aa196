package analysis

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/phaseflow/internal/dynamo"
	"github.com/san-kum/phaseflow/internal/integrators"
)

// LyapunovExponent estimates the largest Lyapunov exponent of the orbit
// through x0 by following a companion orbit displaced by perturbation in x
// and renormalizing their separation back to perturbation after every
// step. It returns 0 if either orbit leaves the finite plane.
func LyapunovExponent(f integrators.Deriv, x0 r2.Vec, t0, dt, duration, perturbation float64) float64 {
	if dt <= 0 || duration <= 0 || perturbation <= 0 {
		return 0
	}
	x := x0
	xp := r2.Add(x0, r2.Vec{X: perturbation})
	t := t0

	var sumLog float64
	var count int
	for t-t0 < duration {
		x = integrators.RK4(f, x, t, dt)
		xp = integrators.RK4(f, xp, t, dt)
		t += dt
		if !dynamo.IsFinite(x) || !dynamo.IsFinite(xp) {
			return 0
		}

		d := r2.Sub(xp, x)
		sep := r2.Norm(d)
		if sep == 0 {
			continue
		}
		sumLog += math.Log(sep / perturbation)
		count++
		xp = r2.Add(x, r2.Scale(perturbation/sep, d))
	}
	if count == 0 {
		return 0
	}
	return sumLog / (float64(count) * dt)
}
