// Package integrators advances planar states with fixed-step Runge-Kutta.
package integrators

import "gonum.org/v1/gonum/spatial/r2"

// Deriv is the right-hand side of a planar system.
type Deriv func(x, y, t float64) r2.Vec

// RK4 performs one classical fourth-order Runge-Kutta step of size h from
// p at time t. Non-finite samples propagate into the result; callers decide
// what to do with them.
func RK4(f Deriv, p r2.Vec, t, h float64) r2.Vec {
	half := h * 0.5

	k1 := f(p.X, p.Y, t)
	k2 := f(p.X+half*k1.X, p.Y+half*k1.Y, t+half)
	k3 := f(p.X+half*k2.X, p.Y+half*k2.Y, t+half)
	k4 := f(p.X+h*k3.X, p.Y+h*k3.Y, t+h)

	h6 := h / 6.0
	return r2.Vec{
		X: p.X + h6*(k1.X+2*k2.X+2*k3.X+k4.X),
		Y: p.Y + h6*(k1.Y+2*k2.Y+2*k3.Y+k4.Y),
	}
}

// Integrate takes up to n RK4 steps of size h starting at p0, t0 and calls
// keep with each new state. It stops early, without recording the state,
// when keep returns false. The returned count is the number of accepted
// steps.
func Integrate(f Deriv, p0 r2.Vec, t0, h float64, n int, keep func(r2.Vec) bool) int {
	p, t := p0, t0
	for i := 0; i < n; i++ {
		next := RK4(f, p, t, h)
		if !keep(next) {
			return i
		}
		p = next
		t += h
	}
	return n
}
