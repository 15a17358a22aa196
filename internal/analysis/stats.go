package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
)

// Summary describes a sampled orbit.
type Summary struct {
	Points   int
	Min, Max r2.Vec
	Mean     r2.Vec
	StdDev   r2.Vec
	// Length is the polyline arc length.
	Length float64
	// Closure is the distance from the last point back to the first.
	Closure float64
}

// Summarize computes the Summary of pts. It returns the zero Summary for an
// empty orbit.
func Summarize(pts []r2.Vec) Summary {
	if len(pts) == 0 {
		return Summary{}
	}
	xs, ys := Components(pts)
	s := Summary{
		Points: len(pts),
		Min:    r2.Vec{X: floats.Min(xs), Y: floats.Min(ys)},
		Max:    r2.Vec{X: floats.Max(xs), Y: floats.Max(ys)},
		Mean:   r2.Vec{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)},
	}
	if len(pts) > 1 {
		s.StdDev = r2.Vec{X: stat.PopStdDev(xs, nil), Y: stat.PopStdDev(ys, nil)}
		seg := make([]float64, len(pts)-1)
		for i := range seg {
			seg[i] = r2.Norm(r2.Sub(pts[i+1], pts[i]))
		}
		s.Length = floats.Sum(seg)
		s.Closure = r2.Norm(r2.Sub(pts[len(pts)-1], pts[0]))
	}
	return s
}

// Components splits pts into coordinate series.
func Components(pts []r2.Vec) (xs, ys []float64) {
	xs = make([]float64, len(pts))
	ys = make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}

// Speed returns the point-to-point speed of an orbit sampled every dt.
func Speed(pts []r2.Vec, dt float64) []float64 {
	if len(pts) < 2 || dt <= 0 {
		return nil
	}
	v := make([]float64, len(pts)-1)
	for i := range v {
		v[i] = r2.Norm(r2.Sub(pts[i+1], pts[i])) / dt
	}
	return v
}

// Radius returns the distance of each point from c.
func Radius(pts []r2.Vec, c r2.Vec) []float64 {
	r := make([]float64, len(pts))
	for i, p := range pts {
		r[i] = math.Hypot(p.X-c.X, p.Y-c.Y)
	}
	return r
}
