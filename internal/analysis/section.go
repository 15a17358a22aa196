package analysis

import "gonum.org/v1/gonum/spatial/r2"

// Axis selects the line of a Poincaré section: 'x' cuts on x = level and
// 'y' on y = level.
type Axis byte

const (
	AxisX Axis = 'x'
	AxisY Axis = 'y'
)

// Crossings returns the points where the orbit crosses the section line in
// the increasing direction, linearly interpolated between samples.
func Crossings(pts []r2.Vec, axis Axis, level float64) []r2.Vec {
	coord := func(p r2.Vec) float64 {
		if axis == AxisX {
			return p.X
		}
		return p.Y
	}
	var out []r2.Vec
	for i := 1; i < len(pts); i++ {
		a, b := coord(pts[i-1]), coord(pts[i])
		if a < level && b >= level {
			frac := (level - a) / (b - a)
			out = append(out, r2.Add(pts[i-1], r2.Scale(frac, r2.Sub(pts[i], pts[i-1]))))
		}
	}
	return out
}

// ReturnTimes returns the intervals between successive crossings of an
// orbit sampled every dt.
func ReturnTimes(pts []r2.Vec, axis Axis, level, dt float64) []float64 {
	var (
		out  []float64
		last = -1.0
	)
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1].Y, pts[i].Y
		if axis == AxisX {
			a, b = pts[i-1].X, pts[i].X
		}
		if a < level && b >= level {
			t := (float64(i-1) + (level-a)/(b-a)) * dt
			if last >= 0 {
				out = append(out, t-last)
			}
			last = t
		}
	}
	return out
}
