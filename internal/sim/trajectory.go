package sim

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/phaseflow/internal/dynamo"
	"github.com/san-kum/phaseflow/internal/integrators"
)

// Palette is the cycle of trajectory colors.
var Palette = [][3]float32{
	{0.0, 1.0, 0.4}, {1.0, 0.85, 0.0}, {0.0, 0.85, 1.0},
	{1.0, 0.35, 0.55}, {0.6, 0.4, 1.0}, {1.0, 0.6, 0.1},
	{0.3, 1.0, 0.85}, {1.0, 0.4, 1.0},
}

// Trajectory is a forward orbit from a fixed origin. Version changes every
// time Points is rebuilt.
type Trajectory struct {
	Origin    r2.Vec
	Points    []r2.Vec
	Color     [3]float32
	Truncated bool
	Version   int
}

// Trajectories is the ordered set of user-seeded orbits.
type Trajectories struct {
	steps int
	dt    float64
	bound float64
	list  []*Trajectory
	next  int
}

func NewTrajectories(steps int, dt, bound float64) *Trajectories {
	return &Trajectories{steps: steps, dt: dt, bound: bound}
}

// Add integrates a new trajectory from origin starting at time t0 and
// assigns it the next palette color.
func (ts *Trajectories) Add(f integrators.Deriv, origin r2.Vec, t0 float64) *Trajectory {
	tr := &Trajectory{Origin: origin, Color: Palette[ts.next%len(Palette)]}
	ts.next++
	ts.integrate(tr, f, t0)
	ts.list = append(ts.list, tr)
	return tr
}

// Recompute rebuilds every trajectory from its origin, keeping order and
// colors.
func (ts *Trajectories) Recompute(f integrators.Deriv, t0 float64) {
	for _, tr := range ts.list {
		ts.integrate(tr, f, t0)
	}
}

func (ts *Trajectories) integrate(tr *Trajectory, f integrators.Deriv, t0 float64) {
	tr.Points, tr.Truncated = Integrate(f, tr.Origin, t0, ts.dt, ts.steps, ts.bound, tr.Points[:0])
	tr.Version++
}

// RemoveLast drops the most recent trajectory and returns it, or nil.
func (ts *Trajectories) RemoveLast() *Trajectory {
	if len(ts.list) == 0 {
		return nil
	}
	tr := ts.list[len(ts.list)-1]
	ts.list[len(ts.list)-1] = nil
	ts.list = ts.list[:len(ts.list)-1]
	return tr
}

// Clear drops every trajectory and restarts the palette.
func (ts *Trajectories) Clear() {
	ts.list = nil
	ts.next = 0
}

func (ts *Trajectories) Len() int { return len(ts.list) }

// List returns the trajectories in creation order.
func (ts *Trajectories) List() []*Trajectory {
	out := make([]*Trajectory, len(ts.list))
	copy(out, ts.list)
	return out
}

// Integrate samples up to steps states of the orbit through origin, the
// origin included, appending them to buf. It stops before storing a state
// that is non-finite or outside |x|, |y| <= bound and reports whether it
// stopped early.
func Integrate(f integrators.Deriv, origin r2.Vec, t0, dt float64, steps int, bound float64, buf []r2.Vec) ([]r2.Vec, bool) {
	inBounds := func(p r2.Vec) bool {
		return dynamo.IsFinite(p) && math.Abs(p.X) <= bound && math.Abs(p.Y) <= bound
	}
	if steps <= 0 {
		return buf, false
	}
	if !inBounds(origin) {
		return buf, true
	}
	buf = append(buf, origin)
	n := integrators.Integrate(f, origin, t0, dt, steps-1, func(p r2.Vec) bool {
		if !inBounds(p) {
			return false
		}
		buf = append(buf, p)
		return true
	})
	return buf, n < steps-1
}
