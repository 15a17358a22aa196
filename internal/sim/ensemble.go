package sim

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/phaseflow/internal/dynamo"
	"github.com/san-kum/phaseflow/internal/integrators"
)

const (
	// respawnBox scales the visible half-extent to the region particles may
	// wander in before they are respawned.
	respawnBox = 3.0

	// ensembleChunks is the number of independently seeded slices the
	// ensemble is split into for parallel stepping.
	ensembleChunks = 64

	// fadeInRate brings a particle to full visibility after a fifth of its
	// life.
	fadeInRate = 5
)

// Ensemble is a fixed-size particle swarm. Positions and visibilities are
// stored as flat x, y, visibility triples ready for upload.
type Ensemble struct {
	data   []float64
	age    []float64
	maxAge float64
	rngs   []*rand.Rand
}

func NewEnsemble(n int, maxAge float64, seed uint64) *Ensemble {
	e := &Ensemble{
		data:   make([]float64, 3*n),
		age:    make([]float64, n),
		maxAge: maxAge,
		rngs:   make([]*rand.Rand, ensembleChunks),
	}
	for i := range e.rngs {
		e.rngs[i] = rand.New(rand.NewPCG(seed, uint64(i)))
	}
	return e
}

func (e *Ensemble) Len() int { return len(e.age) }

// Data returns the live x, y, visibility buffer.
func (e *Ensemble) Data() []float64 { return e.data }

func (e *Ensemble) Age(i int) float64 { return e.age[i] }

func (e *Ensemble) MaxAge() float64 { return e.maxAge }

func (e *Ensemble) Position(i int) r2.Vec {
	return r2.Vec{X: e.data[3*i], Y: e.data[3*i+1]}
}

func (e *Ensemble) Visibility(i int) float64 { return e.data[3*i+2] }

func (e *Ensemble) visibility(age float64) float64 {
	return math.Min(age/e.maxAge*fadeInRate, 1)
}

// Reset scatters every particle uniformly over the visible region with a
// uniformly random age.
func (e *Ensemble) Reset(cam dynamo.Camera, s dynamo.Surface) {
	half := cam.HalfExtent(s)
	e.forChunks(func(rng *rand.Rand, lo, hi int) {
		for i := lo; i < hi; i++ {
			p := uniformIn(rng, cam.Center, half)
			age := rng.Float64() * e.maxAge
			e.age[i] = age
			e.set(i, p, e.visibility(age))
		}
	})
}

// Step ages every particle by one frame and advances the survivors by one
// RK4 step of size h at time t. Particles that left the respawn box, grew
// too old, or hold or would step to a non-finite position are respawned
// invisible at a random point of the box.
func (e *Ensemble) Step(f integrators.Deriv, cam dynamo.Camera, s dynamo.Surface, t, h float64) {
	half := r2.Scale(respawnBox, cam.HalfExtent(s))
	c := cam.Center

	e.forChunks(func(rng *rand.Rand, lo, hi int) {
		for i := lo; i < hi; i++ {
			e.age[i]++
			p := e.Position(i)

			if math.Abs(p.X-c.X) > half.X || math.Abs(p.Y-c.Y) > half.Y ||
				e.age[i] > e.maxAge || !dynamo.IsFinite(p) {
				e.respawn(rng, i, c, half)
				continue
			}

			next := integrators.RK4(f, p, t, h)
			if !dynamo.IsFinite(next) {
				e.respawn(rng, i, c, half)
				continue
			}
			e.set(i, next, e.visibility(e.age[i]))
		}
	})
}

func (e *Ensemble) respawn(rng *rand.Rand, i int, c, half r2.Vec) {
	e.age[i] = 0
	e.set(i, uniformIn(rng, c, half), 0)
}

func (e *Ensemble) set(i int, p r2.Vec, vis float64) {
	e.data[3*i] = p.X
	e.data[3*i+1] = p.Y
	e.data[3*i+2] = vis
}

// forChunks runs fn over fixed particle slices, each with its own random
// source, so results do not depend on the number of CPUs.
func (e *Ensemble) forChunks(fn func(rng *rand.Rand, lo, hi int)) {
	n := e.Len()
	dynamo.ParallelFor(len(e.rngs), 1, func(start, end int) {
		for c := start; c < end; c++ {
			fn(e.rngs[c], c*n/len(e.rngs), (c+1)*n/len(e.rngs))
		}
	})
}

func uniformIn(rng *rand.Rand, c, half r2.Vec) r2.Vec {
	return r2.Vec{
		X: c.X + (rng.Float64()*2-1)*half.X,
		Y: c.Y + (rng.Float64()*2-1)*half.Y,
	}
}
