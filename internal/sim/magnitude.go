package sim

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/phaseflow/internal/dynamo"
	"github.com/san-kum/phaseflow/internal/integrators"
)

// MagnitudeNormalizer tracks a smoothed maximum of the field magnitude over
// the visible region. It falls quickly and rises slowly so brightness does
// not flicker while panning.
type MagnitudeNormalizer struct {
	grid  int
	decay float64
	rise  float64
	value float64
}

func NewMagnitudeNormalizer(grid int, decay, rise float64) *MagnitudeNormalizer {
	return &MagnitudeNormalizer{grid: grid, decay: decay, rise: rise, value: 1}
}

func (m *MagnitudeNormalizer) Value() float64 { return m.value }

// Reset restores the initial running maximum.
func (m *MagnitudeNormalizer) Reset() { m.value = 1 }

// Sample returns the largest finite |f| over a grid×grid lattice spanning the
// visible region, or 1 when there is none.
func (m *MagnitudeNormalizer) Sample(f integrators.Deriv, cam dynamo.Camera, s dynamo.Surface, t float64) float64 {
	half := cam.HalfExtent(s)
	n := m.grid
	maxMag := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x := cam.Center.X + (float64(i)/float64(n-1)*2-1)*half.X
			y := cam.Center.Y + (float64(j)/float64(n-1)*2-1)*half.Y
			mag := r2.Norm(f(x, y, t))
			if !math.IsNaN(mag) && !math.IsInf(mag, 0) && mag > maxMag {
				maxMag = mag
			}
		}
	}
	if maxMag == 0 {
		return 1
	}
	return maxMag
}

// Update folds a new sample into the running value and returns it.
func (m *MagnitudeNormalizer) Update(sample float64) float64 {
	k := m.rise
	if sample < m.value {
		k = m.decay
	}
	m.value += (sample - m.value) * k
	return m.value
}
