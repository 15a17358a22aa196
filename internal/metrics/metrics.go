// Package metrics holds frame observers that summarize a running
// simulation for display.
package metrics

import (
	"math"

	"github.com/san-kum/phaseflow/internal/sim"
)

// Metric is a sim.Observer that reduces frames to one number.
type Metric interface {
	sim.Observer
	Name() string
	Value() float64
	Reset()
}

// History keeps the most recent normalizing magnitudes, oldest first.
type History struct {
	name   string
	cap    int
	values []float64
}

func NewHistory(capacity int) *History {
	return &History{name: "magnitude", cap: max(capacity, 1)}
}

func (h *History) Name() string { return h.name }

func (h *History) OnFrame(f *sim.Frame) {
	h.values = append(h.values, f.MagMax)
	if len(h.values) > h.cap {
		h.values = h.values[len(h.values)-h.cap:]
	}
}

// Value is the latest sample, or 0 before the first frame.
func (h *History) Value() float64 {
	if len(h.values) == 0 {
		return 0
	}
	return h.values[len(h.values)-1]
}

func (h *History) Values() []float64 { return h.values }

func (h *History) Reset() { h.values = h.values[:0] }

// Visibility is the mean particle visibility of the latest frame.
type Visibility struct {
	name  string
	value float64
}

func NewVisibility() *Visibility { return &Visibility{name: "visibility"} }

func (v *Visibility) Name() string { return v.name }

func (v *Visibility) OnFrame(f *sim.Frame) {
	n := len(f.Particles) / 3
	if n == 0 {
		v.value = 0
		return
	}
	var sum float64
	for i := 2; i < len(f.Particles); i += 3 {
		sum += f.Particles[i]
	}
	v.value = sum / float64(n)
}

func (v *Visibility) Value() float64 { return v.value }

func (v *Visibility) Reset() { v.value = 0 }

// Coverage is the fraction of particles inside the view in the latest
// frame.
type Coverage struct {
	name  string
	value float64
}

func NewCoverage() *Coverage { return &Coverage{name: "coverage"} }

func (c *Coverage) Name() string { return c.name }

func (c *Coverage) OnFrame(f *sim.Frame) {
	n := len(f.Particles) / 3
	if n == 0 {
		c.value = 0
		return
	}
	half := f.Camera.HalfExtent(f.Surface)
	var inside int
	for i := 0; i+1 < len(f.Particles); i += 3 {
		dx := math.Abs(f.Particles[i] - f.Camera.Center.X)
		dy := math.Abs(f.Particles[i+1] - f.Camera.Center.Y)
		if dx <= half.X && dy <= half.Y {
			inside++
		}
	}
	c.value = float64(inside) / float64(n)
}

func (c *Coverage) Value() float64 { return c.value }

func (c *Coverage) Reset() { c.value = 0 }

// Set fans frames out to several metrics.
type Set []Metric

func (s Set) OnFrame(f *sim.Frame) {
	for _, m := range s {
		m.OnFrame(f)
	}
}

// Values maps each metric name to its current value.
func (s Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, m := range s {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s Set) Reset() {
	for _, m := range s {
		m.Reset()
	}
}
