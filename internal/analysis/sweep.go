package analysis

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/phaseflow/internal/dynamo"
	"github.com/san-kum/phaseflow/internal/field"
	"github.com/san-kum/phaseflow/internal/integrators"
)

// SweepPoint holds the distinct settled x values for one parameter value.
type SweepPoint struct {
	Param  float64
	Values []float64
}

// SweepConfig controls a parameter sweep. Transient is integrated and
// discarded before Record is sampled.
type SweepConfig struct {
	Param     string
	Min, Max  float64
	Steps     int
	Origin    r2.Vec
	Dt        float64
	Transient float64
	Record    float64
}

type override struct {
	base  dynamo.ParamSource
	name  string
	value float64
}

func (o override) Param(name string) (float64, bool) {
	if name == o.name {
		return o.value, true
	}
	if o.base == nil {
		return 0, false
	}
	return o.base.Param(name)
}

// Sweep varies one parameter of f over [Min, Max], leaving the others as
// base supplies them, and records the distinct x values at the local
// maxima of x along each settled orbit. A fixed point records its single
// resting value. Values are rounded to 1e-3.
func Sweep(f *field.Field, base dynamo.ParamSource, cfg SweepConfig) []SweepPoint {
	steps := max(cfg.Steps, 2)
	if cfg.Dt <= 0 {
		return nil
	}
	step := (cfg.Max - cfg.Min) / float64(steps-1)
	out := make([]SweepPoint, 0, steps)

	for i := 0; i < steps; i++ {
		v := cfg.Min + float64(i)*step
		fn := integrators.Deriv(f.Bind(override{base: base, name: cfg.Param, value: v}))

		p, t := cfg.Origin, 0.0
		for t < cfg.Transient && dynamo.IsFinite(p) {
			p = integrators.RK4(fn, p, t, cfg.Dt)
			t += cfg.Dt
		}

		seen := make(map[int64]bool)
		var values []float64
		add := func(x float64) {
			key := int64(math.Round(x * 1000))
			if !seen[key] {
				seen[key] = true
				values = append(values, float64(key)/1000)
			}
		}

		prev, cur := p, p
		moved := false
		for t < cfg.Transient+cfg.Record && dynamo.IsFinite(cur) {
			next := integrators.RK4(fn, cur, t, cfg.Dt)
			t += cfg.Dt
			if cur.X > prev.X && cur.X >= next.X {
				add(cur.X)
			}
			if r2.Norm(r2.Sub(next, cur)) > 1e-9 {
				moved = true
			}
			prev, cur = cur, next
		}
		if !moved && dynamo.IsFinite(cur) {
			add(cur.X)
		}
		out = append(out, SweepPoint{Param: v, Values: values})
	}
	return out
}

// SweepToASCII plots sweep results as a dot diagram of width x height
// characters, parameter on the horizontal axis.
func SweepToASCII(data []SweepPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	var lo, hi float64
	found := false
	for _, p := range data {
		for _, v := range p.Values {
			if !found {
				lo, hi, found = v, v, true
				continue
			}
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if !found {
		return ""
	}
	if hi == lo {
		hi = lo + 1
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	for i, p := range data {
		col := min(i*width/len(data), width-1)
		for _, v := range p.Values {
			row := height - 1 - int((v-lo)/(hi-lo)*float64(height-1))
			if row >= 0 && row < height {
				grid[row][col] = '•'
			}
		}
	}

	var b strings.Builder
	for _, row := range grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}
