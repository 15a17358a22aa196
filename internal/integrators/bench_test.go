package integrators

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/phaseflow/internal/expr"
)

func BenchmarkRK4(b *testing.B) {
	p := r2.Vec{X: 1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p = RK4(rotation, p, 0, 0.01)
	}
}

func BenchmarkRK4_CompiledVanDerPol(b *testing.B) {
	dx := expr.Compile("y").Eval.Bind(nil)
	dy := expr.Compile("1.5*(1 - x^2)*y - x").Eval.Bind(nil)
	f := func(x, y, t float64) r2.Vec { return r2.Vec{X: dx(x, y, t), Y: dy(x, y, t)} }
	p := r2.Vec{X: 0.5, Y: 0.5}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p = RK4(f, p, 0, 0.005)
	}
}
