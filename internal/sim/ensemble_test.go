package sim

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/phaseflow/internal/dynamo"
)

var (
	testSurface = dynamo.Surface{Width: 800, Height: 600, DPR: 1}
	testCamera  = dynamo.Camera{Center: r2.Vec{X: 1, Y: -1}, Zoom: 50}
)

func rotation(x, y, _ float64) r2.Vec { return r2.Vec{X: -y, Y: x} }

func TestEnsemble_ResetInsideView(t *testing.T) {
	e := NewEnsemble(5000, 120, 7)
	e.Reset(testCamera, testSurface)

	half := testCamera.HalfExtent(testSurface)
	for i := 0; i < e.Len(); i++ {
		p := e.Position(i)
		if math.Abs(p.X-testCamera.Center.X) > half.X || math.Abs(p.Y-testCamera.Center.Y) > half.Y {
			t.Fatalf("particle %d at %v outside visible box", i, p)
		}
		if a := e.Age(i); a < 0 || a > e.MaxAge() {
			t.Fatalf("particle %d age %v out of range", i, a)
		}
		want := math.Min(e.Age(i)/e.MaxAge()*5, 1)
		if v := e.Visibility(i); v != want {
			t.Fatalf("particle %d visibility %v, want %v", i, v, want)
		}
	}
}

func TestEnsemble_AgeInvariant(t *testing.T) {
	e := NewEnsemble(2000, 30, 1)
	e.Reset(testCamera, testSurface)

	for frame := 0; frame < 200; frame++ {
		e.Step(rotation, testCamera, testSurface, float64(frame)*0.01, 0.01)
		for i := 0; i < e.Len(); i++ {
			if a := e.Age(i); a < 0 || a > e.MaxAge() {
				t.Fatalf("frame %d: particle %d age %v outside [0, %v]", frame, i, a, e.MaxAge())
			}
			if v := e.Visibility(i); v < 0 || v > 1 {
				t.Fatalf("frame %d: particle %d visibility %v", frame, i, v)
			}
		}
	}
}

func TestEnsemble_NonFiniteRespawns(t *testing.T) {
	poison := func(x, y, _ float64) r2.Vec { return r2.Vec{X: math.NaN(), Y: y} }

	e := NewEnsemble(1000, 120, 3)
	e.Reset(testCamera, testSurface)
	e.Step(poison, testCamera, testSurface, 0, 0.01)

	half := r2.Scale(3, testCamera.HalfExtent(testSurface))
	for i := 0; i < e.Len(); i++ {
		p := e.Position(i)
		if !dynamo.IsFinite(p) {
			t.Fatalf("particle %d kept non-finite position %v", i, p)
		}
		if e.Age(i) != 0 || e.Visibility(i) != 0 {
			t.Fatalf("particle %d not respawned: age %v vis %v", i, e.Age(i), e.Visibility(i))
		}
		if math.Abs(p.X-testCamera.Center.X) > half.X || math.Abs(p.Y-testCamera.Center.Y) > half.Y {
			t.Fatalf("respawned particle %d at %v outside respawn box", i, p)
		}
	}
}

func TestEnsemble_OutOfBoxRespawns(t *testing.T) {
	e := NewEnsemble(10, 120, 3)
	e.Reset(testCamera, testSurface)

	far := dynamo.Camera{Center: r2.Vec{X: 1e4, Y: 1e4}, Zoom: 50}
	e.Step(rotation, far, testSurface, 0, 0.01)

	for i := 0; i < e.Len(); i++ {
		if e.Age(i) != 0 {
			t.Errorf("particle %d outside the new view was not respawned", i)
		}
		if d := r2.Norm(r2.Sub(e.Position(i), far.Center)); d > 100 {
			t.Errorf("particle %d respawned %v away from the camera", i, d)
		}
	}
}

func TestEnsemble_StepAdvancesWithRK4(t *testing.T) {
	e := NewEnsemble(1, 120, 1)
	e.set(0, r2.Vec{X: 1, Y: 0}, 0)
	e.age[0] = 60

	e.Step(rotation, dynamo.Camera{Zoom: 50}, testSurface, 0, 0.1)

	p := e.Position(0)
	if math.Abs(p.X-math.Cos(0.1)) > 1e-6 || math.Abs(p.Y-math.Sin(0.1)) > 1e-6 {
		t.Errorf("position after one step %v, want (cos .1, sin .1)", p)
	}
	if e.Age(0) != 61 || e.Visibility(0) != 1 {
		t.Errorf("age %v visibility %v, want 61 and 1", e.Age(0), e.Visibility(0))
	}
}

func TestEnsemble_Deterministic(t *testing.T) {
	a, b := NewEnsemble(3000, 120, 42), NewEnsemble(3000, 120, 42)
	for _, e := range []*Ensemble{a, b} {
		e.Reset(testCamera, testSurface)
		for i := 0; i < 50; i++ {
			e.Step(rotation, testCamera, testSurface, 0, 0.05)
		}
	}
	for i := range a.Data() {
		if a.Data()[i] != b.Data()[i] {
			t.Fatalf("ensembles with the same seed diverged at %d", i)
		}
	}
}

func BenchmarkEnsembleStep(b *testing.B) {
	e := NewEnsemble(80000, 120, 1)
	e.Reset(testCamera, testSurface)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Step(rotation, testCamera, testSurface, 0, 0.005)
	}
}
