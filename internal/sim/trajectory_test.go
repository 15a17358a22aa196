package sim

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/phaseflow/internal/field"
	"github.com/san-kum/phaseflow/internal/integrators"
)

func compiled(t *testing.T, dx, dy string) integrators.Deriv {
	t.Helper()
	f, err := field.Compile(dx, dy)
	if err != nil {
		t.Fatal(err)
	}
	return integrators.Deriv(f.Bind(nil))
}

func TestIntegrate_DivergentTruncates(t *testing.T) {
	f := compiled(t, "x^2", "0")

	pts, truncated := Integrate(f, r2.Vec{X: 1}, 0, 0.005, 30000, 1e6, nil)

	if !truncated {
		t.Fatal("blow-up should truncate the trajectory")
	}
	if len(pts) == 0 || len(pts) >= 30000 {
		t.Fatalf("unexpected length %d", len(pts))
	}
	if pts[0] != (r2.Vec{X: 1}) {
		t.Errorf("first point %v is not the origin", pts[0])
	}
	for i, p := range pts {
		if math.IsNaN(p.X) || math.IsInf(p.X, 0) || math.Abs(p.X) > 1e6 || math.Abs(p.Y) > 1e6 {
			t.Fatalf("point %d = %v escaped the bound", i, p)
		}
	}
}

func TestIntegrate_FullBudget(t *testing.T) {
	pts, truncated := Integrate(rotation, r2.Vec{X: 1}, 0, 0.005, 30000, 1e6, nil)
	if truncated || len(pts) != 30000 {
		t.Fatalf("got %d points truncated=%v, want 30000 untruncated", len(pts), truncated)
	}
	last := pts[len(pts)-1]
	if r := r2.Norm(last); math.Abs(r-1) > 1e-6 {
		t.Errorf("rotation orbit drifted to radius %v", r)
	}
}

func TestIntegrate_InvalidOrigin(t *testing.T) {
	pts, truncated := Integrate(rotation, r2.Vec{X: 2e6}, 0, 0.005, 100, 1e6, nil)
	if len(pts) != 0 || !truncated {
		t.Errorf("origin outside bound gave %d points truncated=%v", len(pts), truncated)
	}
}

func TestTrajectories_PaletteAndRecompute(t *testing.T) {
	ts := NewTrajectories(100, 0.01, 1e6)
	for i := 0; i < len(Palette)+2; i++ {
		ts.Add(rotation, r2.Vec{X: float64(i + 1)}, 0)
	}
	list := ts.List()
	for i, tr := range list {
		if tr.Color != Palette[i%len(Palette)] {
			t.Errorf("trajectory %d color %v, want %v", i, tr.Color, Palette[i%len(Palette)])
		}
	}

	scaled := func(x, y, _ float64) r2.Vec { return r2.Vec{X: -2 * y, Y: 2 * x} }
	ts.Recompute(scaled, 0)

	after := ts.List()
	for i := range list {
		if after[i] != list[i] {
			t.Fatalf("recompute reordered trajectories at %d", i)
		}
		if after[i].Color != Palette[i%len(Palette)] || after[i].Version != 2 {
			t.Errorf("trajectory %d color %v version %d after recompute", i, after[i].Color, after[i].Version)
		}
		if after[i].Points[0] != after[i].Origin {
			t.Errorf("trajectory %d no longer starts at its origin", i)
		}
	}
}

func TestTrajectories_RemoveAndClear(t *testing.T) {
	ts := NewTrajectories(10, 0.01, 1e6)
	if ts.RemoveLast() != nil {
		t.Error("RemoveLast on empty set should return nil")
	}
	a := ts.Add(rotation, r2.Vec{X: 1}, 0)
	b := ts.Add(rotation, r2.Vec{X: 2}, 0)

	if got := ts.RemoveLast(); got != b {
		t.Error("RemoveLast did not return the newest trajectory")
	}
	if ts.Len() != 1 || ts.List()[0] != a {
		t.Error("RemoveLast removed the wrong trajectory")
	}

	ts.Clear()
	if ts.Len() != 0 {
		t.Error("Clear left trajectories behind")
	}
	if c := ts.Add(rotation, r2.Vec{X: 3}, 0); c.Color != Palette[0] {
		t.Errorf("palette not restarted after Clear: %v", c.Color)
	}
}
