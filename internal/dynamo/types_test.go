package dynamo

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/spatial/r2"
)

var testSurface = Surface{Width: 1600, Height: 1200, DPR: 2}

func TestIsFinite(t *testing.T) {
	tests := []struct {
		name  string
		p     r2.Vec
		valid bool
	}{
		{"zero", r2.Vec{}, true},
		{"normal", r2.Vec{X: 1, Y: -2}, true},
		{"nan x", r2.Vec{X: math.NaN()}, false},
		{"+inf y", r2.Vec{Y: math.Inf(1)}, false},
		{"-inf x", r2.Vec{X: math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFinite(tt.p); got != tt.valid {
				t.Errorf("IsFinite(%v) = %v, want %v", tt.p, got, tt.valid)
			}
		})
	}
}

func TestClampZoom(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{50, 50},
		{1e-9, MinZoom},
		{1e15, MaxZoom},
		{math.NaN(), MinZoom},
	}
	for _, tt := range tests {
		if got := ClampZoom(tt.in); got != tt.want {
			t.Errorf("ClampZoom(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCamera_ScreenWorldRoundTrip(t *testing.T) {
	cam := Camera{Center: r2.Vec{X: 3, Y: -1}, Zoom: 40}

	center := cam.ScreenToWorld(testSurface, r2.Vec{X: 400, Y: 300})
	if center != cam.Center {
		t.Errorf("screen center maps to %v, want %v", center, cam.Center)
	}

	// y grows downwards on screen and upwards in the world.
	above := cam.ScreenToWorld(testSurface, r2.Vec{X: 400, Y: 260})
	if math.Abs(above.Y-(cam.Center.Y+1)) > 1e-12 {
		t.Errorf("40px up should be one world unit up, got %v", above)
	}

	for _, p := range []r2.Vec{{X: 0, Y: 0}, {X: 799, Y: 599}, {X: 123.5, Y: 456.25}} {
		back := cam.WorldToScreen(testSurface, cam.ScreenToWorld(testSurface, p))
		if math.Abs(back.X-p.X) > 1e-9 || math.Abs(back.Y-p.Y) > 1e-9 {
			t.Errorf("round trip of %v gave %v", p, back)
		}
	}
}

func TestCamera_HalfExtentUsesCSSPixels(t *testing.T) {
	cam := Camera{Zoom: 50}
	got := cam.HalfExtent(testSurface)
	want := r2.Vec{X: 8, Y: 6}
	if got != want {
		t.Errorf("HalfExtent = %v, want %v", got, want)
	}
	if dz := cam.DeviceZoom(testSurface); dz != 100 {
		t.Errorf("DeviceZoom = %v, want 100", dz)
	}
}

func TestCamera_ZoomAtKeepsAnchor(t *testing.T) {
	cam := Camera{Center: r2.Vec{X: 1, Y: 2}, Zoom: 50}
	cursor := r2.Vec{X: 100, Y: 500}
	before := cam.ScreenToWorld(testSurface, cursor)

	cam.ZoomAt(testSurface, cursor, 1.1)
	after := cam.ScreenToWorld(testSurface, cursor)

	if math.Abs(before.X-after.X) > 1e-12 || math.Abs(before.Y-after.Y) > 1e-12 {
		t.Errorf("anchor moved from %v to %v", before, after)
	}
	if math.Abs(cam.Zoom-55) > 1e-12 {
		t.Errorf("zoom = %v, want 55", cam.Zoom)
	}

	cam.ZoomAt(testSurface, cursor, 1e30)
	if cam.Zoom != MaxZoom {
		t.Errorf("zoom not clamped: %v", cam.Zoom)
	}
}

func TestCamera_Pan(t *testing.T) {
	cam := Camera{Zoom: 10}
	cam.Pan(20, 30)
	want := r2.Vec{X: -2, Y: 3}
	if cam.Center != want {
		t.Errorf("center after pan = %v, want %v", cam.Center, want)
	}
}

func TestParams_Sync(t *testing.T) {
	p := NewParams()
	p.Sync([]string{"a", "b"})
	if err := p.Set("a", 2.5); err != nil {
		t.Fatal(err)
	}

	p.Sync([]string{"b", "a", "c"})

	if diff := cmp.Diff([]string{"b", "a", "c"}, p.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	want := map[string]float64{"a": 2.5, "b": 1, "c": 1}
	if diff := cmp.Diff(want, p.Values()); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}

	p.Sync([]string{"c"})
	if _, ok := p.Param("a"); ok {
		t.Error("dropped parameter still present")
	}
	if p.Len() != 1 {
		t.Errorf("Len = %d, want 1", p.Len())
	}
}

func TestParams_SeedThenSyncKeepsSeededValues(t *testing.T) {
	p := NewParams()
	p.Seed(map[string]float64{"mu": 1.5, "unused": 9})
	p.Sync([]string{"mu"})

	if v, _ := p.Param("mu"); v != 1.5 {
		t.Errorf("mu = %v, want 1.5", v)
	}
	if _, ok := p.Param("unused"); ok {
		t.Error("unreferenced seeded parameter survived Sync")
	}
}

func TestParams_SetUnknown(t *testing.T) {
	p := NewParams()
	err := p.Set("nope", 1)
	if !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
}

func TestErrors_Unwrap(t *testing.T) {
	ce := (&CompileError{Pos: 3, Msg: "unexpected character '#' at position 3"}).WithComponent("dx/dt")
	if !errors.Is(ce, ErrCompile) {
		t.Error("CompileError should wrap ErrCompile")
	}
	if ce.Error() != "dx/dt: unexpected character '#' at position 3" {
		t.Errorf("unexpected message %q", ce.Error())
	}

	var se error = &ShaderBuildError{Stage: "link", Log: "boom"}
	if !errors.Is(se, ErrShaderBuild) {
		t.Error("ShaderBuildError should wrap ErrShaderBuild")
	}
}
