package sim

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/phaseflow/internal/config"
	"github.com/san-kum/phaseflow/internal/dynamo"
	"github.com/san-kum/phaseflow/internal/field"
)

type fakeRenderer struct {
	rebuilds    []*field.Field
	failNext    error
	clears      int
	frames      int
	resizes     []dynamo.Surface
	lastFrame   *Frame
	renderError error
}

func (r *fakeRenderer) RebuildField(f *field.Field) error {
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	r.rebuilds = append(r.rebuilds, f)
	return nil
}

func (r *fakeRenderer) Resize(s dynamo.Surface) error {
	r.resizes = append(r.resizes, s)
	return nil
}

func (r *fakeRenderer) RenderFrame(f *Frame) error {
	r.frames++
	r.lastFrame = f
	return r.renderError
}

func (r *fakeRenderer) ClearTrails() { r.clears++ }

type frameCounter struct{ n int }

func (c *frameCounter) OnFrame(*Frame) { c.n++ }

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Particles = 500
	cfg.TrajectorySteps = 200
	return cfg
}

func newTestSimulator(t *testing.T) (*Simulator, *fakeRenderer) {
	t.Helper()
	r := &fakeRenderer{}
	s := New(r, testConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := s.Resize(testSurface); err != nil {
		t.Fatal(err)
	}
	return s, r
}

func TestSimulator_SetEquationsDetectsParams(t *testing.T) {
	s, r := newTestSimulator(t)

	if err := s.SetEquations("a*x - b*x*y", "-c*y + d*x*y"); err != nil {
		t.Fatal(err)
	}
	if len(r.rebuilds) != 1 {
		t.Fatalf("expected one shader rebuild, got %d", len(r.rebuilds))
	}
	want := map[string]float64{"a": 1, "b": 1, "c": 1, "d": 1}
	if diff := cmp.Diff(want, s.Params().Values()); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, s.Params().Names()); diff != "" {
		t.Errorf("param order mismatch (-want +got):\n%s", diff)
	}
}

func TestSimulator_RetainsParamValuesAcrossEdits(t *testing.T) {
	s, _ := newTestSimulator(t)
	if err := s.SetEquations("a*x", "b*y"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetParam("a", 3); err != nil {
		t.Fatal(err)
	}
	if err := s.SetEquations("a*x + c", "y"); err != nil {
		t.Fatal(err)
	}
	want := map[string]float64{"a": 3, "c": 1}
	if diff := cmp.Diff(want, s.Params().Values()); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestSimulator_CompileErrorKeepsField(t *testing.T) {
	s, r := newTestSimulator(t)
	if err := s.SetEquations("-y", "x"); err != nil {
		t.Fatal(err)
	}
	prev := s.Field()

	err := s.SetEquations("sin(x", "x")
	if !errors.Is(err, dynamo.ErrCompile) {
		t.Fatalf("expected compile error, got %v", err)
	}
	if s.Field() != prev || len(r.rebuilds) != 1 {
		t.Error("failed compile replaced the field")
	}
	if dx, dy := s.Equations(); dx != "-y" || dy != "x" {
		t.Errorf("equations changed to %q, %q", dx, dy)
	}
}

func TestSimulator_ShaderFailureKeepsEvaluators(t *testing.T) {
	s, r := newTestSimulator(t)
	if err := s.SetEquations("-y", "x"); err != nil {
		t.Fatal(err)
	}
	prev := s.Field()
	clears := r.clears

	r.failNext = &dynamo.ShaderBuildError{Stage: "link", Log: "boom"}
	err := s.SetEquations("k*x", "y")
	if !errors.Is(err, dynamo.ErrShaderBuild) {
		t.Fatalf("expected shader error, got %v", err)
	}
	if s.Field() != prev {
		t.Error("shader failure swapped the host field")
	}
	if s.Params().Len() != 0 {
		t.Errorf("shader failure changed params: %v", s.Params().Names())
	}
	if r.clears != clears {
		t.Error("shader failure cleared the trails")
	}
	if v := s.Deriv()(1, 2, 0); v != (r2.Vec{X: -2, Y: 1}) {
		t.Errorf("evaluator changed: %v", v)
	}
}

func TestSimulator_BlankAndRepeatedEditsAreIgnored(t *testing.T) {
	s, r := newTestSimulator(t)
	if err := s.SetEquations("-y", "x"); err != nil {
		t.Fatal(err)
	}
	clears := r.clears

	if err := s.SetEquations("  ", "x"); err != nil {
		t.Errorf("blank edit returned %v", err)
	}
	if err := s.SetEquations(" -y ", "x"); err != nil {
		t.Errorf("identical edit returned %v", err)
	}
	if len(r.rebuilds) != 1 || r.clears != clears {
		t.Errorf("ignored edits triggered work: %d rebuilds, %d clears", len(r.rebuilds), r.clears-clears)
	}
}

func TestSimulator_EditRecomputesTrajectories(t *testing.T) {
	s, r := newTestSimulator(t)
	if err := s.SetEquations("-y", "x"); err != nil {
		t.Fatal(err)
	}
	a := s.AddTrajectory(r2.Vec{X: 1})
	b := s.AddTrajectory(r2.Vec{X: 2})
	clears := r.clears

	if err := s.SetEquations("x", "-y"); err != nil {
		t.Fatal(err)
	}
	list := s.Trajectories()
	if len(list) != 2 || list[0] != a || list[1] != b {
		t.Fatal("trajectories not preserved in order")
	}
	if a.Version != 2 || a.Color != Palette[0] || b.Color != Palette[1] {
		t.Errorf("recompute lost colors or did not run: %+v", a)
	}
	// Saddle: x grows, y stays on the axis.
	if last := a.Points[len(a.Points)-1]; last.X <= 1 || last.Y != 0 {
		t.Errorf("trajectory not recomputed under the new field: %v", last)
	}
	if r.clears != clears+1 {
		t.Errorf("edit should clear trails once, cleared %d times", r.clears-clears)
	}
}

func TestSimulator_SetParamUnknown(t *testing.T) {
	s, _ := newTestSimulator(t)
	if err := s.SetEquations("a*x", "y"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetParam("zz", 1); !errors.Is(err, dynamo.ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
}

func TestSimulator_LoadPreset(t *testing.T) {
	s, _ := newTestSimulator(t)
	if err := s.SetEquations("-y", "x"); err != nil {
		t.Fatal(err)
	}
	s.AddTrajectory(r2.Vec{X: 1})

	if err := s.LoadPreset(*config.GetPreset("lotka_volterra")); err != nil {
		t.Fatal(err)
	}
	want := map[string]float64{"a": 1, "b": 0.5, "c": 1, "d": 0.5}
	if diff := cmp.Diff(want, s.Params().Values()); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
	if cam := s.Camera(); cam.Center != (r2.Vec{X: 3, Y: 3}) || cam.Zoom != 40 {
		t.Errorf("camera %+v not taken from preset", cam)
	}
	if len(s.Trajectories()) != 0 {
		t.Error("preset load should clear trajectories")
	}

	s.Pan(100, 0)
	s.ResetView()
	if cam := s.Camera(); cam.Center != (r2.Vec{X: 3, Y: 3}) {
		t.Errorf("ResetView went to %v", cam.Center)
	}
}

func TestSimulator_LoadPresetFailureRestores(t *testing.T) {
	s, _ := newTestSimulator(t)
	if err := s.LoadPreset(*config.GetPreset("vanderpol")); err != nil {
		t.Fatal(err)
	}
	bad := config.Preset{Name: "bad", DX: "(", DY: "x", Params: map[string]float64{"q": 2}, Zoom: 10}

	if err := s.LoadPreset(bad); err == nil {
		t.Fatal("expected error")
	}
	if diff := cmp.Diff(map[string]float64{"mu": 1.5}, s.Params().Values()); diff != "" {
		t.Errorf("params not restored (-want +got):\n%s", diff)
	}
	if s.Camera().Zoom != 40 {
		t.Errorf("camera not restored: %+v", s.Camera())
	}
}

func TestSimulator_FrameAdvancesUnlessPaused(t *testing.T) {
	s, r := newTestSimulator(t)
	obs := &frameCounter{}
	s.AddObserver(obs)
	if err := s.SetEquations("-y", "x"); err != nil {
		t.Fatal(err)
	}

	if err := s.Frame(); err != nil {
		t.Fatal(err)
	}
	if s.Time() != 0.005 {
		t.Errorf("time after one frame = %v", s.Time())
	}

	s.SetSpeed(2)
	s.TogglePause()
	if err := s.Frame(); err != nil {
		t.Fatal(err)
	}
	if s.Time() != 0.005 {
		t.Error("paused frame advanced time")
	}
	if !r.lastFrame.Paused || len(r.lastFrame.Particles) != 3*500 {
		t.Errorf("unexpected frame %+v", r.lastFrame)
	}

	s.TogglePause()
	if err := s.Frame(); err != nil {
		t.Fatal(err)
	}
	if math.Abs(s.Time()-0.015) > 1e-15 {
		t.Errorf("time after speed 2 frame = %v", s.Time())
	}
	if r.frames != 3 || obs.n != 3 {
		t.Errorf("renderer saw %d frames, observer %d", r.frames, obs.n)
	}
}

func TestSimulator_FramePropagatesRenderError(t *testing.T) {
	s, r := newTestSimulator(t)
	if err := s.SetEquations("-y", "x"); err != nil {
		t.Fatal(err)
	}
	r.renderError = dynamo.ErrNoDevice
	if err := s.Frame(); !errors.Is(err, dynamo.ErrNoDevice) {
		t.Errorf("expected render error, got %v", err)
	}
}

func TestSimulator_ViewControls(t *testing.T) {
	s, _ := newTestSimulator(t)

	if err := s.Resize(dynamo.Surface{Width: 0, Height: 10, DPR: 1}); !errors.Is(err, dynamo.ErrInvalidSurface) {
		t.Errorf("expected ErrInvalidSurface, got %v", err)
	}

	cursor := r2.Vec{X: 100, Y: 100}
	before := s.ScreenToWorld(cursor)
	s.ZoomWheel(cursor, -1)
	if math.Abs(s.Camera().Zoom-55) > 1e-12 {
		t.Errorf("wheel up zoom = %v, want 55", s.Camera().Zoom)
	}
	after := s.ScreenToWorld(cursor)
	if r2.Norm(r2.Sub(before, after)) > 1e-12 {
		t.Errorf("world point under cursor moved from %v to %v", before, after)
	}
	s.ZoomWheel(cursor, 1)
	if z := s.Camera().Zoom; z < 49.4 || z > 49.6 {
		t.Errorf("wheel down zoom = %v, want 49.5", z)
	}

	if err := s.SetEquations("-y", "x"); err != nil {
		t.Fatal(err)
	}
	tr := s.AddTrajectoryAt(r2.Vec{X: 400, Y: 300})
	if tr.Origin != s.Camera().Center {
		t.Errorf("click at screen center seeded %v", tr.Origin)
	}
	if s.RemoveLastTrajectory() != tr || len(s.Trajectories()) != 0 {
		t.Error("RemoveLastTrajectory did not remove the seeded trajectory")
	}
}
