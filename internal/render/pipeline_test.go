package render

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/phaseflow/internal/compute"
	"github.com/san-kum/phaseflow/internal/config"
	"github.com/san-kum/phaseflow/internal/dynamo"
	"github.com/san-kum/phaseflow/internal/field"
	"github.com/san-kum/phaseflow/internal/sim"
)

var testSurface = dynamo.Surface{Width: 64, Height: 48, DPR: 1}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func testOptions() Options {
	return OptionsFromConfig(config.DefaultConfig())
}

func newTestRig(t *testing.T, opts Options) (*compute.CPUDevice, *Pipeline, *sim.Simulator) {
	t.Helper()
	dev := compute.NewCPUDevice(testSurface.Width, testSurface.Height)
	p, err := New(dev, opts, discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cfg := sim.DefaultConfig()
	cfg.Particles = 400
	cfg.TrajectorySteps = 100
	s := sim.New(p, cfg, discard())
	if err := s.Resize(testSurface); err != nil {
		t.Fatal(err)
	}
	if err := s.SetEquations("-y", "x"); err != nil {
		t.Fatal(err)
	}
	return dev, p, s
}

func TestPipeline_PingPongAlternates(t *testing.T) {
	_, p, s := newTestRig(t, testOptions())

	prevWrite := -1
	for i := 0; i < 4; i++ {
		if err := s.Frame(); err != nil {
			t.Fatal(err)
		}
		read, write := p.LastTrailPass()
		if read == write {
			t.Fatalf("frame %d read and wrote trail %d", i, read)
		}
		if prevWrite >= 0 && read != prevWrite {
			t.Errorf("frame %d read trail %d, want previous write %d", i, read, prevWrite)
		}
		if p.ActiveTrail() != write {
			t.Errorf("active trail %d, want %d", p.ActiveTrail(), write)
		}
		prevWrite = write
	}
	if p.TrailWrites() != 4 {
		t.Errorf("TrailWrites = %d, want 4", p.TrailWrites())
	}
}

func TestPipeline_PausedDrawsWithoutTrails(t *testing.T) {
	dev, p, s := newTestRig(t, testOptions())

	if err := s.Frame(); err != nil {
		t.Fatal(err)
	}
	writes := p.TrailWrites()

	s.TogglePause()
	if err := s.Frame(); err != nil {
		t.Fatal(err)
	}
	if p.TrailWrites() != writes {
		t.Errorf("paused frame ran a trail pass")
	}
	for i := 0; i < 2; i++ {
		img := dev.TargetImage(p.Trail(i))
		for _, v := range img.Pix {
			if v != 0 {
				t.Fatalf("trail %d not cleared while paused", i)
			}
		}
	}
}

func TestPipeline_ShaderFailureKeepsPreviousProgram(t *testing.T) {
	_, p, s := newTestRig(t, testOptions())

	for _, bad := range []string{
		"float*x", "u_zoom*x", "length + y",
		"mat2x2*x", "isampler2D*x", "sampler2DShadow*x",
		"inverse*x", "transpose*x", "lessThan*x",
	} {
		err := s.SetEquations(bad, "x")
		if !errors.Is(err, dynamo.ErrShaderBuild) {
			t.Errorf("SetEquations(%q) error = %v, want ErrShaderBuild", bad, err)
		}
		if !p.HasField() {
			t.Fatal("field program dropped after failed rebuild")
		}
		if dx, _ := s.Equations(); dx != "-y" {
			t.Errorf("equations changed to %q after failed rebuild", dx)
		}
		if v := s.Deriv()(1, 0, 0); v != (r2.Vec{X: 0, Y: 1}) {
			t.Errorf("host evaluator swapped: f(1,0) = %v", v)
		}
	}

	if err := s.Frame(); err != nil {
		t.Fatalf("frame after failed rebuild: %v", err)
	}
}

func TestPipeline_FieldPass(t *testing.T) {
	opts := testOptions()
	opts.ShowGrid = false
	opts.ShowParticles = false
	dev, p, s := newTestRig(t, opts)

	if err := s.Frame(); err != nil {
		t.Fatal(err)
	}
	if c := dev.Pixel(5, 5); c == Background {
		t.Errorf("field pass left background at a non-zero velocity: %v", c)
	}

	opts.ShowField = false
	p.SetOptions(opts)
	if err := s.Frame(); err != nil {
		t.Fatal(err)
	}
	if c := dev.Pixel(5, 5); c != Background {
		t.Errorf("field hidden but pixel is %v, want background", c)
	}
}

func TestPipeline_ClearsWithoutField(t *testing.T) {
	dev := compute.NewCPUDevice(8, 8)
	p, err := New(dev, testOptions(), discard())
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	f := &sim.Frame{
		Camera:  dynamo.Camera{Zoom: 50},
		Surface: dynamo.Surface{Width: 8, Height: 8, DPR: 1},
		Params:  dynamo.NewParams(),
		MagMax:  1,
	}
	if err := p.RenderFrame(f); err != nil {
		t.Fatal(err)
	}
	if c := dev.Pixel(3, 3); c != Background {
		t.Errorf("pixel %v, want background", c)
	}
}

func TestPipeline_TrajectoryBuffersFollowFrame(t *testing.T) {
	opts := testOptions()
	opts.ShowField = false
	opts.ShowGrid = false
	opts.ShowParticles = false
	dev, p, s := newTestRig(t, opts)

	s.AddTrajectory(r2.Vec{X: 0.2, Y: 0})
	s.AddTrajectory(r2.Vec{X: 0.3, Y: 0})
	if err := s.Frame(); err != nil {
		t.Fatal(err)
	}
	if len(p.trajBufs) != 2 {
		t.Fatalf("cached %d trajectory buffers, want 2", len(p.trajBufs))
	}

	// A circle of radius 0.2 at zoom 50 passes 10 px right of the center.
	c := dev.Pixel(testSurface.Width/2+10, testSurface.Height/2)
	if c == Background {
		t.Error("trajectory not drawn")
	}

	if n := p.TrajectoryUploads(); n != 2 {
		t.Fatalf("uploads after first frame = %d, want 2", n)
	}

	// Unchanged trajectories under a still camera are not uploaded again.
	if err := s.Frame(); err != nil {
		t.Fatal(err)
	}
	if n := p.TrajectoryUploads(); n != 2 {
		t.Errorf("uploads after a still frame = %d, want 2", n)
	}

	s.Pan(5, 0)
	if err := s.Frame(); err != nil {
		t.Fatal(err)
	}
	if n := p.TrajectoryUploads(); n != 4 {
		t.Errorf("uploads after a pan = %d, want 4", n)
	}

	if err := s.SetEquations("-2*y", "x"); err != nil {
		t.Fatal(err)
	}
	if err := s.Frame(); err != nil {
		t.Fatal(err)
	}
	if n := p.TrajectoryUploads(); n != 6 {
		t.Errorf("uploads after recompute = %d, want 6", n)
	}

	s.ClearTrajectories()
	if err := s.Frame(); err != nil {
		t.Fatal(err)
	}
	if len(p.trajBufs) != 0 {
		t.Errorf("stale trajectory buffers kept: %d", len(p.trajBufs))
	}
}

func TestPipeline_ResizeReallocatesTrails(t *testing.T) {
	_, p, s := newTestRig(t, testOptions())
	if err := s.Frame(); err != nil {
		t.Fatal(err)
	}

	bigger := dynamo.Surface{Width: 80, Height: 40, DPR: 2}
	if err := s.Resize(bigger); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if w, h := p.Trail(i).Size(); w != 80 || h != 40 {
			t.Errorf("trail %d is %dx%d, want 80x40", i, w, h)
		}
	}
	if p.ActiveTrail() != 0 {
		t.Errorf("active trail %d after resize, want 0", p.ActiveTrail())
	}

	if err := p.Resize(dynamo.Surface{}); !errors.Is(err, dynamo.ErrInvalidSurface) {
		t.Errorf("expected ErrInvalidSurface, got %v", err)
	}
}

func TestFieldShader_DeclaresParams(t *testing.T) {
	f, err := field.Compile("mu*(x - x^3/3 - y)", "x/mu")
	if err != nil {
		t.Fatal(err)
	}
	src := FieldShader(f)
	if !strings.HasPrefix(src, "#version 330 core") {
		t.Error("missing version directive")
	}
	if strings.Count(src, "uniform float mu;") != 1 {
		t.Errorf("mu should be declared once:\n%s", src)
	}
	if !strings.Contains(src, f.DX.Code) || !strings.Contains(src, f.DY.Code) {
		t.Error("component code missing from shader")
	}
	if err := compute.ValidateGLSL("fragment", src); err != nil {
		t.Errorf("generated shader rejected: %v", err)
	}
}
