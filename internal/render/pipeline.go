package render

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/phaseflow/internal/compute"
	"github.com/san-kum/phaseflow/internal/config"
	"github.com/san-kum/phaseflow/internal/dynamo"
	"github.com/san-kum/phaseflow/internal/field"
	"github.com/san-kum/phaseflow/internal/sim"
)

// pausedBoost scales particle brightness while paused, when particles are
// drawn once without trail accumulation.
const pausedBoost = 3

// Options are the display toggles and tuning of the pipeline.
type Options struct {
	ShowField      bool
	ShowGrid       bool
	ShowNullclines bool
	ShowParticles  bool
	MagScale       float64
	Fade           float64
	Brightness     float64
}

func OptionsFromConfig(c *config.Config) Options {
	r := c.Render
	return Options{
		ShowField:      r.ShowField,
		ShowGrid:       r.ShowGrid,
		ShowNullclines: r.ShowNullclines,
		ShowParticles:  r.ShowParticles,
		MagScale:       r.MagScale,
		Fade:           r.Fade,
		Brightness:     r.Brightness,
	}
}

// Pipeline draws frames on a compute.Device: the field pass, particle trails
// accumulated in two ping-pong targets, then trajectories. It implements
// sim.Renderer.
type Pipeline struct {
	dev  compute.Device
	log  *slog.Logger
	opts Options

	field      compute.Program
	fade       compute.Program
	composite  compute.Program
	particles  compute.Program
	trajectory compute.Program

	surface dynamo.Surface
	trails  [2]compute.Target
	active  int

	particleBuf compute.Buffer
	staging     []float32
	trajBufs    map[*sim.Trajectory]*trajBuffer
	trajUploads int

	writes              int
	lastRead, lastWrite int
}

var _ sim.Renderer = (*Pipeline)(nil)

// trajBuffer is an uploaded trajectory, valid while its version and the
// camera center it is relative to are unchanged.
type trajBuffer struct {
	buf     compute.Buffer
	version int
	center  r2.Vec
}

// New builds the static programs on dev. The field program is built by the
// first RebuildField; until then the field pass clears to Background.
func New(dev compute.Device, opts Options, log *slog.Logger) (*Pipeline, error) {
	if log == nil {
		log = slog.Default()
	}
	p := &Pipeline{
		dev:       dev,
		log:       log,
		opts:      opts,
		trajBufs:  make(map[*sim.Trajectory]*trajBuffer),
		lastRead:  -1,
		lastWrite: -1,
	}

	srcs := staticSources()
	for _, slot := range []struct {
		name string
		prog *compute.Program
	}{
		{"fade", &p.fade},
		{"composite", &p.composite},
		{"particles", &p.particles},
		{"trajectory", &p.trajectory},
	} {
		prog, err := dev.BuildProgram(srcs[slot.name])
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("build %s program: %w", slot.name, err)
		}
		*slot.prog = prog
	}
	p.particleBuf = dev.NewBuffer(particleLayout)
	log.Debug("pipeline ready", "device", dev.Name())
	return p, nil
}

// RebuildField compiles the field shader for f. The previous program stays
// active if the build fails.
func (p *Pipeline) RebuildField(f *field.Field) error {
	prog, err := p.dev.BuildProgram(fieldSource(f))
	if err != nil {
		return err
	}
	if p.field != nil {
		p.dev.DeleteProgram(p.field)
	}
	p.field = prog
	p.log.Debug("field program rebuilt", "params", f.Params())
	return nil
}

// Resize reallocates the screen and both trail targets, which start empty.
func (p *Pipeline) Resize(s dynamo.Surface) error {
	if !s.Valid() {
		return fmt.Errorf("%w: %dx%d@%g", dynamo.ErrInvalidSurface, s.Width, s.Height, s.DPR)
	}
	p.dev.ResizeScreen(s.Width, s.Height)
	for i, t := range p.trails {
		if t != nil {
			p.dev.DeleteTarget(t)
			p.trails[i] = nil
		}
	}
	for i := range p.trails {
		t, err := p.dev.NewTarget(s.Width, s.Height)
		if err != nil {
			return fmt.Errorf("trail target: %w", err)
		}
		p.trails[i] = t
	}
	p.surface = s
	p.active = 0
	p.ClearTrails()
	return nil
}

// ClearTrails empties both trail targets.
func (p *Pipeline) ClearTrails() {
	for _, t := range p.trails {
		if t == nil {
			continue
		}
		p.dev.Bind(t)
		p.dev.Clear(compute.Color{})
	}
	p.dev.Bind(nil)
}

// RenderFrame draws f to the screen.
func (p *Pipeline) RenderFrame(f *sim.Frame) error {
	if f.Surface != p.surface || p.trails[0] == nil {
		if err := p.Resize(f.Surface); err != nil {
			return err
		}
	}

	base := compute.Uniforms{}
	base.Set("u_resolution", float64(f.Surface.Width), float64(f.Surface.Height))
	base.Set("u_zoom", f.Camera.DeviceZoom(f.Surface))

	p.drawField(f, base)
	if p.opts.ShowParticles {
		p.drawParticles(f, base)
	}
	p.drawTrajectories(f, base)

	p.dev.Bind(nil)
	p.dev.SetBlend(compute.BlendNone)
	return nil
}

func (p *Pipeline) drawField(f *sim.Frame, base compute.Uniforms) {
	p.dev.Bind(nil)
	p.dev.SetBlend(compute.BlendNone)
	if p.field == nil {
		p.dev.Clear(Background)
		return
	}

	u := compute.Uniforms{}
	for k, v := range base {
		u[k] = v
	}
	u.Set("u_center", f.Camera.Center.X, f.Camera.Center.Y)
	u.Set("u_time", f.Time)
	u.SetBool("u_showField", p.opts.ShowField)
	u.SetBool("u_showGrid", p.opts.ShowGrid)
	u.SetBool("u_showNullclines", p.opts.ShowNullclines)
	u.Set("u_magScale", p.opts.MagScale)
	u.Set("u_magMax", f.MagMax)
	if f.Params != nil {
		for name, v := range f.Params.Values() {
			u.Set(name, v)
		}
	}
	p.dev.DrawFullscreen(p.field, u)
}

func (p *Pipeline) drawParticles(f *sim.Frame, base compute.Uniforms) {
	cx, cy := f.Camera.Center.X, f.Camera.Center.Y
	p.staging = p.staging[:0]
	for i := 0; i+2 < len(f.Particles); i += 3 {
		p.staging = append(p.staging,
			float32(f.Particles[i]-cx), float32(f.Particles[i+1]-cy), float32(f.Particles[i+2]))
	}
	p.dev.Upload(p.particleBuf, p.staging)

	u := compute.Uniforms{}
	for k, v := range base {
		u[k] = v
	}

	if f.Paused {
		u.Set("u_brightness", p.opts.Brightness*pausedBoost)
		p.dev.Bind(nil)
		p.dev.SetBlend(compute.BlendAdditive)
		p.dev.DrawPoints(p.particles, u, p.particleBuf)
		p.ClearTrails()
		return
	}

	read, write := p.active, 1-p.active

	p.dev.Bind(p.trails[write])
	p.dev.SetBlend(compute.BlendNone)
	fade := compute.Uniforms{}
	fade.Set("u_fade", p.opts.Fade)
	p.dev.DrawFullscreen(p.fade, fade, p.trails[read])

	u.Set("u_brightness", p.opts.Brightness)
	p.dev.SetBlend(compute.BlendAdditive)
	p.dev.DrawPoints(p.particles, u, p.particleBuf)

	p.active = write
	p.writes++
	p.lastRead, p.lastWrite = read, write

	p.dev.Bind(nil)
	p.dev.DrawFullscreen(p.composite, compute.Uniforms{}, p.trails[write])
}

func (p *Pipeline) drawTrajectories(f *sim.Frame, base compute.Uniforms) {
	live := make(map[*sim.Trajectory]bool, len(f.Trajectories))
	center := f.Camera.Center

	p.dev.Bind(nil)
	p.dev.SetBlend(compute.BlendAlpha)
	for _, tr := range f.Trajectories {
		live[tr] = true
		if len(tr.Points) < 2 {
			continue
		}
		tb, ok := p.trajBufs[tr]
		if !ok {
			tb = &trajBuffer{buf: p.dev.NewBuffer(trajectoryLayout), version: -1}
			p.trajBufs[tr] = tb
		}
		if tb.version != tr.Version || tb.center != center {
			p.staging = p.staging[:0]
			for _, pt := range tr.Points {
				p.staging = append(p.staging, float32(pt.X-center.X), float32(pt.Y-center.Y))
			}
			p.dev.Upload(tb.buf, p.staging)
			tb.version, tb.center = tr.Version, center
			p.trajUploads++
		}

		u := compute.Uniforms{}
		for k, v := range base {
			u[k] = v
		}
		u.Set("u_color", float64(tr.Color[0]), float64(tr.Color[1]), float64(tr.Color[2]))
		p.dev.DrawLineStrip(p.trajectory, u, tb.buf)
	}

	for tr, tb := range p.trajBufs {
		if !live[tr] {
			p.dev.DeleteBuffer(tb.buf)
			delete(p.trajBufs, tr)
		}
	}
}

func (p *Pipeline) Options() Options { return p.opts }

// SetOptions replaces the display options. Turning particles back on starts
// from empty trails.
func (p *Pipeline) SetOptions(o Options) {
	if o.ShowParticles && !p.opts.ShowParticles {
		p.ClearTrails()
	}
	p.opts = o
}

// TrajectoryUploads counts trajectory vertex uploads since the pipeline was
// created.
func (p *Pipeline) TrajectoryUploads() int { return p.trajUploads }

// TrailWrites counts trail passes since the pipeline was created.
func (p *Pipeline) TrailWrites() int { return p.writes }

// LastTrailPass returns the trail indices read and written by the most
// recent trail pass, or -1, -1 before the first.
func (p *Pipeline) LastTrailPass() (read, write int) { return p.lastRead, p.lastWrite }

// ActiveTrail is the index of the trail target holding the latest
// accumulation.
func (p *Pipeline) ActiveTrail() int { return p.active }

// Trail returns trail target i.
func (p *Pipeline) Trail(i int) compute.Target { return p.trails[i] }

// HasField reports whether a field program is installed.
func (p *Pipeline) HasField() bool { return p.field != nil }

// Close releases every device resource the pipeline owns.
func (p *Pipeline) Close() {
	for _, prog := range []compute.Program{p.field, p.fade, p.composite, p.particles, p.trajectory} {
		if prog != nil {
			p.dev.DeleteProgram(prog)
		}
	}
	p.field, p.fade, p.composite, p.particles, p.trajectory = nil, nil, nil, nil, nil
	for i, t := range p.trails {
		if t != nil {
			p.dev.DeleteTarget(t)
			p.trails[i] = nil
		}
	}
	if p.particleBuf != nil {
		p.dev.DeleteBuffer(p.particleBuf)
		p.particleBuf = nil
	}
	for tr, tb := range p.trajBufs {
		p.dev.DeleteBuffer(tb.buf)
		delete(p.trajBufs, tr)
	}
}
