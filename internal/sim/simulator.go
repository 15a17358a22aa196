package sim

import (
	"fmt"
	"log/slog"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/phaseflow/internal/config"
	"github.com/san-kum/phaseflow/internal/dynamo"
	"github.com/san-kum/phaseflow/internal/field"
	"github.com/san-kum/phaseflow/internal/integrators"
)

// Wheel zoom factors per notch.
const (
	WheelZoomOut = 0.9
	WheelZoomIn  = 1.1
)

// Simulator owns the camera, parameters, particles and trajectories and
// drives one Renderer frame by frame. It is not safe for concurrent use.
type Simulator struct {
	cfg       Config
	log       *slog.Logger
	renderer  Renderer
	observers []Observer

	dxSrc, dySrc string
	field        *field.Field
	deriv        integrators.Deriv
	params       *dynamo.Params

	camera  dynamo.Camera
	home    dynamo.Camera
	surface dynamo.Surface

	ensemble *Ensemble
	trajs    *Trajectories
	mag      *MagnitudeNormalizer

	time   float64
	paused bool
	speed  float64
}

// New returns a Simulator drawing through r. r may be nil for headless use.
// No field is loaded until SetEquations or LoadPreset succeeds.
func New(r Renderer, cfg Config, log *slog.Logger) *Simulator {
	if log == nil {
		log = slog.Default()
	}
	return &Simulator{
		cfg:      cfg,
		log:      log,
		renderer: r,
		params:   dynamo.NewParams(),
		camera:   dynamo.Camera{Zoom: 50},
		home:     dynamo.Camera{Zoom: 50},
		surface:  dynamo.Surface{Width: 800, Height: 600, DPR: 1},
		ensemble: NewEnsemble(cfg.Particles, cfg.MaxAge, cfg.Seed),
		trajs:    NewTrajectories(cfg.TrajectorySteps, cfg.TrajectoryDt, cfg.TrajectoryBound),
		mag:      NewMagnitudeNormalizer(cfg.MagnitudeGrid, cfg.MagnitudeDecay, cfg.MagnitudeRise),
		speed:    cfg.Speed,
		deriv:    func(x, y, t float64) r2.Vec { return r2.Vec{} },
	}
}

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// SetEquations compiles a new field. Blank text is ignored. On a compile or
// shader build error the previous field, parameters and evaluators stay in
// effect and the error is returned. On success particles are reset, trails
// cleared and every trajectory recomputed. Resubmitting the current text is
// a no-op.
func (s *Simulator) SetEquations(dx, dy string) error {
	dx, dy = strings.TrimSpace(dx), strings.TrimSpace(dy)
	if dx == "" || dy == "" {
		s.log.Debug("ignoring blank equation", "dx", dx, "dy", dy)
		return nil
	}
	if s.field != nil && dx == s.dxSrc && dy == s.dySrc {
		return nil
	}
	return s.applyEquations(dx, dy)
}

func (s *Simulator) applyEquations(dx, dy string) error {
	f, err := field.Compile(dx, dy)
	if err != nil {
		s.log.Warn("compile failed", "err", err)
		return err
	}
	if s.renderer != nil {
		if err := s.renderer.RebuildField(f); err != nil {
			s.log.Warn("shader build failed", "err", err)
			return err
		}
	}

	s.field = f
	s.dxSrc, s.dySrc = dx, dy
	s.params.Sync(f.Params())
	s.log.Debug("field compiled", "dx", dx, "dy", dy, "params", f.Params())
	s.refresh()
	return nil
}

// SetParam changes one parameter value and restarts the flow under it.
func (s *Simulator) SetParam(name string, value float64) error {
	if err := s.params.Set(name, value); err != nil {
		return err
	}
	s.refresh()
	return nil
}

// refresh rebinds the evaluators and restarts everything that depends on
// them.
func (s *Simulator) refresh() {
	s.deriv = integrators.Deriv(s.field.Bind(s.params))
	s.ensemble.Reset(s.camera, s.surface)
	if s.renderer != nil {
		s.renderer.ClearTrails()
	}
	s.trajs.Recompute(s.deriv, s.time)
}

// LoadPreset installs a preset's equations, parameters and view and clears
// the trajectories. On error the previous state is kept.
func (s *Simulator) LoadPreset(p config.Preset) error {
	prevValues, prevNames := s.params.Values(), s.params.Names()
	prevCam, prevHome := s.camera, s.home

	s.params.Seed(p.Params)
	s.camera = dynamo.Camera{Center: r2.Vec{X: p.Center[0], Y: p.Center[1]}, Zoom: dynamo.ClampZoom(p.Zoom)}
	s.home = s.camera

	if err := s.applyEquations(strings.TrimSpace(p.DX), strings.TrimSpace(p.DY)); err != nil {
		s.params.Seed(prevValues)
		s.params.Sync(prevNames)
		s.camera, s.home = prevCam, prevHome
		return fmt.Errorf("preset %q: %w", p.Name, err)
	}
	s.ClearTrajectories()
	s.log.Debug("preset loaded", "name", p.Name)
	return nil
}

// Frame advances the simulation by one animation frame, unless paused, and
// renders it.
func (s *Simulator) Frame() error {
	if !s.paused && s.field != nil {
		h := s.cfg.BaseDt * s.speed
		s.time += h
		s.ensemble.Step(s.deriv, s.camera, s.surface, s.time, h)
	}

	if s.field != nil {
		s.mag.Update(s.mag.Sample(s.deriv, s.camera, s.surface, s.time))
	}

	f := s.snapshot()
	if s.renderer != nil && s.field != nil {
		if err := s.renderer.RenderFrame(f); err != nil {
			return err
		}
	}
	for _, o := range s.observers {
		o.OnFrame(f)
	}
	return nil
}

func (s *Simulator) snapshot() *Frame {
	return &Frame{
		Camera:       s.camera,
		Surface:      s.surface,
		Time:         s.time,
		Paused:       s.paused,
		Particles:    s.ensemble.Data(),
		Trajectories: s.trajs.List(),
		Params:       s.params,
		MagMax:       s.mag.Value(),
	}
}

// Resize changes the drawing surface and re-provisions the renderer's
// buffers.
func (s *Simulator) Resize(surf dynamo.Surface) error {
	if !surf.Valid() {
		return fmt.Errorf("%w: %dx%d@%g", dynamo.ErrInvalidSurface, surf.Width, surf.Height, surf.DPR)
	}
	s.surface = surf
	if s.renderer != nil {
		if err := s.renderer.Resize(surf); err != nil {
			return err
		}
	}
	s.log.Debug("resized", "width", surf.Width, "height", surf.Height, "dpr", surf.DPR)
	return nil
}

// Pan follows a drag of (dx, dy) CSS pixels.
func (s *Simulator) Pan(dx, dy float64) { s.camera.Pan(dx, dy) }

// ZoomAt scales the zoom about the CSS position p.
func (s *Simulator) ZoomAt(p r2.Vec, factor float64) { s.camera.ZoomAt(s.surface, p, factor) }

// ZoomWheel zooms one notch about p; positive delta zooms out.
func (s *Simulator) ZoomWheel(p r2.Vec, delta float64) {
	if delta > 0 {
		s.ZoomAt(p, WheelZoomOut)
	} else if delta < 0 {
		s.ZoomAt(p, WheelZoomIn)
	}
}

func (s *Simulator) ScreenToWorld(p r2.Vec) r2.Vec { return s.camera.ScreenToWorld(s.surface, p) }

// AddTrajectoryAt seeds a trajectory at the CSS position p.
func (s *Simulator) AddTrajectoryAt(p r2.Vec) *Trajectory {
	return s.AddTrajectory(s.ScreenToWorld(p))
}

// AddTrajectory seeds a trajectory at a world position.
func (s *Simulator) AddTrajectory(origin r2.Vec) *Trajectory {
	tr := s.trajs.Add(s.deriv, origin, s.time)
	s.log.Debug("trajectory added", "x", origin.X, "y", origin.Y, "points", len(tr.Points), "truncated", tr.Truncated)
	return tr
}

func (s *Simulator) RemoveLastTrajectory() *Trajectory { return s.trajs.RemoveLast() }

func (s *Simulator) ClearTrajectories() { s.trajs.Clear() }

func (s *Simulator) TogglePause() bool {
	s.paused = !s.paused
	return s.paused
}

// SetSpeed sets the time multiplier applied to the base step.
func (s *Simulator) SetSpeed(v float64) {
	if v < 0 {
		v = 0
	}
	s.speed = v
}

// ResetView restores the view of the last loaded preset and restarts the
// particles and trails.
func (s *Simulator) ResetView() {
	s.camera = s.home
	s.ensemble.Reset(s.camera, s.surface)
	if s.renderer != nil {
		s.renderer.ClearTrails()
	}
}

// ClearTrails restarts the trail accumulation.
func (s *Simulator) ClearTrails() {
	if s.renderer != nil {
		s.renderer.ClearTrails()
	}
}

func (s *Simulator) Camera() dynamo.Camera           { return s.camera }
func (s *Simulator) Surface() dynamo.Surface         { return s.surface }
func (s *Simulator) Params() *dynamo.Params          { return s.params }
func (s *Simulator) Field() *field.Field             { return s.field }
func (s *Simulator) Deriv() integrators.Deriv        { return s.deriv }
func (s *Simulator) Ensemble() *Ensemble             { return s.ensemble }
func (s *Simulator) Trajectories() []*Trajectory     { return s.trajs.List() }
func (s *Simulator) Magnitude() *MagnitudeNormalizer { return s.mag }
func (s *Simulator) Time() float64                   { return s.time }
func (s *Simulator) Paused() bool                    { return s.paused }
func (s *Simulator) Speed() float64                  { return s.speed }
func (s *Simulator) Equations() (dx, dy string)      { return s.dxSrc, s.dySrc }
