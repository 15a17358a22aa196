package control

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/phaseflow/internal/config"
	"github.com/san-kum/phaseflow/internal/render"
	"github.com/san-kum/phaseflow/internal/sim"
)

// Step sizes and ranges of the tunable values.
const (
	ParamStep = 0.1

	SpeedStep = 0.1
	MaxSpeed  = 5.0

	FadeStep = 0.001
	MinFade  = 0.9
	MaxFade  = 0.999

	MagScaleStep = 0.05
	MinMagScale  = 0.1
	MaxMagScale  = 2.0
)

// Button identifies a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// Display is the part of the renderer the controller adjusts.
type Display interface {
	Options() render.Options
	SetOptions(render.Options)
}

// Controller maps user input onto a Simulator and its Display. Pointer
// positions are CSS pixels with the origin at the top left.
type Controller struct {
	sim     *sim.Simulator
	display Display
	cfg     *config.Config
	keys    Keymap
	log     *slog.Logger

	presets []string
	preset  int
	param   int

	Editor Editor

	dragging bool
	last     r2.Vec
	pointer  r2.Vec
	hover    bool

	err  error
	quit bool
}

// New returns a Controller. display may be nil when no renderer is
// attached.
func New(s *sim.Simulator, display Display, cfg *config.Config, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Controller{
		sim:     s,
		display: display,
		cfg:     cfg,
		keys:    DefaultKeymap(),
		log:     log,
		presets: cfg.PresetNames(),
	}
}

func (c *Controller) SetKeymap(k Keymap) { c.keys = k }

// LoadPreset installs the named preset.
func (c *Controller) LoadPreset(name string) error {
	p, ok := c.cfg.LookupPreset(name)
	if !ok {
		return fmt.Errorf("%w: %q", config.ErrUnknownPreset, name)
	}
	if err := c.sim.LoadPreset(p); err != nil {
		c.err = err
		return err
	}
	for i, n := range c.presets {
		if n == name {
			c.preset = i
		}
	}
	c.param = 0
	c.err = nil
	c.log.Info("preset", "name", name, "dx", p.DX, "dy", p.DY)
	return nil
}

// Preset returns the key of the current preset.
func (c *Controller) Preset() string {
	if len(c.presets) == 0 {
		return ""
	}
	return c.presets[c.preset]
}

func (c *Controller) PresetNames() []string { return c.presets }

// Key dispatches the action bound to key. It reports whether the key was
// bound.
func (c *Controller) Key(key string) bool {
	a := c.keys.Lookup(key)
	if a == ActionNone {
		return false
	}
	c.Do(a)
	return true
}

// Do performs a.
func (c *Controller) Do(a Action) {
	switch a {
	case ActionTogglePause:
		c.sim.TogglePause()
	case ActionResetView:
		c.sim.ResetView()
	case ActionClearTrajectories:
		c.sim.ClearTrajectories()
	case ActionRemoveTrajectory:
		c.sim.RemoveLastTrajectory()
	case ActionToggleField:
		c.updateOptions(func(o *render.Options) { o.ShowField = !o.ShowField })
	case ActionToggleGrid:
		c.updateOptions(func(o *render.Options) { o.ShowGrid = !o.ShowGrid })
	case ActionToggleNullclines:
		c.updateOptions(func(o *render.Options) { o.ShowNullclines = !o.ShowNullclines })
	case ActionToggleParticles:
		c.updateOptions(func(o *render.Options) { o.ShowParticles = !o.ShowParticles })
	case ActionNextPreset:
		c.cyclePreset(1)
	case ActionPrevPreset:
		c.cyclePreset(-1)
	case ActionNextParam:
		c.cycleParam(1)
	case ActionPrevParam:
		c.cycleParam(-1)
	case ActionParamUp:
		c.NudgeParam(ParamStep)
	case ActionParamDown:
		c.NudgeParam(-ParamStep)
	case ActionSpeedUp:
		c.sim.SetSpeed(math.Min(MaxSpeed, round(c.sim.Speed()+SpeedStep, 1e-9)))
	case ActionSpeedDown:
		c.sim.SetSpeed(math.Max(0, round(c.sim.Speed()-SpeedStep, 1e-9)))
	case ActionFadeUp:
		c.updateOptions(func(o *render.Options) { o.Fade = clamp(o.Fade+FadeStep, MinFade, MaxFade) })
	case ActionFadeDown:
		c.updateOptions(func(o *render.Options) { o.Fade = clamp(o.Fade-FadeStep, MinFade, MaxFade) })
	case ActionMagScaleUp:
		c.updateOptions(func(o *render.Options) { o.MagScale = clamp(o.MagScale+MagScaleStep, MinMagScale, MaxMagScale) })
	case ActionMagScaleDown:
		c.updateOptions(func(o *render.Options) { o.MagScale = clamp(o.MagScale-MagScaleStep, MinMagScale, MaxMagScale) })
	case ActionEdit:
		c.Editor.Open(c.sim.Equations())
	case ActionQuit:
		c.quit = true
	}
}

func (c *Controller) updateOptions(fn func(o *render.Options)) {
	if c.display == nil {
		return
	}
	o := c.display.Options()
	fn(&o)
	c.display.SetOptions(o)
}

func (c *Controller) cyclePreset(dir int) {
	if len(c.presets) == 0 {
		return
	}
	i := (c.preset + dir + len(c.presets)) % len(c.presets)
	if err := c.LoadPreset(c.presets[i]); err != nil {
		c.log.Warn("preset failed", "name", c.presets[i], "err", err)
	}
}

func (c *Controller) cycleParam(dir int) {
	n := c.sim.Params().Len()
	if n == 0 {
		return
	}
	c.param = (c.param + dir + n) % n
}

// SelectedParam returns the parameter the arrow keys adjust.
func (c *Controller) SelectedParam() (name string, value float64, ok bool) {
	names := c.sim.Params().Names()
	if len(names) == 0 {
		return "", 0, false
	}
	if c.param >= len(names) {
		c.param = 0
	}
	name = names[c.param]
	value, _ = c.sim.Params().Param(name)
	return name, value, true
}

// NudgeParam adds delta to the selected parameter.
func (c *Controller) NudgeParam(delta float64) {
	name, v, ok := c.SelectedParam()
	if !ok {
		return
	}
	if err := c.sim.SetParam(name, round(v+delta, 1e-9)); err != nil {
		c.err = err
	}
}

// CommitEditor applies the edited equations and closes the editor on
// success. On failure the editor stays open and Err reports why.
func (c *Controller) CommitEditor() error {
	dx, dy := c.Editor.Text()
	if err := c.sim.SetEquations(dx, dy); err != nil {
		c.err = err
		return err
	}
	c.err = nil
	c.Editor.Close()
	return nil
}

// PointerDown starts a pan on a plain left press, seeds a trajectory on a
// shift left press and removes the newest trajectory on a right press.
func (c *Controller) PointerDown(p r2.Vec, b Button, shift bool) {
	c.PointerMove(p)
	switch {
	case b == ButtonLeft && shift:
		c.sim.AddTrajectoryAt(p)
	case b == ButtonLeft:
		c.dragging = true
		c.last = p
	case b == ButtonRight:
		c.sim.RemoveLastTrajectory()
	}
}

// PointerMove pans while dragging and tracks the hover position.
func (c *Controller) PointerMove(p r2.Vec) {
	if c.dragging {
		d := r2.Sub(p, c.last)
		c.sim.Pan(d.X, d.Y)
		c.last = p
	}
	c.pointer = p
	w, h := c.sim.Surface().CSSSize()
	c.hover = p.X >= 0 && p.Y >= 0 && p.X < w && p.Y < h
}

func (c *Controller) PointerUp() { c.dragging = false }

func (c *Controller) Dragging() bool { return c.dragging }

// Wheel zooms one notch about p. Positive deltaY zooms out.
func (c *Controller) Wheel(p r2.Vec, deltaY float64) {
	c.sim.ZoomWheel(p, deltaY)
}

// Cursor returns the world position under the pointer, if it is over the
// view.
func (c *Controller) Cursor() (r2.Vec, bool) {
	if !c.hover {
		return r2.Vec{}, false
	}
	return c.sim.ScreenToWorld(c.pointer), true
}

// Err returns the last equation or parameter error, cleared by the next
// success.
func (c *Controller) Err() error { return c.err }

func (c *Controller) Quit() bool { return c.quit }

func (c *Controller) Sim() *sim.Simulator { return c.sim }

func clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }

// round snaps v to a multiple of q to keep repeated steps from drifting.
func round(v, q float64) float64 { return math.Round(v/q) * q }
