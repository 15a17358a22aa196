package control

import (
	"fmt"
	"strings"

	"github.com/san-kum/phaseflow/internal/render"
)

// ParamStatus is one parameter row of the HUD.
type ParamStatus struct {
	Name     string
	Value    float64
	Selected bool
}

// Status is the HUD summary of the current view.
type Status struct {
	Preset       string
	DX, DY       string
	Zoom         string
	Time         float64
	Speed        float64
	Paused       bool
	FPS          int
	Cursor       string
	Trajectories int
	Params       []ParamStatus
	Err          string
}

// Status collects the HUD summary. fps is the caller's measured rate.
func (c *Controller) Status(fps int) Status {
	s := c.sim
	dx, dy := s.Equations()
	st := Status{
		Preset:       c.Preset(),
		DX:           dx,
		DY:           dy,
		Zoom:         render.FormatZoom(s.Camera().Zoom),
		Time:         s.Time(),
		Speed:        s.Speed(),
		Paused:       s.Paused(),
		FPS:          fps,
		Trajectories: len(s.Trajectories()),
	}
	if p, ok := c.Cursor(); ok {
		st.Cursor = fmt.Sprintf("(%s, %s)", render.FormatCoord(p.X), render.FormatCoord(p.Y))
	}
	sel, _, _ := c.SelectedParam()
	for _, name := range s.Params().Names() {
		v, _ := s.Params().Param(name)
		st.Params = append(st.Params, ParamStatus{Name: name, Value: v, Selected: name == sel})
	}
	if c.err != nil {
		st.Err = c.err.Error()
	}
	return st
}

// Line renders the one-line summary shown at the bottom of the view.
func (s Status) Line() string {
	var b strings.Builder
	state := "running"
	if s.Paused {
		state = "paused"
	}
	fmt.Fprintf(&b, "%s  Zoom: %s  t=%.2f  speed %.1f  %s", s.Preset, s.Zoom, s.Time, s.Speed, state)
	if s.Trajectories > 0 {
		fmt.Fprintf(&b, "  %d traj", s.Trajectories)
	}
	if s.Cursor != "" {
		b.WriteString("  " + s.Cursor)
	}
	fmt.Fprintf(&b, "  %d FPS", s.FPS)
	return b.String()
}

// ParamLine renders the parameters as "a = 1.00  [b = 0.50]" with the
// selected one bracketed.
func (s Status) ParamLine() string {
	parts := make([]string, 0, len(s.Params))
	for _, p := range s.Params {
		item := fmt.Sprintf("%s = %.2f", p.Name, p.Value)
		if p.Selected {
			item = "[" + item + "]"
		}
		parts = append(parts, item)
	}
	return strings.Join(parts, "  ")
}
