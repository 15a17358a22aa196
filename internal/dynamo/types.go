package dynamo

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// Zoom limits in CSS pixels per world unit.
const (
	MinZoom = 1e-4
	MaxZoom = 1e12
)

// DefaultParamValue is assigned to newly detected parameters.
const DefaultParamValue = 1.0

// IsFinite reports whether both coordinates of p are finite.
func IsFinite(p r2.Vec) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// ClampZoom limits z to [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return MinZoom
	}
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

// Surface is the raster the pipeline draws into. Width and Height are device
// pixels.
type Surface struct {
	Width  int
	Height int
	DPR    float64
}

func (s Surface) Valid() bool {
	return s.Width > 0 && s.Height > 0 && s.DPR > 0
}

// CSSSize returns the surface size in CSS pixels.
func (s Surface) CSSSize() (w, h float64) {
	dpr := s.dpr()
	return float64(s.Width) / dpr, float64(s.Height) / dpr
}

func (s Surface) dpr() float64 {
	if s.DPR <= 0 {
		return 1
	}
	return s.DPR
}

// Camera is the viewport: a world-space center and a zoom in CSS pixels per
// world unit.
type Camera struct {
	Center r2.Vec
	Zoom   float64
}

// DeviceZoom returns device pixels per world unit.
func (c Camera) DeviceZoom(s Surface) float64 {
	return c.Zoom * s.dpr()
}

// HalfExtent returns half the visible world width and height.
func (c Camera) HalfExtent(s Surface) r2.Vec {
	w, h := s.CSSSize()
	return r2.Vec{X: w / 2 / c.Zoom, Y: h / 2 / c.Zoom}
}

// ScreenToWorld maps a CSS pixel position (origin top-left, y down) to world
// coordinates.
func (c Camera) ScreenToWorld(s Surface, p r2.Vec) r2.Vec {
	w, h := s.CSSSize()
	return r2.Vec{
		X: c.Center.X + (p.X-w/2)/c.Zoom,
		Y: c.Center.Y + (h/2-p.Y)/c.Zoom,
	}
}

// WorldToScreen is the inverse of ScreenToWorld.
func (c Camera) WorldToScreen(s Surface, p r2.Vec) r2.Vec {
	w, h := s.CSSSize()
	return r2.Vec{
		X: (p.X-c.Center.X)*c.Zoom + w/2,
		Y: h/2 - (p.Y-c.Center.Y)*c.Zoom,
	}
}

// Pan moves the camera so the world follows a drag of (dx, dy) CSS pixels.
func (c *Camera) Pan(dx, dy float64) {
	c.Center.X -= dx / c.Zoom
	c.Center.Y += dy / c.Zoom
}

// ZoomAt scales the zoom by factor while keeping the world point under the
// CSS position p fixed on screen.
func (c *Camera) ZoomAt(s Surface, p r2.Vec, factor float64) {
	anchor := c.ScreenToWorld(s, p)
	c.Zoom = ClampZoom(c.Zoom * factor)
	w, h := s.CSSSize()
	c.Center.X = anchor.X - (p.X-w/2)/c.Zoom
	c.Center.Y = anchor.Y - (h/2-p.Y)/c.Zoom
}

// ParamSource supplies free-parameter values by name.
type ParamSource interface {
	Param(name string) (float64, bool)
}

// Params is the free-parameter set of the current field. Names are kept in
// detection order.
type Params struct {
	names  []string
	values map[string]float64
}

func NewParams() *Params {
	return &Params{values: make(map[string]float64)}
}

// Param implements ParamSource.
func (p *Params) Param(name string) (float64, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Set updates an existing parameter.
func (p *Params) Set(name string, value float64) error {
	if _, ok := p.values[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	p.values[name] = value
	return nil
}

// Seed replaces the whole set with values, e.g. from a preset. Names are
// ordered alphabetically until the next Sync.
func (p *Params) Seed(values map[string]float64) {
	p.values = make(map[string]float64, len(values))
	p.names = p.names[:0]
	for k, v := range values {
		p.values[k] = v
		p.names = append(p.names, k)
	}
	sort.Strings(p.names)
}

// Sync makes names the exact parameter list: retained names keep their
// value, new names get DefaultParamValue, everything else is dropped.
func (p *Params) Sync(names []string) {
	next := make(map[string]float64, len(names))
	for _, n := range names {
		if v, ok := p.values[n]; ok {
			next[n] = v
		} else {
			next[n] = DefaultParamValue
		}
	}
	p.values = next
	p.names = append(p.names[:0], names...)
}

// Names returns the parameter names in detection order.
func (p *Params) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

func (p *Params) Len() int { return len(p.names) }

// Values returns a copy of the name → value mapping.
func (p *Params) Values() map[string]float64 {
	out := make(map[string]float64, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}
