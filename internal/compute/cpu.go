package compute

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/phaseflow/internal/dynamo"
)

// CPUDevice is a software implementation of Device. Full-screen draws are
// split over rows with dynamo.ParallelFor; point and line draws run on the
// calling goroutine so blending stays ordered.
type CPUDevice struct {
	screen *cpuTarget
	bound  *cpuTarget
	blend  BlendMode
}

type cpuProgram struct {
	src ProgramSource
}

func (p *cpuProgram) Name() string { return p.src.Name }

// cpuTarget stores pixels bottom row first, like a GL texture.
type cpuTarget struct {
	w, h int
	pix  []Color
}

func (t *cpuTarget) Size() (int, int) { return t.w, t.h }

func (t *cpuTarget) Fetch(x, y int) Color {
	x = clampInt(x, 0, t.w-1)
	y = clampInt(y, 0, t.h-1)
	return t.pix[y*t.w+x]
}

type cpuBuffer struct {
	stride int
	data   []float32
}

func (b *cpuBuffer) Len() int {
	if b.stride == 0 {
		return 0
	}
	return len(b.data) / b.stride
}

func NewCPUDevice(w, h int) *CPUDevice {
	d := &CPUDevice{}
	d.ResizeScreen(w, h)
	return d
}

func (d *CPUDevice) Name() string { return "cpu" }

func (d *CPUDevice) BuildProgram(src ProgramSource) (Program, error) {
	if err := ValidateGLSL("vertex", src.Vertex); err != nil {
		return nil, err
	}
	if err := ValidateGLSL("fragment", src.Fragment); err != nil {
		return nil, err
	}
	if src.Fullscreen == nil && src.Vertices == nil {
		return nil, &dynamo.ShaderBuildError{Stage: "link", Log: fmt.Sprintf("program %q has no kernel", src.Name)}
	}
	return &cpuProgram{src: src}, nil
}

func (d *CPUDevice) DeleteProgram(Program) {}

func (d *CPUDevice) NewTarget(w, h int) (Target, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: target %dx%d", dynamo.ErrInvalidSurface, w, h)
	}
	return &cpuTarget{w: w, h: h, pix: make([]Color, w*h)}, nil
}

func (d *CPUDevice) DeleteTarget(t Target) {
	if ct, ok := t.(*cpuTarget); ok {
		if d.bound == ct {
			d.bound = d.screen
		}
		ct.pix = nil
	}
}

func (d *CPUDevice) NewBuffer(layout []Attrib) Buffer {
	stride := 0
	for _, a := range layout {
		stride += a.Size
	}
	return &cpuBuffer{stride: stride}
}

func (d *CPUDevice) Upload(b Buffer, data []float32) {
	cb := b.(*cpuBuffer)
	cb.data = append(cb.data[:0], data...)
}

func (d *CPUDevice) DeleteBuffer(b Buffer) {
	if cb, ok := b.(*cpuBuffer); ok {
		cb.data = nil
	}
}

func (d *CPUDevice) ResizeScreen(w, h int) {
	w, h = max(w, 1), max(h, 1)
	rebind := d.bound == nil || d.bound == d.screen
	d.screen = &cpuTarget{w: w, h: h, pix: make([]Color, w*h)}
	if rebind {
		d.bound = d.screen
	}
}

func (d *CPUDevice) Bind(t Target) {
	if t == nil {
		d.bound = d.screen
		return
	}
	d.bound = t.(*cpuTarget)
}

func (d *CPUDevice) Clear(c Color) {
	for i := range d.bound.pix {
		d.bound.pix[i] = c
	}
}

func (d *CPUDevice) SetBlend(m BlendMode) { d.blend = m }

func (d *CPUDevice) DrawFullscreen(p Program, u Uniforms, tex ...Target) {
	prog := p.(*cpuProgram)
	if prog.src.Fullscreen == nil {
		return
	}
	samplers := make([]Sampler, len(tex))
	for i, t := range tex {
		samplers[i] = t.(*cpuTarget)
	}
	shade := prog.src.Fullscreen(u, samplers)
	dst := d.bound
	blend := d.blend

	dynamo.ParallelFor(dst.h, 16, func(start, end int) {
		for y := start; y < end; y++ {
			row := dst.pix[y*dst.w : (y+1)*dst.w]
			fy := float64(y) + 0.5
			for x := range row {
				row[x] = blendColor(blend, shade(float64(x)+0.5, fy), row[x])
			}
		}
	})
}

func (d *CPUDevice) DrawPoints(p Program, u Uniforms, b Buffer) {
	prog, buf := p.(*cpuProgram), b.(*cpuBuffer)
	if prog.src.Vertices == nil || buf.stride == 0 {
		return
	}
	vert := prog.src.Vertices(u)
	dst := d.bound
	for i := 0; i+buf.stride <= len(buf.data); i += buf.stride {
		clip, c := vert(buf.data[i : i+buf.stride])
		px, py := d.toPixel(clip)
		if math.IsNaN(px) || math.IsNaN(py) {
			continue
		}
		x, y := int(math.Floor(px)), int(math.Floor(py))
		if x < 0 || y < 0 || x >= dst.w || y >= dst.h {
			continue
		}
		k := y*dst.w + x
		dst.pix[k] = blendColor(d.blend, c, dst.pix[k])
	}
}

func (d *CPUDevice) DrawLineStrip(p Program, u Uniforms, b Buffer) {
	prog, buf := p.(*cpuProgram), b.(*cpuBuffer)
	if prog.src.Vertices == nil || buf.stride == 0 {
		return
	}
	vert := prog.src.Vertices(u)

	var prev r2.Vec
	have := false
	for i := 0; i+buf.stride <= len(buf.data); i += buf.stride {
		clip, c := vert(buf.data[i : i+buf.stride])
		px, py := d.toPixel(clip)
		cur := r2.Vec{X: px, Y: py}
		if have {
			d.rasterLine(prev, cur, c)
		}
		prev, have = cur, true
	}
}

func (d *CPUDevice) toPixel(clip r2.Vec) (float64, float64) {
	return (clip.X + 1) * 0.5 * float64(d.bound.w), (clip.Y + 1) * 0.5 * float64(d.bound.h)
}

// rasterLine draws a one-pixel DDA line from a to b after clipping it to
// the bound target.
func (d *CPUDevice) rasterLine(a, b r2.Vec, c Color) {
	dst := d.bound
	a, b, ok := clipSegment(a, b, float64(dst.w), float64(dst.h))
	if !ok {
		return
	}
	delta := r2.Sub(b, a)
	steps := int(math.Ceil(math.Max(math.Abs(delta.X), math.Abs(delta.Y))))
	if steps == 0 {
		steps = 1
	}
	inc := r2.Scale(1/float64(steps), delta)
	p := a
	for i := 0; i < steps; i++ {
		x, y := int(math.Floor(p.X)), int(math.Floor(p.Y))
		if x >= 0 && y >= 0 && x < dst.w && y < dst.h {
			k := y*dst.w + x
			dst.pix[k] = blendColor(d.blend, c, dst.pix[k])
		}
		p = r2.Add(p, inc)
	}
}

// clipSegment clips a-b to [0,w]x[0,h] with Liang-Barsky.
func clipSegment(a, b r2.Vec, w, h float64) (r2.Vec, r2.Vec, bool) {
	if !dynamo.IsFinite(a) || !dynamo.IsFinite(b) {
		return a, b, false
	}
	d := r2.Sub(b, a)
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-d.X, a.X}, {d.X, w - a.X},
		{-d.Y, a.Y}, {d.Y, h - a.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			t0 = math.Max(t0, r)
		} else {
			t1 = math.Min(t1, r)
		}
		if t0 > t1 {
			return a, b, false
		}
	}
	return r2.Add(a, r2.Scale(t0, d)), r2.Add(a, r2.Scale(t1, d)), true
}

func blendColor(m BlendMode, src, dst Color) Color {
	var out Color
	switch m {
	case BlendAdditive:
		a := src[3]
		for i := 0; i < 4; i++ {
			out[i] = src[i]*a + dst[i]
		}
	case BlendAlpha:
		a := src[3]
		for i := 0; i < 4; i++ {
			out[i] = src[i]*a + dst[i]*(1-a)
		}
	default:
		out = src
	}
	for i := range out {
		out[i] = clamp01(out[i])
	}
	return out
}

func (d *CPUDevice) Cleanup() {
	d.screen.pix = nil
	d.bound = nil
}

// Screen returns the screen as an image, top row first.
func (d *CPUDevice) Screen() *image.RGBA {
	return targetImage(d.screen)
}

// TargetImage converts an offscreen target to an image, top row first.
func (d *CPUDevice) TargetImage(t Target) *image.RGBA {
	return targetImage(t.(*cpuTarget))
}

func targetImage(t *cpuTarget) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.w, t.h))
	for y := 0; y < t.h; y++ {
		src := t.pix[(t.h-1-y)*t.w : (t.h-y)*t.w]
		for x, c := range src {
			img.SetRGBA(x, y, color.RGBA{
				R: to8(c[0]), G: to8(c[1]), B: to8(c[2]), A: to8(c[3]),
			})
		}
	}
	return img
}

// Pixel returns the screen color at (x, y) with the origin at the bottom
// left.
func (d *CPUDevice) Pixel(x, y int) Color {
	return d.screen.Fetch(x, y)
}

func to8(v float32) uint8 {
	return uint8(math.Round(float64(clamp01(v)) * 255))
}

func clamp01(v float32) float32 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
