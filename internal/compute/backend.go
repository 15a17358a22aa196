package compute

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Color is a linear RGBA value.
type Color [4]float32

// BlendMode selects how draws combine with the bound target.
type BlendMode int

const (
	// BlendNone overwrites the destination.
	BlendNone BlendMode = iota
	// BlendAdditive is src*srcAlpha + dst.
	BlendAdditive
	// BlendAlpha is src*srcAlpha + dst*(1-srcAlpha).
	BlendAlpha
)

// Attrib is one per-vertex input, bound to the location matching its index.
type Attrib struct {
	Name string
	Size int
}

// Sampler reads texels of a bound texture. (0, 0) is the bottom-left texel.
type Sampler interface {
	Fetch(x, y int) Color
}

// FullscreenKernel prepares the per-fragment function of a full-screen
// program for one draw. fragX and fragY are pixel-center coordinates with
// the origin at the bottom left, like gl_FragCoord.
type FullscreenKernel func(u Uniforms, tex []Sampler) func(fragX, fragY float64) Color

// VertexKernel prepares the per-vertex function of a point or line program
// for one draw. It returns the clip-space position and the flat color of
// the vertex.
type VertexKernel func(u Uniforms) func(attr []float32) (clip r2.Vec, c Color)

// ProgramSource describes a shader program. Vertex and Fragment hold GLSL
// 330 core text; Attribs, when set, describe the vertex layout with
// explicit locations. The kernels are what the CPU device executes.
type ProgramSource struct {
	Name       string
	Vertex     string
	Fragment   string
	Attribs    []Attrib
	Samplers   []string
	Fullscreen FullscreenKernel
	Vertices   VertexKernel
}

// Program is a built shader program.
type Program interface {
	Name() string
}

// Target is an offscreen color buffer that can also be sampled.
type Target interface {
	Size() (w, h int)
}

// Buffer holds interleaved float32 vertex data.
type Buffer interface {
	Len() int
}

// Device abstracts the graphics API. A nil Target means the screen.
type Device interface {
	Name() string

	BuildProgram(src ProgramSource) (Program, error)
	DeleteProgram(p Program)

	NewTarget(w, h int) (Target, error)
	DeleteTarget(t Target)

	NewBuffer(layout []Attrib) Buffer
	Upload(b Buffer, data []float32)
	DeleteBuffer(b Buffer)

	ResizeScreen(w, h int)
	Bind(t Target)
	Clear(c Color)
	SetBlend(m BlendMode)

	DrawFullscreen(p Program, u Uniforms, tex ...Target)
	DrawPoints(p Program, u Uniforms, b Buffer)
	DrawLineStrip(p Program, u Uniforms, b Buffer)

	Cleanup()
}

// Uniforms maps uniform names to their components. Booleans are 0 or 1.
type Uniforms map[string][]float64

func (u Uniforms) Set(name string, v ...float64) { u[name] = v }

func (u Uniforms) SetBool(name string, b bool) {
	if b {
		u[name] = []float64{1}
	} else {
		u[name] = []float64{0}
	}
}

func (u Uniforms) Float(name string) float64 {
	if v := u[name]; len(v) > 0 {
		return v[0]
	}
	return 0
}

func (u Uniforms) Bool(name string) bool { return u.Float(name) != 0 }

func (u Uniforms) Vec2(name string) r2.Vec {
	if v := u[name]; len(v) >= 2 {
		return r2.Vec{X: v[0], Y: v[1]}
	}
	return r2.Vec{}
}

func (u Uniforms) Vec3(name string) [3]float64 {
	var out [3]float64
	copy(out[:], u[name])
	return out
}

// Param reads a scalar uniform, which lets Uniforms serve as the parameter
// source of a host-side field kernel.
func (u Uniforms) Param(name string) (float64, bool) {
	v, ok := u[name]
	if !ok || len(v) != 1 {
		return 0, false
	}
	return v[0], true
}
