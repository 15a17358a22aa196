package compute

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/phaseflow/internal/dynamo"
)

const (
	testVS = "#version 330 core\nlayout(location = 0) in vec2 a_pos;\nvoid main() {\n    gl_Position = vec4(a_pos, 0.0, 1.0);\n}\n"
	testFS = "#version 330 core\nuniform vec3 u_color;\nout vec4 fragColor;\nvoid main() {\n    fragColor = vec4(u_color, 1.0);\n}\n"
)

func solid(u Uniforms, _ []Sampler) func(x, y float64) Color {
	c := u.Vec3("u_color")
	return func(x, y float64) Color {
		return Color{float32(c[0]), float32(c[1]), float32(c[2]), float32(u.Float("u_alpha"))}
	}
}

func passthrough(u Uniforms) func(attr []float32) (r2.Vec, Color) {
	c := u.Vec3("u_color")
	return func(attr []float32) (r2.Vec, Color) {
		return r2.Vec{X: float64(attr[0]), Y: float64(attr[1])}, Color{float32(c[0]), float32(c[1]), float32(c[2]), 1}
	}
}

func mustBuild(t *testing.T, d Device, src ProgramSource) Program {
	t.Helper()
	p, err := d.BuildProgram(src)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func colorNear(a, b Color) bool {
	for i := range a {
		if d := a[i] - b[i]; d > 1e-5 || d < -1e-5 {
			return false
		}
	}
	return true
}

func TestCPUDevice_FullscreenBlendModes(t *testing.T) {
	d := NewCPUDevice(4, 4)
	p := mustBuild(t, d, ProgramSource{Name: "solid", Vertex: testVS, Fragment: testFS, Fullscreen: solid})

	tests := []struct {
		name  string
		mode  BlendMode
		src   Color
		clear Color
		want  Color
	}{
		{"none", BlendNone, Color{0.2, 0.4, 0.6, 0.5}, Color{1, 1, 1, 1}, Color{0.2, 0.4, 0.6, 0.5}},
		{"additive", BlendAdditive, Color{0.2, 0.4, 0.6, 0.5}, Color{0.1, 0.1, 0.1, 0}, Color{0.2, 0.3, 0.4, 0.25}},
		{"alpha", BlendAlpha, Color{1, 0, 0, 0.25}, Color{0, 0, 1, 1}, Color{0.25, 0, 0.75, 0.8125}},
		{"additive saturates", BlendAdditive, Color{1, 1, 1, 1}, Color{0.5, 0.5, 0.5, 0.5}, Color{1, 1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d.Bind(nil)
			d.SetBlend(BlendNone)
			d.Clear(tt.clear)
			d.SetBlend(tt.mode)
			u := Uniforms{}
			u.Set("u_color", float64(tt.src[0]), float64(tt.src[1]), float64(tt.src[2]))
			u.Set("u_alpha", float64(tt.src[3]))
			d.DrawFullscreen(p, u)
			if got := d.Pixel(2, 1); !colorNear(got, tt.want) {
				t.Errorf("pixel = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCPUDevice_TargetsAndSampling(t *testing.T) {
	d := NewCPUDevice(8, 8)
	src, err := d.NewTarget(8, 8)
	if err != nil {
		t.Fatal(err)
	}
	d.Bind(src)
	d.Clear(Color{0.5, 0, 0, 1})

	copyKernel := func(u Uniforms, tex []Sampler) func(x, y float64) Color {
		return func(x, y float64) Color {
			c := tex[0].Fetch(int(x), int(y))
			f := float32(u.Float("u_fade"))
			return Color{c[0] * f, c[1] * f, c[2] * f, c[3] * f}
		}
	}
	p := mustBuild(t, d, ProgramSource{Name: "copy", Vertex: testVS, Fragment: testFS, Fullscreen: copyKernel})

	d.Bind(nil)
	d.SetBlend(BlendNone)
	u := Uniforms{}
	u.Set("u_fade", 0.5)
	d.DrawFullscreen(p, u, src)

	if got := d.Pixel(3, 3); !colorNear(got, Color{0.25, 0, 0, 0.5}) {
		t.Errorf("sampled pixel = %v", got)
	}

	if _, err := d.NewTarget(0, 4); !errors.Is(err, dynamo.ErrInvalidSurface) {
		t.Errorf("expected ErrInvalidSurface, got %v", err)
	}
}

func TestCPUDevice_PointsAndLines(t *testing.T) {
	d := NewCPUDevice(10, 10)
	p := mustBuild(t, d, ProgramSource{
		Name: "lines", Vertex: testVS, Fragment: testFS,
		Attribs: []Attrib{{Name: "a_pos", Size: 2}}, Vertices: passthrough,
	})
	u := Uniforms{}
	u.Set("u_color", 0, 1, 0)

	buf := d.NewBuffer([]Attrib{{Name: "a_pos", Size: 2}})
	// Clip (-0.95, -0.95) lands in pixel (0, 0); (0.95, 0.95) in (9, 9).
	d.Upload(buf, []float32{-0.95, -0.95, 0.95, 0.95, 5, 5})
	if buf.Len() != 3 {
		t.Fatalf("buffer length %d, want 3", buf.Len())
	}

	d.Clear(Color{})
	d.SetBlend(BlendNone)
	d.DrawPoints(p, u, buf)
	if d.Pixel(0, 0)[1] != 1 || d.Pixel(9, 9)[1] != 1 {
		t.Error("points not drawn at expected pixels")
	}
	if d.Pixel(5, 5)[1] != 0 {
		t.Error("unexpected pixel lit between points")
	}

	d.Clear(Color{})
	d.DrawLineStrip(p, u, buf)
	for i := 0; i < 10; i++ {
		if d.Pixel(i, i)[1] != 1 {
			t.Errorf("diagonal pixel %d not lit", i)
		}
	}
	if d.Pixel(0, 9)[1] != 0 {
		t.Error("off-diagonal pixel lit")
	}
}

func TestCPUDevice_ScreenImageIsTopDown(t *testing.T) {
	d := NewCPUDevice(2, 2)
	p := mustBuild(t, d, ProgramSource{
		Name: "rows", Vertex: testVS, Fragment: testFS,
		Fullscreen: func(Uniforms, []Sampler) func(x, y float64) Color {
			return func(x, y float64) Color {
				if y < 1 {
					return Color{1, 0, 0, 1}
				}
				return Color{0, 0, 1, 1}
			}
		},
	})
	d.DrawFullscreen(p, nil)

	img := d.Screen()
	if c := img.RGBAAt(0, 0); c.B != 255 || c.R != 0 {
		t.Errorf("top-left = %v, want blue", c)
	}
	if c := img.RGBAAt(0, 1); c.R != 255 || c.B != 0 {
		t.Errorf("bottom-left = %v, want red", c)
	}
}

func TestClipSegment(t *testing.T) {
	tests := []struct {
		name string
		a, b r2.Vec
		ok   bool
	}{
		{"inside", r2.Vec{X: 1, Y: 1}, r2.Vec{X: 5, Y: 5}, true},
		{"crossing", r2.Vec{X: -1e9, Y: 5}, r2.Vec{X: 1e9, Y: 5}, true},
		{"outside", r2.Vec{X: -5, Y: -5}, r2.Vec{X: -1, Y: -1}, false},
		{"non-finite", r2.Vec{X: 1, Y: 1}, r2.Vec{X: math.Inf(1), Y: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b, ok := clipSegment(tt.a, tt.b, 10, 10)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && (a.X < -1e-9 || b.X > 10+1e-9) {
				t.Errorf("clipped segment %v-%v leaves the viewport", a, b)
			}
		})
	}
}
