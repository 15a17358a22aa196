package render

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/phaseflow/internal/compute"
	"github.com/san-kum/phaseflow/internal/field"
)

// Background is the field pass color where nothing else is drawn.
var Background = compute.Color{0.035, 0.035, 0.055, 1}

var (
	particleTint = [3]float32{0.85, 0.92, 1.0}
	xNullcline   = [3]float64{1.0, 0.45, 0.15}
	yNullcline   = [3]float64{0.2, 0.55, 1.0}
)

const trajectoryAlpha = 0.9

const fullscreenVS = `#version 330 core
layout(location = 0) in vec2 a_pos;
out vec2 v_uv;
void main() {
    v_uv = a_pos * 0.5 + 0.5;
    gl_Position = vec4(a_pos, 0.0, 1.0);
}
`

// fieldFS is completed with the parameter uniforms and the two component
// expressions.
const fieldFS = `#version 330 core
in vec2 v_uv;
out vec4 fragColor;

uniform vec2 u_resolution;
uniform vec2 u_center;
uniform float u_zoom;
uniform float u_time;
uniform bool u_showField;
uniform bool u_showGrid;
uniform bool u_showNullclines;
uniform float u_magScale;
uniform float u_magMax;

%s

vec2 field(float x, float y, float t) {
    return vec2(
        %s,
        %s);
}

vec3 hsv2rgb(vec3 c) {
    vec4 K = vec4(1.0, 2.0 / 3.0, 1.0 / 3.0, 3.0);
    vec3 p = abs(fract(c.xxx + K.xyz) * 6.0 - K.www);
    return c.z * mix(K.xxx, clamp(p - K.xxx, 0.0, 1.0), c.y);
}

void main() {
    vec2 pixel = gl_FragCoord.xy;
    float x = u_center.x + (pixel.x - u_resolution.x * 0.5) / u_zoom;
    float y = u_center.y + (pixel.y - u_resolution.y * 0.5) / u_zoom;

    vec3 color = vec3(0.035, 0.035, 0.055);

    if (u_showField) {
        vec2 v = field(x, y, u_time);
        float angle = atan(v.y, v.x);
        float mag = length(v);
        float normMag = pow(clamp(mag / max(u_magMax, 0.0001), 0.0, 1.0), u_magScale);
        float hue = angle / (2.0 * 3.14159265) + 0.5;
        color = hsv2rgb(vec3(hue, 0.6, normMag * 0.55 + 0.1));
    }

    if (u_showGrid) {
        float worldPerPx = 1.0 / u_zoom;
        float gridMajor = pow(10.0, ceil(log(200.0 * worldPerPx) / log(10.0)));
        float gridMinor = gridMajor * 0.1;

        vec2 gMinor = abs(mod(vec2(x, y) + gridMinor * 0.5, gridMinor) - gridMinor * 0.5);
        float lineMinor = 1.0 - smoothstep(0.0, 1.8 * worldPerPx, min(gMinor.x, gMinor.y));
        color = mix(color, vec3(0.15), lineMinor * 0.25);

        vec2 gMajor = abs(mod(vec2(x, y) + gridMajor * 0.5, gridMajor) - gridMajor * 0.5);
        float lineMajor = 1.0 - smoothstep(0.0, 1.8 * worldPerPx, min(gMajor.x, gMajor.y));
        color = mix(color, vec3(0.25), lineMajor * 0.4);

        float axisLine = 1.0 - smoothstep(0.0, 2.5 * worldPerPx, min(abs(x), abs(y)));
        color = mix(color, vec3(0.5), axisLine * 0.6);
    }

    if (u_showNullclines) {
        float eps = 1.0 / u_zoom;
        vec2 vC = field(x, y, u_time);
        vec2 vR = field(x + eps, y, u_time);
        vec2 vU = field(x, y + eps, u_time);
        if (vC.x * vR.x < 0.0 || vC.x * vU.x < 0.0) {
            color = mix(color, vec3(1.0, 0.45, 0.15), 0.85);
        }
        if (vC.y * vR.y < 0.0 || vC.y * vU.y < 0.0) {
            color = mix(color, vec3(0.2, 0.55, 1.0), 0.85);
        }
    }

    fragColor = vec4(color, 1.0);
}
`

const fadeFS = `#version 330 core
in vec2 v_uv;
out vec4 fragColor;
uniform sampler2D u_tex;
uniform float u_fade;
void main() {
    fragColor = clamp(texture(u_tex, v_uv) * u_fade, 0.0, 1.0);
}
`

const compositeFS = `#version 330 core
in vec2 v_uv;
out vec4 fragColor;
uniform sampler2D u_tex;
void main() {
    fragColor = clamp(texture(u_tex, v_uv), 0.0, 1.0);
}
`

// Point and line positions arrive relative to the camera center so float32
// keeps precision at deep zoom.
const particleVS = `#version 330 core
layout(location = 0) in vec2 a_pos;
layout(location = 1) in float a_vis;
uniform vec2 u_resolution;
uniform float u_zoom;
out float v_vis;
void main() {
    gl_Position = vec4(a_pos * u_zoom / (u_resolution * 0.5), 0.0, 1.0);
    gl_PointSize = 1.5;
    v_vis = a_vis;
}
`

const particleFS = `#version 330 core
in float v_vis;
out vec4 fragColor;
uniform float u_brightness;
void main() {
    float r = length(gl_PointCoord - 0.5) * 2.0;
    if (r > 1.0) discard;
    float alpha = (1.0 - r * r) * v_vis * u_brightness;
    fragColor = vec4(vec3(0.85, 0.92, 1.0) * alpha, alpha);
}
`

const trajectoryVS = `#version 330 core
layout(location = 0) in vec2 a_pos;
uniform vec2 u_resolution;
uniform float u_zoom;
void main() {
    gl_Position = vec4(a_pos * u_zoom / (u_resolution * 0.5), 0.0, 1.0);
}
`

const trajectoryFS = `#version 330 core
uniform vec3 u_color;
out vec4 fragColor;
void main() {
    fragColor = vec4(u_color, 0.9);
}
`

var (
	particleLayout   = []compute.Attrib{{Name: "a_pos", Size: 2}, {Name: "a_vis", Size: 1}}
	trajectoryLayout = []compute.Attrib{{Name: "a_pos", Size: 2}}
)

// FieldShader returns the fragment shader for f.
func FieldShader(f *field.Field) string {
	var decls strings.Builder
	for _, name := range f.Params() {
		fmt.Fprintf(&decls, "uniform float %s;\n", name)
	}
	return fmt.Sprintf(fieldFS, decls.String(), f.DX.Code, f.DY.Code)
}

func fieldSource(f *field.Field) compute.ProgramSource {
	return compute.ProgramSource{
		Name:       "field",
		Vertex:     fullscreenVS,
		Fragment:   FieldShader(f),
		Fullscreen: fieldKernel(f),
	}
}

func fieldKernel(f *field.Field) compute.FullscreenKernel {
	return func(u compute.Uniforms, _ []compute.Sampler) func(px, py float64) compute.Color {
		eval := f.Bind(u)
		res := u.Vec2("u_resolution")
		center := u.Vec2("u_center")
		zoom := u.Float("u_zoom")
		t := u.Float("u_time")
		showField := u.Bool("u_showField")
		showGrid := u.Bool("u_showGrid")
		showNull := u.Bool("u_showNullclines")
		magScale := u.Float("u_magScale")
		magMax := math.Max(u.Float("u_magMax"), 1e-4)

		worldPerPx := 1 / zoom
		major, minor := GridSpacing(zoom)

		return func(px, py float64) compute.Color {
			x := center.X + (px-res.X*0.5)/zoom
			y := center.Y + (py-res.Y*0.5)/zoom

			col := [3]float64{float64(Background[0]), float64(Background[1]), float64(Background[2])}

			if showField {
				v := eval(x, y, t)
				angle := math.Atan2(v.Y, v.X)
				norm := math.Pow(clamp(r2.Norm(v)/magMax, 0, 1), magScale)
				hue := angle/(2*3.14159265) + 0.5
				col = hsv2rgb(hue, 0.6, norm*0.55+0.1)
			}

			if showGrid {
				lineMinor := 1 - smoothstep(0, 1.8*worldPerPx, gridDistance(x, y, minor))
				col = mix(col, gray(0.15), lineMinor*0.25)
				lineMajor := 1 - smoothstep(0, 1.8*worldPerPx, gridDistance(x, y, major))
				col = mix(col, gray(0.25), lineMajor*0.4)
				axisLine := 1 - smoothstep(0, 2.5*worldPerPx, math.Min(math.Abs(x), math.Abs(y)))
				col = mix(col, gray(0.5), axisLine*0.6)
			}

			if showNull {
				eps := 1 / zoom
				vc, vr, vu := eval(x, y, t), eval(x+eps, y, t), eval(x, y+eps, t)
				if vc.X*vr.X < 0 || vc.X*vu.X < 0 {
					col = mix(col, xNullcline, 0.85)
				}
				if vc.Y*vr.Y < 0 || vc.Y*vu.Y < 0 {
					col = mix(col, yNullcline, 0.85)
				}
			}

			return compute.Color{float32(col[0]), float32(col[1]), float32(col[2]), 1}
		}
	}
}

func fadeKernel(u compute.Uniforms, tex []compute.Sampler) func(px, py float64) compute.Color {
	fade := float32(u.Float("u_fade"))
	src := tex[0]
	return func(px, py float64) compute.Color {
		c := src.Fetch(int(px), int(py))
		return compute.Color{c[0] * fade, c[1] * fade, c[2] * fade, c[3] * fade}
	}
}

func compositeKernel(_ compute.Uniforms, tex []compute.Sampler) func(px, py float64) compute.Color {
	src := tex[0]
	return func(px, py float64) compute.Color {
		return src.Fetch(int(px), int(py))
	}
}

// The CPU device rasterizes a point as its center pixel, where the disc
// falloff is 1.
func particleKernel(u compute.Uniforms) func(attr []float32) (r2.Vec, compute.Color) {
	scale := projection(u)
	brightness := float32(u.Float("u_brightness"))
	return func(attr []float32) (r2.Vec, compute.Color) {
		a := attr[2] * brightness
		return r2.Vec{X: float64(attr[0]) * scale.X, Y: float64(attr[1]) * scale.Y},
			compute.Color{particleTint[0] * a, particleTint[1] * a, particleTint[2] * a, a}
	}
}

func trajectoryKernel(u compute.Uniforms) func(attr []float32) (r2.Vec, compute.Color) {
	scale := projection(u)
	c := u.Vec3("u_color")
	col := compute.Color{float32(c[0]), float32(c[1]), float32(c[2]), trajectoryAlpha}
	return func(attr []float32) (r2.Vec, compute.Color) {
		return r2.Vec{X: float64(attr[0]) * scale.X, Y: float64(attr[1]) * scale.Y}, col
	}
}

// projection maps camera-relative world offsets to clip space.
func projection(u compute.Uniforms) r2.Vec {
	res := u.Vec2("u_resolution")
	zoom := u.Float("u_zoom")
	return r2.Vec{X: zoom / (res.X * 0.5), Y: zoom / (res.Y * 0.5)}
}

func staticSources() map[string]compute.ProgramSource {
	return map[string]compute.ProgramSource{
		"fade": {
			Name: "fade", Vertex: fullscreenVS, Fragment: fadeFS,
			Samplers: []string{"u_tex"}, Fullscreen: fadeKernel,
		},
		"composite": {
			Name: "composite", Vertex: fullscreenVS, Fragment: compositeFS,
			Samplers: []string{"u_tex"}, Fullscreen: compositeKernel,
		},
		"particles": {
			Name: "particles", Vertex: particleVS, Fragment: particleFS,
			Attribs: particleLayout, Vertices: particleKernel,
		},
		"trajectory": {
			Name: "trajectory", Vertex: trajectoryVS, Fragment: trajectoryFS,
			Attribs: trajectoryLayout, Vertices: trajectoryKernel,
		},
	}
}

func hsv2rgb(h, s, v float64) [3]float64 {
	k := [4]float64{1, 2.0 / 3.0, 1.0 / 3.0, 3}
	var out [3]float64
	for i := 0; i < 3; i++ {
		p := math.Abs(glslFract(h+k[i])*6 - k[3])
		out[i] = v * (1 + (clamp(p-1, 0, 1)-1)*s)
	}
	return out
}

func gridDistance(x, y, spacing float64) float64 {
	dx := math.Abs(glslMod(x+spacing*0.5, spacing) - spacing*0.5)
	dy := math.Abs(glslMod(y+spacing*0.5, spacing) - spacing*0.5)
	return math.Min(dx, dy)
}

func gray(v float64) [3]float64 { return [3]float64{v, v, v} }

func mix(a, b [3]float64, t float64) [3]float64 {
	return [3]float64{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t, a[2] + (b[2]-a[2])*t}
}

func smoothstep(e0, e1, x float64) float64 {
	t := clamp((x-e0)/(e1-e0), 0, 1)
	return t * t * (3 - 2*t)
}

func clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }

func glslFract(v float64) float64 { return v - math.Floor(v) }

func glslMod(a, b float64) float64 { return a - b*math.Floor(a/b) }
