package compute

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/san-kum/phaseflow/internal/dynamo"
)

// OpenGLDevice drives a GL 3.3 core context that is already current on the
// calling goroutine. Trail targets are RGBA16F so slow fades do not stall
// at 8-bit quantization.
type OpenGLDevice struct {
	screenW, screenH int32
	boundW, boundH   int32
	quadVAO, quadVBO uint32
}

type glProgram struct {
	src  ProgramSource
	id   uint32
	locs map[string]int32
}

func (p *glProgram) Name() string { return p.src.Name }

func (p *glProgram) loc(name string) int32 {
	if l, ok := p.locs[name]; ok {
		return l
	}
	l := gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
	p.locs[name] = l
	return l
}

type glTarget struct {
	w, h int32
	fbo  uint32
	tex  uint32
}

func (t *glTarget) Size() (int, int) { return int(t.w), int(t.h) }

type glBuffer struct {
	vao, vbo uint32
	stride   int
	count    int
}

func (b *glBuffer) Len() int { return b.count }

// NewOpenGLDevice loads the GL entry points. It fails with dynamo.ErrNoDevice
// when no suitable context is current.
func NewOpenGLDevice(w, h int) (*OpenGLDevice, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrNoDevice, err)
	}

	d := &OpenGLDevice{}
	d.ResizeScreen(w, h)

	// One triangle covering the viewport.
	quad := []float32{-1, -1, 3, -1, -1, 3}
	gl.GenVertexArrays(1, &d.quadVAO)
	gl.BindVertexArray(d.quadVAO)
	gl.GenBuffers(1, &d.quadVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(quad)*4, gl.Ptr(quad), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 0, 0)
	gl.BindVertexArray(0)

	gl.Enable(gl.PROGRAM_POINT_SIZE)
	return d, nil
}

func (d *OpenGLDevice) Name() string {
	return "opengl " + gl.GoStr(gl.GetString(gl.VERSION))
}

func (d *OpenGLDevice) BuildProgram(src ProgramSource) (Program, error) {
	vs, err := compileShader("vertex", gl.VERTEX_SHADER, src.Vertex)
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(vs)

	fs, err := compileShader("fragment", gl.FRAGMENT_SHADER, src.Fragment)
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(fs)

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return nil, &dynamo.ShaderBuildError{Stage: "link", Log: strings.TrimRight(log, "\x00")}
	}

	return &glProgram{src: src, id: program, locs: make(map[string]int32)}, nil
}

func compileShader(stage string, kind uint32, source string) (uint32, error) {
	shader := gl.CreateShader(kind)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, &dynamo.ShaderBuildError{Stage: stage, Log: strings.TrimRight(log, "\x00")}
	}
	return shader, nil
}

func (d *OpenGLDevice) DeleteProgram(p Program) {
	if gp, ok := p.(*glProgram); ok && gp.id != 0 {
		gl.DeleteProgram(gp.id)
		gp.id = 0
	}
}

func (d *OpenGLDevice) NewTarget(w, h int) (Target, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: target %dx%d", dynamo.ErrInvalidSurface, w, h)
	}
	t := &glTarget{w: int32(w), h: int32(h)}

	gl.GenTextures(1, &t.tex)
	gl.BindTexture(gl.TEXTURE_2D, t.tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F, t.w, t.h, 0, gl.RGBA, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.tex, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		d.DeleteTarget(t)
		return nil, fmt.Errorf("%w: framebuffer incomplete (0x%x)", dynamo.ErrNoDevice, status)
	}
	return t, nil
}

func (d *OpenGLDevice) DeleteTarget(t Target) {
	gt, ok := t.(*glTarget)
	if !ok {
		return
	}
	if gt.fbo != 0 {
		gl.DeleteFramebuffers(1, &gt.fbo)
		gt.fbo = 0
	}
	if gt.tex != 0 {
		gl.DeleteTextures(1, &gt.tex)
		gt.tex = 0
	}
}

func (d *OpenGLDevice) NewBuffer(layout []Attrib) Buffer {
	b := &glBuffer{}
	for _, a := range layout {
		b.stride += a.Size
	}
	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)
	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)

	offset := 0
	for i, a := range layout {
		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointerWithOffset(uint32(i), int32(a.Size), gl.FLOAT, false, int32(b.stride*4), uintptr(offset*4))
		offset += a.Size
	}
	gl.BindVertexArray(0)
	return b
}

func (d *OpenGLDevice) Upload(b Buffer, data []float32) {
	gb := b.(*glBuffer)
	gl.BindBuffer(gl.ARRAY_BUFFER, gb.vbo)
	if len(data) == 0 {
		gl.BufferData(gl.ARRAY_BUFFER, 0, nil, gl.DYNAMIC_DRAW)
	} else {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.DYNAMIC_DRAW)
	}
	gb.count = 0
	if gb.stride > 0 {
		gb.count = len(data) / gb.stride
	}
}

func (d *OpenGLDevice) DeleteBuffer(b Buffer) {
	gb, ok := b.(*glBuffer)
	if !ok {
		return
	}
	if gb.vbo != 0 {
		gl.DeleteBuffers(1, &gb.vbo)
		gb.vbo = 0
	}
	if gb.vao != 0 {
		gl.DeleteVertexArrays(1, &gb.vao)
		gb.vao = 0
	}
}

func (d *OpenGLDevice) ResizeScreen(w, h int) {
	d.screenW, d.screenH = int32(max(w, 1)), int32(max(h, 1))
}

func (d *OpenGLDevice) Bind(t Target) {
	if t == nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		d.boundW, d.boundH = d.screenW, d.screenH
	} else {
		gt := t.(*glTarget)
		gl.BindFramebuffer(gl.FRAMEBUFFER, gt.fbo)
		d.boundW, d.boundH = gt.w, gt.h
	}
	gl.Viewport(0, 0, d.boundW, d.boundH)
}

func (d *OpenGLDevice) Clear(c Color) {
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (d *OpenGLDevice) SetBlend(m BlendMode) {
	switch m {
	case BlendAdditive:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	case BlendAlpha:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	default:
		gl.Disable(gl.BLEND)
	}
}

func (d *OpenGLDevice) use(p Program, u Uniforms) *glProgram {
	gp := p.(*glProgram)
	gl.UseProgram(gp.id)
	for name, v := range u {
		loc := gp.loc(name)
		if loc < 0 {
			continue
		}
		switch len(v) {
		case 1:
			gl.Uniform1f(loc, float32(v[0]))
		case 2:
			gl.Uniform2f(loc, float32(v[0]), float32(v[1]))
		case 3:
			gl.Uniform3f(loc, float32(v[0]), float32(v[1]), float32(v[2]))
		case 4:
			gl.Uniform4f(loc, float32(v[0]), float32(v[1]), float32(v[2]), float32(v[3]))
		}
	}
	return gp
}

func (d *OpenGLDevice) DrawFullscreen(p Program, u Uniforms, tex ...Target) {
	gp := d.use(p, u)
	for i, t := range tex {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(i))
		gl.BindTexture(gl.TEXTURE_2D, t.(*glTarget).tex)
		if i < len(gp.src.Samplers) {
			gl.Uniform1i(gp.loc(gp.src.Samplers[i]), int32(i))
		}
	}
	gl.BindVertexArray(d.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
	gl.ActiveTexture(gl.TEXTURE0)
}

func (d *OpenGLDevice) DrawPoints(p Program, u Uniforms, b Buffer) {
	d.drawArrays(gl.POINTS, p, u, b)
}

func (d *OpenGLDevice) DrawLineStrip(p Program, u Uniforms, b Buffer) {
	d.drawArrays(gl.LINE_STRIP, p, u, b)
}

func (d *OpenGLDevice) drawArrays(mode uint32, p Program, u Uniforms, b Buffer) {
	gb := b.(*glBuffer)
	if gb.count == 0 {
		return
	}
	d.use(p, u)
	gl.BindVertexArray(gb.vao)
	gl.DrawArrays(mode, 0, int32(gb.count))
	gl.BindVertexArray(0)
}

// ResetState hands the context back to a host renderer that expects the
// default framebuffer, full viewport and straight alpha blending.
func (d *OpenGLDevice) ResetState() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, d.screenW, d.screenH)
	gl.UseProgram(0)
	gl.BindVertexArray(0)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
}

func (d *OpenGLDevice) Cleanup() {
	if d.quadVBO != 0 {
		gl.DeleteBuffers(1, &d.quadVBO)
		d.quadVBO = 0
	}
	if d.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &d.quadVAO)
		d.quadVAO = 0
	}
}
