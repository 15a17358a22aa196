// Package compute provides the rendering devices the draw pipeline runs on.
//
// Two devices implement the Device interface:
//
//   - OpenGL: GL 3.3 core through go-gl, used inside a window that already
//     owns a current context
//   - CPU: a software rasterizer that runs every program through its Go
//     kernel, used headless and in the terminal viewer
//
// # Programs
//
// A ProgramSource carries GLSL text for the GPU and an equivalent Go kernel
// for the CPU device:
//
//	prog, err := dev.BuildProgram(compute.ProgramSource{
//		Name:       "fade",
//		Vertex:     fullscreenVS,
//		Fragment:   fadeFS,
//		Samplers:   []string{"u_tex"},
//		Fullscreen: fadeKernel,
//	})
//
// Both devices reject malformed declarations with a *dynamo.ShaderBuildError,
// and a failed build never disturbs programs that were already built.
package compute
