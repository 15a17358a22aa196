// Package dynamo provides the core primitives shared by the field compiler,
// the integrators and the render pipeline.
//
//   - [Camera] and [Surface]: the viewport and every screen↔world transform
//   - [Params]: the explicit free-parameter set passed by reference into every
//     core call
//   - [ParamSource]: read-only view of parameter values
//   - [CompileError], [ShaderBuildError]: failures returned as data
//
// # Coordinates
//
// Screen coordinates are CSS pixels with the origin at the top-left corner and
// y growing downwards. World coordinates have y growing upwards. Zoom is the
// number of CSS pixels per world unit; multiply by [Surface.DPR] for device
// pixels:
//
//	cam := dynamo.Camera{Zoom: 50}
//	w := cam.ScreenToWorld(surface, r2.Vec{X: 10, Y: 20})
//
// # Thread Safety
//
// Nothing here is safe for concurrent mutation. [Params] is owned by the
// controller and only read by everything else.
package dynamo
