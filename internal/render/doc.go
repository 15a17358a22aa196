// Package render draws the phase portrait on a compute.Device.
//
// Each frame runs the field pass (direction hue, magnitude brightness,
// grid and nullclines) straight to the screen, then fades the previous
// particle trails into the second of two ping-pong targets, splats the
// particles into it and composites the result additively, and finally
// draws the trajectories as alpha-blended line strips. The field fragment
// shader is regenerated whenever the equations change.
package render
