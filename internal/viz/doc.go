// Package viz is the terminal front-end.
//
// The phase portrait is rendered headless on a compute.CPUDevice and shown
// with half-block cells, two pixels per cell, next to a stats panel built
// with lipgloss. Input goes through a control.Controller, so bindings match
// the desktop window:
//
//	Space - Pause/Resume
//	R     - Reset view
//	C     - Clear trajectories
//	G N P - Grid, nullclines, particles
//	[ ]   - Previous/next preset
//	↑↓←→  - Select and tune parameters
//	E     - Edit equations
//	T     - Cycle color themes
//	?     - Show help overlay
//
// Mouse drag pans, the wheel zooms and shift-click seeds a trajectory.
//
// [Canvas] is a Braille plotter used for quick phase plots of a single
// trajectory.
package viz
