// Package export writes rendered frames and trajectories to files: PNG
// snapshots with grid labels, animated GIFs, and trajectory data as CSV or
// SVG.
package export
