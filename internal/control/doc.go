// Package control turns user input into Simulator operations.
//
// Front-ends translate their native events into the small vocabulary
// defined here and hand them to a [Controller]:
//
//   - key names, looked up in a [Keymap] and dispatched as an [Action]
//   - pointer presses, moves and releases ([Controller.PointerDown] and
//     friends), which pan on drag, seed a trajectory on shift-click and
//     drop the newest trajectory on a right click
//   - wheel notches ([Controller.Wheel]), zooming about the cursor
//
// An [Editor] holds the in-progress text of the two equations and an
// [FPSMeter] measures the frame rate over half-second windows.
package control
