// Package gui is the desktop front-end: a raylib window whose OpenGL
// context drives the render pipeline, with the HUD, grid labels and the
// equation editor drawn by raylib on top.
package gui
