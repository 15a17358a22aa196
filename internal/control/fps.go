package control

import (
	"math"
	"time"
)

// FPSWindow is the span over which frames are counted.
const FPSWindow = 500 * time.Millisecond

// FPSMeter reports the frame rate over fixed windows.
type FPSMeter struct {
	start  time.Time
	frames int
	fps    int
}

func NewFPSMeter(now time.Time) *FPSMeter {
	return &FPSMeter{start: now}
}

// Tick records one frame and returns the rate of the last completed window.
func (m *FPSMeter) Tick(now time.Time) int {
	m.frames++
	elapsed := now.Sub(m.start)
	if elapsed >= FPSWindow {
		m.fps = int(math.Round(float64(m.frames) / elapsed.Seconds()))
		m.frames = 0
		m.start = now
	}
	return m.fps
}

func (m *FPSMeter) FPS() int { return m.fps }
