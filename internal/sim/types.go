package sim

import (
	"github.com/san-kum/phaseflow/internal/config"
	"github.com/san-kum/phaseflow/internal/dynamo"
	"github.com/san-kum/phaseflow/internal/field"
)

// Renderer draws frames for a Simulator. RebuildField must leave the
// previous field program in place when it returns an error.
type Renderer interface {
	RebuildField(f *field.Field) error
	Resize(s dynamo.Surface) error
	RenderFrame(f *Frame) error
	ClearTrails()
}

// Frame is the state handed to the renderer once per animation frame.
type Frame struct {
	Camera  dynamo.Camera
	Surface dynamo.Surface
	Time    float64
	Paused  bool

	// Particles holds x, y, visibility triples in world coordinates.
	Particles    []float64
	Trajectories []*Trajectory
	Params       *dynamo.Params
	MagMax       float64
}

type Observer interface {
	OnFrame(f *Frame)
}

type Config struct {
	Particles int
	MaxAge    float64
	BaseDt    float64
	Speed     float64
	Seed      uint64

	TrajectorySteps int
	TrajectoryDt    float64
	TrajectoryBound float64

	MagnitudeGrid  int
	MagnitudeDecay float64
	MagnitudeRise  float64
}

// FromConfig extracts the simulation settings from a loaded configuration.
func FromConfig(c *config.Config) Config {
	return Config{
		Particles:       c.Particles.Count,
		MaxAge:          c.Particles.MaxAge,
		BaseDt:          c.Particles.BaseDt,
		Speed:           c.Particles.Speed,
		Seed:            c.Particles.Seed,
		TrajectorySteps: c.Trajectory.Steps,
		TrajectoryDt:    c.Trajectory.Dt,
		TrajectoryBound: c.Trajectory.Bound,
		MagnitudeGrid:   c.Magnitude.Grid,
		MagnitudeDecay:  c.Magnitude.Decay,
		MagnitudeRise:   c.Magnitude.Rise,
	}
}

func DefaultConfig() Config {
	return FromConfig(config.DefaultConfig())
}
