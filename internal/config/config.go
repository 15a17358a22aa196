package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultWidth      = 1280
	DefaultHeight     = 800
	DefaultParticles  = 80000
	DefaultMaxAge     = 120.0
	DefaultBaseDt     = 0.005
	DefaultSpeed      = 1.0
	DefaultSteps      = 30000
	DefaultTrajDt     = 0.005
	DefaultBound      = 1e6
	DefaultMagScale   = 0.55
	DefaultFade       = 0.985
	DefaultBrightness = 1.0
	DefaultMagGrid    = 20
	DefaultMagDecay   = 0.5
	DefaultMagRise    = 0.15
	DefaultPreset     = "rotation"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Window     WindowConfig      `yaml:"window"`
	Particles  ParticleConfig    `yaml:"particles"`
	Trajectory TrajectoryConfig  `yaml:"trajectory"`
	Render     RenderConfig      `yaml:"render"`
	Magnitude  MagnitudeConfig   `yaml:"magnitude"`
	Preset     string            `yaml:"preset"`
	Presets    map[string]Preset `yaml:"presets,omitempty"`
}

type WindowConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	DPR    float64 `yaml:"dpr"`
	FPS    int     `yaml:"fps"`
}

type ParticleConfig struct {
	Count  int     `yaml:"count"`
	MaxAge float64 `yaml:"max_age"`
	BaseDt float64 `yaml:"base_dt"`
	Speed  float64 `yaml:"speed"`
	Seed   uint64  `yaml:"seed"`
}

type TrajectoryConfig struct {
	Steps int     `yaml:"steps"`
	Dt    float64 `yaml:"dt"`
	Bound float64 `yaml:"bound"`
}

type RenderConfig struct {
	ShowField      bool    `yaml:"show_field"`
	ShowGrid       bool    `yaml:"show_grid"`
	ShowNullclines bool    `yaml:"show_nullclines"`
	ShowParticles  bool    `yaml:"show_particles"`
	MagScale       float64 `yaml:"mag_scale"`
	Fade           float64 `yaml:"fade"`
	Brightness     float64 `yaml:"brightness"`
}

// MagnitudeConfig tunes the running maximum that normalizes field
// brightness. Decay applies when a sample is below the running value.
type MagnitudeConfig struct {
	Grid  int     `yaml:"grid"`
	Decay float64 `yaml:"decay"`
	Rise  float64 `yaml:"rise"`
}

func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
			DPR:    1,
			FPS:    60,
		},
		Particles: ParticleConfig{
			Count:  DefaultParticles,
			MaxAge: DefaultMaxAge,
			BaseDt: DefaultBaseDt,
			Speed:  DefaultSpeed,
			Seed:   1,
		},
		Trajectory: TrajectoryConfig{
			Steps: DefaultSteps,
			Dt:    DefaultTrajDt,
			Bound: DefaultBound,
		},
		Render: RenderConfig{
			ShowField:     true,
			ShowGrid:      true,
			ShowParticles: true,
			MagScale:      DefaultMagScale,
			Fade:          DefaultFade,
			Brightness:    DefaultBrightness,
		},
		Magnitude: MagnitudeConfig{
			Grid:  DefaultMagGrid,
			Decay: DefaultMagDecay,
			Rise:  DefaultMagRise,
		},
		Preset: DefaultPreset,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	case c.Window.DPR <= 0:
		return fmt.Errorf("%w: dpr must be positive, got %g", ErrInvalidConfig, c.Window.DPR)
	case c.Particles.Count <= 0:
		return fmt.Errorf("%w: particle count must be positive, got %d", ErrInvalidConfig, c.Particles.Count)
	case c.Particles.MaxAge <= 0:
		return fmt.Errorf("%w: max_age must be positive, got %g", ErrInvalidConfig, c.Particles.MaxAge)
	case c.Particles.BaseDt <= 0:
		return fmt.Errorf("%w: base_dt must be positive, got %g", ErrInvalidConfig, c.Particles.BaseDt)
	case c.Particles.Speed < 0:
		return fmt.Errorf("%w: speed must not be negative, got %g", ErrInvalidConfig, c.Particles.Speed)
	case c.Trajectory.Steps <= 0:
		return fmt.Errorf("%w: trajectory steps must be positive, got %d", ErrInvalidConfig, c.Trajectory.Steps)
	case c.Trajectory.Dt <= 0:
		return fmt.Errorf("%w: trajectory dt must be positive, got %g", ErrInvalidConfig, c.Trajectory.Dt)
	case c.Trajectory.Bound <= 0:
		return fmt.Errorf("%w: trajectory bound must be positive, got %g", ErrInvalidConfig, c.Trajectory.Bound)
	case c.Render.Fade <= 0 || c.Render.Fade >= 1:
		return fmt.Errorf("%w: fade must be in (0, 1), got %g", ErrInvalidConfig, c.Render.Fade)
	case c.Render.MagScale <= 0:
		return fmt.Errorf("%w: mag_scale must be positive, got %g", ErrInvalidConfig, c.Render.MagScale)
	case c.Magnitude.Grid < 2:
		return fmt.Errorf("%w: magnitude grid must be at least 2, got %d", ErrInvalidConfig, c.Magnitude.Grid)
	case c.Magnitude.Decay <= 0 || c.Magnitude.Decay > 1 || c.Magnitude.Rise <= 0 || c.Magnitude.Rise > 1:
		return fmt.Errorf("%w: magnitude smoothing must be in (0, 1]", ErrInvalidConfig)
	}
	if _, ok := c.LookupPreset(c.Preset); !ok {
		return fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, c.Preset)
	}
	return nil
}
