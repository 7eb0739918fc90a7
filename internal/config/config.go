package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultInput      = "soft_sim.dat"
	DefaultOutput     = "video.mp4"
	DefaultFPS        = 24
	DefaultIntervalMs = 500
	DefaultDataDir    = ".softplot"

	DefaultImageWidth  = 640
	DefaultImageHeight = 480
	DefaultMarker      = "#ff0000"
	DefaultBackground  = "#ffffff"
	DefaultDotRadius   = 5.0
	DefaultQuality     = 90

	DefaultGridWidth      = 10
	DefaultGridHeight     = 10
	DefaultFrames         = 900
	DefaultDroppingHeight = 10.0
	DefaultStiffness      = 100.0
	DefaultDamping        = 10.0
	DefaultGravity        = 1.0
	DefaultDt             = 0.01
	DefaultSubsteps       = 10
	DefaultIntegrator     = "trapezoid"
)

type Config struct {
	Input      string           `yaml:"input"`
	Output     string           `yaml:"output"`
	FPS        int              `yaml:"fps"`
	IntervalMs int              `yaml:"interval_ms"`
	DataDir    string           `yaml:"data_dir"`
	FFmpeg     string           `yaml:"ffmpeg"`
	Render     RenderConfig     `yaml:"render"`
	Simulation SimulationConfig `yaml:"simulation"`
}

type RenderConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Marker     string  `yaml:"marker"`
	Background string  `yaml:"background"`
	DotRadius  float64 `yaml:"dot_radius"`
	FrameLabel bool    `yaml:"frame_label"`
	ShowTicks  bool    `yaml:"show_ticks"`
	Quality    int     `yaml:"quality"`
	Theme      string  `yaml:"theme"`
}

type SimulationConfig struct {
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	Frames         int     `yaml:"frames"`
	DroppingHeight float64 `yaml:"dropping_height"`
	Stiffness      float64 `yaml:"stiffness"`
	Damping        float64 `yaml:"damping"`
	Gravity        float64 `yaml:"gravity"`
	Dt             float64 `yaml:"dt"`
	Substeps       int     `yaml:"substeps"`
	Integrator     string  `yaml:"integrator"`
}

func DefaultConfig() *Config {
	return &Config{
		Input:      DefaultInput,
		Output:     DefaultOutput,
		FPS:        DefaultFPS,
		IntervalMs: DefaultIntervalMs,
		DataDir:    DefaultDataDir,
		FFmpeg:     "ffmpeg",
		Render: RenderConfig{
			Width:      DefaultImageWidth,
			Height:     DefaultImageHeight,
			Marker:     DefaultMarker,
			Background: DefaultBackground,
			DotRadius:  DefaultDotRadius,
			Quality:    DefaultQuality,
			Theme:      "classic",
		},
		Simulation: DefaultSimulation(),
	}
}

func DefaultSimulation() SimulationConfig {
	return SimulationConfig{
		Width:          DefaultGridWidth,
		Height:         DefaultGridHeight,
		Frames:         DefaultFrames,
		DroppingHeight: DefaultDroppingHeight,
		Stiffness:      DefaultStiffness,
		Damping:        DefaultDamping,
		Gravity:        DefaultGravity,
		Dt:             DefaultDt,
		Substeps:       DefaultSubsteps,
		Integrator:     DefaultIntegrator,
	}
}

// Load reads a YAML file over the defaults. Keys absent from the file
// keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

// Interval is the nominal interactive frame spacing.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("config: input path is empty")
	}
	if c.Output == "" {
		return fmt.Errorf("config: output path is empty")
	}
	if c.FPS <= 0 {
		return fmt.Errorf("config: fps must be positive, got %d", c.FPS)
	}
	if c.IntervalMs <= 0 {
		return fmt.Errorf("config: interval_ms must be positive, got %d", c.IntervalMs)
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("config: render size must be positive, got %dx%d", c.Render.Width, c.Render.Height)
	}
	if c.Render.DotRadius <= 0 {
		return fmt.Errorf("config: dot_radius must be positive, got %g", c.Render.DotRadius)
	}
	if c.Render.Quality < 1 || c.Render.Quality > 100 {
		return fmt.Errorf("config: quality must be in [1, 100], got %d", c.Render.Quality)
	}
	return c.Simulation.Validate()
}

func (s SimulationConfig) Validate() error {
	if s.Width < 0 || s.Height < 0 {
		return fmt.Errorf("config: simulation grid must be non-negative, got %dx%d", s.Width, s.Height)
	}
	if s.Frames < 0 {
		return fmt.Errorf("config: simulation frames must be non-negative, got %d", s.Frames)
	}
	if s.Dt <= 0 {
		return fmt.Errorf("config: simulation dt must be positive, got %g", s.Dt)
	}
	if s.Substeps <= 0 {
		return fmt.Errorf("config: simulation substeps must be positive, got %d", s.Substeps)
	}
	if s.Stiffness < 0 || s.Damping < 0 {
		return fmt.Errorf("config: stiffness and damping must be non-negative")
	}
	return nil
}
