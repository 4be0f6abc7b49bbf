package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt             = 1.0 / 60.0
	DefaultDuration       = 10.0
	DefaultCellSize       = 16.0
	DefaultNumCells       = 1024
	DefaultRestitution    = 0.9
	DefaultFriction       = 0.1
	DefaultMomentumFactor = 0.8
)

type Config struct {
	Scenario string       `yaml:"scenario"`
	Dt       float64      `yaml:"dt"`
	Duration float64      `yaml:"duration"`
	Seed     int64        `yaml:"seed"`
	Grid     GridConfig   `yaml:"grid"`
	Physics  TuningConfig `yaml:"physics"`
}

type GridConfig struct {
	CellSize float64 `yaml:"cell_size"`
	NumCells int     `yaml:"num_cells"`
}

type TuningConfig struct {
	GravityX          float64 `yaml:"gravity_x"`
	GravityY          float64 `yaml:"gravity_y"`
	Restitution       float64 `yaml:"restitution"`
	Friction          float64 `yaml:"friction"`
	CollisionResponse bool    `yaml:"collision_response"`
	EatEnabled        bool    `yaml:"eat_enabled"`
	MomentumFactor    float64 `yaml:"momentum_factor"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario: "pile",
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Grid: GridConfig{
			CellSize: DefaultCellSize,
			NumCells: DefaultNumCells,
		},
		Physics: TuningConfig{
			GravityY:          -98.0,
			Restitution:       DefaultRestitution,
			Friction:          DefaultFriction,
			CollisionResponse: true,
			MomentumFactor:    DefaultMomentumFactor,
		},
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
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %v", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", c.Duration)
	}
	if c.Grid.CellSize <= 0 {
		return fmt.Errorf("grid cell_size must be positive, got %v", c.Grid.CellSize)
	}
	if c.Grid.NumCells <= 0 {
		return fmt.Errorf("grid num_cells must be positive, got %v", c.Grid.NumCells)
	}
	if c.Physics.Restitution < 0 || c.Physics.Restitution > 1 {
		return fmt.Errorf("restitution must be in [0,1], got %v", c.Physics.Restitution)
	}
	if c.Physics.Friction < 0 || c.Physics.Friction > 1 {
		return fmt.Errorf("friction must be in [0,1], got %v", c.Physics.Friction)
	}
	if c.Physics.MomentumFactor < 0 || c.Physics.MomentumFactor > 1 {
		return fmt.Errorf("momentum_factor must be in [0,1], got %v", c.Physics.MomentumFactor)
	}
	return nil
}
