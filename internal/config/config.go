package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/odelab/odelab/internal/integrators"
	"github.com/odelab/odelab/internal/systems"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 10.0
	DefaultSystem   = "harmonic"
	DefaultMethod   = "rk4"
)

// Config is the on-disk run description. X0 may be left empty to use
// the system's canonical initial state, and Params overrides system
// parameters by name.
type Config struct {
	System        string             `yaml:"system"`
	Method        string             `yaml:"method"`
	Dt            float64            `yaml:"dt"`
	Duration      float64            `yaml:"duration"`
	T0            float64            `yaml:"t0"`
	X0            []float64          `yaml:"x0,omitempty"`
	Params        map[string]float64 `yaml:"params,omitempty"`
	Seed          int64              `yaml:"seed"`
	MaxSteps      int                `yaml:"max_steps"`
	ValidateState bool               `yaml:"validate_state"`
}

func Default() *Config {
	return &Config{
		System:        DefaultSystem,
		Method:        DefaultMethod,
		Dt:            DefaultDt,
		Duration:      DefaultDuration,
		ValidateState: true,
	}
}

// Load reads a yaml file over the defaults, so absent keys keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
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

// Validate checks the run description against the catalogs; parameter
// names are left to the system to reject at build time.
func (c *Config) Validate() error {
	if _, err := systems.ByName(c.System); err != nil {
		return err
	}
	if _, err := integrators.ByName(c.Method); err != nil {
		return err
	}
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("max steps must be non-negative, got %d", c.MaxSteps)
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.X0 != nil {
		out.X0 = append([]float64(nil), c.X0...)
	}
	if c.Params != nil {
		out.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	return &out
}
