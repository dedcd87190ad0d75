package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt            = 0.01
	DefaultDuration      = 10.0
	DefaultScheme        = "explicit"
	DefaultIntegrator    = "rk4"
	DefaultMinDt         = 1e-6
	DefaultMaxRetries    = 8
	DefaultTolerance     = 1e-8
	DefaultMaxIterations = 20
)

//go:embed schema.cue
var schemaSource string

var ErrInvalid = errors.New("config: invalid scenario")

// Config is a coupled scenario: the problems, how values flow between
// them and how the supervisor steps them.
type Config struct {
	Name          string           `yaml:"name" json:"name"`
	Description   string           `yaml:"description,omitempty" json:"description,omitempty"`
	Scheme        string           `yaml:"scheme" json:"scheme"`
	Dt            float64          `yaml:"dt" json:"dt"`
	Duration      float64          `yaml:"duration" json:"duration"`
	MinDt         float64          `yaml:"min_dt" json:"min_dt,omitempty"`
	MaxRetries    int              `yaml:"max_retries" json:"max_retries"`
	Tolerance     float64          `yaml:"tolerance" json:"tolerance,omitempty"`
	MaxIterations int              `yaml:"max_iterations" json:"max_iterations,omitempty"`
	Checkpoints   string           `yaml:"checkpoints,omitempty" json:"checkpoints,omitempty"`
	Problems      []ProblemConfig  `yaml:"problems" json:"problems"`
	Exchanges     []ExchangeConfig `yaml:"exchanges,omitempty" json:"exchanges,omitempty"`
}

type ProblemConfig struct {
	Name       string             `yaml:"name" json:"name"`
	Model      string             `yaml:"model" json:"model"`
	Integrator string             `yaml:"integrator,omitempty" json:"integrator,omitempty"`
	Stationary bool               `yaml:"stationary,omitempty" json:"stationary,omitempty"`
	SubSteps   int                `yaml:"sub_steps,omitempty" json:"sub_steps,omitempty"`
	Dt         float64            `yaml:"dt,omitempty" json:"dt,omitempty"`
	MaxDt      float64            `yaml:"max_dt,omitempty" json:"max_dt,omitempty"`
	EndTime    float64            `yaml:"end_time,omitempty" json:"end_time,omitempty"`
	DataFile   string             `yaml:"data_file,omitempty" json:"data_file,omitempty"`
	Params     map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
	Init       map[string]float64 `yaml:"init,omitempty" json:"init,omitempty"`
}

type ExchangeConfig struct {
	From   string  `yaml:"from" json:"from"`
	Output string  `yaml:"output" json:"output"`
	To     string  `yaml:"to" json:"to"`
	Input  string  `yaml:"input" json:"input"`
	Scale  float64 `yaml:"scale,omitempty" json:"scale,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:          "default",
		Scheme:        DefaultScheme,
		Dt:            DefaultDt,
		Duration:      DefaultDuration,
		MinDt:         DefaultMinDt,
		MaxRetries:    DefaultMaxRetries,
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
		Problems: []ProblemConfig{
			{Name: "pendulum", Model: "pendulum", Integrator: DefaultIntegrator},
		},
	}
}

// Load reads a scenario over the defaults. A problems list in the file
// replaces the default one.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Problems = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.fill()
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) fill() {
	for i := range c.Problems {
		if c.Problems[i].Integrator == "" {
			c.Problems[i].Integrator = DefaultIntegrator
		}
	}
}

// Validate checks the scenario against the embedded CUE schema, then the
// cross references the schema cannot express.
func (c *Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	v := schema.LookupPath(cue.ParsePath("#Scenario")).Unify(ctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	names := make(map[string]bool, len(c.Problems))
	for _, p := range c.Problems {
		if names[p.Name] {
			return fmt.Errorf("%w: duplicate problem %q", ErrInvalid, p.Name)
		}
		names[p.Name] = true
	}
	for _, e := range c.Exchanges {
		if !names[e.From] {
			return fmt.Errorf("%w: exchange from unknown problem %q", ErrInvalid, e.From)
		}
		if !names[e.To] {
			return fmt.Errorf("%w: exchange to unknown problem %q", ErrInvalid, e.To)
		}
	}
	return nil
}

func (c *Config) Problem(name string) (ProblemConfig, bool) {
	for _, p := range c.Problems {
		if p.Name == name {
			return p, true
		}
	}
	return ProblemConfig{}, false
}
