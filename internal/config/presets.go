package config

import (
	"maps"
	"slices"
	"sort"
)

func base(name, description string) *Config {
	cfg := DefaultConfig()
	cfg.Name = name
	cfg.Description = description
	cfg.Problems = nil
	return cfg
}

// Presets are ready-made scenarios, keyed by name.
var Presets = map[string]*Config{
	"feedback": func() *Config {
		cfg := base("feedback", "pendulum damped by a lagged torque feedback")
		cfg.Duration = 20.0
		cfg.Problems = []ProblemConfig{
			{Name: "pendulum", Model: "pendulum", Integrator: "rk4", Init: map[string]float64{"theta": 1.0}},
			{Name: "lag", Model: "relaxation", Integrator: "rk4", Params: map[string]float64{"tau": 0.2}},
		}
		cfg.Exchanges = []ExchangeConfig{
			{From: "pendulum", Output: "omega", To: "lag", Input: "target", Scale: -2.0},
			{From: "lag", Output: "value", To: "pendulum", Input: "torque"},
		}
		return cfg
	}(),
	"oscillators": func() *Config {
		cfg := base("oscillators", "two spring-mass systems pulling on each other, picard coupled")
		cfg.Scheme = "picard"
		cfg.Dt = 0.02
		cfg.Duration = 20.0
		cfg.Tolerance = 1e-10
		cfg.Problems = []ProblemConfig{
			{Name: "left", Model: "spring_mass", Integrator: "rk4", Init: map[string]float64{"pos": 1.0}},
			{Name: "right", Model: "spring_mass", Integrator: "rk4", Params: map[string]float64{"damping": 0.2}},
		}
		cfg.Exchanges = []ExchangeConfig{
			{From: "left", Output: "pos", To: "right", Input: "force", Scale: 3.0},
			{From: "right", Output: "pos", To: "left", Input: "force", Scale: 3.0},
		}
		return cfg
	}(),
	"steady": func() *Config {
		cfg := base("steady", "spring driven toward the steady state of a stationary lag")
		cfg.Duration = 10.0
		cfg.Problems = []ProblemConfig{
			{Name: "setpoint", Model: "relaxation", Integrator: "rk4", Stationary: true, Dt: 0.5,
				Params: map[string]float64{"gain": 4.0}},
			{Name: "spring", Model: "spring_mass", Integrator: "heun", SubSteps: 4},
		}
		cfg.Exchanges = []ExchangeConfig{
			{From: "spring", Output: "pos", To: "setpoint", Input: "target", Scale: -1.0},
			{From: "setpoint", Output: "value", To: "spring", Input: "force"},
		}
		return cfg
	}(),
	"regulator": func() *Config {
		cfg := base("regulator", "PI controller holding a spring-mass at a setpoint")
		cfg.Duration = 15.0
		cfg.Problems = []ProblemConfig{
			{Name: "plant", Model: "spring_mass", Integrator: "rk4", Params: map[string]float64{"damping": 0.5}},
			{Name: "controller", Model: "pi", Integrator: "rk4", Params: map[string]float64{"setpoint": 1.0, "kp": 5.0}},
		}
		cfg.Exchanges = []ExchangeConfig{
			{From: "plant", Output: "pos", To: "controller", Input: "measurement"},
			{From: "controller", Output: "u", To: "plant", Input: "force"},
		}
		return cfg
	}(),
	"entrained": func() *Config {
		cfg := base("entrained", "Van der Pol oscillator forced by a spring-mass")
		cfg.Duration = 30.0
		cfg.Problems = []ProblemConfig{
			{Name: "driver", Model: "spring_mass", Integrator: "rk4", Init: map[string]float64{"pos": 1.0}},
			{Name: "oscillator", Model: "vanderpol", Integrator: "rk4", Params: map[string]float64{"mu": 2.0}},
		}
		cfg.Exchanges = []ExchangeConfig{
			{From: "driver", Output: "pos", To: "oscillator", Input: "force", Scale: 0.5},
		}
		return cfg
	}(),
	"chain": func() *Config {
		cfg := base("chain", "three first-order lags in series")
		cfg.Dt = 0.05
		cfg.Duration = 15.0
		cfg.Problems = []ProblemConfig{
			{Name: "source", Model: "relaxation", Integrator: "euler", Init: map[string]float64{"value": 1.0}, Params: map[string]float64{"gain": 0}},
			{Name: "middle", Model: "relaxation", Integrator: "heun", Params: map[string]float64{"tau": 0.5}},
			{Name: "sink", Model: "relaxation", Integrator: "rk4", Params: map[string]float64{"tau": 2.0}},
		}
		cfg.Exchanges = []ExchangeConfig{
			{From: "source", Output: "value", To: "middle", Input: "target"},
			{From: "middle", Output: "value", To: "sink", Input: "target"},
		}
		return cfg
	}(),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Config) clone() *Config {
	out := *c
	out.Problems = slices.Clone(c.Problems)
	for i, p := range out.Problems {
		out.Problems[i].Params = maps.Clone(p.Params)
		out.Problems[i].Init = maps.Clone(p.Init)
	}
	out.Exchanges = slices.Clone(c.Exchanges)
	return &out
}
