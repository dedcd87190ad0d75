package models

import (
	"fmt"
	"math"

	"github.com/san-kum/cosim/internal/dynamo"
)

// Pendulum is a damped pendulum driven by an external torque.
// State: [theta, omega].
type Pendulum struct {
	Mass    float64
	Length  float64
	Damping float64
	Gravity float64
}

func NewPendulum() *Pendulum {
	return &Pendulum{
		Mass:    1.0,
		Length:  1.0,
		Damping: 0.1,
		Gravity: 9.81,
	}
}

func (p *Pendulum) StateDim() int   { return 2 }
func (p *Pendulum) ControlDim() int { return 1 }

func (p *Pendulum) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	theta, omega := x[0], x[1]
	inertia := p.Mass * p.Length * p.Length
	alpha := (-p.Damping*omega - p.Mass*p.Gravity*p.Length*math.Sin(theta) + input(u, 0)) / inertia
	return dynamo.State{omega, alpha}
}

func (p *Pendulum) Energy(x dynamo.State) float64 {
	theta, omega := x[0], x[1]
	ke := 0.5 * p.Mass * p.Length * p.Length * omega * omega
	pe := p.Mass * p.Gravity * p.Length * (1 - math.Cos(theta))
	return ke + pe
}

func (p *Pendulum) params() map[string]*float64 {
	return map[string]*float64{
		"mass": &p.Mass, "length": &p.Length, "damping": &p.Damping, "gravity": &p.Gravity,
	}
}

func (p *Pendulum) GetParams() map[string]float64 { return getParams(p.params()) }

func (p *Pendulum) SetParam(name string, value float64) error {
	if (name == "mass" || name == "length") && value <= 0 {
		return fmt.Errorf("%w: %s must be positive", dynamo.ErrParameterBounds, name)
	}
	return setParam(p.params(), name, value)
}

func (p *Pendulum) Inputs() []dynamo.Port {
	return []dynamo.Port{{Name: "torque", Unit: "N.m"}}
}

func (p *Pendulum) Outputs() []dynamo.Port {
	return []dynamo.Port{
		{Name: "theta", Unit: "rad"},
		{Name: "omega", Unit: "rad/s"},
		{Name: "energy", Unit: "J"},
	}
}

func (p *Pendulum) Output(name string, x dynamo.State) (float64, bool) {
	switch name {
	case "theta":
		return x[0], true
	case "omega":
		return x[1], true
	case "energy":
		return p.Energy(x), true
	}
	return 0, false
}

func (p *Pendulum) InitialState(init map[string]float64) dynamo.State {
	x := dynamo.State{0.5, 0}
	if v, ok := init["theta"]; ok {
		x[0] = v
	}
	if v, ok := init["omega"]; ok {
		x[1] = v
	}
	return x
}
