package models

import (
	"fmt"

	"github.com/san-kum/cosim/internal/dynamo"
)

const (
	DefaultMass      = 1.0
	DefaultStiffness = 10.0
	DefaultDamping   = 0.5
)

// SpringMass is a single damped mass on a spring under an external force.
// State: [pos, vel].
type SpringMass struct {
	Mass      float64
	Stiffness float64
	Damping   float64
}

func NewSpringMass() *SpringMass {
	return &SpringMass{
		Mass:      DefaultMass,
		Stiffness: DefaultStiffness,
		Damping:   DefaultDamping,
	}
}

func (s *SpringMass) StateDim() int   { return 2 }
func (s *SpringMass) ControlDim() int { return 1 }

func (s *SpringMass) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	pos, vel := x[0], x[1]
	force := -s.Stiffness*pos - s.Damping*vel + input(u, 0)
	return dynamo.State{vel, force / s.Mass}
}

func (s *SpringMass) Energy(x dynamo.State) float64 {
	pos, vel := x[0], x[1]
	return 0.5*s.Mass*vel*vel + 0.5*s.Stiffness*pos*pos
}

func (s *SpringMass) params() map[string]*float64 {
	return map[string]*float64{"mass": &s.Mass, "stiffness": &s.Stiffness, "damping": &s.Damping}
}

func (s *SpringMass) GetParams() map[string]float64 { return getParams(s.params()) }

func (s *SpringMass) SetParam(name string, value float64) error {
	if name == "mass" && value <= 0 {
		return fmt.Errorf("%w: mass must be positive", dynamo.ErrParameterBounds)
	}
	return setParam(s.params(), name, value)
}

func (s *SpringMass) Inputs() []dynamo.Port {
	return []dynamo.Port{{Name: "force", Unit: "N"}}
}

func (s *SpringMass) Outputs() []dynamo.Port {
	return []dynamo.Port{
		{Name: "pos", Unit: "m"},
		{Name: "vel", Unit: "m/s"},
		{Name: "energy", Unit: "J"},
	}
}

func (s *SpringMass) Output(name string, x dynamo.State) (float64, bool) {
	switch name {
	case "pos":
		return x[0], true
	case "vel":
		return x[1], true
	case "energy":
		return s.Energy(x), true
	}
	return 0, false
}

func (s *SpringMass) InitialState(init map[string]float64) dynamo.State {
	x := dynamo.State{0, 0}
	if v, ok := init["pos"]; ok {
		x[0] = v
	}
	if v, ok := init["vel"]; ok {
		x[1] = v
	}
	return x
}
