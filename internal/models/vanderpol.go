package models

import "github.com/san-kum/cosim/internal/dynamo"

// VanDerPol is the forced Van der Pol oscillator, state [x, y]:
//
//	dx/dt = y
//	dy/dt = mu(1 - x²)y - x + force
type VanDerPol struct {
	Mu float64
}

func NewVanDerPol() *VanDerPol {
	return &VanDerPol{Mu: 1.0}
}

func (v *VanDerPol) StateDim() int   { return 2 }
func (v *VanDerPol) ControlDim() int { return 1 }

func (v *VanDerPol) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{
		x[1],
		v.Mu*(1-x[0]*x[0])*x[1] - x[0] + input(u, 0),
	}
}

func (v *VanDerPol) params() map[string]*float64 {
	return map[string]*float64{"mu": &v.Mu}
}

func (v *VanDerPol) GetParams() map[string]float64 { return getParams(v.params()) }

func (v *VanDerPol) SetParam(name string, value float64) error {
	return setParam(v.params(), name, value)
}

func (v *VanDerPol) Inputs() []dynamo.Port {
	return []dynamo.Port{{Name: "force", Unit: "1"}}
}

func (v *VanDerPol) Outputs() []dynamo.Port {
	return []dynamo.Port{{Name: "x", Unit: "1"}, {Name: "y", Unit: "1"}}
}

func (v *VanDerPol) Output(name string, x dynamo.State) (float64, bool) {
	switch name {
	case "x":
		return x[0], true
	case "y":
		return x[1], true
	}
	return 0, false
}

// InitialState starts on the classic (2, 0) unless overridden.
func (v *VanDerPol) InitialState(init map[string]float64) dynamo.State {
	x := dynamo.State{2, 0}
	if val, ok := init["x"]; ok {
		x[0] = val
	}
	if val, ok := init["y"]; ok {
		x[1] = val
	}
	return x
}
