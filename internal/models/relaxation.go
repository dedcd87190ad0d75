package models

import (
	"fmt"

	"github.com/san-kum/cosim/internal/dynamo"
)

// Relaxation is a first-order lag of a value toward an input target:
// dv/dt = (gain*target - v) / tau. Its steady state is v = gain*target.
type Relaxation struct {
	Tau  float64
	Gain float64
}

func NewRelaxation() *Relaxation {
	return &Relaxation{Tau: 1.0, Gain: 1.0}
}

func (r *Relaxation) StateDim() int   { return 1 }
func (r *Relaxation) ControlDim() int { return 1 }

func (r *Relaxation) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{(r.Gain*input(u, 0) - x[0]) / r.Tau}
}

func (r *Relaxation) params() map[string]*float64 {
	return map[string]*float64{"tau": &r.Tau, "gain": &r.Gain}
}

func (r *Relaxation) GetParams() map[string]float64 { return getParams(r.params()) }

func (r *Relaxation) SetParam(name string, value float64) error {
	if name == "tau" && value <= 0 {
		return fmt.Errorf("%w: tau must be positive", dynamo.ErrParameterBounds)
	}
	return setParam(r.params(), name, value)
}

func (r *Relaxation) Inputs() []dynamo.Port {
	return []dynamo.Port{{Name: "target", Unit: "1"}}
}

func (r *Relaxation) Outputs() []dynamo.Port {
	return []dynamo.Port{{Name: "value", Unit: "1"}}
}

func (r *Relaxation) Output(name string, x dynamo.State) (float64, bool) {
	if name == "value" {
		return x[0], true
	}
	return 0, false
}

func (r *Relaxation) InitialState(init map[string]float64) dynamo.State {
	x := dynamo.State{0}
	if v, ok := init["value"]; ok {
		x[0] = v
	}
	return x
}
