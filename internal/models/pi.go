package models

import (
	"fmt"

	"github.com/san-kum/cosim/internal/dynamo"
)

// PI is a proportional-integral controller as a coupled problem. It
// tracks a first-order filtered measurement m (time constant Filter) and
// the integral i of the error e = setpoint - m:
//
//	dm/dt = (measurement - m) / filter
//	di/dt = setpoint - m
//	u     = kp*e + ki*i
type PI struct {
	Kp       float64
	Ki       float64
	Setpoint float64
	Filter   float64
}

func NewPI() *PI {
	return &PI{Kp: 10, Ki: 1, Filter: 0.05}
}

func (p *PI) StateDim() int   { return 2 }
func (p *PI) ControlDim() int { return 1 }

func (p *PI) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	m := x[0]
	return dynamo.State{(input(u, 0) - m) / p.Filter, p.Setpoint - m}
}

func (p *PI) params() map[string]*float64 {
	return map[string]*float64{"kp": &p.Kp, "ki": &p.Ki, "setpoint": &p.Setpoint, "filter": &p.Filter}
}

func (p *PI) GetParams() map[string]float64 { return getParams(p.params()) }

func (p *PI) SetParam(name string, value float64) error {
	if name == "filter" && value <= 0 {
		return fmt.Errorf("%w: filter must be positive", dynamo.ErrParameterBounds)
	}
	return setParam(p.params(), name, value)
}

func (p *PI) Inputs() []dynamo.Port {
	return []dynamo.Port{{Name: "measurement", Unit: "1"}}
}

func (p *PI) Outputs() []dynamo.Port {
	return []dynamo.Port{
		{Name: "u", Unit: "1"},
		{Name: "error", Unit: "1"},
		{Name: "integral", Unit: "1"},
	}
}

func (p *PI) Output(name string, x dynamo.State) (float64, bool) {
	e := p.Setpoint - x[0]
	switch name {
	case "u":
		return p.Kp*e + p.Ki*x[1], true
	case "error":
		return e, true
	case "integral":
		return x[1], true
	}
	return 0, false
}

func (p *PI) InitialState(init map[string]float64) dynamo.State {
	x := dynamo.State{0, 0}
	if v, ok := init["measurement"]; ok {
		x[0] = v
	}
	if v, ok := init["integral"]; ok {
		x[1] = v
	}
	return x
}
