package models

import (
	"fmt"
	"sort"

	"github.com/san-kum/cosim/internal/dynamo"
)

// Model is a dynamical system with named inputs and outputs. Inputs are
// index-aligned with the control vector.
type Model interface {
	dynamo.System

	GetParams() map[string]float64
	SetParam(name string, value float64) error

	Inputs() []dynamo.Port
	Outputs() []dynamo.Port
	// Output evaluates a named output on a state.
	Output(name string, x dynamo.State) (float64, bool)
	// InitialState builds x0 from named initial values; missing names keep
	// their defaults.
	InitialState(init map[string]float64) dynamo.State
}

var constructors = map[string]func() Model{
	"pendulum":    func() Model { return NewPendulum() },
	"spring_mass": func() Model { return NewSpringMass() },
	"relaxation":  func() Model { return NewRelaxation() },
	"pi":          func() Model { return NewPI() },
	"vanderpol":   func() Model { return NewVanDerPol() },
}

func New(name string) (Model, error) {
	fn, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func setParam(params map[string]*float64, name string, value float64) error {
	p, ok := params[name]
	if !ok {
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParameter, name)
	}
	*p = value
	return nil
}

func getParams(params map[string]*float64) map[string]float64 {
	out := make(map[string]float64, len(params))
	for k, v := range params {
		out[k] = *v
	}
	return out
}

func input(u dynamo.Control, i int) float64 {
	if i < len(u) {
		return u[i]
	}
	return 0
}
