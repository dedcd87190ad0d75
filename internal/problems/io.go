package problems

import (
	"fmt"
	"math"

	"github.com/san-kum/cosim/internal/dynamo"
	"github.com/san-kum/cosim/internal/icoco"
)

const (
	valueSteps = "steps"
	valueModel = "model"

	fieldControl = "control"
	fieldState   = "state"
)

func findPort(ports []dynamo.Port, name string) (dynamo.Port, bool) {
	for _, p := range ports {
		if p.Name == name {
			return p, true
		}
	}
	return dynamo.Port{}, false
}

func portNames(ports []dynamo.Port) []string {
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.Name
	}
	return names
}

func (p *ODEProblem) unknown(method, arg, name string) error {
	return icoco.NewWrongArgument(p.Name(), method, arg, fmt.Sprintf("unknown name %q", name))
}

// current is the state outputs are read from: the trial solution once the
// open step has been computed, the validated state otherwise.
func (p *ODEProblem) current() dynamo.State {
	if p.inside && p.computed {
		return p.trial
	}
	return p.x
}

func (p *ODEProblem) GetInputValuesNames() ([]string, error) {
	return portNames(p.model.Inputs()), nil
}

func (p *ODEProblem) GetOutputValuesNames() ([]string, error) {
	return append(portNames(p.model.Outputs()), valueSteps, valueModel), nil
}

func (p *ODEProblem) GetValueType(name string) (icoco.ValueType, error) {
	switch name {
	case valueSteps:
		return icoco.Int, nil
	case valueModel:
		return icoco.String, nil
	}
	if _, ok := findPort(p.model.Inputs(), name); ok {
		return icoco.Double, nil
	}
	if _, ok := findPort(p.model.Outputs(), name); ok {
		return icoco.Double, nil
	}
	return 0, p.unknown("getValueType", "name", name)
}

func (p *ODEProblem) GetValueUnit(name string) (string, error) {
	switch name {
	case valueSteps, valueModel:
		return "", nil
	}
	if port, ok := findPort(p.model.Inputs(), name); ok {
		return port.Unit, nil
	}
	if port, ok := findPort(p.model.Outputs(), name); ok {
		return port.Unit, nil
	}
	return "", p.unknown("getValueUnit", "name", name)
}

// SetInputDoubleValue stores an input. Inside a time step the value only
// lives until ValidateTimeStep or AbortTimeStep.
func (p *ODEProblem) SetInputDoubleValue(name string, v float64) error {
	const method = "setInputDoubleValue"
	if _, ok := findPort(p.model.Inputs(), name); !ok {
		return p.unknown(method, "name", name)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return icoco.NewWrongArgument(p.Name(), method, "val", "value must be finite")
	}
	if p.inside {
		p.stepInputs[name] = v
	} else {
		p.inputs[name] = v
	}
	return nil
}

func (p *ODEProblem) GetOutputDoubleValue(name string) (float64, error) {
	v, ok := p.model.Output(name, p.current())
	if !ok {
		return 0, p.unknown("getOutputDoubleValue", "name", name)
	}
	return v, nil
}

func (p *ODEProblem) SetInputIntValue(name string, v int) error {
	return p.unknown("setInputIntValue", "name", name)
}

func (p *ODEProblem) GetOutputIntValue(name string) (int, error) {
	if name != valueSteps {
		return 0, p.unknown("getOutputIntValue", "name", name)
	}
	return p.steps, nil
}

func (p *ODEProblem) SetInputStringValue(name string, v string) error {
	return p.unknown("setInputStringValue", "name", name)
}

func (p *ODEProblem) GetOutputStringValue(name string) (string, error) {
	if name != valueModel {
		return "", p.unknown("getOutputStringValue", "name", name)
	}
	return p.opts.ModelName, nil
}

func (p *ODEProblem) GetInputFieldsNames() ([]string, error) {
	return []string{fieldControl}, nil
}

func (p *ODEProblem) GetOutputFieldsNames() ([]string, error) {
	return []string{fieldState}, nil
}

func (p *ODEProblem) GetFieldType(name string) (icoco.ValueType, error) {
	if name != fieldControl && name != fieldState {
		return 0, p.unknown("getFieldType", "name", name)
	}
	return icoco.Double, nil
}

// GetMeshUnit: the support of every field is a single point.
func (p *ODEProblem) GetMeshUnit() (string, error) { return "1", nil }

func (p *ODEProblem) GetFieldUnit(name string) (string, error) {
	if name != fieldControl && name != fieldState {
		return "", p.unknown("getFieldUnit", "name", name)
	}
	return "1", nil
}

func (p *ODEProblem) GetInputDoubleFieldTemplate(name string) (*icoco.DoubleField, error) {
	if name != fieldControl {
		return nil, p.unknown("getInputMEDDoubleFieldTemplate", "name", name)
	}
	return &icoco.DoubleField{Name: fieldControl, Unit: "1", Values: make([]float64, p.model.ControlDim())}, nil
}

func (p *ODEProblem) SetInputDoubleField(name string, f *icoco.DoubleField) error {
	const method = "setInputMEDDoubleField"
	if name != fieldControl {
		return p.unknown(method, "name", name)
	}
	ports := p.model.Inputs()
	if f == nil || f.Len() != len(ports) {
		return icoco.NewWrongArgument(p.Name(), method, "afield",
			fmt.Sprintf("expected %d values", len(ports)))
	}
	// all or nothing
	for i, v := range f.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return icoco.NewWrongArgument(p.Name(), method, "afield",
				fmt.Sprintf("value %d (%s) must be finite", i, ports[i].Name))
		}
	}
	for i, port := range ports {
		if err := p.SetInputDoubleValue(port.Name, f.Values[i]); err != nil {
			return err
		}
	}
	return nil
}

func (p *ODEProblem) GetOutputDoubleField(name string) (*icoco.DoubleField, error) {
	if name != fieldState {
		return nil, p.unknown("getOutputMEDDoubleField", "name", name)
	}
	x := p.current()
	return &icoco.DoubleField{Name: fieldState, Unit: "1", Values: x.Clone()}, nil
}

func (p *ODEProblem) UpdateOutputDoubleField(name string, f *icoco.DoubleField) error {
	const method = "updateOutputMEDDoubleField"
	if name != fieldState {
		return p.unknown(method, "name", name)
	}
	x := p.current()
	if f == nil || f.Len() != len(x) {
		return icoco.NewWrongArgument(p.Name(), method, "afield",
			fmt.Sprintf("expected %d values", len(x)))
	}
	copy(f.Values, x)
	return nil
}
