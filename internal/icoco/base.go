package icoco

// Base provides the identity of a problem and a NotImplemented body for
// every optional operation. Embed it and define the Mandatory methods; the
// embedding type then satisfies Problem.
type Base struct {
	ProblemName string
}

func NewBase(name string) Base { return Base{ProblemName: name} }

func (b *Base) Name() string { return b.ProblemName }

func (b *Base) unimplemented(method string) error {
	return NewNotImplemented(b.ProblemName, method)
}

func (b *Base) SetDataFile(path string) error { return b.unimplemented("setDataFile") }
func (b *Base) SetComm(comm Comm) error       { return b.unimplemented("setMPIComm") }

func (b *Base) IsStationary() (bool, error) { return false, b.unimplemented("isStationary") }
func (b *Base) AbortTimeStep() error        { return b.unimplemented("abortTimeStep") }
func (b *Base) ResetTime(t float64) error   { return b.unimplemented("resetTime") }

func (b *Base) IterateTimeStep() (bool, bool, error) {
	return false, false, b.unimplemented("iterateTimeStep")
}

func (b *Base) Save(label int, method string) error    { return b.unimplemented("save") }
func (b *Base) Restore(label int, method string) error { return b.unimplemented("restore") }
func (b *Base) Forget(label int, method string) error  { return b.unimplemented("forget") }

func (b *Base) GetInputFieldsNames() ([]string, error) {
	return nil, b.unimplemented("getInputFieldsNames")
}

func (b *Base) GetOutputFieldsNames() ([]string, error) {
	return nil, b.unimplemented("getOutputFieldsNames")
}

func (b *Base) GetFieldType(name string) (ValueType, error) {
	return 0, b.unimplemented("getFieldType")
}

func (b *Base) GetMeshUnit() (string, error) { return "", b.unimplemented("getMeshUnit") }

func (b *Base) GetFieldUnit(name string) (string, error) {
	return "", b.unimplemented("getFieldUnit")
}

func (b *Base) GetInputDoubleFieldTemplate(name string) (*DoubleField, error) {
	return nil, b.unimplemented("getInputMEDDoubleFieldTemplate")
}

func (b *Base) SetInputDoubleField(name string, f *DoubleField) error {
	return b.unimplemented("setInputMEDDoubleField")
}

func (b *Base) GetOutputDoubleField(name string) (*DoubleField, error) {
	return nil, b.unimplemented("getOutputMEDDoubleField")
}

func (b *Base) UpdateOutputDoubleField(name string, f *DoubleField) error {
	return b.unimplemented("updateOutputMEDDoubleField")
}

func (b *Base) GetInputIntFieldTemplate(name string) (*IntField, error) {
	return nil, b.unimplemented("getInputMEDIntFieldTemplate")
}

func (b *Base) SetInputIntField(name string, f *IntField) error {
	return b.unimplemented("setInputMEDIntField")
}

func (b *Base) GetOutputIntField(name string) (*IntField, error) {
	return nil, b.unimplemented("getOutputMEDIntField")
}

func (b *Base) UpdateOutputIntField(name string, f *IntField) error {
	return b.unimplemented("updateOutputMEDIntField")
}

func (b *Base) GetInputStringFieldTemplate(name string) (*StringField, error) {
	return nil, b.unimplemented("getInputMEDStringFieldTemplate")
}

func (b *Base) SetInputStringField(name string, f *StringField) error {
	return b.unimplemented("setInputMEDStringField")
}

func (b *Base) GetOutputStringField(name string) (*StringField, error) {
	return nil, b.unimplemented("getOutputMEDStringField")
}

func (b *Base) UpdateOutputStringField(name string, f *StringField) error {
	return b.unimplemented("updateOutputMEDStringField")
}

func (b *Base) GetInputValuesNames() ([]string, error) {
	return nil, b.unimplemented("getInputValuesNames")
}

func (b *Base) GetOutputValuesNames() ([]string, error) {
	return nil, b.unimplemented("getOutputValuesNames")
}

func (b *Base) GetValueType(name string) (ValueType, error) {
	return 0, b.unimplemented("getValueType")
}

func (b *Base) GetValueUnit(name string) (string, error) {
	return "", b.unimplemented("getValueUnit")
}

func (b *Base) SetInputDoubleValue(name string, v float64) error {
	return b.unimplemented("setInputDoubleValue")
}

func (b *Base) GetOutputDoubleValue(name string) (float64, error) {
	return 0, b.unimplemented("getOutputDoubleValue")
}

func (b *Base) SetInputIntValue(name string, v int) error {
	return b.unimplemented("setInputIntValue")
}

func (b *Base) GetOutputIntValue(name string) (int, error) {
	return 0, b.unimplemented("getOutputIntValue")
}

func (b *Base) SetInputStringValue(name string, v string) error {
	return b.unimplemented("setInputStringValue")
}

func (b *Base) GetOutputStringValue(name string) (string, error) {
	return "", b.unimplemented("getOutputStringValue")
}
