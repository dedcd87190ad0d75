package icoco

// Field and value I/O is legal anywhere between Initialize and Terminate.

func initialized[T any](g *Guard, method string, fn func() (T, error)) (v T, err error) {
	defer func() { g.notify(method, err) }()

	if err = g.requireInitialized(method); err != nil {
		return v, err
	}
	return fn()
}

func (g *Guard) initializedDo(method string, fn func() error) (err error) {
	defer func() { g.notify(method, err) }()

	if err = g.requireInitialized(method); err != nil {
		return err
	}
	return fn()
}

func (g *Guard) GetInputFieldsNames() ([]string, error) {
	return initialized(g, "getInputFieldsNames", g.impl.GetInputFieldsNames)
}

func (g *Guard) GetOutputFieldsNames() ([]string, error) {
	return initialized(g, "getOutputFieldsNames", g.impl.GetOutputFieldsNames)
}

func (g *Guard) GetFieldType(name string) (ValueType, error) {
	return initialized(g, "getFieldType", func() (ValueType, error) { return g.impl.GetFieldType(name) })
}

func (g *Guard) GetMeshUnit() (string, error) {
	return initialized(g, "getMeshUnit", g.impl.GetMeshUnit)
}

func (g *Guard) GetFieldUnit(name string) (string, error) {
	return initialized(g, "getFieldUnit", func() (string, error) { return g.impl.GetFieldUnit(name) })
}

func (g *Guard) GetInputDoubleFieldTemplate(name string) (*DoubleField, error) {
	return initialized(g, "getInputMEDDoubleFieldTemplate", func() (*DoubleField, error) {
		return g.impl.GetInputDoubleFieldTemplate(name)
	})
}

func (g *Guard) SetInputDoubleField(name string, f *DoubleField) error {
	return g.initializedDo("setInputMEDDoubleField", func() error { return g.impl.SetInputDoubleField(name, f) })
}

func (g *Guard) GetOutputDoubleField(name string) (*DoubleField, error) {
	return initialized(g, "getOutputMEDDoubleField", func() (*DoubleField, error) {
		return g.impl.GetOutputDoubleField(name)
	})
}

func (g *Guard) UpdateOutputDoubleField(name string, f *DoubleField) error {
	return g.initializedDo("updateOutputMEDDoubleField", func() error { return g.impl.UpdateOutputDoubleField(name, f) })
}

func (g *Guard) GetInputIntFieldTemplate(name string) (*IntField, error) {
	return initialized(g, "getInputMEDIntFieldTemplate", func() (*IntField, error) {
		return g.impl.GetInputIntFieldTemplate(name)
	})
}

func (g *Guard) SetInputIntField(name string, f *IntField) error {
	return g.initializedDo("setInputMEDIntField", func() error { return g.impl.SetInputIntField(name, f) })
}

func (g *Guard) GetOutputIntField(name string) (*IntField, error) {
	return initialized(g, "getOutputMEDIntField", func() (*IntField, error) {
		return g.impl.GetOutputIntField(name)
	})
}

func (g *Guard) UpdateOutputIntField(name string, f *IntField) error {
	return g.initializedDo("updateOutputMEDIntField", func() error { return g.impl.UpdateOutputIntField(name, f) })
}

func (g *Guard) GetInputStringFieldTemplate(name string) (*StringField, error) {
	return initialized(g, "getInputMEDStringFieldTemplate", func() (*StringField, error) {
		return g.impl.GetInputStringFieldTemplate(name)
	})
}

func (g *Guard) SetInputStringField(name string, f *StringField) error {
	return g.initializedDo("setInputMEDStringField", func() error { return g.impl.SetInputStringField(name, f) })
}

func (g *Guard) GetOutputStringField(name string) (*StringField, error) {
	return initialized(g, "getOutputMEDStringField", func() (*StringField, error) {
		return g.impl.GetOutputStringField(name)
	})
}

func (g *Guard) UpdateOutputStringField(name string, f *StringField) error {
	return g.initializedDo("updateOutputMEDStringField", func() error { return g.impl.UpdateOutputStringField(name, f) })
}

func (g *Guard) GetInputValuesNames() ([]string, error) {
	return initialized(g, "getInputValuesNames", g.impl.GetInputValuesNames)
}

func (g *Guard) GetOutputValuesNames() ([]string, error) {
	return initialized(g, "getOutputValuesNames", g.impl.GetOutputValuesNames)
}

func (g *Guard) GetValueType(name string) (ValueType, error) {
	return initialized(g, "getValueType", func() (ValueType, error) { return g.impl.GetValueType(name) })
}

func (g *Guard) GetValueUnit(name string) (string, error) {
	return initialized(g, "getValueUnit", func() (string, error) { return g.impl.GetValueUnit(name) })
}

func (g *Guard) SetInputDoubleValue(name string, v float64) error {
	return g.initializedDo("setInputDoubleValue", func() error { return g.impl.SetInputDoubleValue(name, v) })
}

func (g *Guard) GetOutputDoubleValue(name string) (float64, error) {
	return initialized(g, "getOutputDoubleValue", func() (float64, error) { return g.impl.GetOutputDoubleValue(name) })
}

func (g *Guard) SetInputIntValue(name string, v int) error {
	return g.initializedDo("setInputIntValue", func() error { return g.impl.SetInputIntValue(name, v) })
}

func (g *Guard) GetOutputIntValue(name string) (int, error) {
	return initialized(g, "getOutputIntValue", func() (int, error) { return g.impl.GetOutputIntValue(name) })
}

func (g *Guard) SetInputStringValue(name string, v string) error {
	return g.initializedDo("setInputStringValue", func() error { return g.impl.SetInputStringValue(name, v) })
}

func (g *Guard) GetOutputStringValue(name string) (string, error) {
	return initialized(g, "getOutputStringValue", func() (string, error) { return g.impl.GetOutputStringValue(name) })
}
