package icoco

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	wc := NewWrongContext("heat", "initTimeStep", PreInsideStep)
	assert.Equal(t,
		"WrongContext in Problem instance with name: 'heat'\n in method 'initTimeStep' : "+PreInsideStep,
		wc.Error())

	wa := NewWrongArgument("heat", "initTimeStep", "dt", "dt=-1 is invalid (dt < 0.0)")
	assert.Equal(t,
		"WrongArgument in Problem instance with name: 'heat'\n in method 'initTimeStep', argument 'dt' : dt=-1 is invalid (dt < 0.0)",
		wa.Error())

	ni := NewNotImplemented("heat", "save")
	assert.Equal(t, "NotImplemented in Problem instance with name: 'heat'\n in method 'save'", ni.Error())
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		is       func(error) bool
	}{
		{"wrong context", NewWrongContext("p", "m", "c"), ErrWrongContext, IsWrongContext},
		{"wrong argument", NewWrongArgument("p", "m", "a", "c"), ErrWrongArgument, IsWrongArgument},
		{"not implemented", NewNotImplemented("p", "m"), ErrNotImplemented, IsNotImplemented},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("step 3: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.sentinel))
			assert.True(t, tt.is(wrapped))
		})
	}

	assert.False(t, IsWrongContext(NewWrongArgument("p", "m", "a", "c")))
	assert.False(t, errors.Is(NewNotImplemented("p", "m"), ErrWrongContext))
	assert.False(t, IsNotImplemented(nil))
}

func TestValueTypeString(t *testing.T) {
	assert.Equal(t, "Double", Double.String())
	assert.Equal(t, "Int", Int.String())
	assert.Equal(t, "String", String.String())
	assert.Equal(t, "ValueType(7)", ValueType(7).String())

	vt, err := ParseValueType("int")
	assert.NoError(t, err)
	assert.Equal(t, Int, vt)

	_, err = ParseValueType("complex")
	assert.Error(t, err)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "UNINITIALIZED", Uninitialized.String())
	assert.Equal(t, "READY", Ready.String())
	assert.Equal(t, "STEP_DEFINED", StepDefined.String())
}
