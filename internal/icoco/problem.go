package icoco

// Mandatory is the operation set every conforming code must implement.
//
// Within this documentation the TIME_STEP_DEFINED context is the state a code
// is in after InitTimeStep and before ValidateTimeStep or AbortTimeStep.
// Values set inside that context are invalidated by ValidateTimeStep and
// AbortTimeStep; values set outside it are permanent until changed.
type Mandatory interface {
	// Initialize allocates internal resources. It is called once, after an
	// optional SetDataFile and SetComm, and not again before Terminate.
	// false is a recoverable failure: the caller may reconfigure and retry.
	// Unrecoverable failures are returned as errors.
	Initialize() (bool, error)

	// Terminate releases every resource. Illegal before Initialize, inside
	// the TIME_STEP_DEFINED context, and after a previous Terminate.
	Terminate() error

	// PresentTime returns the validated physical time. It only changes in
	// ValidateTimeStep and ResetTime.
	PresentTime() (float64, error)

	// ComputeTimeStep returns the preferred next time step and whether the
	// code wants to stop. Both are advisory. Illegal inside
	// TIME_STEP_DEFINED.
	ComputeTimeStep() (dt float64, stop bool, err error)

	// InitTimeStep proposes the interval [t, t+dt] and enters
	// TIME_STEP_DEFINED. dt must be >= 0. false means dt is not compatible
	// with the code's time scheme.
	InitTimeStep(dt float64) (bool, error)

	// SolveTimeStep computes the current interval. It is called at most once
	// per step; false means the computation failed (e.g. did not converge).
	SolveTimeStep() (bool, error)

	// ValidateTimeStep accepts the computed step: present time advances by
	// dt and the code leaves TIME_STEP_DEFINED.
	ValidateTimeStep() error

	// SetStationaryMode selects a steady-state (true) or transient (false)
	// computation. Illegal inside TIME_STEP_DEFINED. Persists until changed
	// or until a Terminate/Initialize cycle.
	SetStationaryMode(stationary bool) error

	// GetStationaryMode reports the mode chosen with SetStationaryMode.
	GetStationaryMode() (bool, error)
}

// Restorable is the save/restore capability. States are keyed by
// (label, method); method selects a code-defined storage mechanism.
type Restorable interface {
	Save(label int, method string) error
	Restore(label int, method string) error
	Forget(label int, method string) error
}

// FieldIO exchanges named fields with the code.
type FieldIO interface {
	GetInputFieldsNames() ([]string, error)
	GetOutputFieldsNames() ([]string, error)
	GetFieldType(name string) (ValueType, error)
	GetMeshUnit() (string, error)
	GetFieldUnit(name string) (string, error)

	GetInputDoubleFieldTemplate(name string) (*DoubleField, error)
	SetInputDoubleField(name string, f *DoubleField) error
	GetOutputDoubleField(name string) (*DoubleField, error)
	UpdateOutputDoubleField(name string, f *DoubleField) error

	GetInputIntFieldTemplate(name string) (*IntField, error)
	SetInputIntField(name string, f *IntField) error
	GetOutputIntField(name string) (*IntField, error)
	UpdateOutputIntField(name string, f *IntField) error

	GetInputStringFieldTemplate(name string) (*StringField, error)
	SetInputStringField(name string, f *StringField) error
	GetOutputStringField(name string) (*StringField, error)
	UpdateOutputStringField(name string, f *StringField) error
}

// ValueIO exchanges named scalar values with the code.
type ValueIO interface {
	GetInputValuesNames() ([]string, error)
	GetOutputValuesNames() ([]string, error)
	GetValueType(name string) (ValueType, error)
	GetValueUnit(name string) (string, error)

	SetInputDoubleValue(name string, v float64) error
	GetOutputDoubleValue(name string) (float64, error)
	SetInputIntValue(name string, v int) error
	GetOutputIntValue(name string) (int, error)
	SetInputStringValue(name string, v string) error
	GetOutputStringValue(name string) (string, error)
}

// Problem is the complete ICoCo operation set.
type Problem interface {
	Mandatory
	Restorable
	FieldIO
	ValueIO

	// Name identifies the instance in diagnostics.
	Name() string

	// SetDataFile provides the path of a data file. Called before Initialize.
	SetDataFile(path string) error
	// SetComm provides the parallel communicator. Called before Initialize.
	SetComm(comm Comm) error

	// IsStationary reports whether the solution is constant over the last
	// computed step.
	IsStationary() (bool, error)
	// AbortTimeStep drops the current step: time is unchanged and the code
	// leaves TIME_STEP_DEFINED.
	AbortTimeStep() error
	// ResetTime sets present time, outside TIME_STEP_DEFINED.
	ResetTime(t float64) error
	// IterateTimeStep performs one iteration of the current step. converged
	// reports that further iterations would not change the solution.
	IterateTimeStep() (succeeded, converged bool, err error)
}
