package icoco_test

import (
	"errors"

	"github.com/san-kum/cosim/internal/icoco"
)

// minimal mirrors the smallest conforming code: mandatory operations only.
type minimal struct {
	icoco.Base

	time       float64
	dt         float64
	stationary bool

	initOK  bool
	stepOK  bool
	solveOK bool
	failErr error
	timeErr error

	calls []string
}

func newMinimal() *minimal {
	return &minimal{
		Base:    icoco.NewBase("minimal"),
		initOK:  true,
		stepOK:  true,
		solveOK: true,
	}
}

func (m *minimal) record(method string) { m.calls = append(m.calls, method) }

func (m *minimal) Initialize() (bool, error) {
	m.record("initialize")
	m.time, m.dt, m.stationary = 0, 0, false
	return m.initOK, nil
}

func (m *minimal) Terminate() error {
	m.record("terminate")
	return nil
}

func (m *minimal) PresentTime() (float64, error) {
	m.record("presentTime")
	return m.time, m.timeErr
}

func (m *minimal) ComputeTimeStep() (float64, bool, error) {
	m.record("computeTimeStep")
	return 0.1, false, nil
}

func (m *minimal) InitTimeStep(dt float64) (bool, error) {
	m.record("initTimeStep")
	m.dt = dt
	return m.stepOK, nil
}

func (m *minimal) SolveTimeStep() (bool, error) {
	m.record("solveTimeStep")
	if m.failErr != nil {
		return false, m.failErr
	}
	return m.solveOK, nil
}

func (m *minimal) ValidateTimeStep() error {
	m.record("validateTimeStep")
	m.time += m.dt
	return nil
}

func (m *minimal) SetStationaryMode(stationary bool) error {
	m.record("setStationaryMode")
	m.stationary = stationary
	return nil
}

func (m *minimal) GetStationaryMode() (bool, error) {
	m.record("getStationaryMode")
	return m.stationary, nil
}

// full adds the optional time-step operations on top of minimal.
type full struct {
	*minimal
	resetErr error
	saved    map[int]float64
}

func newFull() *full {
	return &full{minimal: newMinimal(), saved: make(map[int]float64)}
}

func (f *full) AbortTimeStep() error {
	f.record("abortTimeStep")
	f.dt = 0
	return nil
}

func (f *full) ResetTime(t float64) error {
	f.record("resetTime")
	if f.resetErr != nil {
		return f.resetErr
	}
	f.time = t
	return nil
}

func (f *full) IterateTimeStep() (bool, bool, error) {
	f.record("iterateTimeStep")
	return true, true, nil
}

func (f *full) IsStationary() (bool, error) {
	f.record("isStationary")
	return f.stationary, nil
}

func (f *full) Save(label int, method string) error {
	f.record("save")
	f.saved[label] = f.time
	return nil
}

func (f *full) Restore(label int, method string) error {
	f.record("restore")
	t, ok := f.saved[label]
	if !ok {
		return icoco.NewWrongArgument(f.Name(), "restore", "label", "no state saved under this label")
	}
	f.time = t
	return nil
}

func (f *full) Forget(label int, method string) error {
	f.record("forget")
	delete(f.saved, label)
	return nil
}

func (f *full) GetOutputValuesNames() ([]string, error) {
	return []string{"temperature"}, nil
}

func (f *full) GetOutputDoubleValue(name string) (float64, error) {
	if name != "temperature" {
		return 0, icoco.NewWrongArgument(f.Name(), "getOutputDoubleValue", "name", "unknown value "+name)
	}
	return 300, nil
}

var errSolverCrashed = errors.New("solver crashed")
