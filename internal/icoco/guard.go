package icoco

import (
	"fmt"
	"log/slog"
	"os"
)

// Guard wraps a Problem and enforces the ICoCo call ordering. It never
// alters results; it rejects illegal calls before they reach the wrapped
// code and tracks present time, the open step and the stationary flag.
type Guard struct {
	impl      Problem
	ctx       *stepContext
	dataFile  bool
	comm      bool
	observers []Observer
	logger    *slog.Logger
}

type Option func(*Guard)

func WithObserver(o Observer) Option {
	return func(g *Guard) { g.observers = append(g.observers, o) }
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) { g.logger = l }
}

func Wrap(p Problem, opts ...Option) *Guard {
	g := &Guard{impl: p, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var _ Problem = (*Guard)(nil)

func (g *Guard) Name() string { return g.impl.Name() }

// Unwrap returns the guarded implementation.
func (g *Guard) Unwrap() Problem { return g.impl }

func (g *Guard) State() State {
	switch {
	case g.ctx == nil:
		return Uninitialized
	case g.ctx.inside:
		return StepDefined
	default:
		return Ready
	}
}

// ICoCoMajorVersion returns the major version of the interface.
func (g *Guard) ICoCoMajorVersion() int { return MajorVersion }

// PendingDt returns the dt of the open step.
func (g *Guard) PendingDt() (float64, error) {
	if err := g.requireStep("pendingDt"); err != nil {
		return 0, err
	}
	return g.ctx.dt, nil
}

func (g *Guard) requireInitialized(method string) error {
	if g.ctx == nil {
		return NewWrongContext(g.Name(), method, PreBeforeInitialize)
	}
	return nil
}

func (g *Guard) requireReady(method string) error {
	if err := g.requireInitialized(method); err != nil {
		return err
	}
	if g.ctx.inside {
		return NewWrongContext(g.Name(), method, PreInsideStep)
	}
	return nil
}

func (g *Guard) requireStep(method string) error {
	if err := g.requireInitialized(method); err != nil {
		return err
	}
	if !g.ctx.inside {
		return NewWrongContext(g.Name(), method, PreOutsideStep)
	}
	return nil
}

func (g *Guard) notify(method string, err error) {
	c := Call{Problem: g.Name(), Method: method, State: g.State(), Err: err}
	if g.ctx != nil {
		c.Time = g.ctx.time
	}
	if err != nil {
		g.logger.Debug("icoco call rejected", "problem", c.Problem, "method", method, "state", c.State.String(), "error", err)
	} else {
		g.logger.Debug("icoco call", "problem", c.Problem, "method", method, "state", c.State.String(), "time", c.Time)
	}
	for _, o := range g.observers {
		o.OnCall(c)
	}
}

func (g *Guard) SetDataFile(path string) (err error) {
	const method = "setDataFile"
	defer func() { g.notify(method, err) }()

	if _, statErr := os.Stat(path); statErr != nil {
		return NewWrongArgument(g.Name(), method, "datafile", "invalid path is provided")
	}
	if g.ctx != nil {
		return NewWrongContext(g.Name(), method, PreAfterInitialize)
	}
	if g.dataFile {
		return NewWrongContext(g.Name(), method, PreMultipleTimes)
	}
	if err = g.impl.SetDataFile(path); err != nil {
		return err
	}
	g.dataFile = true
	return nil
}

func (g *Guard) SetComm(comm Comm) (err error) {
	const method = "setMPIComm"
	defer func() { g.notify(method, err) }()

	if g.ctx != nil {
		return NewWrongContext(g.Name(), method, PreAfterInitialize)
	}
	if g.comm {
		return NewWrongContext(g.Name(), method, PreMultipleTimes)
	}
	if err = g.impl.SetComm(comm); err != nil {
		return err
	}
	g.comm = true
	return nil
}

// Initialize creates the time-step context when the code reports success.
// A false result leaves the guard uninitialized so the caller can retry.
func (g *Guard) Initialize() (ok bool, err error) {
	const method = "initialize"
	defer func() { g.notify(method, err) }()

	if g.ctx != nil {
		return false, NewWrongContext(g.Name(), method, PreInitialized)
	}
	ok, err = g.impl.Initialize()
	if err != nil || !ok {
		return ok, err
	}
	g.ctx = &stepContext{}
	return true, nil
}

func (g *Guard) Terminate() (err error) {
	const method = "terminate"
	defer func() { g.notify(method, err) }()

	if err = g.requireReady(method); err != nil {
		return err
	}
	if err = g.impl.Terminate(); err != nil {
		return err
	}
	g.ctx = nil
	g.dataFile = false
	g.comm = false
	return nil
}

func (g *Guard) PresentTime() (t float64, err error) {
	const method = "presentTime"
	defer func() { g.notify(method, err) }()

	if err = g.requireInitialized(method); err != nil {
		return 0, err
	}
	return g.ctx.time, nil
}

func (g *Guard) ComputeTimeStep() (dt float64, stop bool, err error) {
	const method = "computeTimeStep"
	defer func() { g.notify(method, err) }()

	if err = g.requireReady(method); err != nil {
		return 0, false, err
	}
	return g.impl.ComputeTimeStep()
}

// InitTimeStep enters the step whatever the code answers: a false result
// still has to be closed with AbortTimeStep before another attempt.
func (g *Guard) InitTimeStep(dt float64) (ok bool, err error) {
	const method = "initTimeStep"
	defer func() { g.notify(method, err) }()

	if !(dt >= 0) {
		return false, NewWrongArgument(g.Name(), method, "dt", fmt.Sprintf("dt=%v is invalid (dt < 0.0)", dt))
	}
	if err = g.requireReady(method); err != nil {
		return false, err
	}
	ok, err = g.impl.InitTimeStep(dt)
	g.ctx.initializeStep(dt)
	return ok, err
}

func (g *Guard) SolveTimeStep() (ok bool, err error) {
	const method = "solveTimeStep"
	defer func() { g.notify(method, err) }()

	if err = g.requireStep(method); err != nil {
		return false, err
	}
	if g.ctx.solved {
		return false, NewWrongContext(g.Name(), method, PreAlreadySolved)
	}
	ok, err = g.impl.SolveTimeStep()
	if err == nil {
		g.ctx.solved = true
	}
	return ok, err
}

func (g *Guard) ValidateTimeStep() (err error) {
	const method = "validateTimeStep"
	defer func() { g.notify(method, err) }()

	if err = g.requireStep(method); err != nil {
		return err
	}
	err = g.impl.ValidateTimeStep()
	g.ctx.validateStep()
	return err
}

func (g *Guard) AbortTimeStep() (err error) {
	const method = "abortTimeStep"
	defer func() { g.notify(method, err) }()

	if err = g.requireStep(method); err != nil {
		return err
	}
	err = g.impl.AbortTimeStep()
	g.ctx.abortStep()
	return err
}

func (g *Guard) SetStationaryMode(stationary bool) (err error) {
	const method = "setStationaryMode"
	defer func() { g.notify(method, err) }()

	if err = g.requireReady(method); err != nil {
		return err
	}
	if err = g.impl.SetStationaryMode(stationary); err != nil {
		return err
	}
	g.ctx.stationary = stationary
	return nil
}

func (g *Guard) GetStationaryMode() (stationary bool, err error) {
	const method = "getStationaryMode"
	defer func() { g.notify(method, err) }()

	if err = g.requireReady(method); err != nil {
		return false, err
	}
	return g.ctx.stationary, nil
}

func (g *Guard) IsStationary() (stationary bool, err error) {
	const method = "isStationary"
	defer func() { g.notify(method, err) }()

	if err = g.requireReady(method); err != nil {
		return false, err
	}
	return g.impl.IsStationary()
}

func (g *Guard) ResetTime(t float64) (err error) {
	const method = "resetTime"
	defer func() { g.notify(method, err) }()

	if err = g.requireReady(method); err != nil {
		return err
	}
	if err = g.impl.ResetTime(t); err != nil {
		return err
	}
	g.ctx.resetTime(t)
	return nil
}

func (g *Guard) IterateTimeStep() (succeeded, converged bool, err error) {
	const method = "iterateTimeStep"
	defer func() { g.notify(method, err) }()

	if err = g.requireStep(method); err != nil {
		return false, false, err
	}
	if g.ctx.solved {
		return false, false, NewWrongContext(g.Name(), method, PreAlreadySolved)
	}
	return g.impl.IterateTimeStep()
}

func (g *Guard) Save(label int, saveMethod string) (err error) {
	const method = "save"
	defer func() { g.notify(method, err) }()

	if err = g.requireReady(method); err != nil {
		return err
	}
	return g.impl.Save(label, saveMethod)
}

func (g *Guard) Restore(label int, saveMethod string) (err error) {
	const method = "restore"
	defer func() { g.notify(method, err) }()

	if err = g.requireReady(method); err != nil {
		return err
	}
	if err = g.impl.Restore(label, saveMethod); err != nil {
		return err
	}
	// the restored state carries its own time; the stationary mode stays
	t, err := g.impl.PresentTime()
	if err != nil {
		return fmt.Errorf("present time after restore: %w", err)
	}
	g.ctx.time = t
	return nil
}

func (g *Guard) Forget(label int, saveMethod string) (err error) {
	const method = "forget"
	defer func() { g.notify(method, err) }()

	if err = g.requireInitialized(method); err != nil {
		return err
	}
	return g.impl.Forget(label, saveMethod)
}
