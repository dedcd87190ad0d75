package problems

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/cosim/internal/dynamo"
	"github.com/san-kum/cosim/internal/icoco"
	"github.com/san-kum/cosim/internal/models"
	"github.com/san-kum/cosim/internal/storage"
)

const (
	DefaultDt            = 0.01
	DefaultSubSteps      = 1
	DefaultTolerance     = 1e-8
	DefaultMaxIterations = 10000
)

// Options configure an ODEProblem. Zero values select defaults.
type Options struct {
	Name       string
	ModelName  string
	Model      models.Model
	Integrator dynamo.Integrator

	// PreferredDt is the answer of ComputeTimeStep.
	PreferredDt float64
	// MaxDt bounds the accepted time step; 0 means unbounded.
	MaxDt float64
	// EndTime makes ComputeTimeStep ask to stop once reached; 0 means never.
	EndTime float64
	// SubSteps is the number of iterations a transient step is split into.
	SubSteps int
	// Tolerance is the stationary convergence threshold on |dx/dt|.
	Tolerance     float64
	MaxIterations int

	Params map[string]float64
	Init   map[string]float64

	// Checkpoints enables the "sqlite" save method.
	Checkpoints *storage.Checkpoints
}

// ODEProblem exposes a models.Model integrated by a dynamo.Integrator as an
// ICoCo code. Scalar inputs are the model's control channels; scalar outputs
// are the model's outputs plus "steps" (Int) and "model" (String).
type ODEProblem struct {
	icoco.Base

	opts     Options
	model    models.Model
	integ    dynamo.Integrator
	comm     icoco.Comm
	dataFile string

	initialized bool
	time        float64
	steps       int
	stationary  bool
	x           dynamo.State
	lastChange  float64

	// open step
	inside   bool
	accepted bool
	dt       float64
	trial    dynamo.State
	iter     int
	computed bool

	inputs     map[string]float64
	stepInputs map[string]float64

	memory map[int]snapshot
}

type snapshot struct {
	time   float64
	steps  int
	x      dynamo.State
	inputs map[string]float64
}

func New(opts Options) (*ODEProblem, error) {
	if opts.Model == nil {
		return nil, errors.New("problem needs a model")
	}
	if opts.Integrator == nil {
		return nil, errors.New("problem needs an integrator")
	}
	if opts.Name == "" {
		opts.Name = opts.ModelName
	}
	if opts.PreferredDt <= 0 {
		opts.PreferredDt = DefaultDt
	}
	if opts.SubSteps <= 0 {
		opts.SubSteps = DefaultSubSteps
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultTolerance
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	return &ODEProblem{
		Base:  icoco.NewBase(opts.Name),
		opts:  opts,
		model: opts.Model,
		integ: opts.Integrator,
		comm:  icoco.SingleProcess,
	}, nil
}

func (p *ODEProblem) Model() models.Model { return p.model }

func (p *ODEProblem) SetDataFile(path string) error {
	p.dataFile = path
	return nil
}

func (p *ODEProblem) SetComm(comm icoco.Comm) error {
	if comm != nil && comm.Size() > 1 {
		return icoco.NewWrongArgument(p.Name(), "setMPIComm", "mpicomm",
			fmt.Sprintf("sequential code cannot run on %d processes", comm.Size()))
	}
	if comm != nil {
		p.comm = comm
	}
	return nil
}

// Initialize applies the data file and parameters. An out-of-bounds
// parameter is a recoverable failure; an unreadable data file is not.
func (p *ODEProblem) Initialize() (bool, error) {
	if p.initialized {
		return false, icoco.NewWrongContext(p.Name(), "initialize", icoco.PreInitialized)
	}
	opts := p.opts
	if p.dataFile != "" {
		df, err := LoadDataFile(p.dataFile)
		if err != nil {
			return false, fmt.Errorf("%s: %w", p.Name(), err)
		}
		df.apply(&opts)
	}

	for name, v := range opts.Params {
		if err := p.model.SetParam(name, v); err != nil {
			if errors.Is(err, dynamo.ErrParameterBounds) {
				return false, nil
			}
			return false, fmt.Errorf("%s: %w", p.Name(), err)
		}
	}

	p.opts = opts
	p.time = 0
	p.steps = 0
	p.stationary = false
	p.lastChange = math.Inf(1)
	p.x = p.model.InitialState(opts.Init)
	p.inputs = make(map[string]float64)
	p.stepInputs = make(map[string]float64)
	p.memory = make(map[int]snapshot)
	p.closeStep()
	p.initialized = true
	return true, nil
}

func (p *ODEProblem) Terminate() error {
	p.initialized = false
	p.x = nil
	p.memory = nil
	p.closeStep()
	return nil
}

func (p *ODEProblem) PresentTime() (float64, error) {
	return p.time, nil
}

// ComputeTimeStep prefers the configured dt, shortened to land on EndTime.
func (p *ODEProblem) ComputeTimeStep() (float64, bool, error) {
	dt := p.opts.PreferredDt
	if p.opts.EndTime <= 0 {
		return dt, false, nil
	}
	remaining := p.opts.EndTime - p.time
	if remaining <= 1e-12*math.Max(1, p.opts.EndTime) {
		return dt, true, nil
	}
	return math.Min(dt, remaining), false, nil
}

func (p *ODEProblem) InitTimeStep(dt float64) (bool, error) {
	p.inside = true
	p.dt = dt
	p.trial = p.x.Clone()
	p.iter = 0
	p.computed = false
	p.accepted = true

	if p.opts.MaxDt > 0 && dt > p.opts.MaxDt {
		p.accepted = false
	}
	if dt == 0 && !p.stationary {
		p.accepted = false
	}
	return p.accepted, nil
}

func (p *ODEProblem) control() dynamo.Control {
	ports := p.model.Inputs()
	u := make(dynamo.Control, len(ports))
	for i, port := range ports {
		if v, ok := p.stepInputs[port.Name]; ok {
			u[i] = v
		} else {
			u[i] = p.inputs[port.Name]
		}
	}
	return u
}

// IterateTimeStep advances the trial solution by one sub-step (transient)
// or one pseudo-time relaxation step (stationary).
func (p *ODEProblem) IterateTimeStep() (bool, bool, error) {
	if !p.accepted {
		return false, false, nil
	}
	u := p.control()

	if p.stationary {
		// pseudo-time step, independent of the coupling dt
		p.trial = p.integ.Step(p.model, p.trial, u, p.time, p.opts.PreferredDt)
		p.iter++
		p.computed = true
		if !p.trial.IsValid() {
			return false, false, nil
		}
		return true, p.model.Derive(p.trial, u, p.time).Norm() < p.opts.Tolerance, nil
	}

	if p.iter >= p.opts.SubSteps {
		return true, true, nil
	}
	h := p.dt / float64(p.opts.SubSteps)
	p.trial = p.integ.Step(p.model, p.trial, u, p.time+float64(p.iter)*h, h)
	p.iter++
	p.computed = true
	if !p.trial.IsValid() {
		return false, false, nil
	}
	return true, p.iter >= p.opts.SubSteps, nil
}

func (p *ODEProblem) SolveTimeStep() (bool, error) {
	budget := p.opts.SubSteps
	if p.stationary {
		budget = p.opts.MaxIterations
	}
	for i := 0; i < budget; i++ {
		ok, converged, err := p.IterateTimeStep()
		if err != nil || !ok {
			return false, err
		}
		if converged {
			return true, nil
		}
	}
	return false, nil
}

func (p *ODEProblem) ValidateTimeStep() error {
	if p.computed {
		p.lastChange = p.trial.Sub(p.x).Norm()
		p.x = p.trial
	}
	p.time += p.dt
	p.steps++
	p.closeStep()
	return nil
}

func (p *ODEProblem) AbortTimeStep() error {
	p.closeStep()
	return nil
}

func (p *ODEProblem) closeStep() {
	p.inside = false
	p.accepted = false
	p.computed = false
	p.dt = 0
	p.trial = nil
	p.iter = 0
	for k := range p.stepInputs {
		delete(p.stepInputs, k)
	}
}

func (p *ODEProblem) SetStationaryMode(stationary bool) error {
	p.stationary = stationary
	return nil
}

func (p *ODEProblem) GetStationaryMode() (bool, error) {
	return p.stationary, nil
}

// IsStationary reports whether the last validated step left the state
// unchanged within tolerance.
func (p *ODEProblem) IsStationary() (bool, error) {
	return p.steps > 0 && p.lastChange < p.opts.Tolerance, nil
}

func (p *ODEProblem) ResetTime(t float64) error {
	p.time = t
	return nil
}
