package coupling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/san-kum/cosim/internal/icoco"
	"github.com/san-kum/cosim/internal/metrics"
)

type member struct {
	guard      *icoco.Guard
	stationary bool
	outputs    []string
}

// Supervisor advances guarded problems on a common clock and exchanges
// scalar values between them.
type Supervisor struct {
	settings  Settings
	members   []*member
	exchanges []Exchange
	metrics   []metrics.Metric
	observers []Observer
	logger    *slog.Logger
}

type Option func(*Supervisor)

func WithLogger(l *slog.Logger) Option {
	return func(s *Supervisor) { s.logger = l }
}

func New(settings Settings, opts ...Option) *Supervisor {
	s := &Supervisor{settings: settings, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Supervisor) Settings() Settings { return s.settings }

// Add registers a problem. Stationary problems are switched to stationary
// mode right after initialization.
func (s *Supervisor) Add(g *icoco.Guard, stationary bool) error {
	if s.find(g.Name()) != nil {
		return fmt.Errorf("duplicate problem name: %s", g.Name())
	}
	s.members = append(s.members, &member{guard: g, stationary: stationary})
	return nil
}

func (s *Supervisor) Connect(e Exchange) error {
	if s.find(e.From) == nil {
		return fmt.Errorf("%w: %s", ErrUnknownProblem, e.From)
	}
	if s.find(e.To) == nil {
		return fmt.Errorf("%w: %s", ErrUnknownProblem, e.To)
	}
	s.exchanges = append(s.exchanges, e)
	return nil
}

func (s *Supervisor) AddMetric(m metrics.Metric) { s.metrics = append(s.metrics, m) }
func (s *Supervisor) AddObserver(o Observer)     { s.observers = append(s.observers, o) }

func (s *Supervisor) Problems() []*icoco.Guard {
	out := make([]*icoco.Guard, len(s.members))
	for i, m := range s.members {
		out[i] = m.guard
	}
	return out
}

func (s *Supervisor) find(name string) *member {
	for _, m := range s.members {
		if m.guard.Name() == name {
			return m
		}
	}
	return nil
}

// Run initializes every problem, steps them to Duration and terminates
// them, also on error or cancellation. The partial result is returned
// together with any error.
func (s *Supervisor) Run(ctx context.Context) (result *Result, err error) {
	if err := s.settings.validate(); err != nil {
		return nil, err
	}
	if len(s.members) == 0 {
		return nil, errors.New("no problems to couple")
	}

	result = &Result{
		Values:  make(map[string][]float64),
		Metrics: make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	defer func() {
		if terr := s.terminate(); terr != nil && err == nil {
			err = terr
		}
	}()

	if err := s.initialize(); err != nil {
		return result, err
	}

	s.logger.Info("coupling started",
		"problems", len(s.members),
		"exchanges", len(s.exchanges),
		"scheme", s.settings.Scheme,
		"dt", s.settings.Dt,
		"duration", s.settings.Duration)

	t := 0.0
	if err := s.record(result, t); err != nil {
		return result, err
	}

	const eps = 1e-12
	for t < s.settings.Duration-eps*math.Max(1, s.settings.Duration) {
		select {
		case <-ctx.Done():
			result.EndTime = t
			return result, ctx.Err()
		default:
		}

		dt, stoppedBy, err := s.negotiate(t)
		if err != nil {
			return result, err
		}
		if stoppedBy != "" {
			result.StoppedBy = stoppedBy
			s.logger.Info("problem requested stop", "problem", stoppedBy, "t", t)
			break
		}

		dt, err = s.advance(&result.Stats, t, dt)
		if err != nil {
			result.EndTime = t
			return result, err
		}
		t += dt
		result.Stats.Steps++

		if err := s.record(result, t); err != nil {
			return result, err
		}
	}

	result.EndTime = t
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	s.logger.Info("coupling finished",
		"t", t,
		"steps", result.Stats.Steps,
		"rejected", result.Stats.Rejected)
	return result, nil
}

func (s *Supervisor) initialize() error {
	for _, m := range s.members {
		ok, err := m.guard.Initialize()
		if err != nil {
			return fmt.Errorf("initialize %s: %w", m.guard.Name(), err)
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrInitialize, m.guard.Name())
		}
		if m.stationary {
			if err := m.guard.SetStationaryMode(true); err != nil {
				return fmt.Errorf("set stationary mode on %s: %w", m.guard.Name(), err)
			}
		}
		names, err := m.guard.GetOutputValuesNames()
		if err != nil && !icoco.IsNotImplemented(err) {
			return fmt.Errorf("list outputs of %s: %w", m.guard.Name(), err)
		}
		m.outputs = m.outputs[:0]
		for _, name := range names {
			typ, err := m.guard.GetValueType(name)
			if err != nil {
				return fmt.Errorf("type of %s: %w", Key(m.guard.Name(), name), err)
			}
			if typ == icoco.Double {
				m.outputs = append(m.outputs, name)
			}
		}
	}
	return s.checkExchanges()
}

func (s *Supervisor) checkExchanges() error {
	for _, e := range s.exchanges {
		from, to := s.find(e.From), s.find(e.To)
		if !slices.Contains(from.outputs, e.Output) {
			return fmt.Errorf("%w: %s has no Double output %q", ErrUnknownValue, e.From, e.Output)
		}
		inputs, err := to.guard.GetInputValuesNames()
		if err != nil {
			return fmt.Errorf("list inputs of %s: %w", e.To, err)
		}
		if !slices.Contains(inputs, e.Input) {
			return fmt.Errorf("%w: %s has no input %q", ErrUnknownValue, e.To, e.Input)
		}
	}
	return nil
}

// terminate closes every initialized problem, aborting open steps first.
func (s *Supervisor) terminate() error {
	var errs []error
	for _, m := range s.members {
		switch m.guard.State() {
		case icoco.Uninitialized:
			continue
		case icoco.StepDefined:
			if err := m.guard.AbortTimeStep(); err != nil {
				errs = append(errs, err)
			}
		}
		if err := m.guard.Terminate(); err != nil {
			s.logger.Warn("terminate failed", "problem", m.guard.Name(), "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// negotiate picks the next dt: the smallest of the configured dt, every
// problem's preference and the time left.
func (s *Supervisor) negotiate(t float64) (float64, string, error) {
	dt := math.Min(s.settings.Dt, s.settings.Duration-t)
	for _, m := range s.members {
		pdt, stop, err := m.guard.ComputeTimeStep()
		if err != nil {
			return 0, "", fmt.Errorf("compute time step of %s: %w", m.guard.Name(), err)
		}
		if stop {
			return 0, m.guard.Name(), nil
		}
		if pdt > 0 {
			dt = math.Min(dt, pdt)
		}
	}
	return dt, "", nil
}

// advance performs one coupled step, halving dt after each rejection. It
// returns the dt actually taken.
func (s *Supervisor) advance(stats *Stats, t, dt float64) (float64, error) {
	for retry := 0; ; retry++ {
		ok, err := s.step(stats, dt)
		if err != nil {
			return 0, err
		}
		if ok {
			return dt, nil
		}

		stats.Rejected++
		if retry >= s.settings.MaxRetries || dt/2 < s.settings.MinDt {
			return 0, fmt.Errorf("%w at t=%g (dt=%g after %d retries)", ErrStepRejected, t, dt, retry)
		}
		dt /= 2
		s.logger.Warn("step rejected, retrying", "t", t, "dt", dt, "retry", retry+1)
	}
}

func (s *Supervisor) step(stats *Stats, dt float64) (bool, error) {
	switch s.settings.Scheme {
	case Picard:
		return s.picardStep(stats, dt)
	default:
		return s.explicitStep(stats, dt)
	}
}

// record samples every Double output at time t and feeds metrics and
// observers.
func (s *Supervisor) record(result *Result, t float64) error {
	values := make(map[string]float64)
	for _, m := range s.members {
		for _, name := range m.outputs {
			v, err := m.guard.GetOutputDoubleValue(name)
			if err != nil {
				return fmt.Errorf("read %s: %w", Key(m.guard.Name(), name), err)
			}
			values[Key(m.guard.Name(), name)] = v
		}
	}

	result.Times = append(result.Times, t)
	for k, v := range values {
		result.Values[k] = append(result.Values[k], v)
	}
	for _, m := range s.metrics {
		m.Observe(t, values)
	}
	for _, o := range s.observers {
		o.OnStep(t, values)
	}
	s.logger.Debug("step recorded", "t", t, "values", len(values))
	return nil
}
