package coupling

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// open starts a step of size dt on every problem. A refusal leaves all
// steps aborted and reports false.
func (s *Supervisor) open(dt float64) (bool, error) {
	for i, m := range s.members {
		ok, err := m.guard.InitTimeStep(dt)
		if err != nil {
			s.abort(i + 1)
			return false, fmt.Errorf("init time step of %s: %w", m.guard.Name(), err)
		}
		if !ok {
			s.logger.Debug("time step refused", "problem", m.guard.Name(), "dt", dt)
			s.abort(i + 1)
			return false, nil
		}
	}
	return true, nil
}

// abort closes the steps opened on the first n members.
func (s *Supervisor) abort(n int) {
	for _, m := range s.members[:n] {
		if err := m.guard.AbortTimeStep(); err != nil {
			s.logger.Warn("abort failed", "problem", m.guard.Name(), "error", err)
		}
	}
}

func (s *Supervisor) validate() error {
	for _, m := range s.members {
		if err := m.guard.ValidateTimeStep(); err != nil {
			return fmt.Errorf("validate time step of %s: %w", m.guard.Name(), err)
		}
	}
	return nil
}

// gather reads the output side of every exchange, scaled.
func (s *Supervisor) gather() ([]float64, error) {
	vals := make([]float64, len(s.exchanges))
	for i, e := range s.exchanges {
		v, err := s.find(e.From).guard.GetOutputDoubleValue(e.Output)
		if err != nil {
			return nil, fmt.Errorf("exchange %s: %w", e, err)
		}
		vals[i] = v * e.scale()
	}
	return vals, nil
}

// scatter writes exchanged values into the inputs of the open step.
func (s *Supervisor) scatter(vals []float64) error {
	for i, e := range s.exchanges {
		if err := s.find(e.To).guard.SetInputDoubleValue(e.Input, vals[i]); err != nil {
			return fmt.Errorf("exchange %s: %w", e, err)
		}
	}
	return nil
}

// solve runs SolveTimeStep on every problem and reports whether all
// succeeded.
func (s *Supervisor) solve(stats *Stats) (bool, error) {
	for _, m := range s.members {
		stats.Solves++
		ok, err := m.guard.SolveTimeStep()
		if err != nil {
			return false, fmt.Errorf("solve time step of %s: %w", m.guard.Name(), err)
		}
		if !ok {
			s.logger.Debug("solve failed", "problem", m.guard.Name())
			return false, nil
		}
	}
	return true, nil
}

// explicitStep exchanges start-of-step values, then solves each problem
// once.
func (s *Supervisor) explicitStep(stats *Stats, dt float64) (bool, error) {
	ok, err := s.open(dt)
	if err != nil || !ok {
		return false, err
	}
	vals, err := s.gather()
	if err == nil {
		err = s.scatter(vals)
	}
	if err != nil {
		s.abort(len(s.members))
		return false, err
	}

	ok, err = s.solve(stats)
	if err != nil || !ok {
		s.abort(len(s.members))
		return false, err
	}
	stats.Iterations++
	return true, s.validate()
}

// picardStep iterates the step to a fixed point of the exchanged values.
// Each iteration is a fresh attempt: solve, compare the end-of-step
// exchanged values with the ones fed in, abort and restart with the new
// values until the relative change drops under Tolerance.
func (s *Supervisor) picardStep(stats *Stats, dt float64) (bool, error) {
	ok, err := s.open(dt)
	if err != nil || !ok {
		return false, err
	}
	in, err := s.gather()
	if err != nil {
		s.abort(len(s.members))
		return false, err
	}

	for it := 1; it <= s.settings.MaxIterations; it++ {
		if it > 1 {
			if ok, err := s.open(dt); err != nil || !ok {
				return false, err
			}
		}
		stats.Iterations++

		if err := s.scatter(in); err != nil {
			s.abort(len(s.members))
			return false, err
		}
		ok, err := s.solve(stats)
		if err != nil || !ok {
			s.abort(len(s.members))
			return false, err
		}
		out, err := s.gather()
		if err != nil {
			s.abort(len(s.members))
			return false, err
		}

		res := residual(in, out)
		s.logger.Debug("picard iteration", "iteration", it, "residual", res)
		if res < s.settings.Tolerance {
			return true, s.validate()
		}
		s.abort(len(s.members))
		in = out
	}

	s.logger.Debug("picard did not converge", "dt", dt, "iterations", s.settings.MaxIterations)
	return false, nil
}

// residual is |out-in| relative to max(1, |out|).
func residual(in, out []float64) float64 {
	if len(out) == 0 {
		return 0
	}
	diff := make([]float64, len(out))
	floats.SubTo(diff, out, in)
	scale := floats.Norm(out, 2)
	if scale < 1 {
		scale = 1
	}
	return floats.Norm(diff, 2) / scale
}
