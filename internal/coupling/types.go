package coupling

import (
	"errors"
	"fmt"
)

var (
	// ErrStepRejected is returned when a coupled step keeps failing after
	// every allowed dt reduction.
	ErrStepRejected = errors.New("coupling: time step rejected")

	ErrUnknownProblem = errors.New("coupling: unknown problem")
	ErrUnknownValue   = errors.New("coupling: unknown value")
	ErrInitialize     = errors.New("coupling: problem failed to initialize")
)

// Coupling schemes.
const (
	Explicit = "explicit"
	Picard   = "picard"
)

func Schemes() []string { return []string{Explicit, Picard} }

// Settings drive a Supervisor run.
type Settings struct {
	Scheme   string
	Dt       float64
	Duration float64
	// MinDt is the smallest dt a rejected step may be retried with.
	MinDt      float64
	MaxRetries int
	// Tolerance and MaxIterations bound the picard fixed point.
	Tolerance     float64
	MaxIterations int
}

func (s Settings) validate() error {
	if s.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", s.Dt)
	}
	if s.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", s.Duration)
	}
	switch s.Scheme {
	case Explicit:
	case Picard:
		if s.Tolerance <= 0 {
			return fmt.Errorf("tolerance must be positive for the picard scheme")
		}
		if s.MaxIterations <= 0 {
			return fmt.Errorf("max iterations must be positive for the picard scheme")
		}
	default:
		return fmt.Errorf("unknown scheme: %s", s.Scheme)
	}
	if s.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative, got %d", s.MaxRetries)
	}
	return nil
}

// Exchange copies a Double output of one problem to a Double input of
// another at every step. Scale 0 means 1.
type Exchange struct {
	From   string
	Output string
	To     string
	Input  string
	Scale  float64
}

func (e Exchange) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", e.From, e.Output, e.To, e.Input)
}

func (e Exchange) scale() float64 {
	if e.Scale == 0 {
		return 1
	}
	return e.Scale
}

// Observer is notified after every validated coupled step and once with
// the initial values.
type Observer interface {
	OnStep(t float64, values map[string]float64)
}

type ObserverFunc func(t float64, values map[string]float64)

func (f ObserverFunc) OnStep(t float64, values map[string]float64) { f(t, values) }

type Stats struct {
	Steps      int
	Rejected   int
	Iterations int
	Solves     int
}

func (s Stats) Map() map[string]int {
	return map[string]int{
		"steps":      s.Steps,
		"rejected":   s.Rejected,
		"iterations": s.Iterations,
		"solves":     s.Solves,
	}
}

type Result struct {
	Times []float64
	// Values holds every Double output, keyed "problem.output".
	Values    map[string][]float64
	Metrics   map[string]float64
	Stats     Stats
	EndTime   float64
	StoppedBy string
}

// Key names a problem output in Result.Values.
func Key(problem, value string) string { return problem + "." + value }
