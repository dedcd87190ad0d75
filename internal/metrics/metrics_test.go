package metrics

import (
	"math"
	"testing"
)

func TestMean(t *testing.T) {
	m := NewMean("lag.value")

	m.Observe(0, map[string]float64{"lag.value": 1})
	m.Observe(0.1, map[string]float64{"lag.value": 3})
	m.Observe(0.2, map[string]float64{"other": 100})

	if got := m.Value(); got != 2 {
		t.Errorf("expected mean 2, got %f", got)
	}
	if m.Name() != "mean(lag.value)" {
		t.Errorf("unexpected name %q", m.Name())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero mean after reset")
	}
}

func TestPeak(t *testing.T) {
	p := NewPeak("pendulum.theta")
	for i, v := range []float64{0.1, -0.7, 0.4} {
		p.Observe(float64(i), map[string]float64{"pendulum.theta": v})
	}
	if got := p.Value(); got != 0.7 {
		t.Errorf("expected peak 0.7, got %f", got)
	}
}

func TestStability(t *testing.T) {
	s := NewStability(1.0)
	if s.Value() != 1.0 {
		t.Error("expected full stability with no samples")
	}

	s.Observe(0, map[string]float64{"a": 0.5, "b": -0.5})
	s.Observe(1, map[string]float64{"a": 2.0, "b": 0})
	s.Observe(2, map[string]float64{"a": math.NaN()})
	s.Observe(3, map[string]float64{"a": 0})

	if got := s.Value(); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("expected stability 0.5, got %f", got)
	}
}

func TestDrift(t *testing.T) {
	d := NewDrift("pendulum.energy")

	d.Observe(0, map[string]float64{"pendulum.energy": 2.0})
	d.Observe(1, map[string]float64{"pendulum.energy": 2.2})
	d.Observe(2, map[string]float64{"pendulum.energy": 2.1})

	if got := d.Value(); math.Abs(got-0.1) > 1e-12 {
		t.Errorf("expected drift 0.1, got %f", got)
	}

	d.Reset()
	d.Observe(0, map[string]float64{"pendulum.energy": 0})
	d.Observe(1, map[string]float64{"pendulum.energy": 1})
	if d.Value() != 0 {
		t.Error("expected no drift from a zero reference")
	}
}
