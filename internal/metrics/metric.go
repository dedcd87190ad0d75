package metrics

import "math"

// Metric accumulates a scalar summary of a coupled run. Values are keyed
// "problem.output".
type Metric interface {
	Name() string
	Observe(t float64, values map[string]float64)
	Value() float64
	Reset()
}

// Mean is the time-sample average of one series.
type Mean struct {
	series  string
	sum     float64
	samples int
}

func NewMean(series string) *Mean {
	return &Mean{series: series}
}

func (m *Mean) Name() string { return "mean(" + m.series + ")" }

func (m *Mean) Observe(t float64, values map[string]float64) {
	v, ok := values[m.series]
	if !ok {
		return
	}
	m.sum += v
	m.samples++
}

func (m *Mean) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *Mean) Reset() {
	m.sum = 0
	m.samples = 0
}

// Peak is the largest magnitude a series reaches.
type Peak struct {
	series string
	peak   float64
}

func NewPeak(series string) *Peak {
	return &Peak{series: series}
}

func (p *Peak) Name() string { return "peak(" + p.series + ")" }

func (p *Peak) Observe(t float64, values map[string]float64) {
	if v, ok := values[p.series]; ok {
		p.peak = math.Max(p.peak, math.Abs(v))
	}
}

func (p *Peak) Value() float64 { return p.peak }

func (p *Peak) Reset() { p.peak = 0 }
