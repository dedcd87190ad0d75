package metrics

import "math"

// Drift is the largest relative departure of a series from its first
// sample, e.g. the energy drift of a conservative model.
type Drift struct {
	series   string
	initial  float64
	maxDrift float64
	samples  int
}

func NewDrift(series string) *Drift {
	return &Drift{series: series}
}

func (d *Drift) Name() string { return "drift(" + d.series + ")" }

func (d *Drift) Observe(t float64, values map[string]float64) {
	v, ok := values[d.series]
	if !ok {
		return
	}
	if d.samples == 0 {
		d.initial = v
	}
	d.samples++

	if d.initial != 0 {
		drift := math.Abs(v-d.initial) / math.Abs(d.initial)
		d.maxDrift = math.Max(d.maxDrift, drift)
	}
}

func (d *Drift) Value() float64 { return d.maxDrift }

func (d *Drift) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
}
