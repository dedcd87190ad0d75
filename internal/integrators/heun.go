package integrators

import "github.com/san-kum/cosim/internal/dynamo"

// Heun is the explicit trapezoidal predictor-corrector.
type Heun struct {
	predicted dynamo.State
}

func NewHeun() *Heun {
	return &Heun{}
}

func (h *Heun) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	if len(h.predicted) != n {
		h.predicted = make(dynamo.State, n)
	}

	k1 := dyn.Derive(x, u, t)
	axpy(h.predicted, x, dt, k1)
	k2 := dyn.Derive(h.predicted, u, t+dt)

	result := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		result[i] = x[i] + 0.5*dt*(k1[i]+k2[i])
	}
	return result
}
