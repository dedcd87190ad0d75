package integrators

import "github.com/san-kum/cosim/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta scheme. Stage buffers are
// reused between steps.
type RK4 struct {
	stages  [4]dynamo.State
	scratch dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensure(n int) {
	if len(r.scratch) == n {
		return
	}
	for i := range r.stages {
		r.stages[i] = make(dynamo.State, n)
	}
	r.scratch = make(dynamo.State, n)
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	r.ensure(n)

	offsets := [4]float64{0, 0.5, 0.5, 1}
	copy(r.stages[0], dyn.Derive(x, u, t))
	for s := 1; s < 4; s++ {
		axpy(r.scratch, x, dt*offsets[s], r.stages[s-1])
		copy(r.stages[s], dyn.Derive(r.scratch, u, t+dt*offsets[s]))
	}

	result := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.stages[0][i]+2*r.stages[1][i]+2*r.stages[2][i]+r.stages[3][i])
	}
	return result
}
