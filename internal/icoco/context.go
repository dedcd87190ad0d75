package icoco

// stepContext is the time-step bookkeeping of one guarded problem. It exists
// from a successful Initialize until Terminate.
type stepContext struct {
	time       float64
	dt         float64
	inside     bool
	solved     bool
	stationary bool
}

func (c *stepContext) resetTime(t float64) { c.time = t }

func (c *stepContext) initializeStep(dt float64) {
	c.dt = dt
	c.inside = true
	c.solved = false
}

func (c *stepContext) validateStep() {
	c.time += c.dt
	c.abortStep()
}

func (c *stepContext) abortStep() {
	c.dt = 0
	c.inside = false
	c.solved = false
}
