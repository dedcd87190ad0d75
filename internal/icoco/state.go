package icoco

// State is the lifecycle state of a guarded problem.
type State int

const (
	Uninitialized State = iota
	Ready
	StepDefined
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "UNINITIALIZED"
	case Ready:
		return "READY"
	case StepDefined:
		return "STEP_DEFINED"
	default:
		return "UNKNOWN"
	}
}

// Call describes one completed guard operation.
type Call struct {
	Problem string
	Method  string
	// State after the call.
	State State
	// Time is the tracked present time after the call, 0 when uninitialized.
	Time float64
	Err  error
}

// Observer is notified after every guard operation, successful or not.
type Observer interface {
	OnCall(c Call)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(c Call)

func (f ObserverFunc) OnCall(c Call) { f(c) }
