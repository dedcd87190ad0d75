package icoco

import (
	"errors"
	"fmt"
)

// Sentinels matched by errors.Is against the typed errors below.
var (
	ErrWrongContext   = errors.New("icoco: wrong context")
	ErrWrongArgument  = errors.New("icoco: wrong argument")
	ErrNotImplemented = errors.New("icoco: not implemented")
)

// Preconditions reported by the guard.
const (
	PreBeforeInitialize = "called before initialize() or after terminate()"
	PreAfterInitialize  = "called after initialize()"
	PreMultipleTimes    = "called multiple times"
	PreInitialized      = "called multiple times or after initialize()"
	PreInsideStep       = "called inside the TIME_STEP_DEFINED context. (see Problem documentation)"
	PreOutsideStep      = "called outside the TIME_STEP_DEFINED context. (see Problem documentation)"
	PreAlreadySolved    = "called several times without resolution (solveTimeStep() already performed)"
)

// WrongContext is returned when an operation is called while the lifecycle
// state does not satisfy its precondition. It is always a caller ordering bug.
type WrongContext struct {
	Problem      string
	Method       string
	Precondition string
}

func (e *WrongContext) Error() string {
	return fmt.Sprintf("WrongContext in Problem instance with name: '%s'\n in method '%s' : %s",
		e.Problem, e.Method, e.Precondition)
}

func (e *WrongContext) Is(target error) bool { return target == ErrWrongContext }

// WrongArgument is returned when an argument violates a documented
// constraint, e.g. a negative time step or an unknown field name.
type WrongArgument struct {
	Problem   string
	Method    string
	Arg       string
	Condition string
}

func (e *WrongArgument) Error() string {
	return fmt.Sprintf("WrongArgument in Problem instance with name: '%s'\n in method '%s', argument '%s' : %s",
		e.Problem, e.Method, e.Arg, e.Condition)
}

func (e *WrongArgument) Is(target error) bool { return target == ErrWrongArgument }

// NotImplemented is the default result of every optional operation.
type NotImplemented struct {
	Problem string
	Method  string
}

func (e *NotImplemented) Error() string {
	return fmt.Sprintf("NotImplemented in Problem instance with name: '%s'\n in method '%s'",
		e.Problem, e.Method)
}

func (e *NotImplemented) Is(target error) bool { return target == ErrNotImplemented }

func NewWrongContext(problem, method, precondition string) *WrongContext {
	return &WrongContext{Problem: problem, Method: method, Precondition: precondition}
}

func NewWrongArgument(problem, method, arg, condition string) *WrongArgument {
	return &WrongArgument{Problem: problem, Method: method, Arg: arg, Condition: condition}
}

func NewNotImplemented(problem, method string) *NotImplemented {
	return &NotImplemented{Problem: problem, Method: method}
}

// IsWrongContext reports whether err (or anything it wraps) is a WrongContext.
func IsWrongContext(err error) bool {
	var wc *WrongContext
	return errors.As(err, &wc)
}

// IsWrongArgument reports whether err (or anything it wraps) is a WrongArgument.
func IsWrongArgument(err error) bool {
	var wa *WrongArgument
	return errors.As(err, &wa)
}

// IsNotImplemented reports whether err (or anything it wraps) is a NotImplemented.
func IsNotImplemented(err error) bool {
	var ni *NotImplemented
	return errors.As(err, &ni)
}
