package icoco

import "fmt"

const (
	Version      = "2.0"
	MajorVersion = 2
	MinorVersion = 0
)

// ValueType is the type of a field or scalar value.
type ValueType int

const (
	Double ValueType = iota
	Int
	String
)

func (v ValueType) String() string {
	switch v {
	case Double:
		return "Double"
	case Int:
		return "Int"
	case String:
		return "String"
	default:
		return fmt.Sprintf("ValueType(%d)", int(v))
	}
}

func ParseValueType(s string) (ValueType, error) {
	switch s {
	case "Double", "double":
		return Double, nil
	case "Int", "int":
		return Int, nil
	case "String", "string":
		return String, nil
	}
	return 0, fmt.Errorf("unknown value type: %s", s)
}

// Comm is the parallel communicator handed to a code by SetComm. The guard
// passes it through untouched.
type Comm interface {
	Rank() int
	Size() int
}

type singleProcess struct{}

func (singleProcess) Rank() int { return 0 }
func (singleProcess) Size() int { return 1 }

// SingleProcess is the communicator of a sequential code.
var SingleProcess Comm = singleProcess{}
