package icoco

// Field is a named, typed array exchanged through the field I/O operations.
// The mesh the values live on is owned by the code and not described here.
type Field interface {
	FieldName() string
	Type() ValueType
	Len() int
}

var (
	_ Field = (*DoubleField)(nil)
	_ Field = (*IntField)(nil)
	_ Field = (*StringField)(nil)
)

type DoubleField struct {
	Name   string
	Unit   string
	Values []float64
}

func (f *DoubleField) FieldName() string { return f.Name }
func (f *DoubleField) Type() ValueType   { return Double }
func (f *DoubleField) Len() int          { return len(f.Values) }

func (f *DoubleField) Clone() *DoubleField {
	c := &DoubleField{Name: f.Name, Unit: f.Unit, Values: make([]float64, len(f.Values))}
	copy(c.Values, f.Values)
	return c
}

type IntField struct {
	Name   string
	Unit   string
	Values []int32
}

func (f *IntField) FieldName() string { return f.Name }
func (f *IntField) Type() ValueType   { return Int }
func (f *IntField) Len() int          { return len(f.Values) }

type StringField struct {
	Name   string
	Unit   string
	Values []string
}

func (f *StringField) FieldName() string { return f.Name }
func (f *StringField) Type() ValueType   { return String }
func (f *StringField) Len() int          { return len(f.Values) }
