// Package values provides the uniform representation of runtime
// values that the matcher can inspect: scalars, sequences, keyed
// mappings, and nominal records.
package values

// Kind discriminates the value variants.
type Kind int

//go:generate stringer -type=Kind
//go:generate jsonenums -type=Kind

const (
	AScalar Kind = iota
	ASequence
	AMapping
	ARecord
)

// Value is a runtime value.  The four implementations are Scalar,
// Sequence, Mapping, and *Record.
//
// Values are read-only during matching.  Nothing in this module
// mutates a Value after construction.
type Value interface {
	Kind() Kind

	// Equal reports deep equality.  Equality never coerces across
	// kinds: the number 1 does not equal the string "1", and a
	// one-element sequence does not equal its element.
	Equal(Value) bool
}

// Scalar is a leaf value: nil, a bool, a float64, or a string.
//
// Use the constructors (Null, Bool, Number, String, or Scalarize)
// rather than building a Scalar directly so that numeric
// representations get canonicalized.
type Scalar struct {
	X interface{}
}

func Null() Scalar            { return Scalar{nil} }
func Bool(b bool) Scalar      { return Scalar{b} }
func Number(f float64) Scalar { return Scalar{f} }
func String(s string) Scalar  { return Scalar{s} }

// Scalarize makes a Scalar from a native Go value, canonicalizing
// numeric types to float64.
func Scalarize(x interface{}) (Scalar, bool) {
	x = fudge(x)
	switch x.(type) {
	case nil, bool, float64, string:
		return Scalar{x}, true
	}
	return Scalar{}, false
}

// fudge is a hack to cast numbers to float64s.
func fudge(x interface{}) interface{} {
	switch vv := x.(type) {
	case float64:
		return vv
	case float32:
		return float64(vv)
	case int64:
		return float64(vv)
	case int32:
		return float64(vv)
	case int:
		return float64(vv)
	default:
		return x
	}
}

func (s Scalar) Kind() Kind { return AScalar }

func (s Scalar) Equal(v Value) bool {
	o, is := v.(Scalar)
	if !is {
		return false
	}
	switch a := s.X.(type) {
	case nil:
		return o.X == nil
	case bool:
		b, is := o.X.(bool)
		return is && a == b
	case float64:
		b, is := o.X.(float64)
		return is && a == b
	case string:
		b, is := o.X.(string)
		return is && a == b
	}
	return false
}

// Sequence is an ordered list of values.
//
// A string is not a Sequence.  Character data stays a Scalar, so a
// sequence pattern can never destructure it.
type Sequence []Value

func (s Sequence) Kind() Kind { return ASequence }

func (s Sequence) Equal(v Value) bool {
	o, is := v.(Sequence)
	if !is || len(s) != len(o) {
		return false
	}
	for i, x := range s {
		if !x.Equal(o[i]) {
			return false
		}
	}
	return true
}

// Mapping is a keyed collection.  Keys are unique; order is not
// semantically significant.
type Mapping map[string]Value

func (m Mapping) Kind() Kind { return AMapping }

func (m Mapping) Equal(v Value) bool {
	o, is := v.(Mapping)
	if !is || len(m) != len(o) {
		return false
	}
	for k, x := range m {
		y, have := o[k]
		if !have || !x.Equal(y) {
			return false
		}
	}
	return true
}
