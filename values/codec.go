package values

import (
	"fmt"
	"reflect"
)

// Unrepresentable is an error that includes the thing that's causing
// the trouble.
type Unrepresentable struct {
	X interface{}
}

func (e *Unrepresentable) Error() string {
	return fmt.Sprintf("unrepresentable value (%T)", e.X)
}

// FromInterface converts a plain JSON-shaped Go value (nil, bool,
// numbers, string, []interface{}, map[string]interface{}) into a
// Value.  Records have no JSON-tree form; build them with NewRecord.
func FromInterface(x interface{}) (Value, error) {
	if s, is := Scalarize(x); is {
		return s, nil
	}
	switch vv := x.(type) {
	case []interface{}:
		seq := make(Sequence, len(vv))
		for i, y := range vv {
			v, err := FromInterface(y)
			if err != nil {
				return nil, err
			}
			seq[i] = v
		}
		return seq, nil
	case map[string]interface{}:
		m := make(Mapping, len(vv))
		for k, y := range vv {
			v, err := FromInterface(y)
			if err != nil {
				return nil, err
			}
			m[k] = v
		}
		return m, nil
	}
	return nil, &Unrepresentable{x}
}

// TypeKey is the reserved mapping key that carries a record's type
// tag when a Record is flattened by ToInterface.
var TypeKey = "$type"

// Decode is FromInterface plus record reconstruction: a map whose
// TypeKey entry names a type in the registry becomes a Record of that
// type.  Every declared field must be present, and no other keys are
// allowed.  A nil registry makes Decode equivalent to FromInterface.
func Decode(x interface{}, reg *Registry) (Value, error) {
	if s, is := Scalarize(x); is {
		return s, nil
	}
	switch vv := x.(type) {
	case []interface{}:
		seq := make(Sequence, len(vv))
		for i, y := range vv {
			v, err := Decode(y, reg)
			if err != nil {
				return nil, err
			}
			seq[i] = v
		}
		return seq, nil
	case map[string]interface{}:
		if tag, is := vv[TypeKey].(string); is && reg != nil {
			t, have := reg.Type(tag)
			if !have {
				return nil, &Unrepresentable{vv}
			}
			if len(vv) != len(t.Fields)+1 {
				return nil, &WrongArity{t, len(vv) - 1}
			}
			fields := make([]Value, len(t.Fields))
			for i, name := range t.Fields {
				y, have := vv[name]
				if !have {
					return nil, fmt.Errorf(`record "%s" is missing field "%s"`, t.Name, name)
				}
				v, err := Decode(y, reg)
				if err != nil {
					return nil, err
				}
				fields[i] = v
			}
			return NewRecord(t, fields...)
		}
		m := make(Mapping, len(vv))
		for k, y := range vv {
			v, err := Decode(y, reg)
			if err != nil {
				return nil, err
			}
			m[k] = v
		}
		return m, nil
	}
	return nil, &Unrepresentable{x}
}

// ToInterface converts a Value back to a plain JSON-shaped Go value.
// A Record becomes a map of its fields plus a TypeKey entry, which is
// how guard code sees record subjects.
func ToInterface(v Value) (interface{}, error) {
	switch vv := v.(type) {
	case Scalar:
		return vv.X, nil
	case Sequence:
		xs := make([]interface{}, len(vv))
		for i, y := range vv {
			x, err := ToInterface(y)
			if err != nil {
				return nil, err
			}
			xs[i] = x
		}
		return xs, nil
	case Mapping:
		m := make(map[string]interface{}, len(vv))
		for k, y := range vv {
			x, err := ToInterface(y)
			if err != nil {
				return nil, err
			}
			m[k] = x
		}
		return m, nil
	case *Record:
		m := make(map[string]interface{}, len(vv.Type.Fields)+1)
		m[TypeKey] = vv.Type.Name
		for _, name := range vv.Type.Fields {
			y, err := vv.Field(name)
			if err != nil {
				return nil, err
			}
			x, err := ToInterface(y)
			if err != nil {
				return nil, err
			}
			m[name] = x
		}
		return m, nil
	}
	return nil, &Unrepresentable{v}
}

// Cyclic is the error for a value graph that loops.
type Cyclic struct {
	V Value
}

func (e *Cyclic) Error() string {
	return "cyclic value"
}

// Check verifies that the value graph is finite and acyclic.  The
// matcher assumes this invariant rather than guarding every
// recursion, so callers handing over values of unknown provenance
// should Check first.
func Check(v Value) error {
	return check(v, make(map[uintptr]bool))
}

func check(v Value, seen map[uintptr]bool) error {
	switch vv := v.(type) {
	case Sequence:
		if len(vv) == 0 {
			return nil
		}
		p := reflect.ValueOf(vv).Pointer()
		if seen[p] {
			return &Cyclic{v}
		}
		seen[p] = true
		for _, y := range vv {
			if err := check(y, seen); err != nil {
				return err
			}
		}
		delete(seen, p)
	case Mapping:
		if len(vv) == 0 {
			return nil
		}
		p := reflect.ValueOf(vv).Pointer()
		if seen[p] {
			return &Cyclic{v}
		}
		seen[p] = true
		for _, y := range vv {
			if err := check(y, seen); err != nil {
				return err
			}
		}
		delete(seen, p)
	case *Record:
		p := reflect.ValueOf(vv).Pointer()
		if seen[p] {
			return &Cyclic{v}
		}
		seen[p] = true
		// Only eager fields: a computed field is produced fresh
		// on read, so it can't close a cycle in the stored graph.
		for _, y := range vv.fields {
			if y == nil {
				continue
			}
			if err := check(y, seen); err != nil {
				return err
			}
		}
		delete(seen, p)
	}
	return nil
}
