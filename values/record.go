package values

import (
	"errors"
	"strconv"
)

// RecordType is a nominal type: a stable tag, a declared positional
// field order, and an optional parent type.  The field order is fixed
// when the type is defined, never per instance.
type RecordType struct {
	Name   string
	Fields []string

	parent *RecordType
	index  map[string]int
}

// Parent returns the supertype (if any).
func (t *RecordType) Parent() *RecordType {
	return t.parent
}

// AssignableTo reports whether t is u or a (transitive) subtype of u.
func (t *RecordType) AssignableTo(u *RecordType) bool {
	for p := t; p != nil; p = p.parent {
		if p == u {
			return true
		}
	}
	return false
}

// FieldIndex gives the position of the named field in the declared
// order, or -1.
func (t *RecordType) FieldIndex(name string) int {
	if i, have := t.index[name]; have {
		return i
	}
	return -1
}

// Union is a declared closed set of record variants.  The
// exhaustiveness analyzer only applies to subjects with a Union type.
type Union struct {
	Name     string
	Variants []*RecordType
}

// Registry holds record type and union definitions by name.
type Registry struct {
	types  map[string]*RecordType
	unions map[string]*Union
}

func NewRegistry() *Registry {
	return &Registry{
		types:  make(map[string]*RecordType, 8),
		unions: make(map[string]*Union, 8),
	}
}

// TypeRedefined occurs when a name is defined twice in one Registry.
type TypeRedefined struct {
	Name string
}

func (e *TypeRedefined) Error() string {
	return `type "` + e.Name + `" already defined`
}

// Define creates a new RecordType with the given declared field
// order.
func (r *Registry) Define(name string, fields ...string) (*RecordType, error) {
	return r.DefineUnder(nil, name, fields...)
}

// DefineUnder creates a new RecordType as a subtype of parent.
func (r *Registry) DefineUnder(parent *RecordType, name string, fields ...string) (*RecordType, error) {
	if _, have := r.types[name]; have {
		return nil, &TypeRedefined{name}
	}
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		if _, dup := index[f]; dup {
			return nil, errors.New(`duplicate field "` + f + `" in type "` + name + `"`)
		}
		index[f] = i
	}
	t := &RecordType{
		Name:   name,
		Fields: fields,
		parent: parent,
		index:  index,
	}
	r.types[name] = t
	return t, nil
}

// DefineUnion declares a closed set of variants.
func (r *Registry) DefineUnion(name string, variants ...*RecordType) (*Union, error) {
	if _, have := r.unions[name]; have {
		return nil, &TypeRedefined{name}
	}
	u := &Union{
		Name:     name,
		Variants: variants,
	}
	r.unions[name] = u
	return u, nil
}

// Type looks up a RecordType by name.
func (r *Registry) Type(name string) (*RecordType, bool) {
	t, have := r.types[name]
	return t, have
}

// Union looks up a Union by name.
func (r *Registry) Union(name string) (*Union, bool) {
	u, have := r.unions[name]
	return u, have
}

// FieldFunc computes a field value on demand.  A FieldFunc may be
// expensive or have observable cost; the matcher reads any field at
// most once per match attempt.
type FieldFunc func() (Value, error)

// Record is an instance of a RecordType.  Fields are stored in the
// type's declared order.  A field slot may instead be backed by a
// FieldFunc, in which case it is computed when first read.
type Record struct {
	Type *RecordType

	fields   []Value
	computed map[string]FieldFunc
}

// WrongArity occurs when a Record is built with the wrong number of
// field values for its type.
type WrongArity struct {
	Type *RecordType
	Got  int
}

func (e *WrongArity) Error() string {
	return `type "` + e.Type.Name + `" declares ` +
		strconv.Itoa(len(e.Type.Fields)) + ` fields; got ` + strconv.Itoa(e.Got)
}

// UnknownField occurs on a read of a field the type doesn't declare.
type UnknownField struct {
	Type *RecordType
	Name string
}

func (e *UnknownField) Error() string {
	return `type "` + e.Type.Name + `" has no field "` + e.Name + `"`
}

// NewRecord makes a Record from positional field values in the type's
// declared order.
func NewRecord(t *RecordType, fields ...Value) (*Record, error) {
	if len(fields) != len(t.Fields) {
		return nil, &WrongArity{t, len(fields)}
	}
	return &Record{
		Type:   t,
		fields: fields,
	}, nil
}

// NewLazyRecord makes a Record whose named fields in computed are
// produced on demand.  Every declared field must be covered either by
// eager or by computed.
func NewLazyRecord(t *RecordType, eager map[string]Value, computed map[string]FieldFunc) (*Record, error) {
	fields := make([]Value, len(t.Fields))
	covered := make(map[string]bool, len(t.Fields))
	for name, v := range eager {
		i := t.FieldIndex(name)
		if i < 0 {
			return nil, &UnknownField{t, name}
		}
		fields[i] = v
		covered[name] = true
	}
	for name := range computed {
		if t.FieldIndex(name) < 0 {
			return nil, &UnknownField{t, name}
		}
		if covered[name] {
			return nil, errors.New(`field "` + name + `" of type "` + t.Name + `" given both eagerly and computed`)
		}
		covered[name] = true
	}
	if len(covered) != len(t.Fields) {
		return nil, &WrongArity{t, len(covered)}
	}
	return &Record{
		Type:     t,
		fields:   fields,
		computed: computed,
	}, nil
}

// Field reads the named field.  A computed field is evaluated on
// every call; per-attempt read-once caching is the matcher's job.
func (rec *Record) Field(name string) (Value, error) {
	i := rec.Type.FieldIndex(name)
	if i < 0 {
		return nil, &UnknownField{rec.Type, name}
	}
	if v := rec.fields[i]; v != nil {
		return v, nil
	}
	if f, have := rec.computed[name]; have {
		return f()
	}
	return nil, &UnknownField{rec.Type, name}
}

func (rec *Record) Kind() Kind { return ARecord }

func (rec *Record) Equal(v Value) bool {
	o, is := v.(*Record)
	if !is || rec.Type != o.Type {
		return false
	}
	for _, name := range rec.Type.Fields {
		a, err := rec.Field(name)
		if err != nil {
			return false
		}
		b, err := o.Field(name)
		if err != nil {
			return false
		}
		if !a.Equal(b) {
			return false
		}
	}
	return true
}
