// Package pattern defines the closed set of pattern variants the
// matcher dispatches over, along with construction-time validation.
//
// A Pattern tree is built once and is immutable afterwards.  The
// constructors (Lit, Var, Any, OrOf, Bind, Seq, Map, Obj) validate
// eagerly, so a malformed pattern never reaches the matcher.
package pattern

import (
	"sort"
	"strconv"

	"github.com/Comcast/casematch/values"
)

// Pattern is one of *Literal, *Wildcard, *Capture, *Or, *As,
// *Sequence, *Mapping, *Object.  The set is closed; the matcher is a
// single exhaustive dispatch over these variants.
type Pattern interface {
	isPattern()
}

// Malformed reports an ill-formed pattern at construction time.
type Malformed struct {
	Reason string
}

func (e *Malformed) Error() string {
	return "malformed pattern: " + e.Reason
}

// Literal matches a value equal to Value.  No coercion across scalar
// kinds.
type Literal struct {
	Value values.Value
}

func (p *Literal) isPattern() {}

func Lit(v values.Value) *Literal {
	return &Literal{v}
}

// Wildcard always matches and binds nothing.
type Wildcard struct{}

func (p *Wildcard) isPattern() {}

// Any is the wildcard pattern.
var Any = &Wildcard{}

// Capture always matches and binds Name to the whole value.
type Capture struct {
	Name string
}

func (p *Capture) isPattern() {}

func Var(name string) (*Capture, error) {
	if name == "" {
		return nil, &Malformed{"capture with empty name"}
	}
	return &Capture{name}, nil
}

// As matches iff Inner matches, and additionally binds Name to the
// whole (original) value.
type As struct {
	Inner Pattern
	Name  string
}

func (p *As) isPattern() {}

func Bind(inner Pattern, name string) (*As, error) {
	if name == "" {
		return nil, &Malformed{"as-binding with empty name"}
	}
	if inner == nil {
		return nil, &Malformed{"as-binding with nil inner pattern"}
	}
	return &As{inner, name}, nil
}

// Or matches if any alternative matches, tried left to right.  Every
// alternative must bind exactly the same set of names; that's checked
// here, not at match time.
type Or struct {
	Alternatives []Pattern
}

func (p *Or) isPattern() {}

func OrOf(alternatives ...Pattern) (*Or, error) {
	if len(alternatives) == 0 {
		return nil, &Malformed{"or-pattern with no alternatives"}
	}
	want := Binds(alternatives[0])
	for i, alt := range alternatives[1:] {
		if alt == nil {
			return nil, &Malformed{"or-pattern with nil alternative"}
		}
		got := Binds(alt)
		if !sameNames(want, got) {
			return nil, &Malformed{
				"or-pattern alternative " + strconv.Itoa(i+1) +
					" binds a different name set"}
		}
	}
	return &Or{alternatives}, nil
}

// Star marks the variadic position of a sequence pattern.  Elements
// before Position match the value's prefix and the rest match its
// suffix.  An empty Name matches the middle slice without binding it.
type Star struct {
	Position int
	Name     string
}

// Sequence destructures a sequence value: fixed-length without Star,
// variadic with it.
type Sequence struct {
	Elements []Pattern
	Star     *Star
}

func (p *Sequence) isPattern() {}

func Seq(elements []Pattern, star *Star) (*Sequence, error) {
	for _, e := range elements {
		if e == nil {
			return nil, &Malformed{"sequence pattern with nil element"}
		}
	}
	if star != nil && (star.Position < 0 || len(elements) < star.Position) {
		return nil, &Malformed{"sequence star position " +
			strconv.Itoa(star.Position) + " out of range"}
	}
	return &Sequence{elements, star}, nil
}

// Entry is one key/sub-pattern pair of a mapping pattern.
type Entry struct {
	Key     string
	Pattern Pattern
}

// Mapping partially destructures a mapping value.  Keys of the value
// not named in Entries are ignored.  A non-empty Rest binds the
// leftover entries as a new mapping.
type Mapping struct {
	Entries []Entry
	Rest    string
}

func (p *Mapping) isPattern() {}

func Map(entries []Entry, rest string) (*Mapping, error) {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Pattern == nil {
			return nil, &Malformed{`mapping pattern key "` + e.Key + `" has nil sub-pattern`}
		}
		if seen[e.Key] {
			return nil, &Malformed{`mapping pattern repeats key "` + e.Key + `"`}
		}
		seen[e.Key] = true
	}
	return &Mapping{entries, rest}, nil
}

// Field is one named sub-pattern of an object pattern.
type Field struct {
	Name    string
	Pattern Pattern
}

// Object checks a record's nominal type and destructures its fields.
// Positional sub-patterns follow the type's declared field order;
// named sub-patterns are read lazily at match time.
type Object struct {
	Type       *values.RecordType
	Positional []Pattern
	Named      []Field
}

func (p *Object) isPattern() {}

func Obj(t *values.RecordType, positional []Pattern, named []Field) (*Object, error) {
	if t == nil {
		return nil, &Malformed{"object pattern with nil type"}
	}
	if len(t.Fields) < len(positional) {
		return nil, &Malformed{`object pattern for "` + t.Name + `" has ` +
			strconv.Itoa(len(positional)) + ` positional sub-patterns; type declares ` +
			strconv.Itoa(len(t.Fields)) + ` fields`}
	}
	for _, p := range positional {
		if p == nil {
			return nil, &Malformed{"object pattern with nil positional sub-pattern"}
		}
	}
	seen := make(map[string]bool, len(named))
	for _, f := range named {
		if f.Pattern == nil {
			return nil, &Malformed{`object pattern field "` + f.Name + `" has nil sub-pattern`}
		}
		if t.FieldIndex(f.Name) < 0 {
			return nil, &Malformed{`object pattern names field "` + f.Name +
				`" which type "` + t.Name + `" doesn't declare`}
		}
		if seen[f.Name] {
			return nil, &Malformed{`object pattern repeats field "` + f.Name + `"`}
		}
		seen[f.Name] = true
	}
	return &Object{t, positional, named}, nil
}

// Binds returns the sorted set of names the pattern can bind.  For an
// or-pattern this is any single alternative's set, which construction
// guarantees are all the same.
func Binds(p Pattern) []string {
	set := make(map[string]bool, 4)
	binds(p, set)
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func binds(p Pattern, set map[string]bool) {
	switch v := p.(type) {
	case *Literal, *Wildcard, nil:
	case *Capture:
		set[v.Name] = true
	case *As:
		set[v.Name] = true
		binds(v.Inner, set)
	case *Or:
		// All alternatives bind the same names.
		if 0 < len(v.Alternatives) {
			binds(v.Alternatives[0], set)
		}
	case *Sequence:
		for _, e := range v.Elements {
			binds(e, set)
		}
		if v.Star != nil && v.Star.Name != "" {
			set[v.Star.Name] = true
		}
	case *Mapping:
		for _, e := range v.Entries {
			binds(e.Pattern, set)
		}
		if v.Rest != "" {
			set[v.Rest] = true
		}
	case *Object:
		for _, e := range v.Positional {
			binds(e, set)
		}
		for _, f := range v.Named {
			binds(f.Pattern, set)
		}
	}
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i, name := range a {
		if b[i] != name {
			return false
		}
	}
	return true
}
