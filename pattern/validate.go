package pattern

import "fmt"

// Cyclic is the error for a pattern graph that loops back on itself.
type Cyclic struct {
	P Pattern
}

func (e *Cyclic) Error() string {
	return "cyclic pattern"
}

// Unknown is an error that includes the thing that's causing the
// trouble.
type Unknown struct {
	P Pattern
}

func (e *Unknown) Error() string {
	return fmt.Sprintf("unknown pattern type (%T)", e.P)
}

// Validate re-checks the structural invariants the constructors
// enforce and verifies that the tree is finite and acyclic.  Patterns
// built via the constructors from literals always pass; Validate is
// for trees assembled by hand or of unknown provenance.
func Validate(p Pattern) error {
	return validate(p, make(map[Pattern]bool))
}

func validate(p Pattern, seen map[Pattern]bool) error {
	if p == nil {
		return &Malformed{"nil pattern"}
	}
	if seen[p] {
		return &Cyclic{p}
	}
	seen[p] = true
	defer delete(seen, p)

	switch v := p.(type) {
	case *Literal:
		if v.Value == nil {
			return &Malformed{"literal pattern with nil value"}
		}
	case *Wildcard:
	case *Capture:
		if _, err := Var(v.Name); err != nil {
			return err
		}
	case *As:
		if _, err := Bind(v.Inner, v.Name); err != nil {
			return err
		}
		return validate(v.Inner, seen)
	case *Or:
		// Alternative binding-set consistency is OrOf's and the
		// analyzer's business, not the matcher's: whichever
		// alternative matches determines the bindings.
		if len(v.Alternatives) == 0 {
			return &Malformed{"or-pattern with no alternatives"}
		}
		for _, alt := range v.Alternatives {
			if err := validate(alt, seen); err != nil {
				return err
			}
		}
	case *Sequence:
		if _, err := Seq(v.Elements, v.Star); err != nil {
			return err
		}
		for _, e := range v.Elements {
			if err := validate(e, seen); err != nil {
				return err
			}
		}
	case *Mapping:
		if _, err := Map(v.Entries, v.Rest); err != nil {
			return err
		}
		for _, e := range v.Entries {
			if err := validate(e.Pattern, seen); err != nil {
				return err
			}
		}
	case *Object:
		if _, err := Obj(v.Type, v.Positional, v.Named); err != nil {
			return err
		}
		for _, e := range v.Positional {
			if err := validate(e, seen); err != nil {
				return err
			}
		}
		for _, f := range v.Named {
			if err := validate(f.Pattern, seen); err != nil {
				return err
			}
		}
	default:
		return &Unknown{p}
	}
	return nil
}

// CheckAlternatives verifies the declared precondition that every
// alternative of every or-pattern in the tree binds exactly the same
// name set.  The matcher itself never re-derives this; OrOf enforces
// it at construction, and the static analyzer calls this for trees
// assembled by hand.
func CheckAlternatives(p Pattern) error {
	switch v := p.(type) {
	case *As:
		return CheckAlternatives(v.Inner)
	case *Or:
		if _, err := OrOf(v.Alternatives...); err != nil {
			return err
		}
		for _, alt := range v.Alternatives {
			if err := CheckAlternatives(alt); err != nil {
				return err
			}
		}
	case *Sequence:
		for _, e := range v.Elements {
			if err := CheckAlternatives(e); err != nil {
				return err
			}
		}
	case *Mapping:
		for _, e := range v.Entries {
			if err := CheckAlternatives(e.Pattern); err != nil {
				return err
			}
		}
	case *Object:
		for _, e := range v.Positional {
			if err := CheckAlternatives(e); err != nil {
				return err
			}
		}
		for _, f := range v.Named {
			if err := CheckAlternatives(f.Pattern); err != nil {
				return err
			}
		}
	}
	return nil
}

// Irrefutable reports whether the pattern matches every value
// unconditionally.  Used by the static analyzers.
func Irrefutable(p Pattern) bool {
	switch v := p.(type) {
	case *Wildcard, *Capture:
		return true
	case *As:
		return Irrefutable(v.Inner)
	case *Or:
		for _, alt := range v.Alternatives {
			if Irrefutable(alt) {
				return true
			}
		}
	}
	return false
}
