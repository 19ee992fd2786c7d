package pattern

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Comcast/casematch/values"
)

// This file gives Pattern trees a JSON/YAML-shaped encoding so that
// tools and command-line utilities can read them from files and
// flags.  It is a typed-tree codec, not a pattern surface syntax.
//
// The encoding:
//
//	3, true, null, "abc"      literal scalars
//	"?x"                      capture of x
//	"?"                       wildcard
//	["?x", "?*rest", 3]       sequence; "?*NAME" marks the star
//	{"a": "?x"}               mapping pattern (partial)
//	{"lit": ...}              literal for ambiguous values
//	{"or": [...]}             or-pattern
//	{"as": P, "name": "x"}    as-binding
//	{"seq": [...]}            explicit sequence form
//	{"map": {...}, "rest": "r"}  mapping with rest binding
//	{"type": "T", "fields": [...], "named": {...}}  object pattern
//
// A bare map is a mapping pattern unless its keys are one of the
// reserved forms above; a mapping pattern that needs a reserved key
// must use the explicit "map" form.

// IsVariable reports if the string represents a capture.
//
// All captures start with a '?'.
func IsVariable(s string) bool {
	return strings.HasPrefix(s, "?")
}

// IsAnonymousVariable detects the wildcard form '?'.
func IsAnonymousVariable(s string) bool {
	return s == "?"
}

// IsStarVariable detects a sequence star of the form '?*NAME' (or
// just '?*' for an anonymous rest).
func IsStarVariable(s string) bool {
	return strings.HasPrefix(s, "?*")
}

// Decode converts an encoded pattern tree into a Pattern.  The
// registry resolves object-pattern type tags; it may be nil when the
// tree contains no object patterns.
func Decode(x interface{}, reg *values.Registry) (Pattern, error) {
	switch vv := x.(type) {
	case nil, bool, float64, float32, int, int32, int64:
		s, _ := values.Scalarize(vv)
		return Lit(s), nil
	case string:
		if IsAnonymousVariable(vv) {
			return Any, nil
		}
		if IsStarVariable(vv) {
			return nil, &Malformed{`star "` + vv + `" outside a sequence pattern`}
		}
		if IsVariable(vv) {
			return Var(vv[1:])
		}
		return Lit(values.String(vv)), nil
	case []interface{}:
		return decodeSeq(vv, reg)
	case map[string]interface{}:
		return decodeMap(vv, reg)
	}
	return nil, &Malformed{fmt.Sprintf("undecodable pattern (%T)", x)}
}

func decodeSeq(xs []interface{}, reg *values.Registry) (Pattern, error) {
	var (
		elements = make([]Pattern, 0, len(xs))
		star     *Star
	)
	for _, x := range xs {
		if s, is := x.(string); is && IsStarVariable(s) {
			if star != nil {
				return nil, &Malformed{"sequence pattern with more than one star"}
			}
			star = &Star{
				Position: len(elements),
				Name:     s[len("?*"):],
			}
			continue
		}
		p, err := Decode(x, reg)
		if err != nil {
			return nil, err
		}
		elements = append(elements, p)
	}
	return Seq(elements, star)
}

func decodeEntries(x interface{}, reg *values.Registry) ([]Entry, error) {
	m, is := x.(map[string]interface{})
	if !is {
		return nil, &Malformed{fmt.Sprintf("mapping pattern entries should be a map, not %T", x)}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]Entry, 0, len(m))
	for _, k := range keys {
		p, err := Decode(m[k], reg)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{k, p})
	}
	return entries, nil
}

func decodeMap(m map[string]interface{}, reg *values.Registry) (Pattern, error) {
	if x, have := m["lit"]; have && len(m) == 1 {
		v, err := values.FromInterface(x)
		if err != nil {
			return nil, err
		}
		return Lit(v), nil
	}

	if x, have := m["or"]; have && len(m) == 1 {
		xs, is := x.([]interface{})
		if !is {
			return nil, &Malformed{"or-pattern alternatives should be an array"}
		}
		alternatives := make([]Pattern, len(xs))
		for i, y := range xs {
			p, err := Decode(y, reg)
			if err != nil {
				return nil, err
			}
			alternatives[i] = p
		}
		return OrOf(alternatives...)
	}

	if x, have := m["as"]; have && len(m) == 2 {
		name, is := m["name"].(string)
		if !is {
			return nil, &Malformed{"as-binding needs a string name"}
		}
		inner, err := Decode(x, reg)
		if err != nil {
			return nil, err
		}
		return Bind(inner, name)
	}

	if x, have := m["seq"]; have && len(m) == 1 {
		xs, is := x.([]interface{})
		if !is {
			return nil, &Malformed{"sequence pattern elements should be an array"}
		}
		return decodeSeq(xs, reg)
	}

	if x, have := m["map"]; have {
		rest := ""
		switch len(m) {
		case 1:
		case 2:
			s, is := m["rest"].(string)
			if !is {
				return nil, &Malformed{"mapping rest should be a string name"}
			}
			rest = s
		default:
			return nil, &Malformed{`extra keys alongside "map"`}
		}
		entries, err := decodeEntries(x, reg)
		if err != nil {
			return nil, err
		}
		return Map(entries, rest)
	}

	if x, have := m["type"]; have && objectShaped(m) {
		name, is := x.(string)
		if !is {
			return nil, &Malformed{"object pattern type tag should be a string"}
		}
		if reg == nil {
			return nil, &Malformed{`object pattern "` + name + `" with no type registry`}
		}
		t, have := reg.Type(name)
		if !have {
			return nil, &Malformed{`object pattern names unknown type "` + name + `"`}
		}
		var positional []Pattern
		if xs, is := m["fields"].([]interface{}); is {
			positional = make([]Pattern, len(xs))
			for i, y := range xs {
				p, err := Decode(y, reg)
				if err != nil {
					return nil, err
				}
				positional[i] = p
			}
		}
		var named []Field
		if fm, is := m["named"].(map[string]interface{}); is {
			keys := make([]string, 0, len(fm))
			for k := range fm {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				p, err := Decode(fm[k], reg)
				if err != nil {
					return nil, err
				}
				named = append(named, Field{k, p})
			}
		}
		return Obj(t, positional, named)
	}

	// A bare map is a partial mapping pattern.
	entries, err := decodeEntries(m, reg)
	if err != nil {
		return nil, err
	}
	return Map(entries, "")
}

func objectShaped(m map[string]interface{}) bool {
	for k := range m {
		switch k {
		case "type", "fields", "named":
		default:
			return false
		}
	}
	return true
}

// Encode converts a Pattern back to its JSON/YAML-shaped form.
// Record-valued literals flatten through values.ToInterface and do
// not survive a Decode round trip.
func Encode(p Pattern) (interface{}, error) {
	switch v := p.(type) {
	case *Literal:
		x, err := values.ToInterface(v.Value)
		if err != nil {
			return nil, err
		}
		switch xx := x.(type) {
		case string:
			if IsVariable(xx) {
				return map[string]interface{}{"lit": x}, nil
			}
			return x, nil
		case []interface{}, map[string]interface{}:
			return map[string]interface{}{"lit": x}, nil
		}
		return x, nil
	case *Wildcard:
		return "?", nil
	case *Capture:
		return "?" + v.Name, nil
	case *As:
		inner, err := Encode(v.Inner)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"as": inner, "name": v.Name}, nil
	case *Or:
		xs := make([]interface{}, len(v.Alternatives))
		for i, alt := range v.Alternatives {
			x, err := Encode(alt)
			if err != nil {
				return nil, err
			}
			xs[i] = x
		}
		return map[string]interface{}{"or": xs}, nil
	case *Sequence:
		xs := make([]interface{}, 0, len(v.Elements)+1)
		for i, e := range v.Elements {
			if v.Star != nil && v.Star.Position == i {
				xs = append(xs, "?*"+v.Star.Name)
			}
			x, err := Encode(e)
			if err != nil {
				return nil, err
			}
			xs = append(xs, x)
		}
		if v.Star != nil && v.Star.Position == len(v.Elements) {
			xs = append(xs, "?*"+v.Star.Name)
		}
		return map[string]interface{}{"seq": xs}, nil
	case *Mapping:
		em := make(map[string]interface{}, len(v.Entries))
		for _, e := range v.Entries {
			x, err := Encode(e.Pattern)
			if err != nil {
				return nil, err
			}
			em[e.Key] = x
		}
		out := map[string]interface{}{"map": em}
		if v.Rest != "" {
			out["rest"] = v.Rest
		}
		return out, nil
	case *Object:
		out := map[string]interface{}{"type": v.Type.Name}
		if 0 < len(v.Positional) {
			xs := make([]interface{}, len(v.Positional))
			for i, e := range v.Positional {
				x, err := Encode(e)
				if err != nil {
					return nil, err
				}
				xs[i] = x
			}
			out["fields"] = xs
		}
		if 0 < len(v.Named) {
			fm := make(map[string]interface{}, len(v.Named))
			for _, f := range v.Named {
				x, err := Encode(f.Pattern)
				if err != nil {
					return nil, err
				}
				fm[f.Name] = x
			}
			out["named"] = fm
		}
		return out, nil
	}
	return nil, &Unknown{p}
}
