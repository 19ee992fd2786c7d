/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package match implements the core pattern matcher.
//
// Match takes one pattern and one value and reports either the
// Bindings the pattern implies or that the pattern did not match.  A
// structural mismatch is an ordinary result, never an error; errors
// are reserved for ill-formed input (a malformed or cyclic pattern, a
// conflicting capture name).
package match

import (
	"sort"

	"github.com/Comcast/casematch/pattern"
	"github.com/Comcast/casematch/values"
)

// Bindings is a map from capture names to the values they captured.
type Bindings map[string]values.Value

func NewBindings() Bindings {
	return make(Bindings, 8)
}

// Extend adds the binding; modifies and returns the Bindings.
//
// The Bindings are modified.
func (bs Bindings) Extend(p string, v values.Value) Bindings {
	bs[p] = v
	return bs
}

// Remove removes the given names.
//
// The Bindings are modified.
func (bs Bindings) Remove(ps ...string) Bindings {
	for _, p := range ps {
		delete(bs, p)
	}
	return bs
}

// DeleteExcept removes all but the given names.
//
// Does not copy.
func (bs Bindings) DeleteExcept(keeps ...string) Bindings {
	dead := make([]string, 0, len(bs))
REM:
	for p := range bs {
		for _, keep := range keeps {
			if keep == p {
				continue REM
			}
		}
		dead = append(dead, p)
	}

	return bs.Remove(dead...)
}

// Copy makes a shallow copy of the Bindings.
func (bs Bindings) Copy() Bindings {
	acc := make(Bindings, len(bs))
	for k, v := range bs {
		acc[k] = v
	}
	return acc
}

// Merge folds src into bs.  A name bound in both is a
// ConflictingBinding, whether or not the values agree.
//
// bs is modified.
func (bs Bindings) Merge(src Bindings) (Bindings, error) {
	for name, v := range src {
		if _, have := bs[name]; have {
			return nil, &ConflictingBinding{name}
		}
		bs[name] = v
	}
	return bs, nil
}

// Names returns the bound names, sorted.
func (bs Bindings) Names() []string {
	names := make([]string, 0, len(bs))
	for name := range bs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Interface converts the Bindings to a plain JSON-shaped map, which
// is how guard code sees them.
func (bs Bindings) Interface() (map[string]interface{}, error) {
	m := make(map[string]interface{}, len(bs))
	for k, v := range bs {
		x, err := values.ToInterface(v)
		if err != nil {
			return nil, err
		}
		m[k] = x
	}
	return m, nil
}

// ConflictingBinding occurs when two non-alternative sub-patterns
// bind the same name.  It indicates an ill-formed pattern, so it's a
// definite error rather than a mismatch.
type ConflictingBinding struct {
	Name string
}

func (e *ConflictingBinding) Error() string {
	return `conflicting binding for "` + e.Name + `"`
}

type Matcher struct {
	// AllowShadowing permits two non-alternative sub-patterns to
	// bind the same name, with the later (left-to-right) binding
	// winning.  The default policy rejects the duplicate with a
	// ConflictingBinding error.
	AllowShadowing bool

	// CheckPatterns runs full pattern validation on every Match
	// call.
	//
	// This check might not be necessary because matching itself
	// will report an error if a malformed sub-pattern is actually
	// encountered.  The interesting twist is that if a match fails
	// before reaching the malformed sub-pattern, then that code
	// will not report the problem.  In order to report the problem
	// always, turn on this switch.  Performance will suffer, but
	// any malformed pattern will at least be caught.
	CheckPatterns bool
}

var DefaultMatcher = &Matcher{
	CheckPatterns: true,
}

// Match matches with the DefaultMatcher.
func Match(p pattern.Pattern, v values.Value) (Bindings, bool, error) {
	return DefaultMatcher.Match(p, v)
}

// Match attempts to match the given value with the given pattern.
//
// On success the returned Bindings map captures to the sub-values
// they matched.  The bool reports whether the pattern matched at all;
// a false is not an error.  Matching is pure: repeated calls on the
// same (pattern, value) pair give identical results, and neither tree
// is mutated.
func (m *Matcher) Match(p pattern.Pattern, v values.Value) (Bindings, bool, error) {
	if m.CheckPatterns {
		if err := pattern.Validate(p); err != nil {
			return nil, false, err
		}
	}
	a := &attempt{m: m}
	return a.match(p, v)
}

// attempt holds per-match-attempt state: the memo of record fields
// already read.  A field is read at most once per attempt; the memo
// is never shared across attempts.
type attempt struct {
	m     *Matcher
	reads map[*values.Record]map[string]values.Value
}

func (a *attempt) field(rec *values.Record, name string) (values.Value, error) {
	if got, have := a.reads[rec][name]; have {
		return got, nil
	}
	v, err := rec.Field(name)
	if err != nil {
		return nil, err
	}
	if a.reads == nil {
		a.reads = make(map[*values.Record]map[string]values.Value, 4)
	}
	if a.reads[rec] == nil {
		a.reads[rec] = make(map[string]values.Value, 4)
	}
	a.reads[rec][name] = v
	return v, nil
}

// merge is Bindings.Merge moderated by the Matcher's shadowing
// policy.
//
// dst is modified.
func (a *attempt) merge(dst, src Bindings) (Bindings, error) {
	if !a.m.AllowShadowing {
		return dst.Merge(src)
	}
	for name, v := range src {
		dst[name] = v
	}
	return dst, nil
}

// match is one exhaustive dispatch over the closed pattern set.
func (a *attempt) match(p pattern.Pattern, v values.Value) (Bindings, bool, error) {
	switch vv := p.(type) {

	case *pattern.Literal:
		if vv.Value.Equal(v) {
			return NewBindings(), true, nil
		}
		return nil, false, nil

	case *pattern.Wildcard:
		return NewBindings(), true, nil

	case *pattern.Capture:
		return NewBindings().Extend(vv.Name, v), true, nil

	case *pattern.As:
		bs, ok, err := a.match(vv.Inner, v)
		if err != nil || !ok {
			return nil, false, err
		}
		// The name binds the original value, not a transformed one.
		if bs, err = a.merge(bs, Bindings{vv.Name: v}); err != nil {
			return nil, false, err
		}
		return bs, true, nil

	case *pattern.Or:
		for _, alt := range vv.Alternatives {
			bs, ok, err := a.match(alt, v)
			if err != nil {
				return nil, false, err
			}
			if ok {
				return bs, true, nil
			}
		}
		return nil, false, nil

	case *pattern.Sequence:
		// A scalar sequence-like value (a string, say) is a
		// Scalar here, so it can never reach this arm.
		seq, is := v.(values.Sequence)
		if !is {
			return nil, false, nil
		}
		return a.matchSeq(vv, seq)

	case *pattern.Mapping:
		mv, is := v.(values.Mapping)
		if !is {
			return nil, false, nil
		}
		return a.matchMap(vv, mv)

	case *pattern.Object:
		rec, is := v.(*values.Record)
		if !is || !rec.Type.AssignableTo(vv.Type) {
			return nil, false, nil
		}
		return a.matchObj(vv, rec)
	}

	return nil, false, &pattern.Unknown{P: p}
}

func (a *attempt) matchSeq(p *pattern.Sequence, seq values.Sequence) (Bindings, bool, error) {
	if p.Star == nil {
		if len(seq) != len(p.Elements) {
			return nil, false, nil
		}
		bs := NewBindings()
		for i, e := range p.Elements {
			sub, ok, err := a.match(e, seq[i])
			if err != nil || !ok {
				return nil, false, err
			}
			if bs, err = a.merge(bs, sub); err != nil {
				return nil, false, err
			}
		}
		return bs, true, nil
	}

	if len(seq) < len(p.Elements) {
		return nil, false, nil
	}
	var (
		prefix = p.Elements[:p.Star.Position]
		suffix = p.Elements[p.Star.Position:]
		tail   = seq[len(seq)-len(suffix):]
		bs     = NewBindings()
	)
	for i, e := range prefix {
		sub, ok, err := a.match(e, seq[i])
		if err != nil || !ok {
			return nil, false, err
		}
		if bs, err = a.merge(bs, sub); err != nil {
			return nil, false, err
		}
	}
	for i, e := range suffix {
		sub, ok, err := a.match(e, tail[i])
		if err != nil || !ok {
			return nil, false, err
		}
		if bs, err = a.merge(bs, sub); err != nil {
			return nil, false, err
		}
	}
	if p.Star.Name != "" {
		middle := make(values.Sequence, len(seq)-len(p.Elements))
		copy(middle, seq[len(prefix):len(seq)-len(suffix)])
		var err error
		if bs, err = a.merge(bs, Bindings{p.Star.Name: middle}); err != nil {
			return nil, false, err
		}
	}
	return bs, true, nil
}

func (a *attempt) matchMap(p *pattern.Mapping, mv values.Mapping) (Bindings, bool, error) {
	bs := NewBindings()
	for _, e := range p.Entries {
		fv, have := mv[e.Key]
		if !have {
			return nil, false, nil
		}
		sub, ok, err := a.match(e.Pattern, fv)
		if err != nil || !ok {
			return nil, false, err
		}
		if bs, err = a.merge(bs, sub); err != nil {
			return nil, false, err
		}
	}
	// Matching is partial: keys not named in the pattern are
	// ignored, or swept into the rest binding if one was asked for.
	if p.Rest != "" {
		rest := make(values.Mapping, len(mv))
		for k, v := range mv {
			rest[k] = v
		}
		for _, e := range p.Entries {
			delete(rest, e.Key)
		}
		var err error
		if bs, err = a.merge(bs, Bindings{p.Rest: rest}); err != nil {
			return nil, false, err
		}
	}
	return bs, true, nil
}

func (a *attempt) matchObj(p *pattern.Object, rec *values.Record) (Bindings, bool, error) {
	bs := NewBindings()
	for i, e := range p.Positional {
		fv, err := a.field(rec, p.Type.Fields[i])
		if err != nil {
			return nil, false, err
		}
		sub, ok, err := a.match(e, fv)
		if err != nil || !ok {
			return nil, false, err
		}
		if bs, err = a.merge(bs, sub); err != nil {
			return nil, false, err
		}
	}
	// Named fields are read lazily: only the fields the pattern
	// actually names, each at most once per attempt.
	for _, f := range p.Named {
		fv, err := a.field(rec, f.Name)
		if err != nil {
			return nil, false, err
		}
		sub, ok, err := a.match(f.Pattern, fv)
		if err != nil || !ok {
			return nil, false, err
		}
		if bs, err = a.merge(bs, sub); err != nil {
			return nil, false, err
		}
	}
	return bs, true, nil
}
