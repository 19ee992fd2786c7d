// Package cases selects the first arm of an ordered case list whose
// pattern matches a subject value and whose guard, if present,
// passes.
//
// Selection is a two-stage loop per case: structural match first,
// then the guard.  Either failure sends selection to the next case in
// declaration order.  In particular a guard that rejects backtracks
// at the case level, not the pattern level: no alternative internal
// match of the same pattern is retried.  Falling off the end of the
// list is a valid outcome, not an error; callers who consider an
// uncovered subject fatal can use AssertCovered.
package cases

import (
	"context"
	"strconv"

	"github.com/Comcast/casematch/match"
	"github.com/Comcast/casematch/pattern"
	"github.com/Comcast/casematch/util"
	"github.com/Comcast/casematch/values"
)

// Case is one arm: a pattern, an optional guard, and the opaque
// action token handed back to the caller when this arm wins.
type Case struct {
	// Doc is documentation for this arm.
	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	// Pattern is the compiled pattern tree.  Usually produced by
	// List.Compile from PatternTree.
	Pattern pattern.Pattern `json:"-" yaml:"-"`

	// PatternTree is the encoded (JSON/YAML-shaped) form of the
	// pattern.  See the pattern package codec.
	PatternTree interface{} `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// Guard is the compiled guard (if any).
	Guard Guard `json:"-" yaml:"-"`

	// GuardSource, if given, is compiled to Guard by List.Compile.
	GuardSource *GuardSource `json:"guard,omitempty" yaml:"guard,omitempty"`

	// Token names the action for this arm.  The engine never
	// interprets it.
	Token string `json:"token" yaml:"token"`
}

// Copy doesn't actually copy the Pattern, Guard, or GuardSource.
func (c *Case) Copy() *Case {
	if c == nil {
		return nil
	}
	return &Case{
		Doc:         c.Doc,
		Pattern:     c.Pattern,
		PatternTree: c.PatternTree,
		Guard:       c.Guard,
		GuardSource: c.GuardSource,
		Token:       c.Token,
	}
}

// List is an ordered case list.  Order is the sole tie-break: the
// first structurally matching, guard-passing case wins, irrespective
// of specificity.
type List struct {
	// Name is the generic name for this case list.
	Name string `json:"name,omitempty" yaml:",omitempty"`

	// Doc is general documentation about how this list works.
	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	// Cases in declaration order.
	Cases []*Case `json:"cases" yaml:"cases"`

	// Registry resolves object-pattern type tags during Compile.
	Registry *values.Registry `json:"-" yaml:"-"`

	// Matcher is used by Select; defaults to match.DefaultMatcher.
	Matcher *match.Matcher `json:"-" yaml:"-"`

	compiled bool
}

// ListNotCompiled occurs when a List is used (say via Select) before
// it has been Compile()ed.
type ListNotCompiled struct {
	List *List
}

func (e *ListNotCompiled) Error() string {
	return `case list "` + e.List.Name + `" not compiled`
}

// BadCase occurs when a case can't be compiled.
type BadCase struct {
	List  *List
	Index int
	Err   error
}

func (e *BadCase) Error() string {
	return `case ` + strconv.Itoa(e.Index) + ` in list "` + e.List.Name + `": ` + e.Err.Error()
}

func (e *BadCase) Unwrap() error {
	return e.Err
}

// Compile decodes each case's PatternTree (when Pattern isn't already
// set), validates every pattern, and compiles guard sources into
// Guards using the given interpreters.
//
// Malformed patterns are rejected here so that they never reach the
// matcher.
func (l *List) Compile(ctx context.Context, interpreters InterpretersMap, force bool) error {
	for i, c := range l.Cases {
		if c == nil {
			return &BadCase{l, i, &pattern.Malformed{Reason: "nil case"}}
		}
		if c.Pattern == nil || force {
			if c.PatternTree == nil {
				return &BadCase{l, i, &pattern.Malformed{Reason: "no pattern"}}
			}
			p, err := pattern.Decode(c.PatternTree, l.Registry)
			if err != nil {
				return &BadCase{l, i, err}
			}
			c.Pattern = p
		}
		if err := pattern.Validate(c.Pattern); err != nil {
			return &BadCase{l, i, err}
		}
		if c.GuardSource != nil && (force || c.Guard == nil) {
			guard, err := c.GuardSource.Compile(ctx, interpreters)
			if err != nil {
				return &BadCase{l, i, err}
			}
			c.Guard = guard
		}
	}

	l.compiled = true

	return nil
}

// Selection is a winning arm: the bindings its pattern (and guard)
// produced, its token, and its index in the list.
type Selection struct {
	Bs    match.Bindings `json:"bs"`
	Token string         `json:"token"`
	Index int            `json:"index"`
}

// Select finds the first case whose pattern matches the value and
// whose guard (if any) passes.
//
// A nil Selection with a nil error means no case matched, which is a
// valid outcome; whether an uncovered value is fatal is the caller's
// decision.
func (l *List) Select(ctx context.Context, v values.Value, props Props) (*Selection, error) {
	sel, _, err := l.Consider(ctx, v, props)
	return sel, err
}

// Consider is Select plus the trace of what was tried.
func (l *List) Consider(ctx context.Context, v values.Value, props Props) (*Selection, *Traces, error) {
	ts := NewTraces()

	if !l.compiled {
		return nil, ts, &ListNotCompiled{l}
	}

	m := l.Matcher
	if m == nil {
		m = match.DefaultMatcher
	}

	for i, c := range l.Cases {
		util.Logf("List %s trying case %d (%s)", l.Name, i, c.Token)
		ts.Add(map[string]interface{}{
			"trying": i,
			"token":  c.Token,
		})

		bs, ok, err := m.Match(c.Pattern, v)
		if err != nil {
			// Error (forwarded)
			return nil, ts, &BadCase{l, i, err}
		}
		if !ok {
			continue
		}

		util.Logf("List %s case %d matched", l.Name, i)
		ts.Add(map[string]interface{}{
			"matched": i,
			"bs":      bs,
		})

		if c.Guard != nil {
			// The trace above holds bs, so the guard works on
			// its own copy.
			exe, err := c.Guard.Exec(ctx, bs.Copy(), props)

			if exe != nil {
				ts.Add(exe.Events.Traces.Messages...)
			}

			if err != nil {
				return nil, ts, &BadCase{l, i, err}
			}

			if exe.Bs == nil {
				// The guard rejected.  On to the next
				// case, not to another match of the
				// same pattern.
				util.Logf("List %s case %d guard rejected", l.Name, i)
				ts.Add(map[string]interface{}{
					"guardRejected": i,
				})
				continue
			}
			bs = exe.Bs
		}

		util.Logf("List %s selected case %d (%s)", l.Name, i, c.Token)
		return &Selection{
			Bs:    bs,
			Token: c.Token,
			Index: i,
		}, ts, nil
	}

	// No case was selected.

	return nil, ts, nil
}

// Uncovered occurs when AssertCovered finds no case for the value.
type Uncovered struct {
	List *List
}

func (e *Uncovered) Error() string {
	return `no case in list "` + e.List.Name + `" matched`
}

// AssertCovered is Select for callers who treat fall-through as
// fatal.
func (l *List) AssertCovered(ctx context.Context, v values.Value, props Props) (*Selection, error) {
	sel, err := l.Select(ctx, v, props)
	if err != nil {
		return nil, err
	}
	if sel == nil {
		return nil, &Uncovered{l}
	}
	return sel, nil
}
