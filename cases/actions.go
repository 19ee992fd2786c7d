package cases

import (
	"context"
	"errors"

	"github.com/Comcast/casematch/match"
)

var (
	// InterpreterNotFound occurs when you try to Compile a
	// GuardSource, and the required interpreter isn't in the
	// given map of interpreters.
	InterpreterNotFound = errors.New("interpreter not found")

	// TracesInitialCap is the initial capacity for Traces buffers.
	TracesInitialCap = 16

	// EmittedMessagesInitialCap is the initial capacity for
	// slices of emitted messages.
	EmittedMessagesInitialCap = 16
)

// Props is extra read-only data exposed to guard code, alongside the
// bindings the pattern produced.
type Props map[string]interface{}

func (ps Props) Copy() Props {
	acc := make(Props, len(ps))
	for p, v := range ps {
		acc[p] = v
	}
	return acc
}

// Traces holds trace messages.
type Traces struct {
	Messages []interface{} `json:"messages,omitempty" yaml:",omitempty"`
}

// NewTraces creates an initialized Traces.
func NewTraces() *Traces {
	return &Traces{
		Messages: make([]interface{}, 0, TracesInitialCap),
	}
}

func (ts *Traces) Add(xs ...interface{}) {
	ts.Messages = append(ts.Messages, xs...)
}

// Events contains emitted messages and Traces.
type Events struct {
	Emitted []interface{} `json:"emitted,omitempty" yaml:",omitempty"`
	Traces  *Traces       `json:"traces,omitempty" yaml:",omitempty"`
}

func newEvents() *Events {
	return &Events{
		Emitted: make([]interface{}, 0, EmittedMessagesInitialCap),
		Traces:  NewTraces(),
	}
}

// AddEmitted adds the given thing to the list of emitted messages.
func (es *Events) AddEmitted(x interface{}) {
	es.Emitted = append(es.Emitted, x)
}

// AddTrace adds the given thing to the list of traces.
func (es *Events) AddTrace(x interface{}) {
	es.Traces.Add(x)
}

// Execution is what a guard run produces: the (possibly refined)
// Bindings plus anything the guard emitted or traced.
//
// A nil Bs means the guard rejected.
type Execution struct {
	Bs match.Bindings
	*Events
}

func NewExecution(bs match.Bindings) *Execution {
	return &Execution{
		Bs:     bs,
		Events: newEvents(),
	}
}

// Interpreter can optionally compile and execute guard code.
type Interpreter interface {
	// Compile can make something that helps when Exec()ing the
	// code later.
	Compile(ctx context.Context, code interface{}) (interface{}, error)

	// Exec executes the code.  The result of a previous Compile()
	// might be provided.
	Exec(ctx context.Context, bs match.Bindings, props Props, code interface{}, compiled interface{}) (*Execution, error)
}

// InterpretersMap maps interpreter names (as used by GuardSources) to
// Interpreters.
type InterpretersMap map[string]Interpreter

func NewInterpretersMap() InterpretersMap {
	return make(InterpretersMap, 4)
}

// DefaultInterpreters will be used by GuardSource.Compile if given
// nil interpreters.
var DefaultInterpreters = make(InterpretersMap)

// Guard decides whether a structurally matched case commits.  Exec
// returns an Execution with nil Bs to reject, which sends selection
// on to the next case.
type Guard interface {
	Exec(context.Context, match.Bindings, Props) (*Execution, error)
}

// FuncGuard is a Guard implemented by a Go function.
type FuncGuard struct {
	F func(context.Context, match.Bindings, Props) (*Execution, error) `json:"-" yaml:"-"`
}

func (g *FuncGuard) Exec(ctx context.Context, bs match.Bindings, props Props) (*Execution, error) {
	if g == nil || g.F == nil {
		return NewExecution(bs), nil
	}
	exe, err := g.F(ctx, bs, props)

	{ // This block just generates tracing data.
		if exe == nil {
			exe = NewExecution(nil)
		}
		t := map[string]interface{}{
			"guard":  "executed",
			"passed": exe.Bs != nil,
		}
		if err != nil {
			t["error"] = err.Error()
		}
		exe.AddTrace(t)
	}

	return exe, err
}

// GuardSource can be compiled to a Guard.
type GuardSource struct {
	Interpreter string      `json:"interpreter,omitempty" yaml:",omitempty"`
	Source      interface{} `json:"source" yaml:"source"`
}

// Copy makes a shallow copy.
func (g *GuardSource) Copy() *GuardSource {
	if g == nil {
		return nil
	}
	return &GuardSource{
		Interpreter: g.Interpreter,
		Source:      g.Source,
	}
}

// Compile attempts to compile the GuardSource into a Guard using the
// given interpreters, which defaults to DefaultInterpreters.
func (g *GuardSource) Compile(ctx context.Context, interpreters InterpretersMap) (Guard, error) {
	if interpreters == nil {
		interpreters = DefaultInterpreters
	}

	interpreter, have := interpreters[g.Interpreter]
	if !have {
		return nil, InterpreterNotFound
	}

	x, err := interpreter.Compile(ctx, g.Source)
	if err != nil {
		return nil, err
	}

	return &FuncGuard{
		F: func(ctx context.Context, bs match.Bindings, props Props) (*Execution, error) {
			return interpreter.Exec(ctx, bs, props, g.Source, x)
		},
	}, nil
}
