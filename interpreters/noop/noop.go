package noop

import (
	"context"
	"log"

	"github.com/Comcast/casematch/cases"
	"github.com/Comcast/casematch/match"
)

// Interpreter is a cases.Interpreter whose guards always pass,
// returning the bindings without modification.
type Interpreter struct {
	// Silent, if true, suppresses warning log messages.
	Silent bool
}

func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

func (i *Interpreter) Compile(ctx context.Context, code interface{}) (interface{}, error) {
	if !i.Silent {
		log.Printf("warning: Using noop Interpreter for compilation")
	}
	return nil, nil
}

func (i *Interpreter) Exec(ctx context.Context, bs match.Bindings, props cases.Props, code interface{}, compiled interface{}) (*cases.Execution, error) {
	if !i.Silent {
		log.Printf("warning: Using noop Interpreter for execution")
	}
	return cases.NewExecution(bs), nil
}
