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

// Package ecmascript provides an ECMAScript-compatible guard
// interpreter.
package ecmascript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/Comcast/casematch/cases"
	"github.com/Comcast/casematch/match"
	"github.com/Comcast/casematch/pattern"
	"github.com/Comcast/casematch/util"
	"github.com/Comcast/casematch/values"

	"github.com/dop251/goja"
	"github.com/gorhill/cronexpr"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned by Exec if the execution is
	// interrupted.
	Interrupted = errors.New(InterruptedMessage)
)

// init adds an Interpreter as one of the DefaultInterpreters.
func init() {
	cases.DefaultInterpreters["ecmascript"] = NewInterpreter()
}

// Interpreter implements cases.Interpreter using Goja, which is a Go
// implementation of ECMAScript 5.1+.
//
// See https://github.com/dop251/goja.
type Interpreter struct {
	// Test exposes some runtime capabilities (sleep, log) that
	// are only useful when testing.
	Test bool

	// Extended adds some additional properties (randstr, esc,
	// cronNext, match).
	Extended bool

	// Registry resolves type tags for the 'match' extension.
	Registry *values.Registry
}

// NewInterpreter makes a new Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

func wrapSrc(src string) string {
	return fmt.Sprintf("(function() {\n%s\n}());\n", src)
}

func AsSource(src interface{}) (code string, err error) {
	switch vv := src.(type) {
	case string:
		code = vv
		return
	default:
		err = fmt.Errorf("bad ECMAScript source (%T)", src)
		return
	}
}

// Compile calls goja.Compile.  This step is optional.
func (i *Interpreter) Compile(ctx context.Context, src interface{}) (interface{}, error) {
	code, err := AsSource(src)
	if err != nil {
		return nil, err
	}

	code = wrapSrc(code)

	obj, err := goja.Compile("", code, true)
	if err != nil {
		return nil, errors.New(err.Error() + ": " + code)
	}

	return obj, nil
}

func protest(o *goja.Runtime, x interface{}) {
	panic(o.ToValue(x))
}

// Exec implements the Interpreter method of the same name.
//
// The following properties are available from the runtime at _.
//
// These things are most important:
//
//	bindings: the map of the bindings the pattern produced.
//	props: cases.Props
//	out(obj): Add the given object as a message to emit.
//
// Guard protocol: the code's value decides the guard.  Returning true
// passes with the bindings unchanged; returning a map passes with
// that map as the refined bindings; returning false, null, or nothing
// rejects, which sends selection to the next case.
//
// Extended properties (enabled by the interpreter's Extended
// property):
//
//	randstr(): generate a random string.
//	esc(s): URL query-escape the given string.
//	cronNext(s): Return a string representing (RFC3339Nano) the
//	  next time for the given crontab expression.
//	match(pat, value): Execute the pattern matcher; returns the
//	  bindings map or null.
//
// Testing properties (enabled by the interpreter's Test property):
//
//	sleep(ms): sleep for the given number of milliseconds.
//	log(x): log the given value as JSON.
func (i *Interpreter) Exec(ctx context.Context, bs match.Bindings, props cases.Props, src interface{}, compiled interface{}) (*cases.Execution, error) {
	exe := cases.NewExecution(nil)

	var p *goja.Program
	if compiled == nil {
		var err error
		if compiled, err = i.Compile(ctx, src); err != nil {
			return exe, err
		}
	}
	var is bool
	if p, is = compiled.(*goja.Program); !is {
		return exe, fmt.Errorf("ECMAScript bad compilation: %T %#v", compiled, compiled)
	}

	env := map[string]interface{}{
		"ctx": ctx,
	}
	if props == nil {
		env["props"] = map[string]interface{}{}
	} else {
		env["props"] = map[string]interface{}(props.Copy())
	}

	if bs != nil {
		// This interpreter allows code to modify values, and we
		// don't want any side effects.  So the guard sees a
		// JSON-shaped copy.
		bsCopy, err := bs.Interface()
		if err != nil {
			return nil, err
		}
		env["bindings"] = bsCopy
	}

	o := goja.New()

	o.Set("_", env)

	// "out" adds the given message to the list of messages to
	// emit.
	env["out"] = func(x interface{}) interface{} {
		var err error

		switch vv := x.(type) {
		case goja.Value:
			x = vv.Export()
		}

		if x, err = canonicalize(x); err != nil {
			// Will end up as a Javascript exception.
			panic(err)
		}

		exe.AddEmitted(x)

		return x
	}

	if i.Extended {
		env["randstr"] = func() interface{} {
			return util.Gensym(32)
		}

		env["esc"] = func(x interface{}) interface{} {
			switch vv := x.(type) {
			case goja.Value:
				x = vv.Export()
			}
			s, is := x.(string)
			if !is {
				protest(o, "not a string")
			}
			return url.QueryEscape(s)
		}

		// cronNext parses the given string as a crontab expression
		// using github.com/gorhill/cronexpr.  Returns the next time
		// as a string formatted in time.RFC3339Nano (UTC).
		env["cronNext"] = func(x interface{}) interface{} {
			switch vv := x.(type) {
			case goja.Value:
				x = vv.Export()
			}
			cronExpr, is := x.(string)
			if !is {
				protest(o, "not a string")
			}

			c, err := cronexpr.Parse(cronExpr)
			if err != nil {
				protest(o, err.Error())
			}
			return c.Next(time.Now()).UTC().Format(time.RFC3339Nano)
		}

		// match is a utility that invokes the pattern matcher on
		// an encoded pattern tree and a JSON-shaped value.
		env["match"] = func(pat, subject goja.Value) interface{} {
			px, err := canonicalize(pat.Export())
			if err != nil {
				protest(o, err.Error())
			}
			pp, err := pattern.Decode(px, i.Registry)
			if err != nil {
				protest(o, err.Error())
			}

			vx, err := canonicalize(subject.Export())
			if err != nil {
				protest(o, err.Error())
			}
			v, err := values.FromInterface(vx)
			if err != nil {
				protest(o, err.Error())
			}

			got, ok, err := match.Match(pp, v)
			if err != nil {
				protest(o, err.Error())
			}
			if !ok {
				return nil
			}
			m, err := got.Interface()
			if err != nil {
				protest(o, err.Error())
			}
			return m
		}
	}

	if i.Test {
		env["sleep"] = func(n interface{}) interface{} {
			switch vv := n.(type) {
			case goja.Value:
				n = vv.Export()
			}
			ms, is := n.(int64)
			if !is {
				panic(fmt.Sprintf("a %T is not an %T", n, ms))
			}
			time.Sleep(time.Duration(ms) * time.Millisecond)
			return nil
		}

		env["log"] = func(x interface{}) interface{} {
			switch vv := x.(type) {
			case goja.Value:
				x = vv.Export()
			}
			js, err := json.Marshal(&x)
			if err != nil {
				log.Println("ecmascript.log (can't marshal: " + err.Error() + ")")
			} else {
				log.Println(string(js))
			}

			return x
		}
	}

	// We want to make sure that the following goroutine is
	// terminated as soon as possible.
	ictx, cancel := context.WithCancel(ctx)
	go func() {
		<-ictx.Done()
		// If this Exec method calls cancel() after RunProgram
		// returns, then we'll never see this
		// InterruptedMessage, which is actually the behavior
		// we want.  In this case, we weren't actually
		// interrupted.
		o.Interrupt(InterruptedMessage)
	}()

	v, err := RunProgram(o, p)
	cancel()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return nil, Interrupted
		}
		return nil, err
	}

	x := v.Export()

	switch vv := x.(type) {
	case *goja.InterruptedError:
		return nil, vv
	case bool:
		if vv {
			exe.Bs = bs
		}
	case map[string]interface{}:
		result := match.NewBindings()
		for name, y := range vv {
			val, err := values.FromInterface(y)
			if err != nil {
				return nil, err
			}
			result[name] = val
		}
		exe.Bs = result
	case nil:
	default:
		return nil, fmt.Errorf("%#v (%T) isn't a guard verdict", x, x)
	}

	return exe, nil
}

// canonicalize is an abomination
func canonicalize(x interface{}) (interface{}, error) {
	js, err := json.Marshal(&x)
	if err != nil {
		return nil, err
	}
	var y interface{}
	if err = json.Unmarshal(js, &y); err != nil {
		return nil, err
	}
	return y, nil
}

func RunProgram(o *goja.Runtime, p *goja.Program) (v goja.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s", r)
		}
	}()
	return o.RunProgram(p)
}
