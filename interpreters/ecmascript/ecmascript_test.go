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

package ecmascript

import (
	"context"
	"testing"
	"time"

	"github.com/Comcast/casematch/cases"
	"github.com/Comcast/casematch/match"
	"github.com/Comcast/casematch/values"
)

func exec(t *testing.T, i *Interpreter, src string, bs match.Bindings, props cases.Props) *cases.Execution {
	t.Helper()
	exe, err := i.Exec(context.Background(), bs, props, src, nil)
	if err != nil {
		t.Fatal(err)
	}
	return exe
}

func TestVerdictTrue(t *testing.T) {
	bs := match.NewBindings().Extend("x", values.Number(1))
	exe := exec(t, NewInterpreter(), "return true;", bs, nil)
	if exe.Bs == nil {
		t.Fatal("expected the guard to pass")
	}
	if !values.Number(1).Equal(exe.Bs["x"]) {
		t.Fatal("bindings should pass through unchanged")
	}
}

func TestVerdictFalse(t *testing.T) {
	exe := exec(t, NewInterpreter(), "return false;", match.NewBindings(), nil)
	if exe.Bs != nil {
		t.Fatal("expected the guard to reject")
	}
}

func TestVerdictNothing(t *testing.T) {
	// Falling off the end rejects.
	exe := exec(t, NewInterpreter(), "var unused = 1;", match.NewBindings(), nil)
	if exe.Bs != nil {
		t.Fatal("expected the guard to reject")
	}
}

func TestVerdictMap(t *testing.T) {
	bs := match.NewBindings().Extend("x", values.Number(1))
	exe := exec(t, NewInterpreter(),
		"return {x: _.bindings.x, doubled: 2 * _.bindings.x};", bs, nil)
	if exe.Bs == nil {
		t.Fatal("expected the guard to pass")
	}
	if !values.Number(2).Equal(exe.Bs["doubled"]) {
		t.Fatalf("got %#v", exe.Bs["doubled"])
	}
}

func TestVerdictGarbage(t *testing.T) {
	if _, err := NewInterpreter().Exec(context.Background(),
		match.NewBindings(), nil, `return "nope";`, nil); err == nil {
		t.Fatal("a string is not a guard verdict")
	}
}

func TestBindingsAreCopies(t *testing.T) {
	bs := match.NewBindings().Extend("x", values.Number(1))
	exe := exec(t, NewInterpreter(), "_.bindings.x = 42; return true;", bs, nil)
	if exe.Bs == nil {
		t.Fatal("expected the guard to pass")
	}
	if !values.Number(1).Equal(bs["x"]) {
		t.Fatal("guard code mutated the caller's bindings")
	}
}

func TestProps(t *testing.T) {
	exe := exec(t, NewInterpreter(), "return 10 < _.props.limit;",
		match.NewBindings(), cases.Props{"limit": 100})
	if exe.Bs == nil {
		t.Fatal("expected the guard to pass")
	}
}

func TestOut(t *testing.T) {
	exe := exec(t, NewInterpreter(), `_.out({note: "hello"}); return true;`,
		match.NewBindings(), nil)
	if len(exe.Emitted) != 1 {
		t.Fatalf("emitted %d messages", len(exe.Emitted))
	}
}

func TestCompileError(t *testing.T) {
	if _, err := NewInterpreter().Compile(context.Background(), "this is not javascript"); err == nil {
		t.Fatal("expected a compile error")
	}
	if _, err := NewInterpreter().Compile(context.Background(), 42); err == nil {
		t.Fatal("source should be a string")
	}
}

func TestExtendedMatch(t *testing.T) {
	i := &Interpreter{Extended: true}
	exe := exec(t, i, `
var bs = _.match({"a": "?x"}, {"a": 1, "b": 2});
return bs && bs.x == 1;
`, match.NewBindings(), nil)
	if exe.Bs == nil {
		t.Fatal("expected the guard to pass")
	}

	exe = exec(t, i, `return null == _.match({"a": "?x"}, {"b": 2});`,
		match.NewBindings(), nil)
	if exe.Bs == nil {
		t.Fatal("a failed match should be null")
	}
}

func TestExtendedRandstr(t *testing.T) {
	i := &Interpreter{Extended: true}
	exe := exec(t, i, `return _.randstr() != _.randstr();`, match.NewBindings(), nil)
	if exe.Bs == nil {
		t.Fatal("expected two different strings")
	}
}

func TestExtendedEsc(t *testing.T) {
	i := &Interpreter{Extended: true}
	exe := exec(t, i, `return _.esc("a b") == "a+b";`, match.NewBindings(), nil)
	if exe.Bs == nil {
		t.Fatal("expected the guard to pass")
	}
}

func TestExtendedCronNext(t *testing.T) {
	i := &Interpreter{Extended: true}
	exe := exec(t, i, `return 0 < _.cronNext("* * * * *").length;`, match.NewBindings(), nil)
	if exe.Bs == nil {
		t.Fatal("expected the guard to pass")
	}
}

func TestInterrupt(t *testing.T) {
	i := &Interpreter{Test: true}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := i.Exec(ctx, match.NewBindings(), nil, "_.sleep(1000); return true;", nil)
	if err == nil {
		t.Fatal("expected an interrupt")
	}
}

func TestDefaultInterpreterRegistered(t *testing.T) {
	if _, have := cases.DefaultInterpreters["ecmascript"]; !have {
		t.Fatal("ecmascript should register itself")
	}
}

func TestGuardInList(t *testing.T) {
	l := &cases.List{
		Cases: []*cases.Case{
			{
				PatternTree: map[string]interface{}{"n": "?n"},
				GuardSource: &cases.GuardSource{
					Interpreter: "ecmascript",
					Source:      "return 10 < _.bindings.n;",
				},
				Token: "big",
			},
			{PatternTree: "?", Token: "small"},
		},
	}
	if err := l.Compile(context.Background(), nil, false); err != nil {
		t.Fatal(err)
	}

	v, err := values.FromInterface(map[string]interface{}{"n": 3.0})
	if err != nil {
		t.Fatal(err)
	}
	sel, err := l.Select(context.Background(), v, nil)
	if err != nil {
		t.Fatal(err)
	}
	if sel == nil || sel.Token != "small" {
		t.Fatalf("got %#v", sel)
	}

	v, err = values.FromInterface(map[string]interface{}{"n": 30.0})
	if err != nil {
		t.Fatal(err)
	}
	sel, err = l.Select(context.Background(), v, nil)
	if err != nil {
		t.Fatal(err)
	}
	if sel == nil || sel.Token != "big" {
		t.Fatalf("got %#v", sel)
	}
}
