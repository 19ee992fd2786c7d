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

// Package main is a utility for working with case-list files.
//
// A case-list file is YAML: optional record type and union
// declarations plus the list itself.
//
//	casetool analyze < door.yaml
//	casetool check -union events < door.yaml
//	casetool select -m '{"$type":"press","count":3}' < door.yaml
//	casetool html < door.yaml > door.html
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"github.com/Comcast/casematch/cases"
	"github.com/Comcast/casematch/interpreters"
	"github.com/Comcast/casematch/tools"
	"github.com/Comcast/casematch/util"
	"github.com/Comcast/casematch/values"

	"github.com/jsccast/yaml"
)

// TypeDef declares a record type in a case-list file.
type TypeDef struct {
	Name   string   `yaml:"name"`
	Parent string   `yaml:"parent,omitempty"`
	Fields []string `yaml:"fields"`
}

// UnionDef declares a closed union in a case-list file.
type UnionDef struct {
	Name     string   `yaml:"name"`
	Variants []string `yaml:"variants"`
}

// ListFile is what casetool reads: type declarations plus the case
// list.
type ListFile struct {
	Types  []TypeDef   `yaml:"types,omitempty"`
	Unions []UnionDef  `yaml:"unions,omitempty"`
	List   *cases.List `yaml:"list"`
}

func (f *ListFile) registry() (*values.Registry, error) {
	reg := values.NewRegistry()
	for _, td := range f.Types {
		var parent *values.RecordType
		if td.Parent != "" {
			p, have := reg.Type(td.Parent)
			if !have {
				return nil, fmt.Errorf(`type "%s" has unknown parent "%s"`, td.Name, td.Parent)
			}
			parent = p
		}
		if _, err := reg.DefineUnder(parent, td.Name, td.Fields...); err != nil {
			return nil, err
		}
	}
	for _, ud := range f.Unions {
		variants := make([]*values.RecordType, len(ud.Variants))
		for i, name := range ud.Variants {
			t, have := reg.Type(name)
			if !have {
				return nil, fmt.Errorf(`union "%s" has unknown variant "%s"`, ud.Name, name)
			}
			variants[i] = t
		}
		if _, err := reg.DefineUnion(ud.Name, variants...); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func load(ctx context.Context) (*ListFile, *values.Registry, error) {
	bs, err := ioutil.ReadAll(os.Stdin)
	if err != nil {
		return nil, nil, err
	}

	if len(bs) == 0 {
		bs = []byte(DefaultListYAML)
	}

	var f ListFile
	if err = yaml.Unmarshal(bs, &f); err != nil {
		return nil, nil, err
	}
	if f.List == nil {
		return nil, nil, fmt.Errorf("no case list")
	}

	reg, err := f.registry()
	if err != nil {
		return nil, nil, err
	}
	f.List.Registry = reg

	if err = f.List.Compile(ctx, interpreters.Standard(), false); err != nil {
		return nil, nil, err
	}

	return &f, reg, nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func emit(x interface{}) {
	js, err := json.MarshalIndent(&x, "", "  ")
	if err != nil {
		fatal(err)
	}
	fmt.Printf("%s\n", js)
}

func main() {

	if len(os.Args) < 2 {
		Usage()
		os.Exit(1)
	}

	ctx := context.Background()

	switch os.Args[1] {

	case "analyze":
		f, _, err := load(ctx)
		if err != nil {
			fatal(err)
		}
		a, err := tools.Analyze(f.List)
		if err != nil {
			fatal(err)
		}
		emit(a)

	case "check":
		flags := flag.NewFlagSet("check", flag.ExitOnError)
		unionName := flags.String("union", "", "name of the subject union")
		if err := flags.Parse(os.Args[2:]); err != nil {
			fatal(err)
		}

		f, reg, err := load(ctx)
		if err != nil {
			fatal(err)
		}
		u, have := reg.Union(*unionName)
		if !have {
			fatal(fmt.Errorf(`unknown union "%s"`, *unionName))
		}
		uncovered, err := tools.CheckExhaustive(u, f.List)
		if err != nil {
			fatal(err)
		}
		names := make([]string, len(uncovered))
		for i, t := range uncovered {
			names[i] = t.Name
		}
		emit(map[string]interface{}{
			"union":     u.Name,
			"uncovered": names,
		})
		if 0 < len(names) {
			os.Exit(1)
		}

	case "select":
		flags := flag.NewFlagSet("select", flag.ExitOnError)
		messageJS := flags.String("m", "", "subject value in JSON")
		traces := flags.Bool("t", false, "also emit traces")
		keep := flags.String("keep", "", "comma-separated capture names to keep in the output bindings")
		verbose := flags.Bool("v", false, "log case consideration")
		if err := flags.Parse(os.Args[2:]); err != nil {
			fatal(err)
		}
		util.Logging = *verbose

		f, reg, err := load(ctx)
		if err != nil {
			fatal(err)
		}

		var x interface{}
		if err := json.Unmarshal([]byte(*messageJS), &x); err != nil {
			fatal(err)
		}
		// A map with a $type key becomes a record of that type.
		v, err := values.Decode(x, reg)
		if err != nil {
			fatal(err)
		}
		if err := values.Check(v); err != nil {
			fatal(err)
		}

		sel, ts, err := f.List.Consider(ctx, v, nil)
		if err != nil {
			fatal(err)
		}
		if sel != nil && *keep != "" {
			sel.Bs = sel.Bs.DeleteExcept(strings.Split(*keep, ",")...)
		}
		if *traces {
			emit(ts)
		}
		emit(sel)

	case "html":
		f, _, err := load(ctx)
		if err != nil {
			fatal(err)
		}
		if err := tools.RenderListHTML(f.List, os.Stdout); err != nil {
			fatal(err)
		}

	case "yamltojson":
		bs, err := ioutil.ReadAll(os.Stdin)
		if err != nil {
			fatal(err)
		}
		var x interface{}
		if err = yaml.Unmarshal(bs, &x); err != nil {
			fatal(err)
		}
		if bs, err = json.MarshalIndent(&x, "", "  "); err != nil {
			fatal(err)
		}
		fmt.Printf("%s\n", bs)

	case "jsontoyaml":
		bs, err := ioutil.ReadAll(os.Stdin)
		if err != nil {
			fatal(err)
		}
		var x interface{}
		if err = json.Unmarshal(bs, &x); err != nil {
			fatal(err)
		}
		if bs, err = yaml.Marshal(&x); err != nil {
			fatal(err)
		}
		fmt.Printf("%s", bs)

	default:
		fmt.Printf("Unknown subcommand \"%s\"\n", os.Args[1])
		Usage()
		os.Exit(1)
	}
}

func Usage() {
	fmt.Printf(`casetool subcommands:

  analyze               report structure of the case list on stdin
  check -union NAME     report variants of NAME no case covers
  select -m JSON [-t] [-keep NAMES] [-v]
                        select a case for the given subject value
  html                  render the case list as HTML
  yamltojson            convert stdin YAML to JSON
  jsontoyaml            convert stdin JSON to YAML
`)
}

// DefaultListYAML is used when stdin is empty.
var DefaultListYAML = `
types:
  - name: event
  - name: press
    parent: event
    fields: [count]
  - name: release
    parent: event
unions:
  - name: events
    variants: [press, release]
list:
  name: doorbell
  cases:
    - pattern: {"type": "press", "fields": ["?n"]}
      guard:
        interpreter: ecmascript
        source: |
          return 1 < _.bindings.n;
      token: longPress
    - pattern: {"type": "press"}
      token: ding
    - pattern: {"type": "release"}
      token: quiet
`
