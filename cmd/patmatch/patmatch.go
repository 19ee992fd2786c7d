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

// Package main is a little command-line utility to invoke pattern matching.
//
//	patmatch -p '{"likes":"?liked"}' -m '{"likes":"tacos","id":42}' -w '{"liked":"tacos"}'
//
// The pattern is an encoded pattern tree; see the pattern package
// codec for the forms.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"reflect"
	"runtime"
	"time"

	"github.com/Comcast/casematch/match"
	"github.com/Comcast/casematch/pattern"
	"github.com/Comcast/casematch/values"
)

func main() {
	var (
		messageJS = flag.String("m", "", "subject value in JSON")
		patternJS = flag.String("p", "", "pattern tree in JSON")
		wantJS    = flag.String("w", "", "wanted bindings in JSON")

		bench = flag.Int("bench", 0, "number of times to run (and report time)")

		shadow = flag.Bool("shadow", false, "allow binding shadowing")

		message values.Value
		pat     pattern.Pattern
		want    map[string]interface{}
		wanted  bool
	)

	flag.Parse()

	if *messageJS != "" {
		var x interface{}
		if err := json.Unmarshal([]byte(*messageJS), &x); err != nil {
			panic(err)
		}
		v, err := values.FromInterface(x)
		if err != nil {
			panic(err)
		}
		message = v
	}

	if *patternJS != "" {
		var x interface{}
		if err := json.Unmarshal([]byte(*patternJS), &x); err != nil {
			panic(err)
		}
		p, err := pattern.Decode(x, nil)
		if err != nil {
			panic(err)
		}
		pat = p
	}

	if *wantJS != "" {
		if err := json.Unmarshal([]byte(*wantJS), &want); err != nil {
			panic(err)
		}
		wanted = true
	}

	m := &match.Matcher{
		AllowShadowing: *shadow,
		CheckPatterns:  true,
	}

	if 0 < *bench {
		var stats runtime.MemStats
		runtime.ReadMemStats(&stats)
		allocs := stats.TotalAlloc
		then := time.Now()
		for i := 0; i < *bench; i++ {
			if _, _, err := m.Match(pat, message); err != nil {
				panic(err)
			}
		}
		elapsed := time.Now().Sub(then)
		meanNanos := elapsed.Nanoseconds() / int64(*bench)

		runtime.ReadMemStats(&stats)
		allocated := (stats.TotalAlloc - allocs) / uint64(*bench)

		log.Printf("%d iterations, %d mean ns/Match, %d mean bytes allocated per Match", *bench, meanNanos, allocated)
	}

	bs, ok, err := m.Match(pat, message)
	if err != nil {
		panic(err)
	}

	if wanted {
		got := map[string]interface{}{}
		if ok {
			if got, err = bs.Interface(); err != nil {
				panic(err)
			}
		}
		fmt.Printf("%v\n", ok && reflect.DeepEqual(got, want))
		return
	}

	if !ok {
		fmt.Printf("null\n")
		return
	}

	got, err := bs.Interface()
	if err != nil {
		panic(err)
	}
	js, err := json.Marshal(&got)
	if err != nil {
		panic(err)
	}

	fmt.Printf("%s\n", js)
}
