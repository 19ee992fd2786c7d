/* Copyright 2018 Comcast Cable Communications Management, LLC
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

// Package testutil has little JSON helpers for tests and generated
// docs, where patterns, messages, and bindings are easier to read as
// JSON than as Go values.
package testutil

import (
	"encoding/json"
	"fmt"
	"log"
)

// JS renders its argument as compact JSON.  Bindings maps and decoded
// pattern trees both come out in the same syntax the test tables use.
// If the argument won't marshal, JS logs and falls back to Go syntax
// rather than failing the caller.
func JS(x interface{}) string {
	bs, err := json.Marshal(x)
	if err != nil {
		log.Printf("warning: testutil.JS %s for %#v", err, x)
		return fmt.Sprintf("%#v", x)
	}
	return string(bs)
}

// Dwimjs parses a string or byte slice as JSON and returns anything
// else unchanged, so test tables can state a pattern or message
// either as JSON text or as an already-built value.
//
// Panics on bad JSON: in a test table that's authoring error, not
// runtime input.
func Dwimjs(x interface{}) interface{} {
	switch vv := x.(type) {
	case []byte:
		return Dwimjs(string(vv))
	case string:
		var v interface{}
		if err := json.Unmarshal([]byte(vv), &v); err != nil {
			panic(fmt.Sprintf("testutil.Dwimjs %s on %s", err, vv))
		}
		return v
	default:
		return x
	}
}
