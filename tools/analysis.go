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

package tools

import (
	"sort"
	"strconv"

	"github.com/Comcast/casematch/cases"
	"github.com/Comcast/casematch/pattern"
)

// ListAnalysis reports structural observations about a case list that
// don't require a subject value: counts, tokens that repeat, cases
// that can never be reached, and the capture names each case can
// produce.
type ListAnalysis struct {
	list *cases.List

	Errors          []string
	CaseCount       int
	Guards          int
	Captures        []string
	Tokens          []string
	DuplicateTokens []string
	MissingTokens   []string

	// Unreachable lists indexes of cases that follow an unguarded
	// irrefutable pattern in the same list.  Selection can never
	// get past such a case.
	Unreachable []int

	Interpreters []string
}

// Analyze inspects the case list.
//
// The list's patterns should already be compiled; an uncompiled case
// is reported in Errors rather than failing the whole analysis.
func Analyze(l *cases.List) (*ListAnalysis, error) {
	a := ListAnalysis{
		list:      l,
		CaseCount: len(l.Cases),
		Errors:    make([]string, 0, 8),
	}

	captures, tokens, duplicates, interpreters := make(map[string]bool), make(map[string]bool), make(map[string]bool), make(map[string]bool)

	blocked := -1 // index of the first unguarded irrefutable case
	for i, c := range l.Cases {
		if c == nil {
			a.Errors = append(a.Errors, "case "+strconv.Itoa(i)+" is nil")
			continue
		}

		if 0 <= blocked {
			a.Unreachable = append(a.Unreachable, i)
		}

		guarded := c.Guard != nil || c.GuardSource != nil
		if guarded {
			a.Guards++
			if c.GuardSource != nil {
				interpreters[c.GuardSource.Interpreter] = true
			}
		}

		if c.Token == "" {
			a.MissingTokens = append(a.MissingTokens, strconv.Itoa(i))
		} else {
			if tokens[c.Token] {
				duplicates[c.Token] = true
			}
			tokens[c.Token] = true
		}

		if c.Pattern == nil {
			a.Errors = append(a.Errors, "case "+strconv.Itoa(i)+" has no compiled pattern")
			continue
		}
		if err := pattern.Validate(c.Pattern); err != nil {
			a.Errors = append(a.Errors, "case "+strconv.Itoa(i)+": "+err.Error())
			continue
		}
		if err := pattern.CheckAlternatives(c.Pattern); err != nil {
			a.Errors = append(a.Errors, "case "+strconv.Itoa(i)+": "+err.Error())
		}
		for _, name := range pattern.Binds(c.Pattern) {
			captures[name] = true
		}

		if blocked < 0 && !guarded && pattern.Irrefutable(c.Pattern) {
			blocked = i
		}
	}

	a.Captures = keysToStringSlice(captures)
	a.Tokens = keysToStringSlice(tokens)
	a.DuplicateTokens = keysToStringSlice(duplicates)
	a.Interpreters = keysToStringSlice(interpreters, "default")

	return &a, nil
}

// keysToStringSlice converts the keys from a map into a sorted slice
// of strings.  Optionally, it can add a default value if the map is
// empty.
func keysToStringSlice(m map[string]bool, defaultValue ...string) []string {
	var list []string
	for key := range m {
		list = append(list, key)
	}
	sort.Strings(list)

	if len(list) == 0 && len(defaultValue) > 0 {
		return []string{defaultValue[0]}
	}

	return list
}
