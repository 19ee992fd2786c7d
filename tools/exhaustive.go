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

// Package tools provides static analysis and rendering of case
// lists.  Nothing here runs at match time; these are build/lint-time
// helpers.
package tools

import (
	"github.com/Comcast/casematch/cases"
	"github.com/Comcast/casematch/pattern"
	"github.com/Comcast/casematch/values"
)

// CheckExhaustive reports which variants of the closed union no case
// covers unconditionally.
//
// The check is deliberately conservative: a case removes a variant
// from the remaining set only if it has no guard and its pattern
// matches every instance of that variant.  A guarded case never
// counts, since a guard can reject at runtime.  An empty result means
// every variant provably reaches some unconditional arm; a non-empty
// result does not prove a runtime fall-through.
//
// The case patterns should already be compiled (see List.Compile).
func CheckExhaustive(subject *values.Union, l *cases.List) ([]*values.RecordType, error) {
	remaining := make([]*values.RecordType, len(subject.Variants))
	copy(remaining, subject.Variants)

	for i, c := range l.Cases {
		if c.Guard != nil || c.GuardSource != nil {
			continue
		}
		if c.Pattern == nil {
			return nil, &cases.BadCase{
				List:  l,
				Index: i,
				Err:   &pattern.Malformed{Reason: "no compiled pattern"},
			}
		}
		kept := remaining[:0]
		for _, variant := range remaining {
			if !Covers(c.Pattern, variant) {
				kept = append(kept, variant)
			}
		}
		remaining = kept
		if len(remaining) == 0 {
			break
		}
	}

	return remaining, nil
}

// Covers reports whether the pattern matches every instance of the
// variant unconditionally.
func Covers(p pattern.Pattern, variant *values.RecordType) bool {
	switch v := p.(type) {
	case *pattern.Wildcard, *pattern.Capture:
		return true
	case *pattern.As:
		return Covers(v.Inner, variant)
	case *pattern.Or:
		for _, alt := range v.Alternatives {
			if Covers(alt, variant) {
				return true
			}
		}
	case *pattern.Object:
		if !variant.AssignableTo(v.Type) {
			return false
		}
		for _, e := range v.Positional {
			if !pattern.Irrefutable(e) {
				return false
			}
		}
		for _, f := range v.Named {
			if !pattern.Irrefutable(f.Pattern) {
				return false
			}
		}
		return true
	}
	// A Literal can't cover a record variant: records have
	// identity beyond any single literal value.  Sequence and
	// Mapping patterns never match records at all.
	return false
}
