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
	"fmt"
	"io"

	"github.com/Comcast/casematch/cases"
	"github.com/Comcast/casematch/pattern"
	. "github.com/Comcast/casematch/util/testutil"

	md "github.com/russross/blackfriday/v2"
)

// RenderCasesHTML writes the case list as an HTML fragment.  Doc
// strings are rendered as Markdown.
func RenderCasesHTML(l *cases.List, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<div class="listName">%s</div>`, l.Name)
	if l.Doc != "" {
		f(`<div class="listDoc doc">%s</div>`, md.Run([]byte(l.Doc)))
	}

	f(`<div class="cases"><table>`)
	for i, c := range l.Cases {
		f(`<tr class="case"><td><div class="caseNum">%d</div></td><td>`, i)
		f(`<table>`)
		if c.Doc != "" {
			f(`<tr><td></td><td colspan="2"><div class="caseDoc doc">%s</div></td></tr>`, md.Run([]byte(c.Doc)))
		}
		tree := c.PatternTree
		if tree == nil && c.Pattern != nil {
			if x, err := pattern.Encode(c.Pattern); err == nil {
				tree = x
			}
		}
		if tree != nil {
			f(`<tr><td></td><td>pattern</td>`)
			f(`<td><code>%s</code></td></tr>`, JS(tree))
		}
		if c.GuardSource != nil {
			f(`<tr><td></td><td>guard</td>`)
			f(`<td><div class="code"><pre>%s</pre></div></td></tr>`, c.GuardSource.Source)
		}
		if c.Token != "" {
			f(`<tr><td></td><td>token</td>`)
			f(`<td><code>%s</code></td></tr>`, c.Token)
		}
		f(`</table>`)
		f(`</td></tr>`)
	}
	f(`</table></div>`)

	return nil
}

// RenderListHTML writes a complete HTML page for the case list,
// including the analysis.
func RenderListHTML(l *cases.List, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<!DOCTYPE html>`)
	f(`<html><head><meta charset="utf-8"><title>%s</title>`, l.Name)
	f(`<style>%s</style>`, css)
	f(`</head><body>`)

	if err := RenderCasesHTML(l, out); err != nil {
		return err
	}

	if a, err := Analyze(l); err == nil {
		f(`<div class="analysis"><pre>%s</pre></div>`, JS(a))
	}

	f(`</body></html>`)

	return nil
}

var css = `
body { font-family: sans-serif; margin: 2em; }
.listName { font-size: 150%; font-weight: bold; }
.doc { margin: 0.5em 0; }
.caseNum { font-weight: bold; padding-right: 0.5em; }
code, pre { background: #f4f4f4; padding: 2px 4px; }
.analysis { margin-top: 2em; color: #555; }
`
