// Package casematch provides structural pattern matching over runtime
// values: scalars, sequences, mappings, and nominal records.
//
// The value and pattern trees live in packages 'values' and 'pattern'.
// Package 'match' implements the matcher, which takes one pattern and
// one value and either produces Bindings (a map from capture names to
// values) or reports that the pattern did not match.  A failed match is
// an ordinary result, not an error.
//
// Package 'cases' selects the first arm of an ordered case list whose
// pattern matches a subject value and whose guard (if any) passes.  A
// guard is arbitrary code run by an Interpreter; see package
// 'interpreters' for an ECMAScript implementation.  A guard that
// rejects sends selection to the next case, not to failure.
//
// Package 'tools' provides static analysis of case lists, including a
// conservative exhaustiveness check over closed unions of record
// types, and HTML rendering of annotated case lists.
//
// Some command-line tools are in 'cmd'.
package casematch
