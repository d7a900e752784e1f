// Package climetlab is a data-access and cataloguing layer for meteorological
// datasets. It provides:
//
// - Keyword-argument normalization and availability checking through ordered
// rule chains (package args) with registration-time consistency checks
// - Availability indexes over per-record metadata with unique values and a
// full-hypercube test (package availability)
// - Field sets that build and memoize their availability lazily (package fieldset)
// - Local mirrors substituted for remote sources (package mirror) and a thin
// loader boundary (package sources)
// - A stable validation error model via Issues (keyword, code, message)
//
// Design policy:
// - Keep only the shared error model in the root package; put components under
// their own packages and helpers under internal/.
// - Configuration errors (rules that contradict each other) surface when rules
// are registered, validation errors when a call is made.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	av, _ := availability.Load(fsys, "availability.json")
//	f := args.Wrap(retrieve).
//		Normalize("levelist", normalize.Int()).
//		Availability(av)
//	out, err := f.Call(nil, map[string]any{"level": "500", "param": "t"})
//	if iss, ok := climetlab.AsIssues(err); ok {
//		// inspect iss[0].Key, iss[0].Code
//	}
package climetlab
