// Package harness runs compiler conformance scenarios.
//
// A scenario names a field catalog, an input surface and the input itself,
// and states what compiling it must produce: the AQL of each saved query,
// or the error category and message the compiler must fail with.
//
// # Scenario Format
//
//	name: hostname_contains
//	description: "A single contains filter"
//	catalog: ../catalog.yaml
//	lookups: ../lookups.yaml
//	surface: text
//	input: |
//	  field=hostname, operator=contains, value=blah
//	expect:
//	  query: (hostname == regex("blah", "i"))
//
// For inputs with several saved queries use expect.queries with a name
// and query per group. For failing inputs use expect.error:
//
//	expect:
//	  error:
//	    code: FIELD_NOT_FOUND
//	    contains: no field named "nope"
//
// # Deterministic Output
//
// Saved query ids come from testutil.SequentialIDs, so the JSON snapshot
// of a run is byte-identical across runs and can be compared against a
// golden file with RunWithGolden.
package harness
