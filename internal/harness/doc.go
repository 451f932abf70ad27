// Package harness runs conformance scenarios against the runtime.
//
// A scenario installs CUE class declarations into a fresh runtime, performs
// a sequence of dispatch, subtype and cast operations, and validates the
// recorded dispatch trace.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	specs:
//	  - ../specs
//	session: test-session-1
//	steps:
//	  - op: new
//	    class: Box<int>
//	    args: [5]
//	    as: b
//	  - op: send
//	    target: $b
//	    member: get
//	    expect:
//	      value: 5
//	  - op: subtype
//	    sub: Box<int>
//	    super: Box<num>
//	    expect:
//	      result: true
//	assertions:
//	  - type: trace_contains
//	    op: send
//	    member: get
//	  - type: final_state
//	    table: events
//	    where: { member: get }
//	    expect: { outcome: ok }
//
// Steps are subtype, new, load, put, send, index, set_index, call, intern,
// cast and is. A step result bound with as is referenced later as $name.
//
// # Assertion Types
//
//   - trace_contains: some event matches the given filters
//   - trace_order: "op member" pairs appear in the given order
//   - trace_count: exactly count events match the filters
//   - final_state: one row of an event store table holds the expected values
//
// # Deterministic Testing
//
// Every scenario runs with a fixed session id, a fresh logical clock and
// an in-memory SQLite event store, so the same scenario always produces
// the same trace. RunWithGolden compares that trace, as canonical JSON,
// with testdata/golden/<name>.golden.
package harness
