// Package schema loads class declarations written in CUE and installs them
// into a runtime.
//
// A declaration file holds classes under class: <Name>: {...} and function
// typedefs under typedef: <Name>: "<type>". Member bodies are a small
// declarative form (field:x, set:x, arg:0, self, const:1, new), enough to
// drive dispatch end to end without a source-language front end.
//
//	class: Box: {
//		params: ["T"]
//		fields: ["value"]
//		ctor:   "(T) -> void"
//		methods: get: {sig: "() -> T", body: "field:value"}
//	}
//
// Type expressions use the notation FuncType.String renders:
// dynamic, void, bottom, native, Name, Name<T, U>, (A, [B]) -> R and
// (A, {x: B}) -> R. A leading ~ marks a fuzzy function type. A generic
// family name without arguments denotes its raw descriptor.
package schema
