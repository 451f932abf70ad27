// Package dispatch resolves and invokes members on values whose static type
// is unknown.
//
// Resolution is explicit: Lookup returns a MemberLookup that is either
// absent or names a field, getter or method together with the method's
// declared signature. Invocation goes through CheckedApply, which validates
// the arguments against that signature before calling. Every failure of the
// dynamic contract (missing member, wrong arity, unknown named argument,
// argument of the wrong type) is reported as the same *NoSuchMethodError.
package dispatch
