// Package meta populates class metadata: signature tables, mixin
// applications, generic instantiation and extension members.
//
// Class declarations call into this package once, while the declaration is
// evaluated. After that a class record is treated as immutable: the subtype
// engine caches results on the assumption that no class changes shape.
//
// Generic instantiations are memoized in a Registry. The registry keeps an
// arena of instantiated classes and an index from (family, type argument
// identities) to an arena slot, so identical argument tuples always yield
// the identical *types.Class.
package meta
