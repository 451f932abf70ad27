// Package types is the runtime type representation.
//
// Every runtime type is a Type. The variants are:
//   - the singletons Dynamic, Void, Bottom and NativeTop
//   - the foreign shape singletons ForeignObject, ForeignFunction and ForeignArray,
//     which the subtype engine maps onto the core Object, Function and List classes
//   - *Class, a nominal type (a class declaration or a generic instantiation)
//   - *FuncType, an arrow type
//   - *Typedef, a lazily resolved alias for an arrow type
//
// Singletons and classes compare by identity. Two *FuncType values are never
// considered identical by this package; structural comparison is the subtype
// engine's job.
//
// This package imports nothing internal. Class metadata operations (mixins,
// generic instantiation, extension members) live in package meta and act on
// the records defined here.
package types
