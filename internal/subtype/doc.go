// Package subtype implements the runtime subtype relation.
//
// Checker.IsSubtype answers t1 <: t2 for any pair of runtime types and
// memoizes the answer per ordered pair. Entries are never invalidated one at
// a time: the cache stays valid because class records do not change after
// their declaration is evaluated. A runtime reset drops the whole Checker.
//
// The rules, in order:
//  1. identity
//  2. top and bottom: dynamic and Object are supertypes of everything,
//     bottom is a subtype of everything
//  3. nominal: classes of the same generic family compare their type
//     arguments covariantly (a raw target accepts any instantiation);
//     otherwise the supertype, mixins and interfaces are searched
//  4. functional: covariant return (a void target accepts any return),
//     contravariant parameters, named parameters by name
//
// Foreign host shapes are first mapped onto the core Object, Function and
// List<dynamic> classes.
package subtype
