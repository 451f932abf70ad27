package subtype

import (
	"github.com/roach88/rtype/internal/core"
	"github.com/roach88/rtype/internal/meta"
	"github.com/roach88/rtype/internal/types"
)

type pair struct {
	sub   types.Type
	super types.Type
}

const noAssumption = int(^uint(0) >> 1)

// Checker evaluates and caches subtype queries for one runtime.
//
// Queries may revisit themselves through recursive typedefs or cyclic
// interface lists. A revisited pair answers with an assumption (true for
// structural pairs, false for nominal ones) and nothing computed under an
// outer frame's assumption is cached.
type Checker struct {
	lib   *core.Library
	cache map[pair]bool

	active map[pair]int
	depth  int
	lowest int
}

// New creates a Checker over the given core library.
func New(lib *core.Library) *Checker {
	return &Checker{
		lib:    lib,
		cache:  make(map[pair]bool),
		active: make(map[pair]int),
		lowest: noAssumption,
	}
}

// Library returns the core library the checker was built over.
func (c *Checker) Library() *core.Library { return c.lib }

// CacheSize returns the number of memoized pairs.
func (c *Checker) CacheSize() int { return len(c.cache) }

// IsSubtype reports whether t1 is a subtype of t2.
func (c *Checker) IsSubtype(t1, t2 types.Type) bool {
	key := pair{sub: t1, super: t2}
	if result, ok := c.cache[key]; ok {
		return result
	}
	n1, n2 := c.normalize(t1), c.normalize(t2)
	if d, ok := c.active[key]; ok {
		c.lowest = min(c.lowest, d)
		return assumption(n1, n2)
	}

	c.depth++
	d := c.depth
	c.active[key] = d
	result := c.isSubtype(n1, n2)
	delete(c.active, key)
	c.depth--

	if c.lowest >= d {
		c.cache[key] = result
		c.lowest = noAssumption
	}
	return result
}

// assumption is the provisional answer for a pair already under evaluation.
// Nominal search is a disjunction over supertypes, so a cycle contributes
// nothing; structural comparison holds unless something else refutes it.
func assumption(t1, t2 types.Type) bool {
	_, nominal1 := t1.(*types.Class)
	_, nominal2 := t2.(*types.Class)
	return !(nominal1 && nominal2)
}

// normalize maps foreign host shapes onto the runtime's own classes.
func (c *Checker) normalize(t types.Type) types.Type {
	switch t {
	case nil:
		return types.Dynamic
	case types.ForeignObject:
		return c.lib.Object
	case types.ForeignFunction:
		return c.lib.Function
	case types.ForeignArray:
		return c.lib.List.MustOf(types.Dynamic)
	}
	return t
}

func (c *Checker) isTop(t types.Type) bool {
	return t == types.Dynamic || t == types.Type(c.lib.Object)
}

func (c *Checker) isSubtype(t1, t2 types.Type) bool {
	if t1 == t2 {
		return true
	}
	if c.isTop(t2) || t1 == types.Bottom {
		return true
	}
	if c.isTop(t1) || t2 == types.Bottom {
		return false
	}

	class1, nominal1 := t1.(*types.Class)
	class2, nominal2 := t2.(*types.Class)
	if nominal1 && nominal2 {
		return c.isClassSubtype(class1, class2)
	}

	f1, functional1 := types.AsFunc(t1)
	if functional1 && nominal2 && class2 == c.lib.Function {
		return true
	}
	f2, functional2 := types.AsFunc(t2)
	if functional1 && functional2 {
		return c.isFunctionSubtype(f1, f2)
	}
	return false
}

func (c *Checker) isClassSubtype(c1, c2 *types.Class) bool {
	if meta.SameFamily(c1, c2) {
		if c2.IsRaw() {
			return true
		}
		if c1.IsRaw() {
			return false
		}
		args1, args2 := c1.Origin().Args, c2.Origin().Args
		for i := range args2 {
			if i >= len(args1) || !c.IsSubtype(args1[i], args2[i]) {
				return false
			}
		}
		return true
	}

	if super := c1.Super(); super != nil && c.IsSubtype(super, c2) {
		return true
	}
	for _, m := range c1.Mixins() {
		if c.IsSubtype(m, c2) {
			return true
		}
	}
	for _, iface := range c1.Interfaces() {
		if c.IsSubtype(iface, c2) {
			return true
		}
	}
	return false
}

func (c *Checker) isFunctionSubtype(f1, f2 *types.FuncType) bool {
	if f2.Return != types.Void && !c.IsSubtype(f1.Return, f2.Return) {
		return false
	}

	if f1.RequiredCount() > f2.RequiredCount() {
		return false
	}
	if f1.TotalPositional() < f2.TotalPositional() {
		return false
	}

	params1 := positionalParams(f1)
	for i, p2 := range positionalParams(f2) {
		if !c.IsSubtype(p2, params1[i]) {
			return false
		}
	}

	for name, n2 := range f2.Named {
		n1, ok := f1.Named[name]
		if !ok || !c.IsSubtype(n2, n1) {
			return false
		}
	}
	return true
}

func positionalParams(f *types.FuncType) []types.Type {
	out := make([]types.Type, 0, f.TotalPositional())
	out = append(out, f.Positional...)
	return append(out, f.Optional...)
}

// IsGround reports whether t has no type arguments other than Object and
// dynamic. Only ground types can be tested soundly at runtime.
func (c *Checker) IsGround(t types.Type) bool {
	switch tt := t.(type) {
	case *types.Class:
		o := tt.Origin()
		if o == nil {
			return true
		}
		for _, a := range o.Args {
			if !c.isTop(a) {
				return false
			}
		}
		return true
	case *types.FuncType, *types.Typedef:
		f, _ := types.AsFunc(tt)
		if f == nil {
			return true
		}
		for _, p := range positionalParams(f) {
			if !c.IsGround(p) {
				return false
			}
		}
		for _, n := range f.Named {
			if !c.IsGround(n) {
				return false
			}
		}
		return c.IsGround(f.Return)
	}
	return true
}
