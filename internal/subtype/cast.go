package subtype

import (
	"github.com/roach88/rtype/internal/meta"
	"github.com/roach88/rtype/internal/types"
)

// Is reports whether v is an instance of t.
//
// nil is an instance of the top types and Null only. A value whose class is
// a raw instantiation of t's generic family cannot be tested against a
// non-ground t; that case returns a StrongModeError.
func (c *Checker) Is(v any, t types.Type) (bool, error) {
	from := c.lib.TypeOf(v)
	if v == nil {
		return c.isTop(t) || t == types.Type(c.lib.Null), nil
	}
	if c.dependsOnRaw(from, t) {
		return false, &StrongModeError{
			Value:  v,
			From:   from,
			To:     t,
			Reason: "value has a raw instantiation of the same generic class",
		}
	}
	return c.IsSubtype(from, t), nil
}

// Cast returns v when it is an instance of t. nil casts to anything.
func (c *Checker) Cast(v any, t types.Type) (any, error) {
	if v == nil {
		return nil, nil
	}
	ok, err := c.Is(v, t)
	if err != nil {
		return nil, err
	}
	if ok {
		return v, nil
	}
	from := c.lib.TypeOf(v)
	if !c.IsGround(t) {
		return nil, &StrongModeError{
			Value:  v,
			From:   from,
			To:     t,
			Reason: "target is not a ground type",
		}
	}
	return nil, &CastError{Value: v, From: from, To: t}
}

// dependsOnRaw reports whether from reaches a raw instantiation of t's
// family while t itself carries non-trivial type arguments.
func (c *Checker) dependsOnRaw(from, t types.Type) bool {
	target, ok := t.(*types.Class)
	if !ok || target.Origin() == nil || target.IsRaw() || c.IsGround(target) {
		return false
	}
	source, ok := from.(*types.Class)
	if !ok {
		return false
	}
	return c.reachesRaw(source, target, map[*types.Class]bool{})
}

func (c *Checker) reachesRaw(cls, target *types.Class, seen map[*types.Class]bool) bool {
	if cls == nil || seen[cls] {
		return false
	}
	seen[cls] = true
	if cls.IsRaw() && meta.SameFamily(cls, target) {
		return true
	}
	if c.reachesRaw(cls.SuperClass(), target, seen) {
		return true
	}
	for _, m := range cls.Mixins() {
		if c.reachesRaw(m, target, seen) {
			return true
		}
	}
	for _, iface := range cls.Interfaces() {
		if ic, ok := iface.(*types.Class); ok && c.reachesRaw(ic, target, seen) {
			return true
		}
	}
	return false
}
