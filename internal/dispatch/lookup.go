package dispatch

import (
	"github.com/roach88/rtype/internal/object"
	"github.com/roach88/rtype/internal/types"
)

// LookupKind tells what a member lookup found.
type LookupKind int

const (
	LookupAbsent LookupKind = iota
	LookupField
	LookupMethod
	LookupGetter
)

func (k LookupKind) String() string {
	switch k {
	case LookupField:
		return "field"
	case LookupMethod:
		return "method"
	case LookupGetter:
		return "getter"
	}
	return "absent"
}

// MemberLookup is the result of resolving a member on a value.
//
// For a field, Value holds the field's current value. For a method or
// getter, Method is the implementation and Self the receiver it must be
// called with. Sig is the method's declared signature, nil when the member
// is untyped.
type MemberLookup struct {
	Kind   LookupKind
	Key    types.Key
	Value  any
	Method types.Method
	Self   any
	Sig    types.Type
}

// Found reports whether the lookup resolved a member.
func (l MemberLookup) Found() bool { return l.Kind != LookupAbsent }

// CanonicalMemberName returns the key name resolves to on obj. Values whose
// class is an extension host use the name's extension key; everything else
// uses the plain name.
func (d *Dispatcher) CanonicalMemberName(obj any, name string) types.Key {
	if cls := d.lib.ClassOf(obj); cls != nil && cls.IsExtension() {
		if key, ok := cls.Alias(name); ok {
			return key
		}
		return types.ExtensionKey(name)
	}
	return types.Plain(name)
}

// Lookup resolves key on obj. Instance fields shadow getters and methods;
// a class used as a value answers its static members first.
func (d *Dispatcher) Lookup(obj any, key types.Key) MemberLookup {
	switch o := obj.(type) {
	case map[string]any:
		return mapLookup(o, key)
	case object.NamedArgs:
		return mapLookup(o, key)
	case *types.Class:
		if m, ok := o.Static(key); ok {
			return MemberLookup{Kind: LookupMethod, Key: key, Method: m, Self: o, Sig: staticSig(o, key)}
		}
	case *object.Instance:
		if !key.Extension {
			if v, ok := o.Get(key.Name); ok {
				return MemberLookup{Kind: LookupField, Key: key, Value: v}
			}
		}
	}

	cls := d.lib.ClassOf(obj)
	if cls == nil {
		return MemberLookup{Key: key}
	}
	if l := classLookup(cls, obj, key); l.Found() {
		return l
	}
	// Extension hosts only alias the canonical member set; members they
	// inherit from Object stay under their plain names.
	if key.Extension {
		return classLookup(cls, obj, types.Plain(key.Name))
	}
	return MemberLookup{Key: key}
}

func classLookup(cls *types.Class, self any, key types.Key) MemberLookup {
	if g, ok := cls.LookupGetter(key); ok {
		return MemberLookup{Kind: LookupGetter, Key: key, Method: g, Self: self}
	}
	if m, _, ok := cls.LookupMethod(key); ok {
		l := MemberLookup{Kind: LookupMethod, Key: key, Method: m, Self: self}
		if sig, ok := cls.MethodSig(key); ok && sig != nil {
			l.Sig = sig
		}
		return l
	}
	return MemberLookup{Key: key}
}

func mapLookup[M ~map[string]any](m M, key types.Key) MemberLookup {
	if v, ok := m[key.Name]; ok {
		return MemberLookup{Kind: LookupField, Key: key, Value: v}
	}
	return MemberLookup{Key: key}
}

// staticSig returns the tear-off signature of a static member: its tag when
// the declaration asked for one, else its entry in the static table.
func staticSig(c *types.Class, key types.Key) types.Type {
	if td, ok := c.StaticTag(key.Name); ok {
		return td
	}
	if sig := c.StaticSigs()[key]; sig != nil {
		return sig
	}
	return nil
}
