package meta

import (
	"github.com/roach88/rtype/internal/types"
)

// DefineExtensionMembers installs, for each name, an alias slot under the
// name's extension key. The slot holds the implementation current at this
// moment; it is copied, not resolved on each call, so a subclass that
// overrides one of these names must call DefineExtensionMembers again for it.
// The method signature table is extended so the alias key carries the same
// signature as the plain name.
func DefineExtensionMembers(c *types.Class, names ...string) error {
	type aliasSig struct {
		alias types.Key
		plain types.Key
	}
	var sigs []aliasSig
	for _, name := range names {
		plain, alias := types.Plain(name), types.ExtensionKey(name)
		switch {
		case hasMethod(c, plain):
			m, _, _ := c.LookupMethod(plain)
			c.DefineMethod(alias, m)
		case hasGetter(c, plain):
			g, _ := c.LookupGetter(plain)
			c.DefineGetter(alias, g)
		default:
			return NewInternalError("defineExtensionMembers", c.String(), "no member named %q", name)
		}
		c.SetAlias(name, alias)
		sigs = append(sigs, aliasSig{alias: alias, plain: plain})
	}

	prev := c.MethodSigCell()
	c.SetSignatureCells(nil, types.NewLazy(func() types.Signatures {
		base := prev.Get()
		out := make(types.Signatures, len(base)+len(sigs))
		for k, v := range base {
			out[k] = v
		}
		for _, s := range sigs {
			sig, ok := base[s.plain]
			if !ok && c.SuperClass() != nil {
				sig, ok = c.SuperClass().MethodSig(s.plain)
			}
			if ok {
				out[s.alias] = sig
			}
		}
		return out
	}), nil)
	return nil
}

func hasMethod(c *types.Class, key types.Key) bool {
	_, _, ok := c.LookupMethod(key)
	return ok
}

func hasGetter(c *types.Class, key types.Key) bool {
	_, ok := c.LookupGetter(key)
	return ok
}

// RegisterExtension lets instances of host answer canonical's member set.
// Every alias-keyed member on canonical's supertype chain, up to but
// excluding the first class the two chains share, is copied onto host, more
// derived definitions first. host then shares canonical's method signature
// table and is marked as an extension host.
func RegisterExtension(host, canonical *types.Class) {
	shared := make(map[*types.Class]bool)
	for k := host; k != nil; k = k.SuperClass() {
		shared[k] = true
	}
	for k := canonical; k != nil && !shared[k]; k = k.SuperClass() {
		for key, m := range k.OwnMethods() {
			if !key.Extension {
				continue
			}
			if _, ok := host.OwnMethod(key); !ok {
				host.DefineMethod(key, m)
			}
		}
		for key, g := range k.OwnGetters() {
			if !key.Extension {
				continue
			}
			if _, ok := host.OwnGetter(key); !ok {
				host.DefineGetter(key, g)
			}
		}
	}
	host.SetSignatureCells(nil, canonical.MethodSigCell(), nil)
	host.MarkExtension()
}
