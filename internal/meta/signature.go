package meta

import (
	"github.com/roach88/rtype/internal/types"
)

// Signature holds the producers for a class's three signature tables.
// Each producer runs at most once, on first use.
//
// Names lists static members whose tear-offs must carry a signature. They
// are tagged immediately with a lazily resolved typedef, so the static
// table itself is not forced.
type Signature struct {
	Constructors func() map[string]*types.FuncType
	Methods      func() map[string]*types.FuncType
	Statics      func() map[string]*types.FuncType
	Names        []string
}

// SetSignature installs sig on c. It is called once per class declaration.
func SetSignature(c *types.Class, sig Signature) {
	c.SetSignatureCells(cell(sig.Constructors), cell(sig.Methods), cell(sig.Statics))
	for _, name := range sig.Names {
		key := types.Plain(name)
		c.TagStatic(name, types.NewTypedef(c.Name()+"."+name, func() *types.FuncType {
			return c.StaticSigs()[key]
		}))
	}
}

func cell(produce func() map[string]*types.FuncType) *types.Lazy[types.Signatures] {
	if produce == nil {
		return nil
	}
	return types.NewLazy(func() types.Signatures {
		src := produce()
		out := make(types.Signatures, len(src))
		for name, sig := range src {
			out[types.Plain(name)] = sig
		}
		return out
	})
}

// Methods is shorthand for a constant method table.
func Methods(table map[string]*types.FuncType) func() map[string]*types.FuncType {
	return func() map[string]*types.FuncType { return table }
}
