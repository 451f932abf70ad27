package meta

import (
	"strings"

	"github.com/roach88/rtype/internal/types"
)

// Mixin applies mixins to base and returns the synthetic application class.
//
// The application's own members are the shallow union of each mixin's own
// members, applied in listed order so a later mixin wins on a name
// collision. Its supertype is base and its mixin list is recorded for the
// subtype engine.
//
// Constructing an instance runs every mixin's zero-argument initializer in
// reverse listed order, then base's initializer with the real arguments.
func Mixin(base *types.Class, mixins ...*types.Class) *types.Class {
	names := make([]string, len(mixins))
	for i, m := range mixins {
		names[i] = m.Name()
	}
	c := types.NewClass(base.Name()+" with "+strings.Join(names, ", "), base)
	c.SetMixins(mixins)

	var fields []string
	for _, m := range mixins {
		for key, fn := range m.OwnMethods() {
			c.DefineMethod(key, fn)
		}
		for key, g := range m.OwnGetters() {
			c.DefineGetter(key, g)
		}
		fields = append(fields, m.Fields()...)
	}
	c.SetFields(fields...)

	applied := append([]*types.Class(nil), mixins...)
	c.SetSignatureCells(nil, types.NewLazy(func() types.Signatures {
		out := types.Signatures{}
		for _, m := range applied {
			for key, sig := range m.MethodSigs() {
				out[key] = sig
			}
		}
		return out
	}), nil)

	c.SetInit(func(self any, args []any) error {
		for i := len(applied) - 1; i >= 0; i-- {
			if init := applied[i].Init(); init != nil {
				if err := init(self, nil); err != nil {
					return err
				}
			}
		}
		if init := base.Init(); init != nil {
			return init(self, args)
		}
		return nil
	})
	return c
}
