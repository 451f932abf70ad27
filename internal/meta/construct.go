package meta

import (
	"github.com/roach88/rtype/internal/object"
	"github.com/roach88/rtype/internal/types"
)

// Construct allocates an instance of c and runs its initializer with args.
func Construct(c *types.Class, args []any) (*object.Instance, error) {
	inst := object.NewInstance(c)
	if init := c.Init(); init != nil {
		if err := init(inst, args); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// FieldInitializer returns an initializer that assigns the leading
// arguments to fields in order and passes the remainder to the supertype's
// initializer. It is what a plain class declaration with field parameters
// compiles to.
func FieldInitializer(c *types.Class, fields ...string) types.Initializer {
	return func(self any, args []any) error {
		inst, ok := self.(*object.Instance)
		if !ok {
			return NewInternalError("construct", c.String(), "receiver is %T, not an instance", self)
		}
		n := len(fields)
		if n > len(args) {
			n = len(args)
		}
		for i := 0; i < n; i++ {
			inst.Set(fields[i], args[i])
		}
		for i := n; i < len(fields); i++ {
			if _, ok := inst.Get(fields[i]); !ok {
				inst.Set(fields[i], nil)
			}
		}
		if sc := c.SuperClass(); sc != nil && sc.Init() != nil {
			return sc.Init()(self, args[n:])
		}
		return nil
	}
}
