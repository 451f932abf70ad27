package core

import (
	"fmt"
	"strings"

	"github.com/roach88/rtype/internal/meta"
	"github.com/roach88/rtype/internal/object"
	"github.com/roach88/rtype/internal/types"
)

// listMembers is the member set exposed to foreign arrays through extension
// keys.
var listMembers = []string{"length", "add", "[]", "[]=", "contains", "join"}

func (lib *Library) buildIterable(c *types.Class, args []types.Type) {
	c.SetSuper(lib.Object)
	meta.SetSignature(c, meta.Signature{
		Methods: func() map[string]*types.FuncType {
			return map[string]*types.FuncType{
				"contains": fn(lib.Bool, lib.Object),
			}
		},
	})
}

func (lib *Library) buildList(c *types.Class, args []types.Type) {
	elem := args[0]
	c.SetSuper(lib.Object)
	c.SetInterfaces(func() []types.Type {
		if c.IsRaw() {
			return []types.Type{lib.Iterable.Raw()}
		}
		return []types.Type{lib.Iterable.MustOf(elem)}
	})

	c.DefineGetter(types.Plain("length"), func(self any, _ []any) (any, error) {
		items, _ := listItems(self)
		return int64(len(items)), nil
	})
	c.DefineMethod(types.Plain("add"), func(self any, args []any) (any, error) {
		l, ok := self.(*object.List)
		if !ok {
			return nil, fmt.Errorf("Unsupported operation: cannot add to a fixed-length list")
		}
		l.Items = append(l.Items, args[0])
		return nil, nil
	})
	c.DefineMethod(types.Plain("[]"), func(self any, args []any) (any, error) {
		items, _ := listItems(self)
		i, ok := toInt(args[0])
		if !ok || i < 0 || int(i) >= len(items) {
			return nil, fmt.Errorf("RangeError: index %s out of range", object.Inspect(args[0]))
		}
		return items[i], nil
	})
	c.DefineMethod(types.Plain("[]="), func(self any, args []any) (any, error) {
		items, _ := listItems(self)
		i, ok := toInt(args[0])
		if !ok || i < 0 || int(i) >= len(items) {
			return nil, fmt.Errorf("RangeError: index %s out of range", object.Inspect(args[0]))
		}
		items[i] = args[1]
		return nil, nil
	})
	c.DefineMethod(types.Plain("contains"), func(self any, args []any) (any, error) {
		items, _ := listItems(self)
		for _, it := range items {
			if equal(it, args[0]) {
				return true, nil
			}
		}
		return false, nil
	})
	c.DefineMethod(types.Plain("join"), func(self any, args []any) (any, error) {
		items, _ := listItems(self)
		sep := ""
		if len(args) > 0 && args[0] != nil {
			sep, _ = args[0].(string)
		}
		parts := make([]string, len(items))
		for i, it := range items {
			if s, ok := it.(string); ok {
				parts[i] = s
			} else {
				parts[i] = object.Inspect(it)
			}
		}
		return strings.Join(parts, sep), nil
	})

	meta.SetSignature(c, meta.Signature{
		Methods: func() map[string]*types.FuncType {
			return map[string]*types.FuncType{
				"add":      fn(types.Void, elem),
				"[]":       fn(elem, lib.Int),
				"[]=":      fn(types.Void, lib.Int, elem),
				"contains": fn(lib.Bool, lib.Object),
				"join":     types.NewDefiniteFunction(lib.String, nil, types.WithOptional(lib.String)),
			}
		},
	})
	// Every name in listMembers is declared above.
	_ = meta.DefineExtensionMembers(c, listMembers...)
}

func listItems(self any) ([]any, bool) {
	switch l := self.(type) {
	case *object.List:
		return l.Items, true
	case []any:
		return l, true
	}
	return nil, false
}
