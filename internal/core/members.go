package core

import (
	"fmt"
	"strings"

	"github.com/roach88/rtype/internal/meta"
	"github.com/roach88/rtype/internal/object"
	"github.com/roach88/rtype/internal/types"
)

func fn(ret types.Type, positional ...types.Type) *types.FuncType {
	return types.NewDefiniteFunction(ret, positional)
}

func (lib *Library) declareObject() {
	o := lib.Object
	o.DefineMethod(types.Plain("toString"), func(self any, _ []any) (any, error) {
		return object.Inspect(self), nil
	})
	o.DefineMethod(types.Plain("=="), func(self any, args []any) (any, error) {
		return equal(self, args[0]), nil
	})
	o.DefineGetter(types.Plain("runtimeType"), func(self any, _ []any) (any, error) {
		return lib.TypeOf(self), nil
	})
	meta.SetSignature(o, meta.Signature{
		Methods: func() map[string]*types.FuncType {
			return map[string]*types.FuncType{
				"toString": fn(lib.String),
				"==":       fn(lib.Bool, lib.Object),
			}
		},
	})
}

func equal(a, b any) bool {
	if na, ok := toFloat(a); ok {
		if nb, ok := toFloat(b); ok {
			return na == nb
		}
		return false
	}
	defer func() { _ = recover() }()
	return a == b
}

func (lib *Library) declareNum() {
	n := lib.Num
	arith := func(op string, f func(a, b float64) float64, g func(a, b int64) int64) {
		n.DefineMethod(types.Plain(op), func(self any, args []any) (any, error) {
			ai, aInt := toInt(self)
			bi, bInt := toInt(args[0])
			if aInt && bInt {
				return g(ai, bi), nil
			}
			af, ok1 := toFloat(self)
			bf, ok2 := toFloat(args[0])
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("%s: operands are not numbers", op)
			}
			return f(af, bf), nil
		})
	}
	arith("+", func(a, b float64) float64 { return a + b }, func(a, b int64) int64 { return a + b })
	arith("-", func(a, b float64) float64 { return a - b }, func(a, b int64) int64 { return a - b })
	arith("*", func(a, b float64) float64 { return a * b }, func(a, b int64) int64 { return a * b })

	compare := func(op string, f func(a, b float64) bool) {
		n.DefineMethod(types.Plain(op), func(self any, args []any) (any, error) {
			af, ok1 := toFloat(self)
			bf, ok2 := toFloat(args[0])
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("%s: operands are not numbers", op)
			}
			return f(af, bf), nil
		})
	}
	compare("<", func(a, b float64) bool { return a < b })
	compare(">", func(a, b float64) bool { return a > b })
	compare("<=", func(a, b float64) bool { return a <= b })
	compare(">=", func(a, b float64) bool { return a >= b })

	n.DefineMethod(types.Plain("abs"), func(self any, _ []any) (any, error) {
		if i, ok := toInt(self); ok {
			if i < 0 {
				return -i, nil
			}
			return i, nil
		}
		f, _ := toFloat(self)
		if f < 0 {
			return -f, nil
		}
		return f, nil
	})

	meta.SetSignature(n, meta.Signature{
		Methods: func() map[string]*types.FuncType {
			return map[string]*types.FuncType{
				"+":   fn(lib.Num, lib.Num),
				"-":   fn(lib.Num, lib.Num),
				"*":   fn(lib.Num, lib.Num),
				"<":   fn(lib.Bool, lib.Num),
				">":   fn(lib.Bool, lib.Num),
				"<=":  fn(lib.Bool, lib.Num),
				">=":  fn(lib.Bool, lib.Num),
				"abs": fn(lib.Num),
			}
		},
	})

	lib.Int.DefineGetter(types.Plain("isEven"), func(self any, _ []any) (any, error) {
		i, _ := toInt(self)
		return i%2 == 0, nil
	})
}

func (lib *Library) declareString() {
	s := lib.String
	s.DefineGetter(types.Plain("length"), func(self any, _ []any) (any, error) {
		return int64(len([]rune(self.(string)))), nil
	})
	s.DefineMethod(types.Plain("+"), func(self any, args []any) (any, error) {
		other, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("+: %s is not a String", object.Inspect(args[0]))
		}
		return self.(string) + other, nil
	})
	s.DefineMethod(types.Plain("contains"), func(self any, args []any) (any, error) {
		other, _ := args[0].(string)
		return strings.Contains(self.(string), other), nil
	})
	s.DefineMethod(types.Plain("[]"), func(self any, args []any) (any, error) {
		runes := []rune(self.(string))
		i, ok := toInt(args[0])
		if !ok || i < 0 || int(i) >= len(runes) {
			return nil, fmt.Errorf("RangeError: index %s out of range", object.Inspect(args[0]))
		}
		return string(runes[i]), nil
	})
	s.DefineMethod(types.Plain("substring"), func(self any, args []any) (any, error) {
		runes := []rune(self.(string))
		start, _ := toInt(args[0])
		end := int64(len(runes))
		if len(args) > 1 && args[1] != nil {
			end, _ = toInt(args[1])
		}
		if start < 0 || end > int64(len(runes)) || start > end {
			return nil, fmt.Errorf("RangeError: substring(%d, %d) of length %d", start, end, len(runes))
		}
		return string(runes[start:end]), nil
	})
	meta.SetSignature(s, meta.Signature{
		Methods: func() map[string]*types.FuncType {
			return map[string]*types.FuncType{
				"+":         fn(lib.String, lib.String),
				"contains":  fn(lib.Bool, lib.String),
				"[]":        fn(lib.String, lib.Int),
				"substring": types.NewDefiniteFunction(lib.String, []types.Type{lib.Int}, types.WithOptional(lib.Int)),
			}
		},
	})
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
