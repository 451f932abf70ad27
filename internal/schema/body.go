package schema

import (
	"strconv"
	"strings"

	"github.com/roach88/rtype/internal/meta"
	"github.com/roach88/rtype/internal/object"
	"github.com/roach88/rtype/internal/types"
)

type bodyKind int

const (
	bodyField bodyKind = iota
	bodySet
	bodyArg
	bodySelf
	bodyConst
	bodyNew
)

// Body is a parsed member body.
type Body struct {
	kind  bodyKind
	name  string
	index int
	value any
	src   string
}

func (b Body) String() string { return b.src }

// ParseBody parses field:<name>, set:<name>, arg:<i>, self, const:<literal>
// or new.
func ParseBody(src string) (Body, error) {
	b := Body{src: src}
	op, operand, hasOperand := strings.Cut(src, ":")
	fail := func(msg string) (Body, error) {
		return Body{}, &SyntaxError{Input: src, Offset: len(op), Message: msg}
	}
	switch op {
	case "self", "new":
		if hasOperand {
			return fail(op + " takes no operand")
		}
		b.kind = bodySelf
		if op == "new" {
			b.kind = bodyNew
		}
		return b, nil
	case "field", "set":
		if operand == "" {
			return fail(op + " needs a field name")
		}
		b.kind, b.name = bodyField, operand
		if op == "set" {
			b.kind = bodySet
		}
		return b, nil
	case "arg":
		i, err := strconv.Atoi(operand)
		if err != nil || i < 0 {
			return fail("arg needs a non-negative index")
		}
		b.kind, b.index = bodyArg, i
		return b, nil
	case "const":
		if !hasOperand {
			return fail("const needs a literal")
		}
		v, err := parseLiteral(operand)
		if err != nil {
			return fail(err.Error())
		}
		b.kind, b.value = bodyConst, v
		return b, nil
	}
	return Body{}, &SyntaxError{Input: src, Offset: 0, Message: "unknown body " + strconv.Quote(op)}
}

// parseLiteral reads null, true, false, an integer, a double or a quoted
// string. Anything else is taken as a bare string.
func parseLiteral(s string) (any, error) {
	switch s {
	case "null":
		return nil, nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if strings.HasPrefix(s, `"`) {
		return strconv.Unquote(s)
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	return s, nil
}

// needsInstance reports whether the body reads or writes receiver fields.
func (b Body) needsInstance() bool { return b.kind == bodyField || b.kind == bodySet }

// method compiles b into a member implementation owned by c.
func (b Body) method(c *types.Class) types.Method {
	switch b.kind {
	case bodyField:
		return func(self any, _ []any) (any, error) {
			inst, err := receiver(c, self, b)
			if err != nil {
				return nil, err
			}
			v, _ := inst.Get(b.name)
			return v, nil
		}
	case bodySet:
		return func(self any, args []any) (any, error) {
			inst, err := receiver(c, self, b)
			if err != nil {
				return nil, err
			}
			var v any
			if len(args) > 0 {
				v = args[0]
			}
			inst.Set(b.name, v)
			return nil, nil
		}
	case bodyArg:
		return func(_ any, args []any) (any, error) {
			if b.index >= len(args) {
				return nil, nil
			}
			return args[b.index], nil
		}
	case bodySelf:
		return func(self any, _ []any) (any, error) { return self, nil }
	case bodyConst:
		return func(any, []any) (any, error) { return b.value, nil }
	default:
		return func(_ any, args []any) (any, error) {
			return meta.Construct(c, args)
		}
	}
}

func receiver(c *types.Class, self any, b Body) (*object.Instance, error) {
	inst, ok := self.(*object.Instance)
	if !ok {
		return nil, meta.NewInternalError(b.src, c.String(), "receiver is %s, not an instance", object.Inspect(self))
	}
	return inst, nil
}
