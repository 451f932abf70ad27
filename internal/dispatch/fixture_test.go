package dispatch

import (
	"io"
	"log/slog"
	"testing"

	"github.com/roach88/rtype/internal/core"
	"github.com/roach88/rtype/internal/meta"
	"github.com/roach88/rtype/internal/object"
	"github.com/roach88/rtype/internal/subtype"
	"github.com/roach88/rtype/internal/trace"
	"github.com/roach88/rtype/internal/types"
)

type fixture struct {
	lib   *core.Library
	chk   *subtype.Checker
	d     *Dispatcher
	trace *trace.Buffer

	Box   *meta.Generic
	Point *types.Class
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	lib := core.New(meta.NewRegistry(nil))
	chk := subtype.New(lib)
	buf := trace.NewBuffer()
	f := &fixture{
		lib:   lib,
		chk:   chk,
		trace: buf,
		d: New(chk,
			WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
			WithRecorder(buf),
			WithSession("test-session"),
		),
	}
	f.Box = f.declareBox()
	f.Point = f.declarePoint()
	return f
}

// declareBox declares Box<T> { T value; T get(); void set(T v); }.
func (f *fixture) declareBox() *meta.Generic {
	lib := f.lib
	return lib.Registry().NewGeneric("Box", 1, func(c *types.Class, args []types.Type) {
		elem := args[0]
		c.SetSuper(lib.Object)
		c.SetFields("value")
		c.SetInit(meta.FieldInitializer(c, "value"))
		c.DefineMethod(types.Plain("get"), func(self any, _ []any) (any, error) {
			v, _ := self.(*object.Instance).Get("value")
			return v, nil
		})
		c.DefineMethod(types.Plain("set"), func(self any, args []any) (any, error) {
			self.(*object.Instance).Set("value", args[0])
			return nil, nil
		})
		meta.SetSignature(c, meta.Signature{
			Constructors: meta.Methods(map[string]*types.FuncType{
				"": types.NewDefiniteFunction(types.Void, []types.Type{elem}),
			}),
			Methods: func() map[string]*types.FuncType {
				return map[string]*types.FuncType{
					"get": types.NewDefiniteFunction(elem, nil),
					"set": types.NewDefiniteFunction(types.Void, []types.Type{elem}),
				}
			},
		})
	})
}

// declarePoint declares Point { int x; int y; } with methods exercising
// optional and named parameters, a setter, and a tagged static.
func (f *fixture) declarePoint() *types.Class {
	lib := f.lib
	c := types.NewClass("Point", lib.Object)
	c.SetFields("x", "y")
	c.SetInit(meta.FieldInitializer(c, "x", "y"))

	c.DefineMethod(types.Plain("moved"), func(self any, args []any) (any, error) {
		p := self.(*object.Instance)
		x, _ := p.Get("x")
		y, _ := p.Get("y")
		dx := args[0].(int)
		dy := 0
		if len(args) > 1 && args[1] != nil {
			dy = args[1].(int)
		}
		return meta.Construct(c, []any{x.(int) + dx, y.(int) + dy})
	})
	c.DefineMethod(types.Plain("scaled"), func(self any, args []any) (any, error) {
		p := self.(*object.Instance)
		x, _ := p.Get("x")
		y, _ := p.Get("y")
		by := 1
		if len(args) > 0 {
			if named, ok := args[0].(object.NamedArgs); ok {
				if v, ok := named["by"]; ok {
					by = v.(int)
				}
			}
		}
		return meta.Construct(c, []any{x.(int) * by, y.(int) * by})
	})
	c.DefineMethod(types.Plain("label="), func(self any, args []any) (any, error) {
		self.(*object.Instance).Set("label", "<"+args[0].(string)+">")
		return nil, nil
	})
	c.DefineStatic(types.Plain("origin"), func(_ any, _ []any) (any, error) {
		return meta.Construct(c, []any{0, 0})
	})
	c.DefineStatic(types.Plain("parse"), func(_ any, args []any) (any, error) {
		return args[0], nil
	})

	meta.SetSignature(c, meta.Signature{
		Methods: meta.Methods(map[string]*types.FuncType{
			"moved": types.NewDefiniteFunction(c, []types.Type{lib.Int}, types.WithOptional(lib.Int)),
			"scaled": types.NewDefiniteFunction(c, nil,
				types.WithNamed(map[string]types.Type{"by": lib.Int})),
		}),
		Statics: meta.Methods(map[string]*types.FuncType{
			"origin": types.NewDefiniteFunction(c, nil),
			"parse":  types.NewDefiniteFunction(types.Dynamic, []types.Type{lib.String}),
		}),
		Names: []string{"origin"},
	})
	return c
}

func (f *fixture) newBox(t *testing.T, elem types.Type, value any) *object.Instance {
	t.Helper()
	inst, err := meta.Construct(f.Box.MustOf(elem), []any{value})
	if err != nil {
		t.Fatalf("construct box: %v", err)
	}
	return inst
}

func (f *fixture) newPoint(t *testing.T, x, y int) *object.Instance {
	t.Helper()
	inst, err := meta.Construct(f.Point, []any{x, y})
	if err != nil {
		t.Fatalf("construct point: %v", err)
	}
	return inst
}
