// Package core declares the classes every program starts with: Object,
// Null, bool, num, int, double, String, Function, Type, Iterable<E> and
// List<E>, plus the host class that lets foreign arrays answer List's
// member set.
//
// A Library is created per runtime; a runtime reset builds a new one.
package core

import (
	"github.com/roach88/rtype/internal/meta"
	"github.com/roach88/rtype/internal/object"
	"github.com/roach88/rtype/internal/types"
)

// Library holds the core classes of one runtime.
type Library struct {
	Object   *types.Class
	Null     *types.Class
	Bool     *types.Class
	Num      *types.Class
	Int      *types.Class
	Double   *types.Class
	String   *types.Class
	Function *types.Class
	Type     *types.Class

	Iterable *meta.Generic
	List     *meta.Generic

	// HostArray is the extension host for foreign arrays.
	HostArray *types.Class

	registry *meta.Registry
}

// New declares the core classes in reg.
func New(reg *meta.Registry) *Library {
	lib := &Library{registry: reg}

	lib.Object = types.NewClass("Object", nil)
	lib.Null = types.NewClass("Null", lib.Object)
	lib.Bool = types.NewClass("bool", lib.Object)
	lib.Num = types.NewClass("num", lib.Object)
	lib.Int = types.NewClass("int", lib.Num)
	lib.Double = types.NewClass("double", lib.Num)
	lib.String = types.NewClass("String", lib.Object)
	lib.Function = types.NewClass("Function", lib.Object)
	lib.Type = types.NewClass("Type", lib.Object)

	lib.declareObject()
	lib.declareNum()
	lib.declareString()

	lib.Iterable = reg.NewGeneric("Iterable", 1, lib.buildIterable)
	lib.List = reg.NewGeneric("List", 1, lib.buildList)

	lib.HostArray = types.NewClass("HostArray", lib.Object)
	meta.RegisterExtension(lib.HostArray, lib.List.Raw())

	return lib
}

// Registry returns the generic registry the library was declared in.
func (lib *Library) Registry() *meta.Registry { return lib.registry }

// NewList creates a List<elem> holding items.
func (lib *Library) NewList(elem types.Type, items ...any) *object.List {
	return &object.List{Class: lib.List.MustOf(elem), Items: append([]any{}, items...)}
}

// TypeOf returns the runtime type of a value, as used for subtype checks.
func (lib *Library) TypeOf(v any) types.Type {
	switch val := v.(type) {
	case nil:
		return lib.Null
	case bool:
		return lib.Bool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return lib.Int
	case float32, float64:
		return lib.Double
	case string:
		return lib.String
	case *object.Instance:
		return val.Class
	case *object.List:
		return val.Class
	case *object.Function:
		if val.Sig != nil {
			return val.Sig
		}
		return lib.Function
	case *types.Class:
		return lib.Type
	case map[string]any, object.NamedArgs:
		return types.ForeignObject
	case []any:
		return types.ForeignArray
	case object.NativeFunc, func([]any) (any, error):
		return types.ForeignFunction
	}
	return types.NativeTop
}

// ClassOf returns the class whose members answer dispatch on v, or nil when
// v has no class (foreign objects and unknown host values).
func (lib *Library) ClassOf(v any) *types.Class {
	switch val := v.(type) {
	case *object.Instance:
		return val.Class
	case *object.List:
		return val.Class
	case *object.Function, object.NativeFunc, func([]any) (any, error):
		return lib.Function
	case *types.Class:
		return lib.Type
	case []any:
		return lib.HostArray
	case map[string]any, object.NamedArgs:
		return nil
	}
	if c, ok := lib.TypeOf(v).(*types.Class); ok {
		return c
	}
	return nil
}
