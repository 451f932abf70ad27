package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rtype/internal/meta"
	"github.com/roach88/rtype/internal/object"
	"github.com/roach88/rtype/internal/types"
)

func newLibrary(t *testing.T) *Library {
	t.Helper()
	return New(meta.NewRegistry(nil))
}

func call(t *testing.T, c *types.Class, name string, self any, args ...any) any {
	t.Helper()
	m, _, ok := c.LookupMethod(types.Plain(name))
	require.True(t, ok, "no method %s on %s", name, c)
	v, err := m(self, args)
	require.NoError(t, err)
	return v
}

func TestTypeOf(t *testing.T) {
	lib := newLibrary(t)
	inst := object.NewInstance(lib.Object)
	sig := types.NewDefiniteFunction(lib.Int, nil)

	tests := []struct {
		name  string
		value any
		want  types.Type
	}{
		{"null", nil, lib.Null},
		{"bool", true, lib.Bool},
		{"int", 3, lib.Int},
		{"int64", int64(3), lib.Int},
		{"double", 1.5, lib.Double},
		{"string", "s", lib.String},
		{"instance", inst, lib.Object},
		{"typed function", &object.Function{Sig: sig}, sig},
		{"untyped function", &object.Function{}, lib.Function},
		{"class literal", lib.Int, lib.Type},
		{"map", map[string]any{}, types.ForeignObject},
		{"named args", object.NamedArgs{}, types.ForeignObject},
		{"slice", []any{1}, types.ForeignArray},
		{"native func", object.NativeFunc(nil), types.ForeignFunction},
		{"unknown", struct{}{}, types.NativeTop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.want, lib.TypeOf(tt.value))
		})
	}
}

func TestClassOf(t *testing.T) {
	lib := newLibrary(t)

	assert.Same(t, lib.Int, lib.ClassOf(3))
	assert.Same(t, lib.HostArray, lib.ClassOf([]any{}))
	assert.Same(t, lib.Function, lib.ClassOf(object.NativeFunc(nil)))
	assert.Same(t, lib.Type, lib.ClassOf(lib.String))
	assert.Nil(t, lib.ClassOf(map[string]any{}))
	assert.Nil(t, lib.ClassOf(struct{}{}))
}

func TestCoreHierarchy(t *testing.T) {
	lib := newLibrary(t)

	assert.Same(t, lib.Num, lib.Int.SuperClass())
	assert.Same(t, lib.Num, lib.Double.SuperClass())
	assert.Same(t, lib.Object, lib.String.SuperClass())
	assert.Nil(t, lib.Object.SuperClass())

	list := lib.List.MustOf(lib.Int)
	assert.Equal(t, "List<int>", list.String())
	assert.Equal(t, []types.Type{lib.Iterable.MustOf(lib.Int)}, list.Interfaces())
	assert.Equal(t, []types.Type{lib.Iterable.Raw()}, lib.List.Raw().Interfaces())
	assert.True(t, lib.HostArray.IsExtension())
}

func TestNumMembers(t *testing.T) {
	lib := newLibrary(t)

	assert.Equal(t, int64(5), call(t, lib.Int, "+", 2, 3))
	assert.Equal(t, 3.5, call(t, lib.Int, "+", 2, 1.5))
	assert.Equal(t, int64(-1), call(t, lib.Int, "-", 2, 3))
	assert.Equal(t, int64(6), call(t, lib.Int, "*", 2, 3))
	assert.Equal(t, true, call(t, lib.Int, "<", 2, 3))
	assert.Equal(t, false, call(t, lib.Int, ">=", 2, 3))
	assert.Equal(t, int64(4), call(t, lib.Int, "abs", -4))
	assert.Equal(t, 2.5, call(t, lib.Double, "abs", -2.5))

	isEven, ok := lib.Int.LookupGetter(types.Plain("isEven"))
	require.True(t, ok)
	v, err := isEven(4, nil)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	plus, _, _ := lib.Num.LookupMethod(types.Plain("+"))
	_, err = plus(1, []any{"x"})
	assert.EqualError(t, err, "+: operands are not numbers")
}

func TestStringMembers(t *testing.T) {
	lib := newLibrary(t)

	assert.Equal(t, "ab", call(t, lib.String, "+", "a", "b"))
	assert.Equal(t, true, call(t, lib.String, "contains", "circle", "irc"))
	assert.Equal(t, "é", call(t, lib.String, "[]", "café", 3))
	assert.Equal(t, "irc", call(t, lib.String, "substring", "circle", 1, 4))
	assert.Equal(t, "rcle", call(t, lib.String, "substring", "circle", 2))

	length, ok := lib.String.LookupGetter(types.Plain("length"))
	require.True(t, ok)
	v, err := length("café", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), v)

	index, _, _ := lib.String.LookupMethod(types.Plain("[]"))
	_, err = index("ab", []any{5})
	assert.EqualError(t, err, "RangeError: index 5 out of range")

	substring, _, _ := lib.String.LookupMethod(types.Plain("substring"))
	_, err = substring("ab", []any{1, 5})
	assert.Error(t, err)
}

func TestObjectMembers(t *testing.T) {
	lib := newLibrary(t)

	assert.Equal(t, `"s"`, call(t, lib.Object, "toString", "s"))
	assert.Equal(t, "null", call(t, lib.Object, "toString", nil))
	assert.Equal(t, true, call(t, lib.Object, "==", 1, 1.0))
	assert.Equal(t, false, call(t, lib.Object, "==", 1, "1"))
	assert.Equal(t, false, call(t, lib.Object, "==", []any{1}, []any{1}), "uncomparable values are not equal")

	rt, ok := lib.Object.LookupGetter(types.Plain("runtimeType"))
	require.True(t, ok)
	v, err := rt("s", nil)
	require.NoError(t, err)
	assert.Same(t, lib.String, v)
}

func TestListMembers(t *testing.T) {
	lib := newLibrary(t)
	xs := lib.NewList(lib.Int, 1, 2)
	list := xs.Class

	call(t, list, "add", xs, 3)
	assert.Equal(t, []any{1, 2, 3}, xs.Items)
	assert.Equal(t, 2, call(t, list, "[]", xs, 1))
	call(t, list, "[]=", xs, 0, 9)
	assert.Equal(t, 9, xs.Items[0])
	assert.Equal(t, true, call(t, list, "contains", xs, 3))
	assert.Equal(t, "9-2-3", call(t, list, "join", xs, "-"))

	length, ok := list.LookupGetter(types.Plain("length"))
	require.True(t, ok)
	n, err := length(xs, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	index, _, _ := list.LookupMethod(types.Plain("[]"))
	_, err = index(xs, []any{7})
	assert.EqualError(t, err, "RangeError: index 7 out of range")

	sig, ok := list.MethodSig(types.ExtensionKey("add"))
	require.True(t, ok)
	assert.Equal(t, "(int) -> void", sig.String())
}

func TestHostArrayUsesExtensionSlots(t *testing.T) {
	lib := newLibrary(t)
	arr := []any{"a", "b"}

	join, _, ok := lib.HostArray.LookupMethod(types.ExtensionKey("join"))
	require.True(t, ok)
	v, err := join(arr, []any{","})
	require.NoError(t, err)
	assert.Equal(t, "a,b", v)

	add, _, ok := lib.HostArray.LookupMethod(types.ExtensionKey("add"))
	require.True(t, ok)
	_, err = add(arr, []any{"c"})
	assert.EqualError(t, err, "Unsupported operation: cannot add to a fixed-length list")
}
