package constant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rtype/internal/core"
	"github.com/roach88/rtype/internal/meta"
	"github.com/roach88/rtype/internal/object"
	"github.com/roach88/rtype/internal/types"
)

func newTable(t *testing.T) (*Table, *core.Library) {
	t.Helper()
	lib := core.New(meta.NewRegistry(nil))
	return New(lib), lib
}

func TestTable_ID_Primitives(t *testing.T) {
	tbl, _ := newTable(t)

	tests := []struct {
		name string
		v    any
		want string
	}{
		{"nil", nil, ""},
		{"true", true, "b1"},
		{"false", false, "b0"},
		{"int", 42, "n42"},
		{"int64", int64(-7), "n-7"},
		{"integral double", 2.0, "n2.0"},
		{"fractional double", 1.5, "n1.5"},
		{"exponent double", 1e21, "n1e+21"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tbl.ID(tt.v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTable_ID_Strings(t *testing.T) {
	tbl, _ := newTable(t)

	a1, err := tbl.ID("a")
	require.NoError(t, err)
	b, err := tbl.ID("b")
	require.NoError(t, err)
	a2, err := tbl.ID("a")
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b)
}

func TestTable_ID_Arrays(t *testing.T) {
	tbl, _ := newTable(t)

	empty, err := tbl.ID([]any{})
	require.NoError(t, err)
	withNil, err := tbl.ID([]any{nil})
	require.NoError(t, err)
	assert.NotEqual(t, empty, withNil)

	got, err := tbl.ID([]any{1, true})
	require.NoError(t, err)
	assert.Equal(t, "[n1,b1,]", got)

	nested, err := tbl.ID([]any{[]any{1}, 2})
	require.NoError(t, err)
	flat, err := tbl.ID([]any{1, 2})
	require.NoError(t, err)
	assert.NotEqual(t, nested, flat)
}

func TestTable_ID_NeverInterned(t *testing.T) {
	tbl, lib := newTable(t)
	c := types.NewClass("C", lib.Object)

	_, err := tbl.ID(object.NewInstance(c))
	require.Error(t, err)
	assert.True(t, meta.IsInternal(err))

	_, err = tbl.ID(struct{}{})
	assert.True(t, meta.IsInternal(err))
}

func boxOf(c *types.Class, v any) *object.Instance {
	inst := object.NewInstance(c)
	inst.Set("value", v)
	return inst
}

func TestTable_Intern(t *testing.T) {
	tbl, lib := newTable(t)
	box := types.NewClass("Box", lib.Object)
	other := types.NewClass("Other", lib.Object)

	first, err := tbl.Intern(boxOf(box, 1))
	require.NoError(t, err)
	second, err := tbl.Intern(boxOf(box, 1))
	require.NoError(t, err)
	assert.Same(t, first, second, "field-equal values of one type share a reference")

	differentValue, err := tbl.Intern(boxOf(box, 2))
	require.NoError(t, err)
	assert.NotSame(t, first, differentValue)

	differentType, err := tbl.Intern(boxOf(other, 1))
	require.NoError(t, err)
	assert.NotSame(t, first, differentType, "runtime type is part of the key")

	id, err := tbl.ID(first)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 3, tbl.Len())
}

func TestTable_Intern_Nested(t *testing.T) {
	tbl, lib := newTable(t)
	box := types.NewClass("Box", lib.Object)

	_, err := tbl.Intern(boxOf(box, boxOf(box, 1)))
	require.Error(t, err, "inner value must be interned first")
	assert.True(t, meta.IsInternal(err))

	inner, err := tbl.Intern(boxOf(box, 1))
	require.NoError(t, err)
	outer1, err := tbl.Intern(boxOf(box, inner))
	require.NoError(t, err)

	inner2, err := tbl.Intern(boxOf(box, 1))
	require.NoError(t, err)
	outer2, err := tbl.Intern(boxOf(box, inner2))
	require.NoError(t, err)

	assert.Same(t, outer1, outer2)
}

func TestTable_Intern_TypeArgs(t *testing.T) {
	tbl, lib := newTable(t)
	box := types.NewClass("Box", lib.Object)

	a, err := tbl.Intern(boxOf(box, nil), lib.Int)
	require.NoError(t, err)
	b, err := tbl.Intern(boxOf(box, nil), lib.String)
	require.NoError(t, err)
	c, err := tbl.Intern(boxOf(box, nil), lib.Int)
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Same(t, a, c)
}

func TestTable_Intern_Lists(t *testing.T) {
	tbl, lib := newTable(t)

	a, err := tbl.Intern(lib.NewList(lib.Int, 1, 2))
	require.NoError(t, err)
	b, err := tbl.Intern(lib.NewList(lib.Int, 1, 2))
	require.NoError(t, err)
	c, err := tbl.Intern(lib.NewList(lib.Num, 1, 2))
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

func TestTable_Intern_HostArrays(t *testing.T) {
	tbl, lib := newTable(t)

	a, err := tbl.Intern([]any{1, "x"})
	require.NoError(t, err)
	b, err := tbl.Intern([]any{1, "x"})
	require.NoError(t, err)
	c, err := tbl.Intern([]any{1, "y"})
	require.NoError(t, err)

	first, second, third := a.([]any), b.([]any), c.([]any)
	assert.Same(t, &first[0], &second[0], "equal arrays share one backing array")
	assert.NotSame(t, &first[0], &third[0])
	assert.Equal(t, 2, tbl.Len())

	// A list with the same elements is a different runtime type.
	l, err := tbl.Intern(lib.NewList(types.Dynamic, 1, "x"))
	require.NoError(t, err)
	assert.IsType(t, &object.List{}, l)
	assert.Equal(t, 3, tbl.Len())
}

func TestTable_Intern_Primitives(t *testing.T) {
	tbl, _ := newTable(t)

	got, err := tbl.Intern("hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	assert.Equal(t, 0, tbl.Len())
}
