package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rtype/internal/dispatch"
	"github.com/roach88/rtype/internal/object"
	"github.com/roach88/rtype/internal/runtime"
	"github.com/roach88/rtype/internal/types"
)

var specsDir = filepath.Join("..", "..", "testdata", "specs")

func install(t *testing.T, src string) (*runtime.Runtime, *Scope) {
	t.Helper()
	p, err := LoadString("test.cue", src)
	require.NoError(t, err)
	return installProgram(t, p)
}

func installShapes(t *testing.T) (*runtime.Runtime, *Scope) {
	t.Helper()
	p, err := Load(specsDir)
	require.NoError(t, err)
	return installProgram(t, p)
}

func installProgram(t *testing.T, p *Program) (*runtime.Runtime, *Scope) {
	t.Helper()
	r := runtime.New(runtime.WithLogger(nil))
	s, err := p.Install(r)
	require.NoError(t, err)
	return r, s
}

func TestLoad_Directory(t *testing.T) {
	p, err := Load(specsDir)
	require.NoError(t, err)

	assert.Equal(t, 1, p.Files)
	names := make([]string, len(p.Classes))
	for i, d := range p.Classes {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"Box", "Circle", "Comparable", "LabeledBox", "Named", "Shape"}, names)
	require.Len(t, p.Typedefs, 1)
	assert.Equal(t, "Mapper", p.Typedefs[0].Name)

	circle, ok := p.Class("Circle")
	require.True(t, ok)
	assert.Equal(t, "Shape", circle.Extends)
	assert.Equal(t, []string{"Named"}, circle.Mixins)
	assert.Equal(t, []string{"radius"}, circle.Fields)
	assert.Equal(t, []string{"unit"}, circle.TaggedStatics())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	empty := t.TempDir()
	_, err = Load(empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no CUE files")

	file := filepath.Join(empty, "x.cue")
	require.NoError(t, os.WriteFile(file, []byte("package x\n"), 0o644))
	_, err = Load(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "unknown field",
			src:  `class: A: {colour: "red"}`,
			want: "colour",
		},
		{
			name: "bad signature",
			src:  `class: A: methods: m: {sig: "(int ->", body: "self"}`,
			want: "class.A.methods.m.sig",
		},
		{
			name: "signature not a function",
			src:  `class: A: methods: m: {sig: "int", body: "self"}`,
			want: "must be a function type",
		},
		{
			name: "new on a method",
			src:  `class: A: methods: m: {body: "new"}`,
			want: "only valid on statics",
		},
		{
			name: "field read in a static",
			src:  `class: A: statics: s: {body: "field:x"}`,
			want: "needs an instance receiver",
		},
		{
			name: "tagged static without signature",
			src:  `class: A: statics: s: {body: "self", tagged: true}`,
			want: "needs a signature",
		},
		{
			name: "extension of an undeclared member",
			src:  `class: A: extension: ["missing"]`,
			want: "no member named missing",
		},
		{
			name: "duplicate type parameter",
			src:  `class: A: params: ["T", "T"]`,
			want: "duplicate type parameter",
		},
		{
			name: "typedef not a function",
			src:  `typedef: F: "int"`,
			want: "must name a function type",
		},
		{
			name: "nothing declared",
			src:  `other: 1`,
			want: "no classes or typedefs",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadString("test.cue", tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCompile_CollectsAllErrors(t *testing.T) {
	_, err := LoadString("test.cue", `
		class: A: methods: m: {body: "new"}
		class: B: methods: m: {body: "nope"}
	`)
	require.Error(t, err)

	var list ErrorList
	require.ErrorAs(t, err, &list)
	assert.Len(t, list, 2)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "class.A.methods.m.body", ce.Field)
	assert.Contains(t, list[1].Error(), "class.B.methods.m.body")
}

func TestInstall_Subtyping(t *testing.T) {
	r, s := installShapes(t)

	sub := func(a, b string) bool {
		t.Helper()
		ta, err := s.Resolve(a)
		require.NoError(t, err)
		tb, err := s.Resolve(b)
		require.NoError(t, err)
		return r.IsSubtype(ta, tb)
	}

	assert.True(t, sub("Circle", "Shape"))
	assert.True(t, sub("Circle", "Named"), "mixins are supertypes")
	assert.True(t, sub("Circle", "Comparable<Circle>"), "interfaces resolve lazily")
	assert.False(t, sub("Shape", "Circle"))
	assert.True(t, sub("Box<int>", "Box<num>"))
	assert.False(t, sub("Box<num>", "Box<int>"))
	assert.True(t, sub("LabeledBox<int>", "Box<num>"))
	assert.True(t, sub("Box<int>", "Box"), "raw target accepts any instantiation")
	assert.True(t, sub("Mapper", "(int) -> num"))
	assert.True(t, sub("(num) -> int", "Mapper"))
	assert.True(t, sub("Circle", "Object"))
}

func TestInstall_Signatures(t *testing.T) {
	_, s := installShapes(t)

	circle, ok := s.Class("Circle")
	require.True(t, ok)
	grow, ok := circle.MethodSig(types.Plain("grow"))
	require.True(t, ok)
	assert.Equal(t, "(num, [num]) -> Circle", grow.String())

	box, ok := s.Generic("Box")
	require.True(t, ok)
	boxInt, err := box.Of(s.Runtime().Core().Int)
	require.NoError(t, err)
	get, ok := boxInt.MethodSig(types.Plain("get"))
	require.True(t, ok)
	assert.Equal(t, "() -> int", get.String())
	_, ok = boxInt.MethodSig(types.ExtensionKey("get"))
	assert.True(t, ok, "extension alias carries the plain signature")

	mapper, ok := s.Typedef("Mapper")
	require.True(t, ok)
	assert.False(t, mapper.IsResolved())
	assert.Equal(t, "(int) -> int", mapper.Func().String())

	ctor := circle.ConstructorSigs()[types.Plain("")]
	require.NotNil(t, ctor)
	assert.Equal(t, "(num, String) -> void", ctor.String())

	assert.Equal(t, []string{"Box", "Circle", "Comparable", "LabeledBox", "Mapper", "Named", "Shape"}, s.Names())
}

func TestInstall_Dispatch(t *testing.T) {
	r, s := installShapes(t)
	d := r.Dispatcher()

	c, err := s.New("Circle", 2, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Fields["radius"])
	assert.Equal(t, "c1", c.Fields["name"])

	got, err := d.Send(c, "describe")
	require.NoError(t, err)
	assert.Equal(t, "c1", got)

	_, err = d.Send(c, "rename", "c2")
	require.NoError(t, err)
	got, err = d.Load(c, "label")
	require.NoError(t, err)
	assert.Equal(t, "c2", got)

	got, err = d.Send(c, "grow", 1.5)
	require.NoError(t, err)
	assert.Same(t, c, got)

	_, err = d.Send(c, "grow", "big")
	assert.True(t, dispatch.IsNoSuchMethod(err))

	got, err = d.Send(c, "scale", object.NamedArgs{"by": 2})
	require.NoError(t, err)
	assert.Same(t, c, got)

	require.NoError(t, d.Put(c, "radius", 7))
	assert.Equal(t, 7, c.Fields["radius"])

	got, err = d.Load(c, "area")
	require.NoError(t, err)
	assert.Equal(t, 3.14, got)
}

func TestInstall_Statics(t *testing.T) {
	r, s := installShapes(t)
	d := r.Dispatcher()
	circle, _ := s.Class("Circle")

	unit, err := d.Send(circle, "unit")
	require.NoError(t, err)
	inst, ok := unit.(*object.Instance)
	require.True(t, ok)
	assert.Same(t, circle, inst.Class)

	tearOff, err := d.Load(circle, "unit")
	require.NoError(t, err)
	fn, ok := tearOff.(*object.Function)
	require.True(t, ok)
	require.NotNil(t, fn.Sig, "tagged statics carry a signature")
	assert.True(t, r.IsSubtype(fn.Sig, types.NewDefiniteFunction(circle, nil)))
}

func TestInstall_GenericDispatch(t *testing.T) {
	r, s := installShapes(t)
	d := r.Dispatcher()

	b, err := s.New("LabeledBox<String>", "tag", "payload")
	require.NoError(t, err)
	assert.Equal(t, "tag", b.Fields["tag"])

	got, err := d.Send(b, "get")
	require.NoError(t, err)
	assert.Equal(t, "payload", got)

	_, err = d.Send(b, "set", 42)
	assert.True(t, dispatch.IsNoSuchMethod(err), "T is bound to String")

	_, err = d.Send(b, "set", "next")
	require.NoError(t, err)
	assert.Equal(t, "next", b.Fields["value"])
}

func TestInstall_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "unknown supertype",
			src:  `class: A: extends: "Missing"`,
			want: "unknown type Missing",
		},
		{
			name: "unknown signature type",
			src:  `class: A: methods: m: {sig: "(Nope) -> void", body: "self"}`,
			want: "unknown type Nope",
		},
		{
			name: "extends a type parameter",
			src:  `class: A: {params: ["T"], extends: "T"}`,
			want: "T is not a class",
		},
		{
			name: "extends a typedef",
			src: `
				typedef: F: "() -> void"
				class: A: extends: "F"
			`,
			want: "F is not a class",
		},
		{
			name: "too many type arguments",
			src:  `class: A: extends: "List<int, int>"`,
			want: "takes 1 type arguments, 2 given",
		},
		{
			name: "type arguments on a plain class",
			src:  `class: A: implements: ["Object<int>"]`,
			want: "Object is not generic",
		},
		{
			name: "core name",
			src:  `class: int: {}`,
			want: "name already declared",
		},
		{
			name: "inheritance cycle",
			src: `
				class: A: extends: "B"
				class: B: extends: "A"
			`,
			want: "inheritance cycle: A -> B -> A",
		},
		{
			name: "mixin cycle",
			src:  `class: A: mixins: ["A"]`,
			want: "inheritance cycle: A -> A",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := LoadString("test.cue", tt.src)
			require.NoError(t, err)
			_, err = p.Install(runtime.New(runtime.WithLogger(nil)))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestInstall_ForwardInterfaces(t *testing.T) {
	r, s := install(t, `
		class: A: implements: ["B"]
		class: B: implements: ["A"]
		class: C: extends: "A"
	`)
	a, _ := s.Class("A")
	b, _ := s.Class("B")
	c, _ := s.Class("C")
	assert.True(t, r.IsSubtype(a, b))
	assert.True(t, r.IsSubtype(c, b))
	assert.False(t, r.IsSubtype(a, r.Core().String))
	assert.False(t, r.IsSubtype(b, c))
}

func TestInstall_MixinOrder(t *testing.T) {
	r, s := install(t, `
		class: First: methods: who: {body: "const:first"}
		class: Second: methods: who: {body: "const:second"}
		class: Both: mixins: ["First", "Second"]
	`)
	obj, err := s.New("Both")
	require.NoError(t, err)
	got, err := r.Dispatcher().Send(obj, "who")
	require.NoError(t, err)
	assert.Equal(t, "second", got, "later mixins win")
}

func TestScope_Resolve(t *testing.T) {
	r, s := installShapes(t)
	lib := r.Core()

	got, err := s.Resolve("List<int>")
	require.NoError(t, err)
	assert.Same(t, lib.List.MustOf(lib.Int), got)

	got, err = s.Resolve("dynamic")
	require.NoError(t, err)
	assert.Equal(t, types.Dynamic, got)

	got, err = s.Resolve("~(dynamic) -> void")
	require.NoError(t, err)
	fn, ok := got.(*types.FuncType)
	require.True(t, ok)
	assert.False(t, fn.Definite)
	assert.Equal(t, types.Bottom, fn.Positional[0])

	_, err = s.Resolve("Unknown")
	assert.Error(t, err)
	_, err = s.ResolveClass("Mapper")
	assert.Error(t, err)
	_, err = s.New("Box<int, int>")
	assert.Error(t, err)
}
