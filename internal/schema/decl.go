package schema

import (
	"fmt"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"
)

// ClassDecl is one class: <Name> entry.
type ClassDecl struct {
	Name       string                `json:"-"`
	Params     []string              `json:"params,omitempty"`
	Extends    string                `json:"extends,omitempty"`
	Mixins     []string              `json:"mixins,omitempty"`
	Implements []string              `json:"implements,omitempty"`
	Fields     []string              `json:"fields,omitempty"`
	Ctor       string                `json:"ctor,omitempty"`
	Methods    map[string]MemberDecl `json:"methods,omitempty"`
	Getters    map[string]string     `json:"getters,omitempty"`
	Statics    map[string]MemberDecl `json:"statics,omitempty"`
	Extension  []string              `json:"extension,omitempty"`
	Pos        token.Pos             `json:"-"`

	extends    *Expr
	mixins     []*Expr
	implements []*Expr
	ctor       *Expr
	sigs       map[string]*Expr
	statics    map[string]*Expr
	bodies     map[string]Body
	getters    map[string]Body
	staticBody map[string]Body
}

// MemberDecl is a method or static member.
type MemberDecl struct {
	Sig    string `json:"sig,omitempty"`
	Body   string `json:"body"`
	Tagged bool   `json:"tagged,omitempty"`
}

// TypedefDecl is one typedef: <Name> entry.
type TypedefDecl struct {
	Name string
	Type string
	Pos  token.Pos

	expr *Expr
}

// IsGeneric reports whether the class declares type parameters.
func (d *ClassDecl) IsGeneric() bool { return len(d.Params) > 0 }

// CompileClass parses a class: <Name> value and checks its member forms.
// Names are not resolved here; Install does that against the runtime.
func CompileClass(v cue.Value) (*ClassDecl, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	d := &ClassDecl{Pos: v.Pos()}
	if sels := v.Path().Selectors(); len(sels) > 0 {
		d.Name = sels[len(sels)-1].Unquoted()
	}
	if err := v.Decode(d); err != nil {
		return nil, formatCUEError(err)
	}

	fail := func(field, format string, args ...any) error {
		pos := d.Pos
		if fv := v.LookupPath(cue.ParsePath(field)); fv.Exists() {
			pos = fv.Pos()
		}
		return &CompileError{Field: "class." + d.Name + "." + field, Message: fmt.Sprintf(format, args...), Pos: pos}
	}
	parse := func(field, src string) (*Expr, error) {
		e, err := ParseType(src)
		if err != nil {
			return nil, fail(field, "%v", err)
		}
		return e, nil
	}

	seen := make(map[string]bool)
	for _, p := range d.Params {
		if seen[p] {
			return nil, fail("params", "duplicate type parameter %s", p)
		}
		seen[p] = true
	}

	var err error
	if d.Extends != "" {
		if d.extends, err = parse("extends", d.Extends); err != nil {
			return nil, err
		}
		if d.extends.Func != nil {
			return nil, fail("extends", "cannot extend a function type")
		}
	}
	for _, m := range d.Mixins {
		e, err := parse("mixins", m)
		if err != nil {
			return nil, err
		}
		if e.Func != nil {
			return nil, fail("mixins", "cannot mix in a function type")
		}
		d.mixins = append(d.mixins, e)
	}
	for _, i := range d.Implements {
		e, err := parse("implements", i)
		if err != nil {
			return nil, err
		}
		if e.Func != nil {
			return nil, fail("implements", "cannot implement a function type")
		}
		d.implements = append(d.implements, e)
	}
	if d.Ctor != "" {
		if d.ctor, err = parse("ctor", d.Ctor); err != nil {
			return nil, err
		}
		if d.ctor.Func == nil {
			return nil, fail("ctor", "constructor signature must be a function type")
		}
	}

	d.sigs = make(map[string]*Expr)
	d.bodies = make(map[string]Body)
	for _, name := range sortedKeys(d.Methods) {
		m := d.Methods[name]
		field := "methods." + quoteLabel(name)
		b, err := ParseBody(m.Body)
		if err != nil {
			return nil, fail(field+".body", "%v", err)
		}
		if b.kind == bodyNew {
			return nil, fail(field+".body", "new is only valid on statics")
		}
		if m.Tagged {
			return nil, fail(field+".tagged", "only statics can be tagged")
		}
		d.bodies[name] = b
		if m.Sig != "" {
			e, err := parse(field+".sig", m.Sig)
			if err != nil {
				return nil, err
			}
			if e.Func == nil {
				return nil, fail(field+".sig", "method signature must be a function type")
			}
			d.sigs[name] = e
		}
	}

	d.getters = make(map[string]Body)
	for _, name := range sortedKeys(d.Getters) {
		b, err := ParseBody(d.Getters[name])
		if err != nil {
			return nil, fail("getters."+quoteLabel(name), "%v", err)
		}
		if b.kind == bodyNew || b.kind == bodySet {
			return nil, fail("getters."+quoteLabel(name), "%s is not a getter body", b)
		}
		d.getters[name] = b
	}

	d.statics = make(map[string]*Expr)
	d.staticBody = make(map[string]Body)
	for _, name := range sortedKeys(d.Statics) {
		m := d.Statics[name]
		field := "statics." + quoteLabel(name)
		b, err := ParseBody(m.Body)
		if err != nil {
			return nil, fail(field+".body", "%v", err)
		}
		if b.needsInstance() {
			return nil, fail(field+".body", "%s needs an instance receiver", b)
		}
		d.staticBody[name] = b
		if m.Sig != "" {
			e, err := parse(field+".sig", m.Sig)
			if err != nil {
				return nil, err
			}
			if e.Func == nil {
				return nil, fail(field+".sig", "static signature must be a function type")
			}
			d.statics[name] = e
		} else if m.Tagged {
			return nil, fail(field+".tagged", "a tagged static needs a signature")
		}
	}

	for _, name := range d.Extension {
		_, isMethod := d.Methods[name]
		_, isGetter := d.Getters[name]
		if !isMethod && !isGetter {
			return nil, fail("extension", "no member named %s", name)
		}
	}
	return d, nil
}

// CompileTypedef parses a typedef: <Name> value.
func CompileTypedef(v cue.Value) (*TypedefDecl, error) {
	src, err := v.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	d := &TypedefDecl{Type: src, Pos: v.Pos()}
	if sels := v.Path().Selectors(); len(sels) > 0 {
		d.Name = sels[len(sels)-1].Unquoted()
	}
	e, err := ParseType(src)
	if err != nil {
		return nil, &CompileError{Field: "typedef." + d.Name, Message: err.Error(), Pos: d.Pos}
	}
	if e.Func == nil {
		return nil, &CompileError{Field: "typedef." + d.Name, Message: "typedef must name a function type", Pos: d.Pos}
	}
	d.expr = e
	return d, nil
}

// TaggedStatics lists statics whose tear-offs carry a signature.
func (d *ClassDecl) TaggedStatics() []string {
	var names []string
	for _, name := range sortedKeys(d.Statics) {
		if d.Statics[name].Tagged {
			names = append(names, name)
		}
	}
	return names
}

func sortByName[T any](list []T, name func(T) string) {
	sort.Slice(list, func(i, j int) bool { return name(list[i]) < name(list[j]) })
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// quoteLabel renders name as a CUE path element.
func quoteLabel(name string) string {
	return cue.Str(name).String()
}
