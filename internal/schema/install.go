package schema

import (
	"github.com/roach88/rtype/internal/meta"
	"github.com/roach88/rtype/internal/runtime"
	"github.com/roach88/rtype/internal/types"
)

// Install declares every class and typedef of p in rt. Supertypes and
// mixins are populated before the classes that use them; interfaces and
// signatures resolve lazily, so they may refer forward. A failed install
// leaves partially declared classes behind; reset the runtime before
// retrying.
func (p *Program) Install(rt *runtime.Runtime) (*Scope, error) {
	s := newScope(rt)
	var errs ErrorList

	for _, d := range p.Typedefs {
		if s.isName(d.Name) {
			errs = append(errs, &CompileError{Field: "typedef." + d.Name, Message: "name already declared", Pos: d.Pos})
			continue
		}
		expr := d.expr
		s.typedefs[d.Name] = types.NewTypedef(d.Name, func() *types.FuncType {
			return s.resolveFunc(expr, nil)
		})
		s.declared = append(s.declared, d.Name)
	}

	for _, d := range p.Classes {
		if s.isName(d.Name) {
			errs = append(errs, &CompileError{Field: "class." + d.Name, Message: "name already declared", Pos: d.Pos})
			continue
		}
		if d.IsGeneric() {
			s.generics[d.Name] = rt.NewGeneric(d.Name, len(d.Params), s.builder(d))
		} else {
			s.classes[d.Name] = rt.NewClass(d.Name, nil)
		}
		s.declared = append(s.declared, d.Name)
	}

	for _, d := range p.Typedefs {
		if err := s.check(d.expr, nil); err != nil {
			errs = append(errs, &CompileError{Field: "typedef." + d.Name, Message: err.Error(), Pos: d.Pos})
		}
	}
	for _, d := range p.Classes {
		if err := s.checkClass(d); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	order, cycles := installOrder(p.Classes)
	if len(cycles) > 0 {
		return nil, append(errs, cycles...)
	}
	for _, name := range order {
		if c, ok := s.classes[name]; ok {
			d, _ := p.Class(name)
			s.populate(c, d, nil)
		}
	}

	rt.Logger().Debug("program installed",
		"classes", len(p.Classes),
		"typedefs", len(p.Typedefs),
	)
	return s, nil
}

func (s *Scope) checkClass(d *ClassDecl) error {
	wrap := func(field string, err error) error {
		return &CompileError{Field: "class." + d.Name + "." + field, Message: err.Error(), Pos: d.Pos}
	}
	if d.extends != nil {
		if err := s.checkClassRef(d.extends, d.Params); err != nil {
			return wrap("extends", err)
		}
	}
	for _, m := range d.mixins {
		if err := s.checkClassRef(m, d.Params); err != nil {
			return wrap("mixins", err)
		}
	}
	for _, i := range d.implements {
		if err := s.checkClassRef(i, d.Params); err != nil {
			return wrap("implements", err)
		}
	}
	if d.ctor != nil {
		if err := s.check(d.ctor, d.Params); err != nil {
			return wrap("ctor", err)
		}
	}
	for _, name := range sortedKeys(d.sigs) {
		if err := s.check(d.sigs[name], d.Params); err != nil {
			return wrap("methods."+quoteLabel(name), err)
		}
	}
	for _, name := range sortedKeys(d.statics) {
		// Statics are shared by every instantiation.
		if err := s.check(d.statics[name], nil); err != nil {
			return wrap("statics."+quoteLabel(name), err)
		}
	}
	return nil
}

// builder populates one instantiation of a generic declaration.
func (s *Scope) builder(d *ClassDecl) meta.Builder {
	return func(c *types.Class, args []types.Type) {
		env := make(map[string]types.Type, len(d.Params))
		for i, p := range d.Params {
			env[p] = args[i]
		}
		s.populate(c, d, env)
	}
}

// populate fills in a class record from its declaration.
func (s *Scope) populate(c *types.Class, d *ClassDecl, env map[string]types.Type) {
	lib := s.rt.Core()

	super := lib.Object
	if d.extends != nil {
		super = s.resolveClass(d.extends, env)
	}
	if len(d.mixins) > 0 {
		mixins := make([]*types.Class, len(d.mixins))
		for i, m := range d.mixins {
			mixins[i] = s.resolveClass(m, env)
		}
		super = meta.Mixin(super, mixins...)
	}
	c.SetSuper(super)

	if len(d.implements) > 0 {
		c.SetInterfaces(func() []types.Type {
			out := make([]types.Type, len(d.implements))
			for i, e := range d.implements {
				out[i] = s.resolve(e, env)
			}
			return out
		})
	}

	c.SetFields(d.Fields...)
	c.SetInit(meta.FieldInitializer(c, d.Fields...))

	for name, b := range d.bodies {
		c.DefineMethod(types.Plain(name), b.method(c))
	}
	for name, b := range d.getters {
		c.DefineGetter(types.Plain(name), b.method(c))
	}
	for name, b := range d.staticBody {
		c.DefineStatic(types.Plain(name), b.method(c))
	}

	sig := meta.Signature{
		Methods: s.table(d.sigs, env),
		Statics: s.table(d.statics, nil),
		Names:   d.TaggedStatics(),
	}
	if d.ctor != nil {
		ctor := d.ctor
		sig.Constructors = func() map[string]*types.FuncType {
			return map[string]*types.FuncType{"": s.resolveFunc(ctor, env)}
		}
	}
	meta.SetSignature(c, sig)

	if len(d.Extension) > 0 {
		if err := meta.DefineExtensionMembers(c, d.Extension...); err != nil {
			panic(err)
		}
	}
}

func (s *Scope) table(exprs map[string]*Expr, env map[string]types.Type) func() map[string]*types.FuncType {
	return func() map[string]*types.FuncType {
		out := make(map[string]*types.FuncType, len(exprs))
		for name, e := range exprs {
			out[name] = s.resolveFunc(e, env)
		}
		return out
	}
}

func (s *Scope) resolveClass(e *Expr, env map[string]types.Type) *types.Class {
	c, ok := s.resolve(e, env).(*types.Class)
	if !ok {
		panic(meta.NewInternalError("install", e.String(), "not a class"))
	}
	return c
}
