package schema

import (
	"fmt"
	"sort"

	"github.com/roach88/rtype/internal/meta"
	"github.com/roach88/rtype/internal/object"
	"github.com/roach88/rtype/internal/runtime"
	"github.com/roach88/rtype/internal/types"
)

var specials = map[string]types.Type{
	"dynamic": types.Dynamic,
	"void":    types.Void,
	"bottom":  types.Bottom,
	"native":  types.NativeTop,
}

// Scope maps names to the types installed in one runtime.
type Scope struct {
	rt       *runtime.Runtime
	classes  map[string]*types.Class
	generics map[string]*meta.Generic
	typedefs map[string]*types.Typedef
	declared []string
}

func newScope(rt *runtime.Runtime) *Scope {
	lib := rt.Core()
	s := &Scope{
		rt:       rt,
		classes:  make(map[string]*types.Class),
		generics: make(map[string]*meta.Generic),
		typedefs: make(map[string]*types.Typedef),
	}
	for _, c := range []*types.Class{
		lib.Object, lib.Null, lib.Bool, lib.Num, lib.Int,
		lib.Double, lib.String, lib.Function, lib.Type,
	} {
		s.classes[c.Name()] = c
	}
	s.generics[lib.Iterable.FamilyName()] = lib.Iterable
	s.generics[lib.List.FamilyName()] = lib.List
	return s
}

// Runtime returns the runtime the scope was installed into.
func (s *Scope) Runtime() *runtime.Runtime { return s.rt }

// Names returns the declared class and typedef names, sorted.
func (s *Scope) Names() []string {
	names := append([]string(nil), s.declared...)
	sort.Strings(names)
	return names
}

// Class returns a non-generic class by name.
func (s *Scope) Class(name string) (*types.Class, bool) {
	c, ok := s.classes[name]
	return c, ok
}

// Generic returns a generic family by name.
func (s *Scope) Generic(name string) (*meta.Generic, bool) {
	g, ok := s.generics[name]
	return g, ok
}

// Typedef returns a declared typedef by name.
func (s *Scope) Typedef(name string) (*types.Typedef, bool) {
	t, ok := s.typedefs[name]
	return t, ok
}

// Resolve parses and resolves a type expression.
func (s *Scope) Resolve(src string) (types.Type, error) {
	e, err := ParseType(src)
	if err != nil {
		return nil, err
	}
	if err := s.check(e, nil); err != nil {
		return nil, err
	}
	return s.resolve(e, nil), nil
}

// ResolveClass resolves src and requires a class.
func (s *Scope) ResolveClass(src string) (*types.Class, error) {
	t, err := s.Resolve(src)
	if err != nil {
		return nil, err
	}
	c, ok := t.(*types.Class)
	if !ok {
		return nil, fmt.Errorf("%s is not a class", src)
	}
	return c, nil
}

// New constructs an instance of the class src names.
func (s *Scope) New(src string, args ...any) (*object.Instance, error) {
	c, err := s.ResolveClass(src)
	if err != nil {
		return nil, err
	}
	return meta.Construct(c, args)
}

func (s *Scope) isName(name string) bool {
	if _, ok := specials[name]; ok {
		return true
	}
	_, c := s.classes[name]
	_, g := s.generics[name]
	_, t := s.typedefs[name]
	return c || g || t
}

// check verifies that every name in e exists and takes the arguments it is
// given. params are the type parameters in scope.
func (s *Scope) check(e *Expr, params []string) error {
	var err error
	e.walk(func(ref *Expr) {
		if err != nil {
			return
		}
		n := len(ref.Args)
		switch {
		case contains(params, ref.Name), specials[ref.Name] != nil:
			if n > 0 {
				err = fmt.Errorf("%s takes no type arguments", ref.Name)
			}
		case s.classes[ref.Name] != nil, s.typedefs[ref.Name] != nil:
			if n > 0 {
				err = fmt.Errorf("%s is not generic", ref.Name)
			}
		case s.generics[ref.Name] != nil:
			if g := s.generics[ref.Name]; n > g.Arity() {
				err = fmt.Errorf("%s takes %d type arguments, %d given", ref.Name, g.Arity(), n)
			}
		default:
			err = fmt.Errorf("unknown type %s", ref.Name)
		}
	})
	return err
}

// checkClassRef verifies that e names a class or generic family.
func (s *Scope) checkClassRef(e *Expr, params []string) error {
	if err := s.check(e, params); err != nil {
		return err
	}
	if s.classes[e.Name] == nil && s.generics[e.Name] == nil {
		return fmt.Errorf("%s is not a class", e.Name)
	}
	return nil
}

// resolve turns a checked expression into a type. env binds type
// parameters.
func (s *Scope) resolve(e *Expr, env map[string]types.Type) types.Type {
	if e.Func != nil {
		return s.resolveFunc(e, env)
	}
	if t, ok := env[e.Name]; ok {
		return t
	}
	if t, ok := specials[e.Name]; ok {
		return t
	}
	if c, ok := s.classes[e.Name]; ok {
		return c
	}
	if t, ok := s.typedefs[e.Name]; ok {
		return t
	}
	g, ok := s.generics[e.Name]
	if !ok {
		panic(meta.NewInternalError("resolve", e.String(), "unchecked type expression"))
	}
	if len(e.Args) == 0 {
		return g.Raw()
	}
	args := make([]types.Type, len(e.Args))
	for i, a := range e.Args {
		args[i] = s.resolve(a, env)
	}
	return g.MustOf(args...)
}

func (s *Scope) resolveFunc(e *Expr, env map[string]types.Type) *types.FuncType {
	f := e.Func
	list := func(exprs []*Expr) []types.Type {
		out := make([]types.Type, len(exprs))
		for i, x := range exprs {
			out[i] = s.resolve(x, env)
		}
		return out
	}
	var opts []types.FuncOption
	if len(f.Optional) > 0 {
		opts = append(opts, types.WithOptional(list(f.Optional)...))
	}
	if len(f.Named) > 0 {
		named := make(map[string]types.Type, len(f.Named))
		for _, p := range f.Named {
			named[p.Name] = s.resolve(p.Type, env)
		}
		opts = append(opts, types.WithNamed(named))
	}
	ret := s.resolve(f.Return, env)
	if f.Fuzzy {
		return types.NewFunction(ret, list(f.Positional), opts...)
	}
	return types.NewDefiniteFunction(ret, list(f.Positional), opts...)
}
