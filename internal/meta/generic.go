package meta

import (
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/roach88/rtype/internal/types"
)

// Builder populates a freshly allocated instantiation. The class is already
// registered when Builder runs, so a family may refer to its own
// instantiations (class Node<T> { Node<T> next; }) without recursing.
// args has one entry per type parameter; for the raw descriptor every entry
// is Dynamic.
type Builder func(c *types.Class, args []types.Type)

// Registry memoizes generic instantiations for one runtime.
type Registry struct {
	arena  []*types.Class
	index  map[instKey]int
	ids    map[types.Type]int
	logger *slog.Logger
}

type instKey struct {
	family *Generic
	args   string
}

// NewRegistry creates an empty registry. A nil logger discards output.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{
		index:  make(map[instKey]int),
		ids:    make(map[types.Type]int),
		logger: logger,
	}
}

// Len returns the number of instantiations created so far.
func (r *Registry) Len() int { return len(r.arena) }

// identity returns a stable small integer for t, assigned on first sight.
// Keys are built from these so that only the identical type argument tuple
// maps to an existing instantiation.
func (r *Registry) identity(t types.Type) int {
	if id, ok := r.ids[t]; ok {
		return id
	}
	id := len(r.ids) + 1
	r.ids[t] = id
	return id
}

func (r *Registry) key(g *Generic, args []types.Type) instKey {
	if args == nil {
		return instKey{family: g, args: "raw"}
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = strconv.Itoa(r.identity(a))
	}
	return instKey{family: g, args: strings.Join(parts, ",")}
}

// Generic is a generic class family.
type Generic struct {
	name  string
	arity int
	build Builder
	reg   *Registry
}

// NewGeneric declares a family of arity type parameters.
func (r *Registry) NewGeneric(name string, arity int, build Builder) *Generic {
	return &Generic{name: name, arity: arity, build: build, reg: r}
}

// FamilyName implements types.Family.
func (g *Generic) FamilyName() string { return g.name }

// Arity implements types.Family.
func (g *Generic) Arity() int { return g.arity }

// Of returns the instantiation for the given type arguments. Missing
// trailing arguments default to Dynamic. Supplying more arguments than the
// family declares is an internal consistency failure.
func (g *Generic) Of(args ...types.Type) (*types.Class, error) {
	if len(args) > g.arity {
		return nil, NewInternalError("generic", g.name,
			"%d type arguments given, family declares %d", len(args), g.arity)
	}
	full := make([]types.Type, g.arity)
	for i := range full {
		if i < len(args) && args[i] != nil {
			full[i] = args[i]
		} else {
			full[i] = types.Dynamic
		}
	}
	return g.instantiate(full), nil
}

// MustOf is Of for callers that pass a known-good argument count.
func (g *Generic) MustOf(args ...types.Type) *types.Class {
	c, err := g.Of(args...)
	if err != nil {
		panic(err)
	}
	return c
}

// Raw returns the family's raw descriptor: the declaration used without type
// arguments.
func (g *Generic) Raw() *types.Class {
	return g.instantiate(nil)
}

func (g *Generic) instantiate(args []types.Type) *types.Class {
	r := g.reg
	key := r.key(g, args)
	if slot, ok := r.index[key]; ok {
		return r.arena[slot]
	}

	c := types.NewClass(g.name, nil)
	c.SetOrigin(&types.GenericOrigin{Family: g, Args: args})
	r.arena = append(r.arena, c)
	r.index[key] = len(r.arena) - 1

	r.logger.Debug("generic instantiation",
		"family", g.name,
		"class", c.String(),
	)

	buildArgs := args
	if buildArgs == nil {
		buildArgs = make([]types.Type, g.arity)
		for i := range buildArgs {
			buildArgs[i] = types.Dynamic
		}
	}
	if g.build != nil {
		g.build(c, buildArgs)
	}
	return c
}

// GenericClass returns the family that produced c.
func GenericClass(c *types.Class) (*Generic, error) {
	o := c.Origin()
	if o == nil {
		return nil, NewInternalError("getGenericClass", c.String(), "not a generic instantiation")
	}
	g, ok := o.Family.(*Generic)
	if !ok {
		return nil, NewInternalError("getGenericClass", c.String(), "unknown family %T", o.Family)
	}
	return g, nil
}

// GenericArgs returns the type arguments c was instantiated with. The raw
// descriptor has no arguments and yields an empty slice.
func GenericArgs(c *types.Class) ([]types.Type, error) {
	o := c.Origin()
	if o == nil {
		return nil, NewInternalError("getGenericArgs", c.String(), "not a generic instantiation")
	}
	return append([]types.Type{}, o.Args...), nil
}

// SameFamily reports whether a and b were produced by the same family.
func SameFamily(a, b *types.Class) bool {
	oa, ob := a.Origin(), b.Origin()
	return oa != nil && ob != nil && oa.Family == ob.Family
}
