package types

import "strings"

// Method is the implementation of an instance or static member. For static
// members self is the class itself.
type Method func(self any, args []any) (any, error)

// Initializer runs a constructor body against a freshly allocated instance.
type Initializer func(self any, args []any) error

// Family identifies a generic class family.
type Family interface {
	FamilyName() string
	Arity() int
}

// GenericOrigin records how an instantiated class was produced.
// Args is nil for the raw (zero type argument) descriptor of a family.
type GenericOrigin struct {
	Family Family
	Args   []Type
}

// Signatures is a member signature table.
type Signatures map[Key]*FuncType

// Class is a nominal type: one class declaration or one generic
// instantiation. A Class is populated once while its declaration is
// evaluated and is treated as immutable afterwards; only its three signature
// cells resolve later, each at most once. Subtype results are cached on that
// assumption.
type Class struct {
	name   string
	super  Type
	mixins []*Class

	interfaces *Lazy[[]Type]

	ctorSigs   *Lazy[Signatures]
	methodSigs *Lazy[Signatures]
	staticSigs *Lazy[Signatures]
	staticTags map[string]*Typedef

	methods map[Key]Method
	getters map[Key]Method
	statics map[Key]Method
	fields  []string
	init    Initializer

	origin    *GenericOrigin
	extension bool
	aliases   map[string]Key
}

func (*Class) runtimeType() {}

// NewClass creates a class record. super may be nil only for the root class.
func NewClass(name string, super Type) *Class {
	return &Class{
		name:       name,
		super:      super,
		interfaces: Resolved[[]Type](nil),
		ctorSigs:   Resolved(Signatures{}),
		methodSigs: Resolved(Signatures{}),
		staticSigs: Resolved(Signatures{}),
		staticTags: make(map[string]*Typedef),
		methods:    make(map[Key]Method),
		getters:    make(map[Key]Method),
		statics:    make(map[Key]Method),
		aliases:    make(map[string]Key),
	}
}

// Name returns the declared name without type arguments.
func (c *Class) Name() string { return c.name }

// String renders the class with its type arguments, e.g. Box<int>.
func (c *Class) String() string {
	if c.origin == nil || len(c.origin.Args) == 0 {
		return c.name
	}
	args := make([]string, len(c.origin.Args))
	for i, a := range c.origin.Args {
		args[i] = Name(a)
	}
	return c.name + "<" + strings.Join(args, ", ") + ">"
}

// Super returns the supertype, or nil for the root class.
func (c *Class) Super() Type { return c.super }

// SuperClass returns the supertype when it is nominal.
func (c *Class) SuperClass() *Class {
	sc, _ := c.super.(*Class)
	return sc
}

// SetSuper replaces the supertype. Only used while a declaration is built.
func (c *Class) SetSuper(t Type) { c.super = t }

// Mixins returns the mixin list in application order.
func (c *Class) Mixins() []*Class { return c.mixins }

// SetMixins records the mixins applied to this class.
func (c *Class) SetMixins(mixins []*Class) {
	c.mixins = append([]*Class(nil), mixins...)
}

// SetInterfaces installs a lazily evaluated interface list. The thunk may
// refer to classes that are declared later.
func (c *Class) SetInterfaces(thunk func() []Type) {
	c.interfaces = NewLazy(thunk)
}

// Interfaces resolves and returns the implemented interfaces.
func (c *Class) Interfaces() []Type { return c.interfaces.Get() }

// SetSignatureCells installs the three signature memo cells.
func (c *Class) SetSignatureCells(ctors, methods, statics *Lazy[Signatures]) {
	if ctors != nil {
		c.ctorSigs = ctors
	}
	if methods != nil {
		c.methodSigs = methods
	}
	if statics != nil {
		c.staticSigs = statics
	}
}

// ConstructorSigs resolves the constructor signature table.
func (c *Class) ConstructorSigs() Signatures { return c.ctorSigs.Get() }

// MethodSigs resolves this class's own method signature table.
func (c *Class) MethodSigs() Signatures { return c.methodSigs.Get() }

// StaticSigs resolves the static member signature table.
func (c *Class) StaticSigs() Signatures { return c.staticSigs.Get() }

// MethodSigCell exposes the method signature cell so it can be shared.
func (c *Class) MethodSigCell() *Lazy[Signatures] { return c.methodSigs }

// TagStatic records the lazily resolved signature of a static tear-off.
func (c *Class) TagStatic(name string, sig *Typedef) { c.staticTags[name] = sig }

// StaticTag returns the tear-off signature recorded for a static member.
func (c *Class) StaticTag(name string) (*Typedef, bool) {
	td, ok := c.staticTags[name]
	return td, ok
}

// DefineMethod installs an own instance method.
func (c *Class) DefineMethod(key Key, m Method) { c.methods[key] = m }

// DefineGetter installs an own getter.
func (c *Class) DefineGetter(key Key, g Method) { c.getters[key] = g }

// DefineStatic installs a static member.
func (c *Class) DefineStatic(key Key, m Method) { c.statics[key] = m }

// OwnMethod returns a method declared directly on c.
func (c *Class) OwnMethod(key Key) (Method, bool) {
	m, ok := c.methods[key]
	return m, ok
}

// OwnMethods returns a copy of the own method table.
func (c *Class) OwnMethods() map[Key]Method {
	out := make(map[Key]Method, len(c.methods))
	for k, m := range c.methods {
		out[k] = m
	}
	return out
}

// OwnGetter returns a getter declared directly on c.
func (c *Class) OwnGetter(key Key) (Method, bool) {
	g, ok := c.getters[key]
	return g, ok
}

// OwnGetters returns a copy of the own getter table.
func (c *Class) OwnGetters() map[Key]Method {
	out := make(map[Key]Method, len(c.getters))
	for k, g := range c.getters {
		out[k] = g
	}
	return out
}

// Static returns a static member. Statics are not inherited.
func (c *Class) Static(key Key) (Method, bool) {
	m, ok := c.statics[key]
	return m, ok
}

// LookupMethod walks the nominal supertype chain for key.
func (c *Class) LookupMethod(key Key) (Method, *Class, bool) {
	for k := c; k != nil; k = k.SuperClass() {
		if m, ok := k.methods[key]; ok {
			return m, k, true
		}
	}
	return nil, nil, false
}

// LookupGetter walks the nominal supertype chain for a getter.
func (c *Class) LookupGetter(key Key) (Method, bool) {
	for k := c; k != nil; k = k.SuperClass() {
		if g, ok := k.getters[key]; ok {
			return g, true
		}
	}
	return nil, false
}

// MethodSig finds the declared signature for key along the supertype chain.
func (c *Class) MethodSig(key Key) (*FuncType, bool) {
	for k := c; k != nil; k = k.SuperClass() {
		if sig, ok := k.MethodSigs()[key]; ok {
			return sig, true
		}
	}
	return nil, false
}

// SetFields records the instance field names, in constructor order.
func (c *Class) SetFields(fields ...string) { c.fields = append([]string(nil), fields...) }

// Fields returns the declared instance field names including inherited ones,
// supertypes first.
func (c *Class) Fields() []string {
	var out []string
	if sc := c.SuperClass(); sc != nil {
		out = sc.Fields()
	}
	return append(out, c.fields...)
}

// SetInit installs the constructor body.
func (c *Class) SetInit(init Initializer) { c.init = init }

// Init returns the constructor body, or nil.
func (c *Class) Init() Initializer { return c.init }

// SetOrigin records the generic family and arguments that produced c.
func (c *Class) SetOrigin(o *GenericOrigin) { c.origin = o }

// Origin returns the generic origin, or nil for a non-generic class.
func (c *Class) Origin() *GenericOrigin { return c.origin }

// IsRaw reports whether c is the raw descriptor of a generic family.
func (c *Class) IsRaw() bool { return c.origin != nil && c.origin.Args == nil }

// MarkExtension flags c as an extension host: dispatch on its instances
// resolves members through alias keys.
func (c *Class) MarkExtension() { c.extension = true }

// IsExtension reports whether c is an extension host.
func (c *Class) IsExtension() bool { return c.extension }

// SetAlias records the alias key used for name.
func (c *Class) SetAlias(name string, key Key) { c.aliases[name] = key }

// Alias returns the alias key recorded for name along the supertype chain.
func (c *Class) Alias(name string) (Key, bool) {
	for k := c; k != nil; k = k.SuperClass() {
		if key, ok := k.aliases[name]; ok {
			return key, true
		}
	}
	return Key{}, false
}
