package types

// Typedef is a named function type whose definition is produced on demand.
// Mutually recursive declarations can refer to each other before either is
// complete; the resolver runs the first time a derived property is read.
type Typedef struct {
	name string
	fn   *Lazy[*FuncType]
}

func (*Typedef) runtimeType() {}

// NewTypedef creates an unresolved typedef.
func NewTypedef(name string, resolver func() *FuncType) *Typedef {
	return &Typedef{name: name, fn: NewLazy(resolver)}
}

func (t *Typedef) String() string { return t.name }

// Func resolves and returns the underlying descriptor.
func (t *Typedef) Func() *FuncType { return t.fn.Get() }

// IsResolved reports whether the resolver has run.
func (t *Typedef) IsResolved() bool { return t.fn.IsResolved() }

func (t *Typedef) Return() Type {
	if f := t.Func(); f != nil {
		return f.Return
	}
	return Dynamic
}

func (t *Typedef) Positional() []Type {
	if f := t.Func(); f != nil {
		return f.Positional
	}
	return nil
}

func (t *Typedef) Optional() []Type {
	if f := t.Func(); f != nil {
		return f.Optional
	}
	return nil
}

func (t *Typedef) Named() map[string]Type {
	if f := t.Func(); f != nil {
		return f.Named
	}
	return nil
}
