package types

import (
	"sort"
	"strings"
)

// FuncType describes an arrow type.
//
// A fuzzy (non-definite) descriptor has every Dynamic parameter replaced by
// Bottom when it is built. The substitution happens once, in NewFunction,
// and is never re-derived.
type FuncType struct {
	Definite   bool
	Return     Type
	Positional []Type
	Optional   []Type
	Named      map[string]Type
	Metadata   [][]any
}

func (*FuncType) runtimeType() {}

// FuncOption configures the trailing parameters of a function type.
type FuncOption func(*FuncType)

// WithOptional declares optional positional parameters.
// A descriptor has either optional or named parameters, never both; the last
// option applied wins.
func WithOptional(optional ...Type) FuncOption {
	return func(f *FuncType) {
		f.Optional = append([]Type(nil), optional...)
		f.Named = nil
	}
}

// WithNamed declares named parameters.
func WithNamed(named map[string]Type) FuncOption {
	return func(f *FuncType) {
		f.Named = make(map[string]Type, len(named))
		for k, v := range named {
			f.Named[k] = v
		}
		f.Optional = nil
	}
}

// WithMetadata attaches per-parameter annotations.
func WithMetadata(metadata ...[]any) FuncOption {
	return func(f *FuncType) {
		f.Metadata = metadata
	}
}

// NewFunction creates a fuzzy function type: Dynamic parameters become Bottom.
func NewFunction(ret Type, positional []Type, opts ...FuncOption) *FuncType {
	return newFunc(false, ret, positional, opts)
}

// NewDefiniteFunction creates a function type without the Dynamic to Bottom
// substitution.
func NewDefiniteFunction(ret Type, positional []Type, opts ...FuncOption) *FuncType {
	return newFunc(true, ret, positional, opts)
}

func newFunc(definite bool, ret Type, positional []Type, opts []FuncOption) *FuncType {
	if ret == nil {
		ret = Dynamic
	}
	f := &FuncType{
		Definite:   definite,
		Return:     ret,
		Positional: append([]Type(nil), positional...),
	}
	for _, opt := range opts {
		opt(f)
	}
	if !definite {
		fuzz(f.Positional)
		fuzz(f.Optional)
		for k, v := range f.Named {
			if v == Dynamic {
				f.Named[k] = Bottom
			}
		}
	}
	return f
}

func fuzz(params []Type) {
	for i, p := range params {
		if p == Dynamic || p == nil {
			params[i] = Bottom
		}
	}
}

// RequiredCount is the number of required positional parameters.
func (f *FuncType) RequiredCount() int {
	return len(f.Positional)
}

// TotalPositional is the number of positional parameters, required and optional.
func (f *FuncType) TotalPositional() int {
	return len(f.Positional) + len(f.Optional)
}

// NamedKeys returns the named parameter names in lexicographic order.
func (f *FuncType) NamedKeys() []string {
	keys := make([]string, 0, len(f.Named))
	for k := range f.Named {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String renders (a, b, [c]) -> r or (a, {x: t}) -> r.
func (f *FuncType) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, p := range f.Positional {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(Name(p))
	}
	switch {
	case len(f.Optional) > 0:
		if len(f.Positional) > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('[')
		for i, p := range f.Optional {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(Name(p))
		}
		b.WriteByte(']')
	case len(f.Named) > 0:
		if len(f.Positional) > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('{')
		for i, k := range f.NamedKeys() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(Name(f.Named[k]))
		}
		b.WriteByte('}')
	}
	b.WriteString(") -> ")
	b.WriteString(Name(f.Return))
	return b.String()
}

// AsFunc returns the arrow descriptor behind a function-shaped type.
// Typedefs are resolved on the way.
func AsFunc(t Type) (*FuncType, bool) {
	switch ft := t.(type) {
	case *FuncType:
		return ft, ft != nil
	case *Typedef:
		f := ft.Func()
		return f, f != nil
	}
	return nil, false
}
