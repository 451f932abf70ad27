// Package object defines the runtime values that dispatch operates on.
//
// Values are plain Go values typed as any:
//   - nil is the null value
//   - int, int64 and float64 are numbers, string and bool are themselves
//   - *Instance is an instance of a declared class
//   - *List is an instance of a List instantiation
//   - *Function is a callable carrying an optional signature
//   - *types.Class used as a value is a class literal (static members)
//   - map[string]any, []any and NativeFunc are foreign host values
package object

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/rtype/internal/types"
)

// NativeFunc is a foreign callable: no signature, no checking.
type NativeFunc func(args []any) (any, error)

// Instance is an object of a declared class.
type Instance struct {
	Class  *types.Class
	Fields map[string]any
}

// NewInstance allocates an instance with no fields set.
func NewInstance(c *types.Class) *Instance {
	return &Instance{Class: c, Fields: make(map[string]any)}
}

// Get returns a field value.
func (o *Instance) Get(name string) (any, bool) {
	v, ok := o.Fields[name]
	return v, ok
}

// Set assigns a field.
func (o *Instance) Set(name string, v any) {
	o.Fields[name] = v
}

// FieldNames returns the set field names in sorted order.
func (o *Instance) FieldNames() []string {
	names := make([]string, 0, len(o.Fields))
	for k := range o.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (o *Instance) String() string {
	names := o.FieldNames()
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s: %s", n, Inspect(o.Fields[n]))
	}
	return fmt.Sprintf("%s{%s}", o.Class, strings.Join(parts, ", "))
}

// List is an instance of List<E>. Class is the instantiation.
type List struct {
	Class *types.Class
	Items []any
}

func (l *List) String() string {
	parts := make([]string, len(l.Items))
	for i, it := range l.Items {
		parts[i] = Inspect(it)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Function is a callable value. Sig is nil for untyped callables; a
// function-shaped type (a *types.FuncType or *types.Typedef) otherwise.
type Function struct {
	Name string
	Sig  types.Type
	Fn   NativeFunc
}

// Invoke calls the function without any checking.
func (f *Function) Invoke(args []any) (any, error) {
	return f.Fn(args)
}

func (f *Function) String() string {
	if f.Sig != nil {
		return fmt.Sprintf("Closure %s: %s", f.Name, f.Sig)
	}
	return "Closure " + f.Name
}

// NamedArgs is the named-argument bag passed as the last argument of a call
// to a function with named parameters.
type NamedArgs map[string]any

// Inspect renders a value for diagnostics.
func Inspect(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
