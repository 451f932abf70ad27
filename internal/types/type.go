package types

// Type is a sealed interface implemented by every runtime type.
type Type interface {
	String() string
	runtimeType()
}

// special is the representation shared by the process-wide singleton types.
type special struct {
	name string
}

func (s *special) String() string { return s.name }
func (*special) runtimeType()     {}

// Process-wide singletons. They are created once and never replaced; a reset
// of the runtime keeps them.
var (
	// Dynamic is the unchecked top type.
	Dynamic Type = &special{name: "dynamic"}

	// Void is the return type of functions that produce no value.
	Void Type = &special{name: "void"}

	// Bottom is the empty type; it is a subtype of every type.
	Bottom Type = &special{name: "bottom"}

	// NativeTop is the type of host values whose shape is unknown.
	NativeTop Type = &special{name: "native"}
)

// Foreign host shapes. Values produced by the host (maps, slices and plain
// Go funcs) have these runtime types.
var (
	ForeignObject   Type = &special{name: "ForeignObject"}
	ForeignFunction Type = &special{name: "ForeignFunction"}
	ForeignArray    Type = &special{name: "ForeignArray"}
)

// IsSpecial reports whether t is one of the singleton types.
func IsSpecial(t Type) bool {
	_, ok := t.(*special)
	return ok
}

// IsTop reports whether t is Dynamic. The core Object class is also a top
// type for subtyping, but only the subtype engine knows which class that is.
func IsTop(t Type) bool {
	return t == Dynamic
}

// Name returns the display name of t, or "<nil>" for a missing type.
func Name(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
