package types

// Key names a class member. Plain keys are the source-level names; extension
// keys are the aliased slots installed for extension members, so dispatch can
// reach them without colliding with a reserved plain name.
type Key struct {
	Name      string
	Extension bool
}

// Plain returns the key for a source-level member name.
func Plain(name string) Key {
	return Key{Name: name}
}

// ExtensionKey returns the alias key for name.
func ExtensionKey(name string) Key {
	return Key{Name: name, Extension: true}
}

func (k Key) String() string {
	if k.Extension {
		return "ext:" + k.Name
	}
	return k.Name
}
