package types

// Lazy is a write-once memo cell: Unresolved(thunk) until the first Get,
// Resolved(value) forever after. The thunk runs at most once.
//
// Lazy is not safe for concurrent use; the runtime is single-threaded.
type Lazy[T any] struct {
	thunk    func() T
	value    T
	resolved bool
}

// NewLazy creates an unresolved cell.
func NewLazy[T any](thunk func() T) *Lazy[T] {
	return &Lazy[T]{thunk: thunk}
}

// Resolved creates a cell that already holds v.
func Resolved[T any](v T) *Lazy[T] {
	return &Lazy[T]{value: v, resolved: true}
}

// Get resolves the cell on first use and returns the cached value.
func (l *Lazy[T]) Get() T {
	if l == nil {
		var zero T
		return zero
	}
	if !l.resolved {
		if l.thunk != nil {
			l.value = l.thunk()
		}
		l.thunk = nil
		l.resolved = true
	}
	return l.value
}

// IsResolved reports whether Get has already run the thunk.
func (l *Lazy[T]) IsResolved() bool {
	return l != nil && l.resolved
}
