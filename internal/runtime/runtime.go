// Package runtime assembles the type system of one program: the generic
// registry, the core library, the subtype checker, the dispatcher and the
// constant table.
//
// All caches live on the Runtime. Reset discards every one of them at once
// and rebuilds the core library; nothing is ever invalidated piecemeal.
package runtime

import (
	"io"
	"log/slog"

	"github.com/roach88/rtype/internal/constant"
	"github.com/roach88/rtype/internal/core"
	"github.com/roach88/rtype/internal/dispatch"
	"github.com/roach88/rtype/internal/meta"
	"github.com/roach88/rtype/internal/subtype"
	"github.com/roach88/rtype/internal/trace"
	"github.com/roach88/rtype/internal/types"
)

// Runtime owns the process-wide state of one program.
type Runtime struct {
	logger   *slog.Logger
	recorder trace.Recorder
	clock    *trace.Clock
	ids      trace.IDGenerator
	session  string

	registry   *meta.Registry
	core       *core.Library
	checker    *subtype.Checker
	dispatcher *dispatch.Dispatcher
	constants  *constant.Table
	generation int
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used by the runtime and its dispatcher.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		if logger == nil {
			logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
		r.logger = logger
	}
}

// WithRecorder records every dispatch operation.
func WithRecorder(rec trace.Recorder) Option {
	return func(r *Runtime) {
		r.recorder = rec
	}
}

// WithClock sets the clock stamping recorded events. It survives Reset, so
// sequence numbers keep increasing across restarts.
func WithClock(c *trace.Clock) Option {
	return func(r *Runtime) {
		r.clock = c
	}
}

// WithIDGenerator sets the generator for session ids. Each Reset starts a
// new session.
func WithIDGenerator(g trace.IDGenerator) Option {
	return func(r *Runtime) {
		r.ids = g
	}
}

// New creates a runtime with a freshly declared core library.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		logger: slog.Default(),
		clock:  trace.NewClock(),
		ids:    trace.UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.build()
	return r
}

func (r *Runtime) build() {
	r.session = r.ids.Generate()
	r.registry = meta.NewRegistry(r.logger)
	r.core = core.New(r.registry)
	r.checker = subtype.New(r.core)
	r.dispatcher = dispatch.New(r.checker,
		dispatch.WithLogger(r.logger),
		dispatch.WithRecorder(r.recorder),
		dispatch.WithClock(r.clock),
		dispatch.WithSession(r.session),
	)
	r.constants = constant.New(r.core)
}

// Reset discards the subtype cache, the generic instantiations, the constant
// table and the core library, and starts over. Classes declared before the
// reset must be declared again.
func (r *Runtime) Reset() {
	r.logger.Info("runtime reset",
		"session", r.session,
		"generation", r.generation,
		"generics", r.registry.Len(),
		"subtype_cache", r.checker.CacheSize(),
		"constants", r.constants.Len(),
	)
	r.generation++
	r.build()
}

// Session returns the id written on recorded events.
func (r *Runtime) Session() string { return r.session }

// Generation counts resets.
func (r *Runtime) Generation() int { return r.generation }

// Core returns the core library.
func (r *Runtime) Core() *core.Library { return r.core }

// Registry returns the generic registry.
func (r *Runtime) Registry() *meta.Registry { return r.registry }

// Checker returns the subtype checker.
func (r *Runtime) Checker() *subtype.Checker { return r.checker }

// Dispatcher returns the dispatcher.
func (r *Runtime) Dispatcher() *dispatch.Dispatcher { return r.dispatcher }

// Constants returns the constant table.
func (r *Runtime) Constants() *constant.Table { return r.constants }

// Logger returns the runtime's logger.
func (r *Runtime) Logger() *slog.Logger { return r.logger }

// IsSubtype reports whether t1 is a subtype of t2.
func (r *Runtime) IsSubtype(t1, t2 types.Type) bool { return r.checker.IsSubtype(t1, t2) }

// Intern returns the canonical instance equal to v.
func (r *Runtime) Intern(v any, typeArgs ...types.Type) (any, error) {
	return r.constants.Intern(v, typeArgs...)
}

// NewGeneric declares a generic class family in this runtime.
func (r *Runtime) NewGeneric(name string, arity int, build meta.Builder) *meta.Generic {
	return r.registry.NewGeneric(name, arity, build)
}

// NewClass declares a class. A nil super means Object.
func (r *Runtime) NewClass(name string, super types.Type) *types.Class {
	if super == nil {
		super = r.core.Object
	}
	return types.NewClass(name, super)
}
