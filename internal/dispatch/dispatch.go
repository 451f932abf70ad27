package dispatch

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/roach88/rtype/internal/core"
	"github.com/roach88/rtype/internal/object"
	"github.com/roach88/rtype/internal/subtype"
	"github.com/roach88/rtype/internal/trace"
	"github.com/roach88/rtype/internal/types"
)

// Dispatcher performs dynamic member access and checked invocation.
type Dispatcher struct {
	lib      *core.Library
	checker  *subtype.Checker
	logger   *slog.Logger
	recorder trace.Recorder
	clock    *trace.Clock
	session  string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger == nil {
			logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
		d.logger = logger
	}
}

// WithRecorder records one trace.Event per dispatch operation.
func WithRecorder(r trace.Recorder) Option {
	return func(d *Dispatcher) {
		d.recorder = r
	}
}

// WithClock sets the clock that stamps recorded events.
func WithClock(c *trace.Clock) Option {
	return func(d *Dispatcher) {
		if c != nil {
			d.clock = c
		}
	}
}

// WithSession sets the session id written on recorded events.
func WithSession(id string) Option {
	return func(d *Dispatcher) {
		d.session = id
	}
}

// New creates a Dispatcher that checks arguments with checker.
func New(checker *subtype.Checker, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		lib:     checker.Library(),
		checker: checker,
		logger:  slog.Default(),
		clock:   trace.NewClock(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Library returns the core library values are classified against.
func (d *Dispatcher) Library() *core.Library { return d.lib }

// Load reads member name of obj. A field yields its value, a getter its
// result, and a method a bound tear-off whose Sig is the method's declared
// signature.
func (d *Dispatcher) Load(obj any, name string) (result any, err error) {
	defer func() { d.record(trace.OpLoad, obj, name, nil, err) }()

	l := d.Lookup(obj, d.CanonicalMemberName(obj, name))
	switch l.Kind {
	case LookupField:
		return l.Value, nil
	case LookupGetter:
		return l.Method(l.Self, nil)
	case LookupMethod:
		return tearOff(name, l), nil
	}
	return nil, d.noSuchMethod(obj, name, nil, "member not found")
}

// Put assigns value to member name of obj. A declared setter ("name=") runs
// when present; otherwise instance fields and foreign object keys are
// assigned directly. No type validation happens here.
func (d *Dispatcher) Put(obj any, name string, value any) (err error) {
	defer func() { d.record(trace.OpPut, obj, name, []any{value}, err) }()

	key := d.CanonicalMemberName(obj, name)
	if cls := d.lib.ClassOf(obj); cls != nil {
		setter := key
		setter.Name += "="
		if m, _, ok := cls.LookupMethod(setter); ok {
			_, err := m(obj, []any{value})
			return err
		}
	}

	switch o := obj.(type) {
	case *object.Instance:
		o.Set(key.Name, value)
		return nil
	case map[string]any:
		o[key.Name] = value
		return nil
	case object.NamedArgs:
		o[key.Name] = value
		return nil
	}
	return d.noSuchMethod(obj, name+"=", []any{value}, "no assignable member")
}

// Send invokes member name of obj with args. Fields and getters holding a
// callable are invoked with that callable's own signature.
func (d *Dispatcher) Send(obj any, name string, args ...any) (result any, err error) {
	defer func() { d.record(trace.OpSend, obj, name, args, err) }()
	return d.send(obj, name, args)
}

func (d *Dispatcher) send(obj any, name string, args []any) (any, error) {
	l := d.Lookup(obj, d.CanonicalMemberName(obj, name))
	switch l.Kind {
	case LookupMethod:
		return d.checkedApply(bind(l), l.Sig, obj, args, name, true)
	case LookupField:
		return d.checkedApply(l.Value, nil, obj, args, name, true)
	case LookupGetter:
		v, err := l.Method(l.Self, nil)
		if err != nil {
			return nil, err
		}
		return d.checkedApply(v, nil, obj, args, name, true)
	}
	return nil, d.noSuchMethod(obj, name, args, "member not found")
}

// Index evaluates obj[i].
func (d *Dispatcher) Index(obj any, i any) (result any, err error) {
	defer func() { d.record(trace.OpIndex, obj, "[]", []any{i}, err) }()

	if m, ok := foreignMap(obj); ok {
		k, ok := i.(string)
		if !ok {
			return nil, d.noSuchMethod(obj, "[]", []any{i}, "foreign object keys are strings")
		}
		return m[k], nil
	}
	return d.send(obj, "[]", []any{i})
}

// SetIndex evaluates obj[i] = v and returns v.
func (d *Dispatcher) SetIndex(obj any, i, v any) (result any, err error) {
	defer func() { d.record(trace.OpSetIndex, obj, "[]=", []any{i, v}, err) }()

	if m, ok := foreignMap(obj); ok {
		k, ok := i.(string)
		if !ok {
			return nil, d.noSuchMethod(obj, "[]=", []any{i, v}, "foreign object keys are strings")
		}
		m[k] = v
		return v, nil
	}
	if _, err := d.send(obj, "[]=", []any{i, v}); err != nil {
		return nil, err
	}
	return v, nil
}

// Call invokes fn with args, checked against fn's own signature.
func (d *Dispatcher) Call(fn any, args ...any) (result any, err error) {
	defer func() { d.record(trace.OpCall, fn, "call", args, err) }()
	return d.checkedApply(fn, nil, fn, args, "call", true)
}

// CheckedApply invokes callee with args after validating them against sig.
//
// A callee that is not directly invocable is retried once through its
// "call" member. With no signature (sig nil and none attached to callee)
// the call is unchecked. Otherwise args must supply every required
// positional parameter, extra arguments fill optional parameters left to
// right, or, for a signature with named parameters, a single trailing
// named-argument bag whose keys are all declared. Every argument must be an
// instance of its parameter type; nil is accepted everywhere.
//
// CheckedApply is not recorded; the operation that calls it is.
func (d *Dispatcher) CheckedApply(callee any, sig types.Type, receiver any, args []any, name string) (any, error) {
	return d.checkedApply(callee, sig, receiver, args, name, true)
}

func (d *Dispatcher) checkedApply(callee any, sig types.Type, receiver any, args []any, name string, retry bool) (any, error) {
	var invoke object.NativeFunc
	switch fn := callee.(type) {
	case *object.Function:
		invoke = fn.Fn
		if sig == nil {
			sig = fn.Sig
		}
	case object.NativeFunc:
		invoke = fn
	case func([]any) (any, error):
		invoke = fn
	}

	if invoke == nil {
		if retry && callee != nil {
			l := d.Lookup(callee, d.CanonicalMemberName(callee, "call"))
			switch l.Kind {
			case LookupMethod:
				return d.checkedApply(bind(l), l.Sig, receiver, args, name, false)
			case LookupField:
				return d.checkedApply(l.Value, nil, receiver, args, name, false)
			case LookupGetter:
				v, err := l.Method(l.Self, nil)
				if err != nil {
					return nil, err
				}
				return d.checkedApply(v, nil, receiver, args, name, false)
			}
		}
		return nil, d.noSuchMethod(receiver, name, args, "callee is not invocable")
	}

	if sig == nil {
		return invoke(args)
	}
	f, ok := types.AsFunc(sig)
	if !ok || f == nil {
		return invoke(args)
	}
	if reason := d.validate(f, args); reason != "" {
		return nil, d.noSuchMethod(receiver, name, args, reason)
	}
	return invoke(args)
}

// validate returns why args do not fit f, or "" when they do.
func (d *Dispatcher) validate(f *types.FuncType, args []any) string {
	required := len(f.Positional)
	if len(args) < required {
		return fmt.Sprintf("expected at least %d positional arguments, got %d", required, len(args))
	}
	for i, p := range f.Positional {
		if !d.accepts(args[i], p) {
			return d.mismatch(i, args[i], p)
		}
	}

	extras := args[required:]
	if len(extras) == 0 {
		return ""
	}
	if len(f.Optional) > 0 {
		if len(extras) > len(f.Optional) {
			return fmt.Sprintf("expected at most %d positional arguments, got %d", f.TotalPositional(), len(args))
		}
		for i, a := range extras {
			if !d.accepts(a, f.Optional[i]) {
				return d.mismatch(required+i, a, f.Optional[i])
			}
		}
		return ""
	}
	if len(f.Named) > 0 && len(extras) == 1 {
		bag, ok := foreignMap(extras[0])
		if !ok {
			return "expected a named-argument bag"
		}
		keys := make([]string, 0, len(bag))
		for k := range bag {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			p, ok := f.Named[k]
			if !ok {
				return fmt.Sprintf("unknown named argument %q", k)
			}
			if !d.accepts(bag[k], p) {
				return fmt.Sprintf("named argument %q: %s is not a %s",
					k, types.Name(d.lib.TypeOf(bag[k])), types.Name(p))
			}
		}
		return ""
	}
	return fmt.Sprintf("expected %d positional arguments, got %d", required, len(args))
}

func (d *Dispatcher) accepts(arg any, param types.Type) bool {
	if arg == nil || param == types.Bottom {
		return true
	}
	return d.checker.IsSubtype(d.lib.TypeOf(arg), param)
}

func (d *Dispatcher) mismatch(i int, arg any, param types.Type) string {
	return fmt.Sprintf("argument %d: %s is not a %s", i, types.Name(d.lib.TypeOf(arg)), types.Name(param))
}

func (d *Dispatcher) noSuchMethod(receiver any, name string, args []any, reason string) error {
	err := &NoSuchMethodError{
		Receiver:     receiver,
		ReceiverType: types.Name(d.lib.TypeOf(receiver)),
		Name:         name,
		Args:         append([]any(nil), args...),
	}
	d.logger.Debug("dispatch failed",
		"receiver", err.ReceiverType,
		"member", name,
		"args", len(args),
		"reason", reason,
	)
	return err
}

func (d *Dispatcher) record(op trace.Op, obj any, name string, args []any, err error) {
	if d.recorder == nil {
		return
	}
	argTypes := make([]string, len(args))
	for i, a := range args {
		argTypes[i] = types.Name(d.lib.TypeOf(a))
	}
	e := trace.Event{
		Seq:          d.clock.Next(),
		Session:      d.session,
		Op:           op,
		ReceiverType: types.Name(d.lib.TypeOf(obj)),
		Member:       name,
		ArgTypes:     argTypes,
		Outcome:      trace.OutcomeOK,
	}
	if err != nil {
		e.Outcome = trace.OutcomeError
		e.ErrorCode = ErrorCode(err)
	}
	if rerr := d.recorder.Record(e); rerr != nil {
		d.logger.Warn("dispatch event not recorded",
			"seq", e.Seq,
			"error", rerr,
		)
	}
}

func bind(l MemberLookup) object.NativeFunc {
	m, self := l.Method, l.Self
	return func(args []any) (any, error) {
		return m(self, args)
	}
}

func tearOff(name string, l MemberLookup) *object.Function {
	return &object.Function{Name: name, Sig: l.Sig, Fn: bind(l)}
}

func foreignMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case object.NamedArgs:
		return m, true
	}
	return nil, false
}
