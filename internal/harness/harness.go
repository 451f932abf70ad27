package harness

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/roach88/rtype/internal/dispatch"
	"github.com/roach88/rtype/internal/meta"
	"github.com/roach88/rtype/internal/object"
	"github.com/roach88/rtype/internal/runtime"
	"github.com/roach88/rtype/internal/schema"
	"github.com/roach88/rtype/internal/store"
	"github.com/roach88/rtype/internal/testutil"
	"github.com/roach88/rtype/internal/trace"
	"github.com/roach88/rtype/internal/types"
)

// Harness executes one scenario against a fresh runtime.
type Harness struct {
	rt       *runtime.Runtime
	scopes   []*schema.Scope
	bindings map[string]any
	logger   *slog.Logger
}

// Option configures Run.
type Option func(*options)

type options struct {
	recorder trace.Recorder
	logger   *slog.Logger
}

// WithRecorder also sends every dispatch event to rec, e.g. a file-backed
// store.
func WithRecorder(rec trace.Recorder) Option {
	return func(o *options) { o.recorder = rec }
}

// WithLogger sets the harness logger. The runtime itself stays quiet.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh runtime with a fixed session id and a fresh
// clock, recording into a fresh in-memory event store, so two runs of the
// same scenario produce identical traces.
//
// An error is returned when the scenario cannot run at all (declarations
// fail to load, a step names an unknown binding or type). Failed
// expectations and assertions are reported in the Result instead.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	o := options{logger: testutil.DiscardLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	buf := trace.NewBuffer()
	recorders := trace.Tee{buf, st}
	if o.recorder != nil {
		recorders = append(recorders, o.recorder)
	}
	rt := testutil.NewRuntime(scenario.Session, recorders)

	h := &Harness{
		rt:       rt,
		bindings: make(map[string]any),
		logger:   o.logger,
	}
	for _, dir := range scenario.Specs {
		p, err := schema.Load(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to load specs %s: %w", dir, err)
		}
		scope, err := p.Install(rt)
		if err != nil {
			return nil, fmt.Errorf("failed to install specs %s: %w", dir, err)
		}
		h.scopes = append(h.scopes, scope)
	}

	result := NewResult()
	result.Session = rt.Session()
	for i, step := range scenario.Steps {
		if err := h.executeStep(i, step, result); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
	}
	result.Trace = buf.Events()

	actx := &AssertionContext{Store: st}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"steps", len(scenario.Steps),
		"events", len(result.Trace),
		"pass", result.Pass,
	)
	return result, nil
}

// executeStep runs one step and checks its expectation.
func (h *Harness) executeStep(i int, step Step, result *Result) error {
	got, opErr, err := h.perform(step)
	if err != nil {
		return err
	}

	if step.As != "" && opErr == nil {
		h.bindings[step.As] = got
	}

	for _, msg := range h.check(step, got, opErr) {
		result.AddError(fmt.Sprintf("steps[%d] %s: %s", i, step.Op, msg))
	}

	h.logger.Debug("step completed",
		"step", i,
		"op", step.Op,
		"result", object.Inspect(got),
		"error", dispatchCode(opErr),
	)
	return nil
}

// perform runs the operation. opErr is the operation's own failure, which
// an expectation may anticipate; err means the step itself is malformed.
func (h *Harness) perform(step Step) (got any, opErr error, err error) {
	d := h.rt.Dispatcher()

	switch step.Op {
	case StepSubtype:
		sub, err := h.resolve(step.Sub)
		if err != nil {
			return nil, nil, err
		}
		super, err := h.resolve(step.Super)
		if err != nil {
			return nil, nil, err
		}
		return h.rt.IsSubtype(sub, super), nil, nil

	case StepNew:
		c, err := h.resolveClass(step.Class)
		if err != nil {
			return nil, nil, err
		}
		args, err := h.args(step)
		if err != nil {
			return nil, nil, err
		}
		if g, gerr := meta.GenericClass(c); gerr == nil && g == h.rt.Core().List {
			elem := types.Dynamic
			if targs, _ := meta.GenericArgs(c); len(targs) > 0 {
				elem = targs[0]
			}
			return h.rt.Core().NewList(elem, args...), nil, nil
		}
		inst, opErr := meta.Construct(c, args)
		return inst, opErr, nil

	case StepLoad:
		target, err := h.target(step.Target)
		if err != nil {
			return nil, nil, err
		}
		got, opErr := d.Load(target, step.Member)
		return got, opErr, nil

	case StepPut:
		target, err := h.target(step.Target)
		if err != nil {
			return nil, nil, err
		}
		v, err := h.value(step.Value)
		if err != nil {
			return nil, nil, err
		}
		return v, d.Put(target, step.Member, v), nil

	case StepSend:
		target, err := h.target(step.Target)
		if err != nil {
			return nil, nil, err
		}
		args, err := h.args(step)
		if err != nil {
			return nil, nil, err
		}
		got, opErr := d.Send(target, step.Member, args...)
		return got, opErr, nil

	case StepIndex:
		target, err := h.target(step.Target)
		if err != nil {
			return nil, nil, err
		}
		idx, err := h.value(step.Index)
		if err != nil {
			return nil, nil, err
		}
		got, opErr := d.Index(target, idx)
		return got, opErr, nil

	case StepSetIndex:
		target, err := h.target(step.Target)
		if err != nil {
			return nil, nil, err
		}
		idx, err := h.value(step.Index)
		if err != nil {
			return nil, nil, err
		}
		v, err := h.value(step.Value)
		if err != nil {
			return nil, nil, err
		}
		got, opErr := d.SetIndex(target, idx, v)
		return got, opErr, nil

	case StepCall:
		target, err := h.target(step.Target)
		if err != nil {
			return nil, nil, err
		}
		args, err := h.args(step)
		if err != nil {
			return nil, nil, err
		}
		got, opErr := d.Call(target, args...)
		return got, opErr, nil

	case StepIntern:
		v, err := h.value(step.Value)
		if err != nil {
			return nil, nil, err
		}
		targs := make([]types.Type, len(step.TypeArgs))
		for i, src := range step.TypeArgs {
			if targs[i], err = h.resolve(src); err != nil {
				return nil, nil, err
			}
		}
		got, opErr := h.rt.Intern(v, targs...)
		return got, opErr, nil

	case StepCast, StepIs:
		v, err := h.value(step.Value)
		if err != nil {
			return nil, nil, err
		}
		t, err := h.resolve(step.Type)
		if err != nil {
			return nil, nil, err
		}
		if step.Op == StepIs {
			ok, opErr := h.rt.Checker().Is(v, t)
			return ok, opErr, nil
		}
		got, opErr := h.rt.Checker().Cast(v, t)
		return got, opErr, nil
	}
	return nil, nil, fmt.Errorf("unknown op %q", step.Op)
}

// check compares a step's outcome with its expectation. A step without an
// expectation must not fail.
func (h *Harness) check(step Step, got any, opErr error) []string {
	e := step.Expect
	if e == nil {
		if opErr != nil {
			return []string{fmt.Sprintf("unexpected error: %v", opErr)}
		}
		return nil
	}

	if e.Error != "" {
		if opErr == nil {
			return []string{fmt.Sprintf("expected error %s, got %s", e.Error, object.Inspect(got))}
		}
		if code := dispatchCode(opErr); code != e.Error {
			return []string{fmt.Sprintf("expected error %s, got %s (%v)", e.Error, code, opErr)}
		}
		return nil
	}
	if opErr != nil {
		return []string{fmt.Sprintf("unexpected error: %v", opErr)}
	}

	var msgs []string
	if e.Result != nil {
		if b, ok := got.(bool); !ok || b != *e.Result {
			msgs = append(msgs, fmt.Sprintf("expected result %t, got %s", *e.Result, object.Inspect(got)))
		}
	}
	if e.HasValue {
		if ref, ok := bindingName(e.Value); ok {
			want, found := h.bindings[ref]
			if !found {
				msgs = append(msgs, fmt.Sprintf("unknown binding $%s", ref))
			} else if !sameValue(want, got) {
				msgs = append(msgs, fmt.Sprintf("expected $%s, got %s", ref, object.Inspect(got)))
			}
		} else if !valuesEqual(plain(got), e.Value) {
			msgs = append(msgs, fmt.Sprintf("expected value %v, got %s", e.Value, object.Inspect(got)))
		}
	}
	if e.SameAs != "" {
		want, found := h.bindings[e.SameAs]
		switch {
		case !found:
			msgs = append(msgs, fmt.Sprintf("unknown binding %s", e.SameAs))
		case !sameValue(want, got):
			msgs = append(msgs, fmt.Sprintf("expected the same value as %s, got %s", e.SameAs, object.Inspect(got)))
		}
	}
	return msgs
}

func dispatchCode(err error) string {
	if err == nil {
		return ""
	}
	return dispatch.ErrorCode(err)
}

// resolve resolves a type expression against the installed scopes, first
// match wins.
func (h *Harness) resolve(src string) (types.Type, error) {
	var errs []error
	for _, s := range h.scopes {
		t, err := s.Resolve(src)
		if err == nil {
			return t, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("no specs installed to resolve %s", src)
	}
	return nil, errors.Join(errs...)
}

func (h *Harness) resolveClass(src string) (*types.Class, error) {
	t, err := h.resolve(src)
	if err != nil {
		return nil, err
	}
	c, ok := t.(*types.Class)
	if !ok {
		return nil, fmt.Errorf("%s is not a class", src)
	}
	return c, nil
}

// target returns a bound value, or the class a name resolves to.
func (h *Harness) target(name string) (any, error) {
	if ref, ok := bindingName(name); ok {
		v, found := h.bindings[ref]
		if !found {
			return nil, fmt.Errorf("unknown binding $%s", ref)
		}
		return v, nil
	}
	return h.resolveClass(name)
}

func (h *Harness) args(step Step) ([]any, error) {
	args := make([]any, 0, len(step.Args)+1)
	for _, a := range step.Args {
		v, err := h.value(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	if len(step.Named) > 0 {
		named := make(object.NamedArgs, len(step.Named))
		for k, a := range step.Named {
			v, err := h.value(a)
			if err != nil {
				return nil, err
			}
			named[k] = v
		}
		args = append(args, named)
	}
	return args, nil
}

// value converts a YAML value to a runtime value, replacing $name
// references with their bindings.
func (h *Harness) value(v any) (any, error) {
	switch val := v.(type) {
	case string:
		if ref, ok := bindingName(val); ok {
			bound, found := h.bindings[ref]
			if !found {
				return nil, fmt.Errorf("unknown binding $%s", ref)
			}
			return bound, nil
		}
		return val, nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			converted, err := h.value(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			out[i] = converted
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			converted, err := h.value(elem)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
			out[k] = converted
		}
		return out, nil
	}
	return v, nil
}

func bindingName(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || len(s) < 2 || !strings.HasPrefix(s, "$") {
		return "", false
	}
	return s[1:], true
}

// plain unwraps lists so results compare against YAML sequences.
func plain(v any) any {
	switch val := v.(type) {
	case *object.List:
		out := make([]any, len(val.Items))
		for i, item := range val.Items {
			out[i] = plain(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = plain(item)
		}
		return out
	}
	return v
}

// sameValue reports identity for reference values and equality otherwise.
func sameValue(a, b any) bool {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.IsValid() && rb.IsValid() && ra.Type() == rb.Type() {
		switch ra.Kind() {
		case reflect.Slice:
			return ra.Len() == rb.Len() && ra.Pointer() == rb.Pointer()
		case reflect.Map, reflect.Pointer, reflect.Func:
			return ra.Pointer() == rb.Pointer()
		}
	}
	defer func() { _ = recover() }()
	return a == b
}
