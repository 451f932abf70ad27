package trace

import (
	"fmt"
	"strings"
	"sync"
)

// Op names a dispatch operation.
type Op string

const (
	OpLoad     Op = "load"
	OpPut      Op = "put"
	OpSend     Op = "send"
	OpIndex    Op = "index"
	OpSetIndex Op = "set_index"
	OpCall     Op = "call"
)

// Outcome of a dispatch.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Event is one recorded dispatch.
type Event struct {
	Seq          int64    `json:"seq"`
	Session      string   `json:"session"`
	Op           Op       `json:"op"`
	ReceiverType string   `json:"receiver_type"`
	Member       string   `json:"member"`
	ArgTypes     []string `json:"arg_types"`
	Outcome      string   `json:"outcome"`
	ErrorCode    string   `json:"error_code,omitempty"`
}

// String renders the event on one line, e.g. "3 send Box<int>.get() ok".
func (e Event) String() string {
	s := fmt.Sprintf("%d %s %s.%s(%s) %s",
		e.Seq, e.Op, e.ReceiverType, e.Member, strings.Join(e.ArgTypes, ", "), e.Outcome)
	if e.ErrorCode != "" {
		s += " " + e.ErrorCode
	}
	return s
}

// Body returns the event fields that identify it within a session, in the
// generic form accepted by canonical JSON encoding.
func (e Event) Body() map[string]any {
	args := make([]any, len(e.ArgTypes))
	for i, a := range e.ArgTypes {
		args[i] = a
	}
	return map[string]any{
		"op":            string(e.Op),
		"receiver_type": e.ReceiverType,
		"member":        e.Member,
		"arg_types":     args,
		"outcome":       e.Outcome,
		"error_code":    e.ErrorCode,
	}
}

// Recorder receives dispatch events.
type Recorder interface {
	Record(e Event) error
}

// Buffer is an in-memory Recorder.
type Buffer struct {
	mu     sync.Mutex
	events []Event
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Record appends e.
func (b *Buffer) Record(e Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
	return nil
}

// Events returns a copy of the recorded events in order.
func (b *Buffer) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Event(nil), b.events...)
}

// Reset drops all recorded events.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
}

// Tee fans one event out to several recorders. The first error wins but
// every recorder still sees the event.
type Tee []Recorder

// Record implements Recorder.
func (t Tee) Record(e Event) error {
	var first error
	for _, r := range t {
		if err := r.Record(e); err != nil && first == nil {
			first = err
		}
	}
	return first
}
