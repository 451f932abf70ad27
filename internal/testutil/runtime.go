package testutil

import (
	"io"
	"log/slog"

	"github.com/roach88/rtype/internal/runtime"
	"github.com/roach88/rtype/internal/trace"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewRuntime creates a quiet runtime with a fresh clock and a fixed session
// id. rec may be nil.
func NewRuntime(session string, rec trace.Recorder) *runtime.Runtime {
	opts := []runtime.Option{
		runtime.WithLogger(DiscardLogger()),
		runtime.WithClock(trace.NewClock()),
		runtime.WithIDGenerator(NewFixedSessionGenerator(session)),
	}
	if rec != nil {
		opts = append(opts, runtime.WithRecorder(rec))
	}
	return runtime.New(opts...)
}
