package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rtype/internal/trace"
)

func TestFixedSessionGenerator_ReturnsSameToken(t *testing.T) {
	gen := NewFixedSessionGenerator("session-123")

	assert.Equal(t, "session-123", gen.Generate())
	assert.Equal(t, "session-123", gen.Generate())
}

func TestFixedSessionGenerator_EmptyTokenDefault(t *testing.T) {
	gen := NewFixedSessionGenerator("")
	assert.Equal(t, "test-session-default", gen.Generate())
}

func TestNewRuntime_RecordsDeterministically(t *testing.T) {
	run := func() []trace.Event {
		buf := trace.NewBuffer()
		rt := NewRuntime("s", buf)
		_, err := rt.Dispatcher().Send("abc", "contains", "b")
		require.NoError(t, err)
		rt.Reset()
		_, _ = rt.Dispatcher().Send(1, "missing")
		return buf.Events()
	}

	first, second := run(), run()
	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.Equal(t, "s", first[1].Session, "reset keeps the fixed session")
	assert.Equal(t, int64(2), first[1].Seq, "the clock survives reset")
}
