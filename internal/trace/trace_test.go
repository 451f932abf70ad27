package trace

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock_NewClock(t *testing.T) {
	c := NewClock()
	assert.Equal(t, int64(0), c.Current(), "new clock should start at 0")
}

func TestClock_NewClockAt(t *testing.T) {
	c := NewClockAt(41)
	assert.Equal(t, int64(42), c.Next())
}

func TestClock_Next_Incrementing(t *testing.T) {
	c := NewClock()

	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(2), c.Current())
}

func TestClock_ThreadSafe(t *testing.T) {
	c := NewClock()
	const goroutines = 50
	const calls = 100

	var wg sync.WaitGroup
	seqs := make(chan int64, goroutines*calls)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < calls; j++ {
				seqs <- c.Next()
			}
		}()
	}
	wg.Wait()
	close(seqs)

	seen := make(map[int64]bool)
	for s := range seqs {
		assert.False(t, seen[s], "seq %d issued twice", s)
		seen[s] = true
	}
	assert.Len(t, seen, goroutines*calls)
}

func TestUUIDv7Generator_Generate(t *testing.T) {
	g := UUIDv7Generator{}

	a, b := g.Generate(), g.Generate()
	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestFixedGenerator_Generate(t *testing.T) {
	g := NewFixedGenerator("s-1", "s-2")

	assert.Equal(t, "s-1", g.Generate())
	assert.Equal(t, "s-2", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}

func TestEvent_String(t *testing.T) {
	e := Event{
		Seq:          3,
		Op:           OpSend,
		ReceiverType: "Box<int>",
		Member:       "get",
		ArgTypes:     []string{"int"},
		Outcome:      OutcomeError,
		ErrorCode:    "NO_SUCH_METHOD",
	}
	assert.Equal(t, "3 send Box<int>.get(int) error NO_SUCH_METHOD", e.String())
}

func TestEvent_Body(t *testing.T) {
	e := Event{Seq: 9, Session: "s", Op: OpLoad, ReceiverType: "A", Member: "x", Outcome: OutcomeOK}
	body := e.Body()

	assert.Equal(t, "load", body["op"])
	assert.Equal(t, []any{}, body["arg_types"])
	assert.NotContains(t, body, "seq")
	assert.NotContains(t, body, "session")
}

func TestBuffer_Record(t *testing.T) {
	b := NewBuffer()
	require.NoError(t, b.Record(Event{Seq: 1}))
	require.NoError(t, b.Record(Event{Seq: 2}))

	events := b.Events()
	require.Len(t, events, 2)
	assert.Equal(t, int64(2), events[1].Seq)

	b.Reset()
	assert.Empty(t, b.Events())
}

type failing struct{ err error }

func (f failing) Record(Event) error { return f.err }

func TestTee_Record(t *testing.T) {
	b := NewBuffer()
	boom := errors.New("boom")

	err := Tee{failing{boom}, b}.Record(Event{Seq: 1})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, b.Events(), 1, "later recorders still receive the event")
}
