package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rtype/internal/store"
	"github.com/roach88/rtype/internal/trace"
)

// seedDatabase records a small session with one failed dispatch.
func seedDatabase(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "trace.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.WriteSession(ctx, "s1", "box"))
	events := []trace.Event{
		{Seq: 1, Session: "s1", Op: trace.OpSend, ReceiverType: "Box<int>", Member: "get", ArgTypes: []string{}, Outcome: trace.OutcomeOK},
		{Seq: 2, Session: "s1", Op: trace.OpSend, ReceiverType: "Box<int>", Member: "set", ArgTypes: []string{"String"}, Outcome: trace.OutcomeError, ErrorCode: "NO_SUCH_METHOD"},
		{Seq: 3, Session: "s1", Op: trace.OpLoad, ReceiverType: "Box<int>", Member: "get", ArgTypes: []string{}, Outcome: trace.OutcomeOK},
	}
	for _, e := range events {
		require.NoError(t, st.WriteEvent(ctx, e))
	}
	return dbPath
}

func runTraceCmd(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTraceCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestTraceMissingDatabaseFlag(t *testing.T) {
	_, err := runTraceCmd(t, &RootOptions{Format: "text"}, "--session", "s1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestTraceNonExistentDatabase(t *testing.T) {
	_, err := runTraceCmd(t, &RootOptions{Format: "text"}, "--db", "/nonexistent/path/test.db")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database not found")
}

func TestTraceListSessions(t *testing.T) {
	dbPath := seedDatabase(t)

	out, err := runTraceCmd(t, &RootOptions{Format: "text"}, "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "s1 (box): 3 events\n", out)
}

func TestTraceListSessionsJSON(t *testing.T) {
	dbPath := seedDatabase(t)

	out, err := runTraceCmd(t, &RootOptions{Format: "json"}, "--db", dbPath)
	require.NoError(t, err)

	var resp struct {
		Status string          `json:"status"`
		Data   []store.Session `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "s1", resp.Data[0].ID)
	assert.Equal(t, 3, resp.Data[0].Events)
}

func TestTraceTimelineText(t *testing.T) {
	dbPath := seedDatabase(t)

	out, err := runTraceCmd(t, &RootOptions{Format: "text"}, "--db", dbPath, "--session", "s1")
	require.NoError(t, err)

	assert.Contains(t, out, "Trace for Session: s1")
	assert.Contains(t, out, "[1] SEND Box<int>.get() ok\n")
	assert.Contains(t, out, "[2] SEND Box<int>.set(String) error NO_SUCH_METHOD\n")
	assert.Contains(t, out, "[3] LOAD Box<int>.get() ok\n")
	assert.Contains(t, out, "Total Events: 3")
	assert.Contains(t, out, "Failures:     1")
	assert.NotContains(t, out, "ID:")
}

func TestTraceTimelineVerboseShowsIDs(t *testing.T) {
	dbPath := seedDatabase(t)

	out, err := runTraceCmd(t, &RootOptions{Format: "text", Verbose: true}, "--db", dbPath, "--session", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "ID: ")
	assert.Contains(t, out, "...")
}

func TestTraceTimelineJSON(t *testing.T) {
	dbPath := seedDatabase(t)

	out, err := runTraceCmd(t, &RootOptions{Format: "json"}, "--db", dbPath, "--session", "s1", "--member", "get")
	require.NoError(t, err)

	var resp struct {
		Status  string      `json:"status"`
		Session string      `json:"session"`
		Data    TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "s1", resp.Session)
	require.Len(t, resp.Data.Timeline, 2)
	assert.Equal(t, int64(1), resp.Data.Timeline[0].Seq)
	assert.Equal(t, int64(3), resp.Data.Timeline[1].Seq)
	assert.Equal(t, map[string]int{"send": 1, "load": 1}, resp.Data.Stats.ByOp)
	assert.Zero(t, resp.Data.Stats.Failures)
}

func TestTraceFailuresOnly(t *testing.T) {
	dbPath := seedDatabase(t)

	out, err := runTraceCmd(t, &RootOptions{Format: "json"}, "--db", dbPath, "--session", "s1", "--failures")
	require.NoError(t, err)

	var resp struct {
		Data TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Timeline, 1)
	assert.Equal(t, "set", resp.Data.Timeline[0].Member)
	assert.Equal(t, map[string]int{"NO_SUCH_METHOD": 1}, resp.Data.Stats.ErrorCodes)
}

func TestTraceUnknownSession(t *testing.T) {
	dbPath := seedDatabase(t)

	out, err := runTraceCmd(t, &RootOptions{Format: "text"}, "--db", dbPath, "--session", "missing")
	require.NoError(t, err)
	assert.Contains(t, out, "No events found for session: missing")
}

func TestTraceAfterTestRun(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "box_ok", 1)
	dbPath := filepath.Join(dir, "trace.db")
	_, err := runTestCmd(t, &RootOptions{Format: "text"}, "--db", dbPath, path)
	require.NoError(t, err)

	out, err := runTraceCmd(t, &RootOptions{Format: "text"}, "--db", dbPath, "--session", "scenario-box_ok")
	require.NoError(t, err)
	assert.Contains(t, out, "[1] SEND Box<int>.get() ok")
	assert.Contains(t, out, "[2] SEND Box<int>.set(String) error NO_SUCH_METHOD")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "short", truncateID("short"))
	assert.Equal(t, "0123456789abcdef", truncateID("0123456789abcdef"))
	assert.Equal(t, "01234567...89abcdef", truncateID("0123456789abcdef0123456789abcdef"))
}
