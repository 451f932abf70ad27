package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSubtypeCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewSubtypeCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{specsDir}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestSubtype_Holds(t *testing.T) {
	tests := []struct {
		sub   string
		super string
	}{
		{"Circle", "Shape"},
		{"Circle", "Named"},
		{"Circle", "Comparable<Circle>"},
		{"Box<int>", "Box<num>"},
		{"LabeledBox<int>", "Box<num>"},
		{"int", "Object"},
		{"Circle", "dynamic"},
	}
	for _, tt := range tests {
		t.Run(tt.sub+" <: "+tt.super, func(t *testing.T) {
			out, err := runSubtypeCmd(t, "text", tt.sub, tt.super)
			require.NoError(t, err)
			assert.Contains(t, out, "✓")
			assert.Contains(t, out, "<:")
		})
	}
}

func TestSubtype_DoesNotHold(t *testing.T) {
	out, err := runSubtypeCmd(t, "text", "Shape", "Circle")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Shape is not a subtype of Circle")
}

func TestSubtype_JSON(t *testing.T) {
	out, err := runSubtypeCmd(t, "json", "Box<int>", "Box<String>")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string        `json:"status"`
		Data   SubtypeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, SubtypeResult{Sub: "Box<int>", Super: "Box<String>", Result: false}, resp.Data)
}

func TestSubtype_UnknownType(t *testing.T) {
	out, err := runSubtypeCmd(t, "text", "Nope", "Object")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeUnknownType+"]")
}

func TestSubtype_BadSpecs(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewSubtypeCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/specs", "int", "num"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error ["+ErrCodeNotFound+"]")
}
