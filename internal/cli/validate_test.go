package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var specsDir = filepath.Join("..", "..", "testdata", "specs")

// writeSpec writes a single CUE file into a fresh directory.
func writeSpec(t *testing.T, name, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("package test\n\n"+src), 0644))
	return dir
}

func runValidateCmd(t *testing.T, opts *RootOptions, dir string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := NewValidateCommand(opts)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{dir})
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestValidateValidSpecs(t *testing.T) {
	out, _, err := runValidateCmd(t, &RootOptions{Format: "text"}, specsDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All specs valid (6 classes, 1 typedefs)")
}

func TestValidateValidSpecsJSON(t *testing.T) {
	out, _, err := runValidateCmd(t, &RootOptions{Format: "json"}, specsDir)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.ElementsMatch(t, []string{"Shape", "Named", "Comparable", "Circle", "Box", "LabeledBox"}, resp.Data.Classes)
	assert.Equal(t, []string{"Mapper"}, resp.Data.Typedefs)
}

func TestValidateNonExistentDirectory(t *testing.T) {
	out, _, err := runValidateCmd(t, &RootOptions{Format: "text"}, "/nonexistent/directory/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNotFound)
	assert.Contains(t, out, "not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateEmptyDirectory(t *testing.T) {
	out, _, err := runValidateCmd(t, &RootOptions{Format: "text"}, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNoFiles)
	assert.Contains(t, out, "no CUE files found")
}

func TestValidateInvalidSpec(t *testing.T) {
	dir := writeSpec(t, "bad.cue", `class: A: extends: "Missing"`)

	out, _, err := runValidateCmd(t, &RootOptions{Format: "text"}, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "E101: class.A.extends")
	assert.Contains(t, out, "unknown type Missing")
}

func TestValidateInvalidSpecJSON(t *testing.T) {
	dir := writeSpec(t, "bad.cue", `class: A: methods: m: {body: "new"}`)

	out, _, err := runValidateCmd(t, &RootOptions{Format: "json"}, dir)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeBody, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "only valid on statics")
}

func TestValidateCycle(t *testing.T) {
	dir := writeSpec(t, "cycle.cue", `
class: A: extends: "B"
class: B: extends: "A"
`)

	out, _, err := runValidateCmd(t, &RootOptions{Format: "text"}, dir)
	require.Error(t, err)
	assert.Contains(t, out, "E104: inheritance cycle: A -> B -> A")
}

func TestValidateMultipleErrors(t *testing.T) {
	dir := writeSpec(t, "bad.cue", `
class: A: methods: m: {body: "new"}
class: B: methods: m: {body: "nope"}
`)

	out, _, err := runValidateCmd(t, &RootOptions{Format: "text"}, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 error(s)")
	assert.Contains(t, out, "class.A.methods.m.body")
	assert.Contains(t, out, "class.B.methods.m.body")
}

func TestValidateVerboseOutput(t *testing.T) {
	dir := writeSpec(t, "demo.cue", `class: Demo: methods: run: {sig: "() -> void", body: "self"}`)

	_, stderr, err := runValidateCmd(t, &RootOptions{Format: "text", Verbose: true}, dir)
	require.NoError(t, err)

	// Verbose logs go to stderr to avoid corrupting JSON output
	assert.Contains(t, stderr, "Found 1 CUE file(s)")
	assert.Contains(t, stderr, "Validated class: Demo")
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := []struct {
		field    string
		message  string
		expected string
	}{
		{"class.Circle.methods.grow.sig", "unexpected token", ErrCodeTypeExpr},
		{"class.Circle.extends", "unknown type Missing", ErrCodeTypeExpr},
		{"class.Box.ctor", "must be a function type", ErrCodeTypeExpr},
		{"typedef.Mapper", "must name a function type", ErrCodeTypeExpr},
		{"class.Circle.statics.unit.body", "needs an instance receiver", ErrCodeBody},
		{"class.Box.extension", "no member named missing", ErrCodeBody},
		{"class.int", "name already declared", ErrCodeDuplicate},
		{"program", "no classes or typedefs", ErrCodeEmpty},
		{"cue", "field not allowed", ErrCodeBuildFailed},
		{"class.A", "something else", ErrCodeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapFieldToErrorCode(tt.field, tt.message))
		})
	}
}

func TestLoadSpecs(t *testing.T) {
	result, errs := LoadSpecs(specsDir)
	require.Empty(t, errs)
	require.NotNil(t, result.Runtime)
	require.NotNil(t, result.Scope)
	assert.Equal(t, 1, result.FileCount)

	circle, err := result.Scope.Resolve("Circle")
	require.NoError(t, err)
	shape, err := result.Scope.Resolve("Shape")
	require.NoError(t, err)
	assert.True(t, result.Runtime.IsSubtype(circle, shape))
}

func TestLoadSpecs_CompileErrorsKeepProgram(t *testing.T) {
	dir := writeSpec(t, "bad.cue", `class: A: extends: "Missing"`)

	result, errs := LoadSpecs(dir)
	require.Len(t, errs, 1)
	require.NotNil(t, result)
	assert.NotNil(t, result.Program)
	assert.Nil(t, result.Runtime)

	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeTypeExpr, loadErr.Code)
}
