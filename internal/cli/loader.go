package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/rtype/internal/runtime"
	"github.com/roach88/rtype/internal/schema"
)

// LoadResult contains a compiled program installed into a fresh runtime.
type LoadResult struct {
	Program   *schema.Program
	Runtime   *runtime.Runtime
	Scope     *schema.Scope
	FileCount int // Number of CUE files found
}

// LoadError represents an error that occurred during spec loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSpecs loads the class declarations in dir and installs them into a
// new runtime. Directory problems produce a single error and a nil result.
// Declaration errors are all collected; the result then carries the
// program but no runtime.
func LoadSpecs(dir string, opts ...runtime.Option) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("specs directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing specs directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := schema.FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	p, err := schema.Load(dir)
	if p == nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}}
	}
	result := &LoadResult{Program: p, FileCount: len(cueFiles)}
	if err != nil {
		return result, convertSchemaErrors(err)
	}

	rt := runtime.New(opts...)
	scope, err := p.Install(rt)
	if err != nil {
		return result, convertSchemaErrors(err)
	}
	result.Runtime = rt
	result.Scope = scope
	return result, nil
}

// convertSchemaErrors flattens an ErrorList into LoadErrors with codes and
// positions.
func convertSchemaErrors(err error) []error {
	var list schema.ErrorList
	if !errors.As(err, &list) {
		list = schema.ErrorList{err}
	}
	out := make([]error, 0, len(list))
	for _, e := range list {
		out = append(out, convertSchemaError(e))
	}
	return out
}

func convertSchemaError(err error) *LoadError {
	var cycleErr *schema.CycleError
	if errors.As(err, &cycleErr) {
		return &LoadError{Code: ErrCodeCycle, Message: cycleErr.Error()}
	}
	var compileErr *schema.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field, compileErr.Message),
			Message: compileErr.Field + ": " + compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build or schema check failed
	ErrCodeWriteFailed = "E007" // File write error

	// Declaration errors
	ErrCodeTypeExpr  = "E101" // Malformed or unresolvable type expression
	ErrCodeBody      = "E102" // Invalid member body
	ErrCodeDuplicate = "E103" // Name declared twice
	ErrCodeCycle     = "E104" // Inheritance cycle
	ErrCodeEmpty     = "E105" // Nothing declared

	// Query errors
	ErrCodeUnknownType = "E201" // Type expression names nothing
	ErrCodeNotClass    = "E202" // Type expression is not a class
)

// MapFieldToErrorCode maps a schema error field path, e.g.
// "class.Circle.methods.grow.sig", to an error code.
func MapFieldToErrorCode(field, message string) string {
	if strings.Contains(message, "already declared") {
		return ErrCodeDuplicate
	}
	if strings.Contains(message, "no classes or typedefs") {
		return ErrCodeEmpty
	}
	if field == "cue" {
		return ErrCodeBuildFailed
	}

	last := field
	if i := strings.LastIndex(field, "."); i >= 0 {
		last = field[i+1:]
	}
	switch last {
	case "sig", "extends", "mixins", "implements", "ctor", "params", "type":
		return ErrCodeTypeExpr
	case "body", "tagged", "extension":
		return ErrCodeBody
	}
	if strings.HasPrefix(field, "typedef.") {
		return ErrCodeTypeExpr
	}
	return ErrCodeGeneric
}

// newLogger returns the runtime logger for a command: debug output on
// stderr when verbose, otherwise nothing.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	if !opts.Verbose {
		return nil
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
