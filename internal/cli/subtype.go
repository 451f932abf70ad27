package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rtype/internal/runtime"
	"github.com/roach88/rtype/internal/types"
)

// SubtypeResult is the answer to one subtype query.
type SubtypeResult struct {
	Sub    string `json:"sub"`
	Super  string `json:"super"`
	Result bool   `json:"result"`
}

// NewSubtypeCommand creates the subtype command.
func NewSubtypeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subtype <specs-dir> <sub> <super>",
		Short: "Check whether one type is a subtype of another",
		Long: `Check whether <sub> is a subtype of <super> under the declarations in
<specs-dir>. Types are type expressions such as "Box<int>", "List<num>",
"(int, [String]) -> void" or "dynamic".

Exit codes:
  0 - <sub> is a subtype of <super>
  1 - it is not
  2 - Command error (invalid declarations, unknown type, etc.)

Examples:
  rtype subtype ./specs 'Box<int>' 'Box<num>'
  rtype subtype ./specs Circle 'Comparable<Circle>' --format json`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubtype(rootOpts, args[0], args[1], args[2], cmd)
		},
	}

	return cmd
}

func runSubtype(opts *RootOptions, specsDir, subSrc, superSrc string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loadResult, err := loadInstalled(opts, specsDir, cmd)
	if err != nil {
		return reportLoadError(formatter, err)
	}

	sub, err := loadResult.Scope.Resolve(subSrc)
	if err != nil {
		return reportQueryError(formatter, ErrCodeUnknownType, err)
	}
	super, err := loadResult.Scope.Resolve(superSrc)
	if err != nil {
		return reportQueryError(formatter, ErrCodeUnknownType, err)
	}

	result := SubtypeResult{
		Sub:    types.Name(sub),
		Super:  types.Name(super),
		Result: loadResult.Runtime.IsSubtype(sub, super),
	}
	formatter.VerboseLog("Resolved %s as %s and %s as %s", subSrc, result.Sub, superSrc, result.Super)

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else if result.Result {
		fmt.Fprintf(formatter.Writer, "%s %s <: %s\n", formatter.Mark(true), result.Sub, result.Super)
	} else {
		fmt.Fprintf(formatter.Writer, "%s %s is not a subtype of %s\n", formatter.Mark(false), result.Sub, result.Super)
	}

	if !result.Result {
		return NewExitError(ExitFailure, fmt.Sprintf("%s is not a subtype of %s", result.Sub, result.Super))
	}
	return nil
}

// loadInstalled loads and installs specsDir, folding every load error into
// one.
func loadInstalled(opts *RootOptions, specsDir string, cmd *cobra.Command) (*LoadResult, error) {
	loadResult, loadErrors := LoadSpecs(specsDir, runtime.WithLogger(newLogger(opts, cmd.ErrOrStderr())))
	if len(loadErrors) > 0 {
		return nil, errors.Join(loadErrors...)
	}
	return loadResult, nil
}

// reportLoadError reports declarations that could not be loaded. The code
// is that of the first error.
func reportLoadError(formatter *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		code = loadErr.Code
	}
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, "failed to load specs", err)
}

func reportQueryError(formatter *OutputFormatter, code string, err error) error {
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, code, err)
}
