package subtype

import (
	"errors"
	"fmt"

	"github.com/roach88/rtype/internal/object"
	"github.com/roach88/rtype/internal/types"
)

// Error codes carried by cast failures.
const (
	CodeCast       = "CAST_ERROR"
	CodeStrongMode = "STRONG_MODE"
)

// CastError reports a value that is not an instance of the cast target.
type CastError struct {
	Value any
	From  types.Type
	To    types.Type
}

func (e *CastError) Error() string {
	return fmt.Sprintf("%s: type '%s' is not a subtype of type '%s' (value %s)",
		CodeCast, types.Name(e.From), types.Name(e.To), object.Inspect(e.Value))
}

// Code returns CodeCast.
func (e *CastError) Code() string { return CodeCast }

// StrongModeError reports a runtime test that cannot be answered soundly:
// the target has type arguments the runtime cannot check, or the answer
// hinges on a raw instantiation.
type StrongModeError struct {
	Value  any
	From   types.Type
	To     types.Type
	Reason string
}

func (e *StrongModeError) Error() string {
	return fmt.Sprintf("%s: cannot test %s against '%s': %s",
		CodeStrongMode, types.Name(e.From), types.Name(e.To), e.Reason)
}

// Code returns CodeStrongMode.
func (e *StrongModeError) Code() string { return CodeStrongMode }

// IsCastError reports whether err is a CastError.
func IsCastError(err error) bool {
	var ce *CastError
	return errors.As(err, &ce)
}

// IsStrongMode reports whether err is a StrongModeError.
func IsStrongMode(err error) bool {
	var se *StrongModeError
	return errors.As(err, &se)
}
