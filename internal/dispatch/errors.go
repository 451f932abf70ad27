package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/rtype/internal/object"
)

// CodeNoSuchMethod is the error code of NoSuchMethodError.
const CodeNoSuchMethod = "NO_SUCH_METHOD"

// NoSuchMethodError reports a dynamic call that the receiver cannot answer.
// Absent members, arity mismatches, unknown named arguments and argument
// type mismatches all produce this error; they are not distinguished.
type NoSuchMethodError struct {
	Receiver     any
	ReceiverType string
	Name         string
	Args         []any
}

func (e *NoSuchMethodError) Error() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = object.Inspect(a)
	}
	return fmt.Sprintf("%s: %s has no member '%s' accepting (%s)",
		CodeNoSuchMethod, e.ReceiverType, e.Name, strings.Join(args, ", "))
}

// Code returns CodeNoSuchMethod.
func (e *NoSuchMethodError) Code() string { return CodeNoSuchMethod }

// IsNoSuchMethod reports whether err is a NoSuchMethodError.
func IsNoSuchMethod(err error) bool {
	var nsm *NoSuchMethodError
	return errors.As(err, &nsm)
}

// ErrorCode returns the code of a coded error, or "ERROR" for anything else.
func ErrorCode(err error) string {
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return "ERROR"
}
