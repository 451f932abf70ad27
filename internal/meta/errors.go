package meta

import (
	"errors"
	"fmt"
)

// CodeInternal identifies internal consistency failures.
const CodeInternal = "INTERNAL_CONSISTENCY"

// InternalError reports a request that only a broken code generator can
// make: reflecting on a class that is not a generic instantiation, asking
// for the canonical id of a value that was never interned, instantiating a
// family with too many type arguments. It is fatal and never retried.
type InternalError struct {
	Op      string
	Subject string
	Message string
}

func (e *InternalError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s: %s: %s (%s)", CodeInternal, e.Op, e.Message, e.Subject)
	}
	return fmt.Sprintf("%s: %s: %s", CodeInternal, e.Op, e.Message)
}

// Code returns CodeInternal.
func (e *InternalError) Code() string { return CodeInternal }

// NewInternalError creates an InternalError.
func NewInternalError(op, subject, format string, args ...any) *InternalError {
	return &InternalError{Op: op, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

// IsInternal reports whether err is, or wraps, an InternalError.
func IsInternal(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie)
}
