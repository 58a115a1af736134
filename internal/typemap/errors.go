package typemap

import (
	"errors"
	"fmt"
)

// ErrUnmappedScalar is the sentinel matched by errors.Is for every
// UnmappedScalarError.
var ErrUnmappedScalar = errors.New("unmapped scalar")

// UnmappedScalarError reports a custom scalar with no default mapping and no
// configured override. Type and Field name the first field that used it.
type UnmappedScalarError struct {
	Scalar string
	Type   string
	Field  string
}

func (e *UnmappedScalarError) Error() string {
	msg := fmt.Sprintf("scalar %s has no type mapping", e.Scalar)
	if e.Type != "" && e.Field != "" {
		msg += fmt.Sprintf(" (used by %s.%s)", e.Type, e.Field)
	}
	return msg + "; add it to type_mappings and sql_type_mappings"
}

func (e *UnmappedScalarError) Is(target error) bool {
	return target == ErrUnmappedScalar
}

// IsUnmappedScalarError reports whether err is or wraps an UnmappedScalarError.
func IsUnmappedScalarError(err error) bool {
	var e *UnmappedScalarError
	return errors.As(err, &e)
}

// OverrideError reports a configured SQL type the dialect rejects.
type OverrideError struct {
	// Key is the configuration key, e.g. "Money" or "User.balance".
	Key   string
	Cause error
}

func (e *OverrideError) Error() string {
	return fmt.Sprintf("sql type override %q: %v", e.Key, e.Cause)
}

func (e *OverrideError) Unwrap() error {
	return e.Cause
}
