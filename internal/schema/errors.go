package schema

import (
	"errors"
	"strings"
)

// ErrInvalidSchema is matched by every SchemaError through errors.Is.
var ErrInvalidSchema = errors.New("invalid schema")

// Stages at which a SchemaError can be raised.
const (
	StageSource        = "source"
	StageSDL           = "sdl"
	StageIntrospection = "introspection"
	StageValidate      = "validate"
)

// SchemaError reports malformed or internally inconsistent schema input.
// It is always fatal: no partial graph is returned alongside it.
type SchemaError struct {
	Stage   string
	Type    string
	Field   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("schema error")
	if e.Stage != "" {
		b.WriteString(" (")
		b.WriteString(e.Stage)
		b.WriteString(")")
	}
	if e.Type != "" {
		b.WriteString(" on type ")
		b.WriteString(e.Type)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target is ErrInvalidSchema.
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// IsSchemaError reports whether err is or wraps a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
