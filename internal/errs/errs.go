// Package errs declares the error kinds raised while projecting nested
// records into rows.
//
// Setup-time kinds (schema loading, path syntax) abort processing. Row-level
// kinds (union resolution, missing field, decode, conversion) concern one
// input object and may be routed to an error handler by the embedding pipeline.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Every typed error below unwraps to one of these.
var (
	ErrSchemaLoad      = errors.New("schema load error")
	ErrPathSyntax      = errors.New("path syntax error")
	ErrUnionResolution = errors.New("union resolution error")
	ErrMissingField    = errors.New("missing field")
	ErrDecode          = errors.New("decode error")
	ErrConversion      = errors.New("conversion error")
)

// SchemaLoadError reports an unreadable or malformed schema source.
type SchemaLoadError struct {
	// Source names where the schema came from (file path, "inline", a row key).
	Source string
	Err    error
}

func (e *SchemaLoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("failed to load schema from %s", e.Source)
	}

	return fmt.Sprintf("failed to load schema from %s: %v", e.Source, e.Err)
}

func (e *SchemaLoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSchemaLoad}
	}

	return []error{ErrSchemaLoad, e.Err}
}

// PathSyntaxError reports a malformed path or an invalid combination of paths.
type PathSyntaxError struct {
	Path   string
	Reason string
}

func (e *PathSyntaxError) Error() string {
	if e.Path == "" {
		return "invalid path: " + e.Reason
	}

	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}

func (e *PathSyntaxError) Unwrap() error { return ErrPathSyntax }

// UnionResolutionError reports that no union branch fits the decoded value.
type UnionResolutionError struct {
	Path   string
	Reason string
}

func (e *UnionResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve union at %s: %s", e.Path, e.Reason)
}

func (e *UnionResolutionError) Unwrap() error { return ErrUnionResolution }

// MissingFieldError reports a leaf that is absent from the schema or data.
type MissingFieldError struct {
	// Field is the record field name, index or map key that was not found.
	Field string
	Path  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("field %q does not exist (path %s)", e.Field, e.Path)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// DecodeError wraps a failure of the external decoder.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "failed to decode object: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// ConversionError reports a leaf value that cannot be represented in the
// declared output type.
type ConversionError struct {
	Leaf string
	Type string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert value of %s to %s: %v", e.Leaf, e.Type, e.Err)
}

func (e *ConversionError) Unwrap() []error { return []error{ErrConversion, e.Err} }

// PathSyntax is a shorthand for building a *PathSyntaxError.
func PathSyntax(path, format string, args ...any) error {
	return &PathSyntaxError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// IsRowLevel reports whether err concerns a single input object rather than
// the whole configuration.
func IsRowLevel(err error) bool {
	return errors.Is(err, ErrUnionResolution) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrDecode) ||
		errors.Is(err, ErrConversion)
}

// Kind returns a short label for the kind of err, for metrics and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrSchemaLoad):
		return "schema_load"
	case errors.Is(err, ErrPathSyntax):
		return "path_syntax"
	case errors.Is(err, ErrUnionResolution):
		return "union_resolution"
	case errors.Is(err, ErrMissingField):
		return "missing_field"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrConversion):
		return "conversion"
	default:
		return "other"
	}
}
