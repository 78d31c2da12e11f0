package errs

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKinds(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		rowLevel bool
	}{
		{"schema load", &SchemaLoadError{Source: "a.avsc", Err: fs.ErrNotExist}, ErrSchemaLoad, false},
		{"path syntax", PathSyntax("$.a[", "unclosed bracket"), ErrPathSyntax, false},
		{"union", &UnionResolutionError{Path: "$.u", Reason: "no map branch"}, ErrUnionResolution, true},
		{"missing", &MissingFieldError{Field: "c", Path: "$.c"}, ErrMissingField, true},
		{"decode", &DecodeError{Err: errors.New("short buffer")}, ErrDecode, true},
		{"conversion", &ConversionError{Leaf: "a", Type: "integer", Err: errors.New("bad")}, ErrConversion, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.rowLevel, IsRowLevel(tt.err))

			wrapped := fmt.Errorf("context: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.Equal(t, tt.rowLevel, IsRowLevel(wrapped))
		})
	}
}

func TestSchemaLoadErrorKeepsCause(t *testing.T) {
	err := &SchemaLoadError{Source: "a.avsc", Err: fs.ErrNotExist}

	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.EqualError(t, err, "failed to load schema from a.avsc: file does not exist")
}

func TestMessages(t *testing.T) {
	assert.EqualError(t, &MissingFieldError{Field: "c", Path: "$.c"}, `field "c" does not exist (path $.c)`)
	assert.EqualError(t, PathSyntax("", "multiple different expansions"), "invalid path: multiple different expansions")
	assert.EqualError(t, PathSyntax("$.a[", "unclosed bracket"), `invalid path "$.a[": unclosed bracket`)
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{&SchemaLoadError{Source: "x"}, "schema_load"},
		{PathSyntax("$.a", "bad"), "path_syntax"},
		{&UnionResolutionError{Path: "$.u"}, "union_resolution"},
		{fmt.Errorf("wrapped: %w", &MissingFieldError{Field: "c"}), "missing_field"},
		{&DecodeError{Err: errors.New("eof")}, "decode"},
		{&ConversionError{Leaf: "a", Type: "integer", Err: errors.New("nan")}, "conversion"},
		{errors.New("plain"), "other"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}
