package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"avro-projector/internal/errs"
)

// Source locates a reader schema: inline JSON text or a schema file.
// At most one of the two is set; an empty Source means "no reader schema".
type Source struct {
	Inline string
	File   string
}

// IsZero reports whether no reader schema is configured.
func (s Source) IsZero() bool {
	return strings.TrimSpace(s.Inline) == "" && strings.TrimSpace(s.File) == ""
}

// String describes the source for messages.
func (s Source) String() string {
	switch {
	case s.File != "":
		return s.File
	case s.Inline != "":
		return "inline schema"
	default:
		return "no schema"
	}
}

// Load reads and parses the schema file at path.
func Load(fs afero.Fs, path string) (*Schema, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, &errs.SchemaLoadError{Source: path, Err: err}
	}

	return parseSource(path, data)
}

// Load parses the schema the source points to.
func (s Source) Load(fs afero.Fs) (*Schema, error) {
	switch {
	case strings.TrimSpace(s.File) != "":
		return Load(fs, strings.TrimSpace(s.File))
	case strings.TrimSpace(s.Inline) != "":
		return Parse(s.Inline)
	default:
		return nil, &errs.SchemaLoadError{Source: s.String(), Err: errors.New("no schema supplied")}
	}
}

// Resolve produces the schema used for extraction. With a writer schema
// (for example one embedded in a container file) and a configured reader
// schema, the reader's aliases are applied to the writer. Without a reader
// the writer is used as is; without a writer the reader is.
func Resolve(fs afero.Fs, src Source, writer *Schema) (*Schema, error) {
	if src.IsZero() {
		if writer == nil {
			return nil, &errs.SchemaLoadError{Source: src.String(), Err: errors.New("no reader or writer schema available")}
		}

		return writer, nil
	}

	reader, err := src.Load(fs)
	if err != nil {
		return nil, err
	}

	if writer == nil {
		return reader, nil
	}

	return ApplyAliases(writer, reader), nil
}

// ResolveKey parses a per-row schema key: the schema text itself, or a path
// to a schema file when isPath is set.
func ResolveKey(fs afero.Fs, key string, isPath bool) (*Schema, error) {
	if isPath {
		return Load(fs, key)
	}

	s, err := Parse(key)
	if err != nil {
		return nil, fmt.Errorf("per-row schema: %w", err)
	}

	return s, nil
}
