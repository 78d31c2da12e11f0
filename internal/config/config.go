package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"avro-projector/internal/projection"
	"avro-projector/internal/schema"
)

// CurrentVersion is the configuration format version.
const CurrentVersion = "1"

// Config is the configuration of one projection step.
type Config struct {
	Version string `yaml:"version"`
	Input   Input  `yaml:"input"`
	Schema  Schema `yaml:"schema,omitempty"`
	// IgnoreMissingFields makes unreachable leaves null instead of errors.
	IgnoreMissingFields bool     `yaml:"ignore_missing_fields,omitempty"`
	Fields              []Field  `yaml:"fields,omitempty"`
	Lookups             []Lookup `yaml:"lookups,omitempty"`
}

// Input selects where objects are read from. Exactly one of File and Field
// is set.
type Input struct {
	// File is a container file, or a file of concatenated binary or JSON
	// encoded objects.
	File string `yaml:"file,omitempty"`
	// Field names the incoming column holding an encoded object per row.
	Field string `yaml:"field,omitempty"`
	// JSONEncoded selects the Avro JSON encoding instead of binary.
	JSONEncoded bool `yaml:"json_encoded,omitempty"`
}

// Schema selects the reader schema.
type Schema struct {
	Inline string `yaml:"inline,omitempty"`
	File   string `yaml:"file,omitempty"`
	// PerRowField names the incoming column holding each row's schema. Inline
	// or File, when set, is the default for rows whose schema fails.
	PerRowField string `yaml:"per_row_field,omitempty"`
	// FieldIsPath reads PerRowField values as schema file paths.
	FieldIsPath bool  `yaml:"field_is_path,omitempty"`
	Cache       *bool `yaml:"cache,omitempty"`
	CacheSize   int   `yaml:"cache_size,omitempty"`
	StrictOnce  bool  `yaml:"strict_once,omitempty"`
}

// Field declares one output column.
type Field struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
	// Type is one of string, integer, number, boolean, binary or date.
	Type    string  `yaml:"type,omitempty"`
	Indexed Symbols `yaml:"indexed,omitempty"`
}

// Lookup exposes an incoming column as a path variable.
type Lookup struct {
	Field    string `yaml:"field"`
	Variable string `yaml:"variable"`
	// Default replaces a null column value; without one the value is "null".
	Default string `yaml:"default,omitempty"`
}

// Symbols is a list of enum symbols, written either as a YAML sequence or
// as one comma-separated string.
type Symbols []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Symbols) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string
		if err := node.Decode(&str); err != nil {
			return err
		}

		*s = Symbols{}

		for _, sym := range strings.Split(str, ",") {
			if sym = strings.TrimSpace(sym); sym != "" {
				*s = append(*s, sym)
			}
		}

		return nil
	case yaml.SequenceNode:
		var arr []string
		if err := node.Decode(&arr); err != nil {
			return err
		}

		*s = arr

		return nil
	default:
		return fmt.Errorf("expected string or list of symbols, got %v", node.Kind)
	}
}

// Mode tells how input objects arrive.
type Mode int

const (
	ModeNone Mode = iota
	ModeFile
	ModeField
)

func (m Mode) String() string {
	switch m {
	case ModeFile:
		return "file"
	case ModeField:
		return "field"
	case ModeNone:
		return "none"
	default:
		return "unknown"
	}
}

// Mode returns the input mode. Invalid combinations yield ModeNone.
func (c *Config) Mode() Mode {
	file, field := strings.TrimSpace(c.Input.File) != "", strings.TrimSpace(c.Input.Field) != ""

	switch {
	case file && !field:
		return ModeFile
	case field && !file:
		return ModeField
	default:
		return ModeNone
	}
}

// Source returns the configured reader schema source.
func (c *Config) Source() schema.Source {
	return schema.Source{Inline: c.Schema.Inline, File: c.Schema.File}
}

// PerRow reports whether each row names its own schema.
func (c *Config) PerRow() bool {
	return strings.TrimSpace(c.Schema.PerRowField) != ""
}

// CacheEnabled reports whether per-row schemas are cached.
func (c *Config) CacheEnabled() bool {
	return c.Schema.Cache == nil || *c.Schema.Cache
}

// Leaves converts the declared fields into projection leaves.
func (c *Config) Leaves() ([]projection.Leaf, error) {
	leaves := make([]projection.Leaf, 0, len(c.Fields))

	for _, f := range c.Fields {
		typ, err := projection.ParseOutputType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}

		leaves = append(leaves, projection.Leaf{
			Name:    f.Name,
			Path:    strings.TrimSpace(f.Path),
			Type:    typ,
			Indexed: []string(f.Indexed),
		})
	}

	return leaves, nil
}
