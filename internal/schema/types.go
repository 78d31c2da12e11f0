package schema

import (
	"strings"
)

// Kind is the tag of a schema node.
type Kind int

const (
	KindUnknown Kind = iota
	KindNull
	KindBoolean
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindBytes
	KindString
	KindRecord
	KindEnum
	KindArray
	KindMap
	KindUnion
	KindFixed
)

// String returns the Avro type name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindRecord:
		return "record"
	case KindEnum:
		return "enum"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindUnion:
		return "union"
	case KindFixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// IsPrimitive reports whether the kind holds a leaf value. Enum and fixed
// count as leaves: they end a path just like strings and bytes do.
func (k Kind) IsPrimitive() bool {
	switch k {
	case KindNull, KindBoolean, KindInt, KindLong, KindFloat, KindDouble,
		KindBytes, KindString, KindEnum, KindFixed:
		return true
	default:
		return false
	}
}

// IsNamed reports whether schemas of this kind carry a name.
func (k Kind) IsNamed() bool {
	return k == KindRecord || k == KindEnum || k == KindFixed
}

// kindByName maps primitive type names to kinds.
var kindByName = map[string]Kind{
	"null":    KindNull,
	"boolean": KindBoolean,
	"int":     KindInt,
	"long":    KindLong,
	"float":   KindFloat,
	"double":  KindDouble,
	"bytes":   KindBytes,
	"string":  KindString,
}

// Schema is one node of a parsed schema. Only the members matching Kind are
// set; a Schema is never modified after parsing.
type Schema struct {
	Kind Kind

	// Name, Namespace and Aliases identify named kinds (record, enum, fixed).
	Name      string
	Namespace string
	Aliases   []string

	// LogicalType annotates primitives and fixed (e.g. "timestamp-millis").
	LogicalType string
	// Precision and Scale apply to the "decimal" logical type.
	Precision int
	Scale     int

	Fields   []*Field  // record
	Items    *Schema   // array
	Values   *Schema   // map
	Branches []*Schema // union
	Symbols  []string  // enum
	Size     int       // fixed

	// WriterName is the full name a writer schema gave this named type
	// before reader aliases renamed it; empty when not renamed.
	WriterName string

	fieldIndex map[string]int
}

// Field is a named member of a record schema.
type Field struct {
	Name       string
	Aliases    []string
	Type       *Schema
	Default    any
	HasDefault bool
	// Index is the position of the field in its record.
	Index int
	// WriterName is the writer's name of a field renamed by a reader
	// alias; empty when not renamed.
	WriterName string
}

// EncodedName is the name the field has in encoded data.
func (f *Field) EncodedName() string {
	if f.WriterName != "" {
		return f.WriterName
	}

	return f.Name
}

// FullName returns the namespace-qualified name of a named schema, or the
// kind name for anonymous schemas.
func (s *Schema) FullName() string {
	if !s.Kind.IsNamed() {
		return s.Kind.String()
	}

	if s.Namespace == "" {
		return s.Name
	}

	return s.Namespace + "." + s.Name
}

// TypeName is the name a union uses to tag a branch of this schema.
func (s *Schema) TypeName() string {
	return s.FullName()
}

// Field looks up a record field by name.
func (s *Schema) Field(name string) (*Field, bool) {
	if s.Kind != KindRecord {
		return nil, false
	}

	if s.fieldIndex != nil {
		i, ok := s.fieldIndex[name]
		if !ok {
			return nil, false
		}

		return s.Fields[i], true
	}

	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}

	return nil, false
}

// Branch returns the first union branch of the given kind.
func (s *Schema) Branch(kind Kind) (*Schema, bool) {
	if s.Kind != KindUnion {
		return nil, false
	}

	for _, b := range s.Branches {
		if b.Kind == kind {
			return b, true
		}
	}

	return nil, false
}

// BranchByName returns the union branch tagged with name. Unqualified names
// match named branches by their short name.
func (s *Schema) BranchByName(name string) (*Schema, bool) {
	if s.Kind != KindUnion {
		return nil, false
	}

	for _, b := range s.Branches {
		if b.TypeName() == name || (b.WriterName != "" && b.WriterName == name) {
			return b, true
		}
	}

	if !strings.Contains(name, ".") {
		for _, b := range s.Branches {
			if b.Kind.IsNamed() && b.Name == name {
				return b, true
			}
		}
	}

	return nil, false
}

// NonNullBranch returns T for a two-branch union of null and T.
func (s *Schema) NonNullBranch() (*Schema, bool) {
	if s.Kind != KindUnion || len(s.Branches) != 2 {
		return nil, false
	}

	switch {
	case s.Branches[0].Kind == KindNull && s.Branches[1].Kind != KindNull:
		return s.Branches[1], true
	case s.Branches[1].Kind == KindNull && s.Branches[0].Kind != KindNull:
		return s.Branches[0], true
	default:
		return nil, false
	}
}

// PrimitiveBranches returns the leaf branches of a union, null excluded.
func (s *Schema) PrimitiveBranches() []*Schema {
	var out []*Schema

	for _, b := range s.Branches {
		if b.Kind.IsPrimitive() && b.Kind != KindNull {
			out = append(out, b)
		}
	}

	return out
}

// indexFields builds the field lookup table of a record.
func (s *Schema) indexFields() {
	s.fieldIndex = make(map[string]int, len(s.Fields))
	for i, f := range s.Fields {
		f.Index = i
		s.fieldIndex[f.Name] = i
	}
}

// splitFullName splits "a.b.C" into ("a.b", "C").
func splitFullName(full string) (namespace, name string) {
	i := strings.LastIndex(full, ".")
	if i < 0 {
		return "", full
	}

	return full[:i], full[i+1:]
}

// qualify resolves a possibly unqualified name against a namespace.
func qualify(name, namespace string) string {
	if strings.Contains(name, ".") || namespace == "" {
		return name
	}

	return namespace + "." + name
}
