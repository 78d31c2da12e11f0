package projection

import (
	"fmt"
	"slices"
	"strings"

	"avro-projector/internal/common"
	"avro-projector/internal/path"
	"avro-projector/internal/schema"
)

// OutputType is the type of an output column.
type OutputType int

const (
	TypeString OutputType = iota
	TypeInteger
	TypeNumber
	TypeBoolean
	TypeBinary
	TypeDate
)

var outputTypeNames = []string{"string", "integer", "number", "boolean", "binary", "date"}

// String returns the configuration name of the type.
func (t OutputType) String() string {
	if t < 0 || int(t) >= len(outputTypeNames) {
		return common.UnknownStr
	}

	return outputTypeNames[t]
}

// OutputTypeNames returns the configuration names of all output types.
func OutputTypeNames() []string {
	return slices.Clone(outputTypeNames)
}

// ParseOutputType parses a configuration type name. Case is ignored and an
// empty name means string.
func ParseOutputType(name string) (OutputType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return TypeString, nil
	}

	if i := slices.Index(outputTypeNames, name); i >= 0 {
		return OutputType(i), nil
	}

	return TypeString, fmt.Errorf("unknown output type %q (want one of %s)", name, strings.Join(outputTypeNames, ", "))
}

// OutputTypeFor returns the natural output type of a leaf schema. Null and
// composite schemas have none.
func OutputTypeFor(s *schema.Schema) (OutputType, bool) {
	switch s.Kind {
	case schema.KindBoolean:
		return TypeBoolean, true
	case schema.KindString, schema.KindEnum:
		return TypeString, true
	case schema.KindFloat, schema.KindDouble:
		return TypeNumber, true
	case schema.KindInt, schema.KindLong:
		switch s.LogicalType {
		case "date", "timestamp-millis", "timestamp-micros":
			return TypeDate, true
		}

		return TypeInteger, true
	case schema.KindBytes, schema.KindFixed:
		if s.LogicalType == "decimal" {
			return TypeNumber, true
		}

		return TypeBinary, true
	case schema.KindUnknown, schema.KindNull, schema.KindRecord, schema.KindArray,
		schema.KindMap, schema.KindUnion:
		return TypeString, false
	default:
		return TypeString, false
	}
}

// Leaf declares one output column.
type Leaf struct {
	// Name is the output column name.
	Name string
	// Path is the path expression, e.g. "$.b[*].x".
	Path string
	Type OutputType
	// Indexed lists the allowed values of an enum-backed column, in symbol
	// order. Informational; values are not checked against it.
	Indexed []string
}

// CompiledLeaf is a leaf bound to its parsed path and output column. It is
// never modified after compilation.
type CompiledLeaf struct {
	Leaf Leaf
	// Path is the full path for normal leaves and the path below the
	// wildcard for expansion members.
	Path   path.Path
	Column int
}

// ExpansionGroup is the set of leaves sharing the one wildcard of a
// configuration.
type ExpansionGroup struct {
	// Prefix ends with the wildcard segment.
	Prefix  path.Path
	Members []CompiledLeaf
}

// Compiled is the outcome of Compile.
type Compiled struct {
	// Leaves are the declared (or derived) leaves in column order.
	Leaves    []Leaf
	Normal    []CompiledLeaf
	Expansion *ExpansionGroup
	// Offset is the number of incoming columns placed ahead of the leaves.
	Offset int
}

// Width returns the number of columns of every row.
func (c *Compiled) Width() int {
	return c.Offset + len(c.Leaves)
}

// Columns returns the output column names, leaves only.
func (c *Compiled) Columns() []string {
	names := make([]string, len(c.Leaves))
	for i, l := range c.Leaves {
		names[i] = l.Name
	}

	return names
}
