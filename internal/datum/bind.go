package datum

import (
	"errors"
	"fmt"
	"slices"

	"avro-projector/internal/schema"
)

// ErrUnsupportedTopLevel is returned by NewSeed for schemas that cannot be
// the top level of an input object.
var ErrUnsupportedTopLevel = errors.New("unsupported top-level schema")

// NewSeed builds the reusable top-level object for a schema: an empty record,
// array or map. A union seeds its first record branch.
func NewSeed(s *schema.Schema) (any, error) {
	switch s.Kind {
	case schema.KindRecord:
		return &Record{Schema: s, Values: make([]any, len(s.Fields))}, nil
	case schema.KindUnion:
		rec, ok := s.Branch(schema.KindRecord)
		if !ok {
			return nil, fmt.Errorf("%w: union without a record branch", ErrUnsupportedTopLevel)
		}

		return NewSeed(rec)
	case schema.KindArray:
		return &Array{Schema: s}, nil
	case schema.KindMap:
		return &Map{}, nil
	case schema.KindUnknown, schema.KindNull, schema.KindBoolean, schema.KindInt, schema.KindLong,
		schema.KindFloat, schema.KindDouble, schema.KindBytes, schema.KindString,
		schema.KindEnum, schema.KindFixed:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTopLevel, s.Kind)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTopLevel, s.Kind)
	}
}

// Bind converts a goavro native value decoded with s into a datum value.
// When into is a seed of the same shape its storage is reused.
//
// Natives follow goavro: records and maps are map[string]any, arrays are
// []any, a non-null union value is a single-entry map keyed by the branch
// type name, enums are strings and fixed values are []byte. Record fields
// and union branches renamed by reader aliases are looked up by their
// writer names, as goavro decodes with the writer schema.
func Bind(native any, s *schema.Schema, into any) (any, error) {
	switch s.Kind {
	case schema.KindNull:
		return nil, nil
	case schema.KindBoolean, schema.KindInt, schema.KindLong, schema.KindFloat,
		schema.KindDouble, schema.KindBytes, schema.KindString:
		return native, nil
	case schema.KindEnum:
		sym, ok := native.(string)
		if !ok {
			return nil, mismatch(s, native)
		}

		return Enum{Schema: s, Symbol: sym}, nil
	case schema.KindFixed:
		b, ok := native.([]byte)
		if !ok {
			return nil, mismatch(s, native)
		}

		return Fixed{Schema: s, Bytes: b}, nil
	case schema.KindRecord:
		return bindRecord(native, s, into)
	case schema.KindArray:
		return bindArray(native, s, into)
	case schema.KindMap:
		return bindMap(native, s, into)
	case schema.KindUnion:
		return bindUnion(native, s, into)
	case schema.KindUnknown:
		return nil, mismatch(s, native)
	default:
		return nil, mismatch(s, native)
	}
}

func bindRecord(native any, s *schema.Schema, into any) (any, error) {
	m, ok := native.(map[string]any)
	if !ok {
		return nil, mismatch(s, native)
	}

	rec, ok := into.(*Record)
	if !ok || rec.Schema != s {
		rec = &Record{Schema: s}
	}

	rec.Values = slices.Grow(rec.Values[:0], len(s.Fields))[:len(s.Fields)]

	for _, f := range s.Fields {
		v, err := Bind(m[f.EncodedName()], f.Type, nil)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}

		rec.Values[f.Index] = v
	}

	return rec, nil
}

func bindArray(native any, s *schema.Schema, into any) (any, error) {
	items, ok := native.([]any)
	if !ok {
		return nil, mismatch(s, native)
	}

	arr, ok := into.(*Array)
	if !ok || arr.Schema != s {
		arr = &Array{Schema: s}
	}

	arr.Items = arr.Items[:0]

	for i, it := range items {
		v, err := Bind(it, s.Items, nil)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}

		arr.Items = append(arr.Items, v)
	}

	return arr, nil
}

func bindMap(native any, s *schema.Schema, into any) (any, error) {
	entries, ok := native.(map[string]any)
	if !ok {
		return nil, mismatch(s, native)
	}

	out, ok := into.(*Map)
	if !ok {
		out = &Map{}
	}

	// goavro hands maps over unordered; sort for a stable iteration order.
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	out.Keys = keys
	out.Values = out.Values[:0]

	for _, k := range keys {
		v, err := Bind(entries[k], s.Values, nil)
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", k, err)
		}

		out.Values = append(out.Values, v)
	}

	return out, nil
}

func bindUnion(native any, s *schema.Schema, into any) (any, error) {
	if native == nil {
		return nil, nil
	}

	tagged, ok := native.(map[string]any)
	if !ok || len(tagged) != 1 {
		return nil, mismatch(s, native)
	}

	for name, v := range tagged {
		b, ok := unionBranch(s, name)
		if !ok {
			return nil, fmt.Errorf("union has no branch %q", name)
		}

		return Bind(v, b, into)
	}

	return nil, nil
}

// unionBranch finds the branch goavro tagged a value with. Named branches
// match their reader or writer name. Primitives with a logical type are
// tagged "long.timestamp-millis" and the like.
func unionBranch(s *schema.Schema, name string) (*schema.Schema, bool) {
	if b, ok := s.BranchByName(name); ok {
		return b, true
	}

	for _, b := range s.Branches {
		if b.LogicalType != "" && !b.Kind.IsNamed() && b.Kind.String()+"."+b.LogicalType == name {
			return b, true
		}
	}

	return nil, false
}

func mismatch(s *schema.Schema, native any) error {
	return fmt.Errorf("cannot bind %T to %s schema", native, s.Kind)
}
