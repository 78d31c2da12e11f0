package datum

import (
	"avro-projector/internal/schema"
)

// Record is a decoded record. Values are positional, by field index.
type Record struct {
	Schema *schema.Schema
	Values []any
}

// Get returns the value of the named field.
func (r *Record) Get(name string) (any, bool) {
	f, ok := r.Schema.Field(name)
	if !ok || f.Index >= len(r.Values) {
		return nil, false
	}

	return r.Values[f.Index], true
}

// Array is a decoded array.
type Array struct {
	Schema *schema.Schema
	Items  []any
}

// Map is a decoded map. Entries keep a stable order: Keys[i] maps to
// Values[i]. A map does not know its own schema; union resolution finds it
// among the branches.
type Map struct {
	Keys   []string
	Values []any
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	for i, k := range m.Keys {
		if k == key {
			return m.Values[i], true
		}
	}

	return nil, false
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.Keys) }

// Enum is a decoded enum symbol.
type Enum struct {
	Schema *schema.Schema
	Symbol string
}

// Fixed is a decoded fixed-size byte sequence.
type Fixed struct {
	Schema *schema.Schema
	Bytes  []byte
}

// SchemaOf returns the concrete schema of values that carry one: records,
// arrays, enums and fixed. Maps and primitives report false.
func SchemaOf(v any) (*schema.Schema, bool) {
	switch t := v.(type) {
	case *Record:
		return t.Schema, t.Schema != nil
	case *Array:
		return t.Schema, t.Schema != nil
	case Enum:
		return t.Schema, t.Schema != nil
	case Fixed:
		return t.Schema, t.Schema != nil
	default:
		return nil, false
	}
}
