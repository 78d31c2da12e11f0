package datum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avro-projector/internal/schema"
)

const orderSchema = `{
  "type": "record", "name": "Order", "namespace": "shop",
  "fields": [
    {"name": "id", "type": "long"},
    {"name": "status", "type": {"type": "enum", "name": "Status", "symbols": ["NEW", "DONE"]}},
    {"name": "hash", "type": {"type": "fixed", "name": "Hash", "size": 2}},
    {"name": "lines", "type": {"type": "array", "items": {
      "type": "record", "name": "Line", "fields": [
        {"name": "sku", "type": "string"},
        {"name": "qty", "type": ["null", "int"]}
      ]}}},
    {"name": "attrs", "type": {"type": "map", "values": "string"}},
    {"name": "note", "type": ["null", "string", "Line"]}
  ]
}`

func mustSchema(t *testing.T, text string) *schema.Schema {
	t.Helper()

	s, err := schema.Parse(text)
	require.NoError(t, err)

	return s
}

func TestBindRecord(t *testing.T) {
	s := mustSchema(t, orderSchema)

	native := map[string]any{
		"id":     int64(42),
		"status": "DONE",
		"hash":   []byte{0xab, 0xcd},
		"lines": []any{
			map[string]any{"sku": "a", "qty": map[string]any{"int": int32(2)}},
			map[string]any{"sku": "b", "qty": nil},
		},
		"attrs": map[string]any{"z": "last", "a": "first"},
		"note":  map[string]any{"shop.Line": map[string]any{"sku": "n", "qty": nil}},
	}

	v, err := Bind(native, s, nil)
	require.NoError(t, err)

	rec, ok := v.(*Record)
	require.True(t, ok)
	assert.Same(t, s, rec.Schema)

	id, _ := rec.Get("id")
	assert.Equal(t, int64(42), id)

	status, _ := rec.Get("status")
	require.IsType(t, Enum{}, status)
	assert.Equal(t, "DONE", status.(Enum).Symbol)

	hash, _ := rec.Get("hash")
	require.IsType(t, Fixed{}, hash)
	assert.Equal(t, []byte{0xab, 0xcd}, hash.(Fixed).Bytes)

	lines, _ := rec.Get("lines")
	arr, ok := lines.(*Array)
	require.True(t, ok)
	require.Len(t, arr.Items, 2)

	first := arr.Items[0].(*Record)
	qty, _ := first.Get("qty")
	assert.Equal(t, int32(2), qty)

	second := arr.Items[1].(*Record)
	qty, _ = second.Get("qty")
	assert.Nil(t, qty)

	attrs, _ := rec.Get("attrs")
	m, ok := attrs.(*Map)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "z"}, m.Keys)

	val, ok := m.Get("z")
	assert.True(t, ok)
	assert.Equal(t, "last", val)

	note, _ := rec.Get("note")
	noteSchema, ok := SchemaOf(note)
	require.True(t, ok)
	assert.Equal(t, "shop.Line", noteSchema.FullName())
}

func TestBindReusesSeed(t *testing.T) {
	s := mustSchema(t, `{"type": "record", "name": "R", "fields": [{"name": "a", "type": "int"}]}`)

	seed, err := NewSeed(s)
	require.NoError(t, err)

	v1, err := Bind(map[string]any{"a": int32(1)}, s, seed)
	require.NoError(t, err)
	assert.Same(t, seed, v1)

	v2, err := Bind(map[string]any{"a": int32(2)}, s, seed)
	require.NoError(t, err)
	assert.Same(t, seed, v2)

	a, _ := v2.(*Record).Get("a")
	assert.Equal(t, int32(2), a)
}

func TestBindUnionLogicalBranch(t *testing.T) {
	s := mustSchema(t, `["null", {"type": "long", "logicalType": "timestamp-millis"}]`)

	v, err := Bind(map[string]any{"long.timestamp-millis": int64(5)}, s, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)
}

func TestBindWriterNames(t *testing.T) {
	writer := mustSchema(t, `{
	  "type": "record", "name": "OldOrder",
	  "fields": [
	    {"name": "ident", "type": "long"},
	    {"name": "line", "type": ["null", {"type": "record", "name": "OldLine", "fields": [
	      {"name": "code", "type": "string"}
	    ]}]}
	  ]
	}`)
	reader := mustSchema(t, `{
	  "type": "record", "name": "Order", "aliases": ["OldOrder"],
	  "fields": [
	    {"name": "id", "type": "long", "aliases": ["ident"]},
	    {"name": "line", "type": ["null", {"type": "record", "name": "Line", "aliases": ["OldLine"], "fields": [
	      {"name": "sku", "type": "string", "aliases": ["code"]}
	    ]}]}
	  ]
	}`)

	s := schema.ApplyAliases(writer, reader)

	// Decoded with the writer schema, so every name is the writer's.
	native := map[string]any{
		"ident": int64(7),
		"line":  map[string]any{"OldLine": map[string]any{"code": "x"}},
	}

	v, err := Bind(native, s, nil)
	require.NoError(t, err)

	rec := v.(*Record)

	id, ok := rec.Get("id")
	require.True(t, ok)
	assert.Equal(t, int64(7), id)

	line, _ := rec.Get("line")
	lineRec, ok := line.(*Record)
	require.True(t, ok)
	assert.Equal(t, "Line", lineRec.Schema.FullName())

	sku, _ := lineRec.Get("sku")
	assert.Equal(t, "x", sku)

	// A branch tagged with its reader name binds too.
	v, err = Bind(map[string]any{
		"ident": int64(8),
		"line":  map[string]any{"Line": map[string]any{"code": "y"}},
	}, s, nil)
	require.NoError(t, err)

	line, _ = v.(*Record).Get("line")
	sku, _ = line.(*Record).Get("sku")
	assert.Equal(t, "y", sku)
}

func TestBindErrors(t *testing.T) {
	s := mustSchema(t, orderSchema)

	_, err := Bind("not a record", s, nil)
	require.Error(t, err)

	_, err = Bind(map[string]any{"note": map[string]any{"nope": 1}}, s, nil)
	require.Error(t, err)
}

func TestNewSeed(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    any
		wantErr bool
	}{
		{"record", `{"type": "record", "name": "R", "fields": []}`, &Record{}, false},
		{"union picks record", `["null", {"type": "record", "name": "R", "fields": []}]`, &Record{}, false},
		{"array", `{"type": "array", "items": "int"}`, &Array{}, false},
		{"map", `{"type": "map", "values": "int"}`, &Map{}, false},
		{"primitive", `"string"`, nil, true},
		{"union without record", `["null", "int"]`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed, err := NewSeed(mustSchema(t, tt.text))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedTopLevel)
				return
			}

			require.NoError(t, err)
			assert.IsType(t, tt.want, seed)
		})
	}
}

func TestSchemaOf(t *testing.T) {
	_, ok := SchemaOf(&Map{})
	assert.False(t, ok)

	_, ok = SchemaOf("x")
	assert.False(t, ok)

	s := mustSchema(t, `{"type": "enum", "name": "E", "symbols": ["A"]}`)
	got, ok := SchemaOf(Enum{Schema: s, Symbol: "A"})
	assert.True(t, ok)
	assert.Same(t, s, got)
}

func TestNative(t *testing.T) {
	s := mustSchema(t, orderSchema)

	native := map[string]any{
		"id":     int64(1),
		"status": "NEW",
		"hash":   []byte{1, 2},
		"lines":  []any{map[string]any{"sku": "a", "qty": nil}},
		"attrs":  map[string]any{"k": "v"},
		"note":   nil,
	}

	v, err := Bind(native, s, nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"id":     int64(1),
		"status": "NEW",
		"hash":   []byte{1, 2},
		"lines":  []any{map[string]any{"sku": "a", "qty": nil}},
		"attrs":  map[string]any{"k": "v"},
		"note":   nil,
	}, Native(v))
}
