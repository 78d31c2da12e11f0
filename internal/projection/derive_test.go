package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveLeaves(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		want   []Leaf
	}{
		{
			name: "nested record",
			schema: `{"type": "record", "name": "R", "fields": [
			  {"name": "a", "type": "int"},
			  {"name": "b", "type": {"type": "array", "items": {"type": "record", "name": "B", "fields": [
			    {"name": "x", "type": "string"},
			    {"name": "y", "type": "long"}
			  ]}}},
			  {"name": "m", "type": {"type": "map", "values": "long"}},
			  {"name": "n", "type": "null"}
			]}`,
			want: []Leaf{
				{Name: "$.a", Path: "$.a", Type: TypeInteger},
				{Name: "$.b[0].x", Path: "$.b[0].x", Type: TypeString},
				{Name: "$.b[0].y", Path: "$.b[0].y", Type: TypeInteger},
				{Name: "$.m[*key*]", Path: "$.m[*key*]", Type: TypeInteger},
			},
		},
		{
			name: "unions",
			schema: `{"type": "record", "name": "R", "fields": [
			  {"name": "u", "type": ["null", "string"]},
			  {"name": "v", "type": ["null", "int", "string"]},
			  {"name": "w", "type": ["null", {"type": "record", "name": "W", "fields": [
			    {"name": "z", "type": "boolean"}
			  ]}]}
			]}`,
			want: []Leaf{
				{Name: "$.u", Path: "$.u", Type: TypeString},
				{Name: "$.v", Path: "$.v", Type: TypeString},
				{Name: "$.w[u:W].z", Path: "$.w.z", Type: TypeBoolean},
			},
		},
		{
			name: "enum and logical types",
			schema: `{"type": "record", "name": "R", "fields": [
			  {"name": "e", "type": {"type": "enum", "name": "E", "symbols": ["A", "B"]}},
			  {"name": "ts", "type": {"type": "long", "logicalType": "timestamp-millis"}},
			  {"name": "f", "type": "double"},
			  {"name": "raw", "type": "bytes"}
			]}`,
			want: []Leaf{
				{Name: "$.e", Path: "$.e", Type: TypeString, Indexed: []string{"A", "B"}},
				{Name: "$.ts", Path: "$.ts", Type: TypeDate},
				{Name: "$.f", Path: "$.f", Type: TypeNumber},
				{Name: "$.raw", Path: "$.raw", Type: TypeBinary},
			},
		},
		{
			name: "recursive record",
			schema: `{"type": "record", "name": "Person", "fields": [
			  {"name": "name", "type": "string"},
			  {"name": "parent", "type": ["null", "Person"]}
			]}`,
			want: []Leaf{
				{Name: "$.name", Path: "$.name", Type: TypeString},
			},
		},
		{
			name:   "top-level array",
			schema: `{"type": "array", "items": "int"}`,
			want: []Leaf{
				{Name: "$[0]", Path: "$[0]", Type: TypeInteger},
			},
		},
		{
			name:   "nested arrays extend the path only",
			schema: `{"type": "record", "name": "R", "fields": [{"name": "g", "type": {"type": "array", "items": {"type": "array", "items": "int"}}}]}`,
			want: []Leaf{
				{Name: "$.g[0]", Path: "$.g[0][0]", Type: TypeInteger},
			},
		},
		{
			name:   "top-level union",
			schema: `["null", "string"]`,
			want: []Leaf{
				{Name: "string", Path: "$", Type: TypeString},
			},
		},
		{
			name:   "top-level mixed union",
			schema: `["null", "string", "long"]`,
			want: []Leaf{
				{Name: "$union:primitive/fixed", Path: "$", Type: TypeString},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustSchema(t, tt.schema)
			assert.Equal(t, tt.want, DeriveLeaves(s))
		})
	}
}

func TestCompileDerivesLeaves(t *testing.T) {
	s := mustSchema(t, fanOutSchema)

	c, err := Compile(nil, s, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"$.a", "$.b[0].x", "$.b[0].y"}, c.Columns())
	assert.Nil(t, c.Expansion)

	obj := mustBind(t, map[string]any{"a": int32(7), "b": items("p", int32(1), "q", int32(2))}, s)

	rows, err := NewProjector(c, Options{}).Rows(obj, s, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(7), "p", int64(1)}}, rows)
}

func TestCompileWithoutLeavesOrSchema(t *testing.T) {
	_, err := Compile(nil, nil, 0)
	require.Error(t, err)

	_, err = Compile(nil, mustSchema(t, `"null"`), 0)
	require.Error(t, err)
}
