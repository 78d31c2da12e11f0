package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avro-projector/internal/diagnostic"
)

func TestValidate(t *testing.T) {
	s := mustSchema(t, unionSchema)

	tests := []struct {
		name     string
		leaves   []Leaf
		errors   []string
		warnings []string
	}{
		{
			name: "resolvable paths",
			leaves: []Leaf{
				{Name: "z", Path: "$.u.z", Type: TypeBoolean},
				{Name: "k", Path: "$.u[k]", Type: TypeInteger},
				{Name: "n", Path: "$.list[*]", Type: TypeInteger},
			},
		},
		{
			name:     "unknown field",
			leaves:   []Leaf{{Name: "v", Path: "$.lst[0]", Type: TypeInteger}},
			warnings: []string{diagnostic.CodePathUnresolved},
		},
		{
			name:   "wildcard on a primitive",
			leaves: []Leaf{{Name: "v", Path: "$.u.z[*]", Type: TypeString}},
			errors: []string{diagnostic.CodeWildcardMismatch},
		},
		{
			name:     "composite with a non-string type",
			leaves:   []Leaf{{Name: "v", Path: "$.u", Type: TypeInteger}},
			warnings: []string{diagnostic.CodePathNotLeaf},
		},
		{
			name:   "placeholder matches anything",
			leaves: []Leaf{{Name: "v", Path: "$.u[${key}]", Type: TypeInteger}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Compile(tt.leaves, s, 0)
			require.NoError(t, err)

			d := Validate(c, s)

			assert.Equal(t, tt.errors, codes(d.Errors))
			assert.Equal(t, tt.warnings, codes(d.Warnings))
		})
	}
}

func TestValidateSuggestsFields(t *testing.T) {
	s := mustSchema(t, unionSchema)

	c, err := Compile([]Leaf{{Name: "v", Path: "$.lisst[0]"}}, s, 0)
	require.NoError(t, err)

	d := Validate(c, s)
	require.Len(t, d.Warnings, 1)

	w := d.Warnings[0]
	assert.Equal(t, "$.lisst[0]", w.Path)
	assert.Equal(t, "field v", w.Subject)
	assert.Equal(t, []string{"list"}, w.Suggestions)
}

func codes(ds []diagnostic.Diagnostic) []string {
	if len(ds) == 0 {
		return nil
	}

	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Code
	}

	return out
}
