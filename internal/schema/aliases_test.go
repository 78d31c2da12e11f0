package schema

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avro-projector/internal/errs"
)

const writerSchema = `{
  "type": "record", "name": "OldUser",
  "fields": [
    {"name": "fullname", "type": "string"},
    {"name": "home", "type": {"type": "record", "name": "Addr", "fields": [
      {"name": "town", "type": "string"}
    ]}}
  ]
}`

const readerSchema = `{
  "type": "record", "name": "User", "aliases": ["OldUser"],
  "fields": [
    {"name": "name", "type": "string", "aliases": ["fullname"]},
    {"name": "home", "type": {"type": "record", "name": "Address", "aliases": ["Addr"], "fields": [
      {"name": "city", "type": "string", "aliases": ["town"]}
    ]}}
  ]
}`

func TestApplyAliases(t *testing.T) {
	writer, err := Parse(writerSchema)
	require.NoError(t, err)

	reader, err := Parse(readerSchema)
	require.NoError(t, err)

	got := ApplyAliases(writer, reader)

	assert.Equal(t, "User", got.Name)
	assert.Equal(t, "OldUser", got.WriterName)

	name, ok := got.Field("name")
	require.True(t, ok, "writer field fullname is renamed to name")
	assert.Equal(t, "fullname", name.WriterName)
	assert.Equal(t, "fullname", name.EncodedName())

	_, ok = got.Field("fullname")
	assert.False(t, ok)

	home, ok := got.Field("home")
	require.True(t, ok)
	assert.Equal(t, "Address", home.Type.Name)
	assert.Equal(t, "Addr", home.Type.WriterName)
	assert.Empty(t, home.WriterName)
	assert.Equal(t, "home", home.EncodedName())

	city, ok := home.Type.Field("city")
	require.True(t, ok)
	assert.Equal(t, 0, city.Index)

	// The writer itself is untouched.
	_, ok = writer.Field("fullname")
	assert.True(t, ok)
}

func TestApplyAliasesWithoutAliases(t *testing.T) {
	writer, err := Parse(writerSchema)
	require.NoError(t, err)

	reader, err := Parse(`{"type": "record", "name": "Other", "fields": []}`)
	require.NoError(t, err)

	assert.Same(t, writer, ApplyAliases(writer, reader))
}

func TestResolve(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "reader.avsc", []byte(readerSchema), 0o644))

	writer, err := Parse(writerSchema)
	require.NoError(t, err)

	t.Run("writer only", func(t *testing.T) {
		got, err := Resolve(fs, Source{}, writer)
		require.NoError(t, err)
		assert.Same(t, writer, got)
	})

	t.Run("reader file with writer", func(t *testing.T) {
		got, err := Resolve(fs, Source{File: "reader.avsc"}, writer)
		require.NoError(t, err)

		_, ok := got.Field("name")
		assert.True(t, ok)
	})

	t.Run("inline reader without writer", func(t *testing.T) {
		got, err := Resolve(fs, Source{Inline: readerSchema}, nil)
		require.NoError(t, err)
		assert.Equal(t, "User", got.Name)
	})

	t.Run("nothing", func(t *testing.T) {
		_, err := Resolve(fs, Source{}, nil)
		assert.ErrorIs(t, err, errs.ErrSchemaLoad)
	})

	t.Run("unreadable reader", func(t *testing.T) {
		_, err := Resolve(fs, Source{File: "nope.avsc"}, writer)
		assert.ErrorIs(t, err, errs.ErrSchemaLoad)
	})
}

func TestResolveKey(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/s/user.avsc", []byte(readerSchema), 0o644))

	s, err := ResolveKey(fs, "/s/user.avsc", true)
	require.NoError(t, err)
	assert.Equal(t, "User", s.Name)

	s, err = ResolveKey(fs, writerSchema, false)
	require.NoError(t, err)
	assert.Equal(t, "OldUser", s.Name)

	_, err = ResolveKey(fs, "{broken", false)
	assert.ErrorIs(t, err, errs.ErrSchemaLoad)
}
