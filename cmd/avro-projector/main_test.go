package main

import (
	"bytes"
	"testing"

	"github.com/linkedin/goavro/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avro-projector/internal/config"
	"avro-projector/internal/step"
)

const tripSchema = `{"type": "record", "name": "Trip", "fields": [
  {"name": "id", "type": "string"},
  {"name": "stops", "type": {"type": "array", "items": "string"}}
]}`

func writeTrips(t *testing.T, fs afero.Fs) {
	t.Helper()

	codec, err := goavro.NewCodec(tripSchema)
	require.NoError(t, err)

	var buf bytes.Buffer

	w, err := goavro.NewOCFWriter(goavro.OCFConfig{W: &buf, Codec: codec, CompressionName: goavro.CompressionDeflateLabel})
	require.NoError(t, err)
	require.NoError(t, w.Append([]any{
		map[string]any{"id": "t1", "stops": []any{"A", "B"}},
	}))
	require.NoError(t, afero.WriteFile(fs, "/data/trips.avro", buf.Bytes(), 0o644))
}

func TestWriteRows(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTrips(t, fs)

	cfg, err := config.Parse([]byte(`
input: {file: /data/trips.avro}
fields:
  - {name: trip, path: $.id}
  - {name: stop, path: "$.stops[*]"}
`))
	require.NoError(t, err)

	s, err := step.New(cfg, step.WithFs(fs))
	require.NoError(t, err)
	require.NoError(t, s.Open())

	var out bytes.Buffer

	n, err := writeRows(&out, s)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "{\"stop\":\"A\",\"trip\":\"t1\"}\n{\"stop\":\"B\",\"trip\":\"t1\"}\n", out.String())
}

func TestLoadSchema(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTrips(t, fs)
	require.NoError(t, afero.WriteFile(fs, "/schemas/trip.avsc", []byte(tripSchema), 0o644))

	for _, name := range []string{"/data/trips.avro", "/schemas/trip.avsc"} {
		s, err := loadSchema(fs, name)
		require.NoError(t, err)
		assert.Equal(t, "Trip", s.FullName())
	}

	_, err := loadSchema(fs, "/nope")
	require.Error(t, err)
}
