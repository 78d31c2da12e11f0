package decode

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/linkedin/goavro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avro-projector/internal/datum"
	"avro-projector/internal/errs"
	"avro-projector/internal/schema"
)

const eventSchema = `{
  "type": "record", "name": "Event",
  "fields": [
    {"name": "id", "type": "long"},
    {"name": "tags", "type": {"type": "array", "items": "string"}}
  ]
}`

func events() []any {
	return []any{
		map[string]any{"id": int64(1), "tags": []any{"a"}},
		map[string]any{"id": int64(2), "tags": []any{}},
		map[string]any{"id": int64(3), "tags": []any{"b", "c"}},
	}
}

func mustCodec(t *testing.T) *goavro.Codec {
	t.Helper()

	codec, err := goavro.NewCodec(eventSchema)
	require.NoError(t, err)

	return codec
}

func mustSchema(t *testing.T) *schema.Schema {
	t.Helper()

	s, err := schema.Parse(eventSchema)
	require.NoError(t, err)

	return s
}

func drain(t *testing.T, d Decoder, s *schema.Schema) []int64 {
	t.Helper()

	seed, err := datum.NewSeed(s)
	require.NoError(t, err)

	var ids []int64

	for {
		v, err := d.Decode(seed, s)
		if err == io.EOF {
			return ids
		}

		require.NoError(t, err)

		id, ok := v.(*datum.Record).Get("id")
		require.True(t, ok)

		ids = append(ids, id.(int64))
	}
}

func TestBinary(t *testing.T) {
	codec := mustCodec(t)

	var buf []byte

	for _, e := range events() {
		var err error

		buf, err = codec.BinaryFromNative(buf, e)
		require.NoError(t, err)
	}

	ids := drain(t, NewBinary(buf, nil), mustSchema(t))
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestTextual(t *testing.T) {
	codec := mustCodec(t)

	var buf []byte

	for _, e := range events() {
		var err error

		buf, err = codec.TextualFromNative(buf, e)
		require.NoError(t, err)

		buf = append(buf, '\n')
	}

	ids := drain(t, NewTextual(buf, nil), mustSchema(t))
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestBinaryCorrupt(t *testing.T) {
	d := NewBinary([]byte{0x02}, nil)

	_, err := d.Decode(nil, mustSchema(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrDecode)

	_, err = d.Decode(nil, mustSchema(t))
	assert.ErrorIs(t, err, io.EOF)
}

func TestOne(t *testing.T) {
	codec := mustCodec(t)

	buf, err := codec.BinaryFromNative(nil, events()[2])
	require.NoError(t, err)

	v, err := One(buf, false, nil, mustSchema(t), nil)
	require.NoError(t, err)

	tags, _ := v.(*datum.Record).Get("tags")
	assert.Equal(t, []any{"b", "c"}, tags.(*datum.Array).Items)

	_, err = One(nil, false, nil, mustSchema(t), nil)
	assert.ErrorIs(t, err, errs.ErrDecode)
}

func writeContainer(t *testing.T, compression string, blocks ...[]any) []byte {
	t.Helper()

	var buf bytes.Buffer

	w, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               &buf,
		Codec:           mustCodec(t),
		CompressionName: compression,
	})
	require.NoError(t, err)

	for _, b := range blocks {
		require.NoError(t, w.Append(b))
	}

	return buf.Bytes()
}

func TestContainer(t *testing.T) {
	for _, compression := range []string{
		goavro.CompressionNullLabel,
		goavro.CompressionDeflateLabel,
		goavro.CompressionSnappyLabel,
	} {
		t.Run(compression, func(t *testing.T) {
			all := events()
			data := writeContainer(t, compression, all[:2], all[2:])

			br := bufio.NewReader(bytes.NewReader(data))
			require.True(t, IsContainer(br))

			c, err := NewContainer(br)
			require.NoError(t, err)

			assert.Equal(t, compression, c.Codec())
			assert.Equal(t, "Event", c.WriterSchema().Name)

			ids := drain(t, c, c.WriterSchema())
			assert.Equal(t, []int64{1, 2, 3}, ids)
			assert.Equal(t, 2, c.Blocks())
		})
	}
}

func TestContainerAliasedSchema(t *testing.T) {
	data := writeContainer(t, goavro.CompressionNullLabel, events())

	c, err := NewContainer(bytes.NewReader(data))
	require.NoError(t, err)

	reader, err := schema.Parse(`{
	  "type": "record", "name": "Occurrence", "aliases": ["Event"],
	  "fields": [
	    {"name": "key", "type": "long", "aliases": ["id"]},
	    {"name": "tags", "type": {"type": "array", "items": "string"}}
	  ]
	}`)
	require.NoError(t, err)

	s := schema.ApplyAliases(c.WriterSchema(), reader)

	var keys []int64

	for {
		v, err := c.Decode(nil, s)
		if err == io.EOF {
			break
		}

		require.NoError(t, err)

		rec := v.(*datum.Record)
		assert.Equal(t, "Occurrence", rec.Schema.FullName())

		key, ok := rec.Get("key")
		require.True(t, ok)

		keys = append(keys, key.(int64))
	}

	assert.Equal(t, []int64{1, 2, 3}, keys)
}

func TestContainerTruncated(t *testing.T) {
	data := writeContainer(t, goavro.CompressionNullLabel, events())

	c, err := NewContainer(bytes.NewReader(data[:len(data)-20]))
	require.NoError(t, err)

	_, err = c.Decode(nil, c.WriterSchema())
	assert.ErrorIs(t, err, errs.ErrDecode)
}

func TestNotContainer(t *testing.T) {
	br := bufio.NewReader(bytes.NewReader([]byte{0x02, 0x04}))
	assert.False(t, IsContainer(br))

	_, err := NewContainer(br)
	assert.ErrorIs(t, err, errs.ErrDecode)
}

func TestCodecsCache(t *testing.T) {
	codecs := NewCodecs(2)
	s := mustSchema(t)

	c1, err := codecs.For(s)
	require.NoError(t, err)

	c2, err := codecs.For(s)
	require.NoError(t, err)
	assert.Same(t, c1, c2)
}
