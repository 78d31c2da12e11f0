package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/linkedin/goavro/v2"

	"avro-projector/internal/datum"
	"avro-projector/internal/errs"
	"avro-projector/internal/schema"
)

// Decoder produces successive top-level objects. Decode fills seed when its
// shape matches s and returns io.EOF once the input is exhausted; any other
// failure is an *errs.DecodeError.
type Decoder interface {
	Decode(seed any, s *schema.Schema) (any, error)
}

// Codecs caches goavro codecs by rendered schema text.
type Codecs struct {
	cache *lru.Cache[string, *goavro.Codec]
}

// DefaultCodecCacheSize bounds the number of codecs a Codecs keeps.
const DefaultCodecCacheSize = 128

// NewCodecs creates a codec cache holding up to size codecs.
func NewCodecs(size int) *Codecs {
	if size <= 0 {
		size = DefaultCodecCacheSize
	}

	cache, err := lru.New[string, *goavro.Codec](size)
	if err != nil {
		panic(err)
	}

	return &Codecs{cache: cache}
}

// For returns the codec of s.
func (c *Codecs) For(s *schema.Schema) (*goavro.Codec, error) {
	text := s.String()

	if codec, ok := c.cache.Get(text); ok {
		return codec, nil
	}

	codec, err := goavro.NewCodec(text)
	if err != nil {
		return nil, &errs.SchemaLoadError{Source: "codec", Err: err}
	}

	c.cache.Add(text, codec)

	return codec, nil
}

// Bytes decodes a buffer holding concatenated objects, in Avro binary or
// Avro JSON encoding.
type Bytes struct {
	buf    []byte
	json   bool
	codecs *Codecs
}

// NewBinary decodes Avro binary encoded objects from buf.
func NewBinary(buf []byte, codecs *Codecs) *Bytes {
	return newBytes(buf, false, codecs)
}

// NewTextual decodes Avro JSON encoded objects from buf. Objects may be
// separated by whitespace.
func NewTextual(buf []byte, codecs *Codecs) *Bytes {
	return newBytes(buf, true, codecs)
}

func newBytes(buf []byte, json bool, codecs *Codecs) *Bytes {
	if codecs == nil {
		codecs = NewCodecs(0)
	}

	return &Bytes{buf: buf, json: json, codecs: codecs}
}

// Decode decodes the next object.
func (d *Bytes) Decode(seed any, s *schema.Schema) (any, error) {
	if d.json {
		d.buf = bytes.TrimLeft(d.buf, " \t\r\n")
	}

	if len(d.buf) == 0 {
		return nil, io.EOF
	}

	codec, err := d.codecs.For(s)
	if err != nil {
		return nil, err
	}

	var native any

	if d.json {
		native, d.buf, err = codec.NativeFromTextual(d.buf)
	} else {
		native, d.buf, err = codec.NativeFromBinary(d.buf)
	}

	if err != nil {
		// Nothing sensible follows a corrupt object.
		d.buf = nil
		return nil, &errs.DecodeError{Err: err}
	}

	return bind(native, s, seed)
}

// One decodes a single object from buf, as used for payloads that arrive in
// a column of an incoming row.
func One(buf []byte, json bool, seed any, s *schema.Schema, codecs *Codecs) (any, error) {
	v, err := newBytes(buf, json, codecs).Decode(seed, s)
	if errors.Is(err, io.EOF) {
		return nil, &errs.DecodeError{Err: errors.New("empty payload")}
	}

	return v, err
}

func bind(native any, s *schema.Schema, seed any) (any, error) {
	v, err := datum.Bind(native, s, seed)
	if err != nil {
		return nil, &errs.DecodeError{Err: fmt.Errorf("failed to bind decoded value: %w", err)}
	}

	return v, nil
}
