package step

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression names recognized by input file extension.
const (
	compressionNone    = ""
	compressionGzip    = "gzip"
	compressionZstd    = "zstd"
	compressionSnappy  = "snappy"
	compressionDeflate = "deflate"
)

// compressionOf names the compression of an input file by its extension.
func compressionOf(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz", ".gzip":
		return compressionGzip
	case ".zst", ".zstd":
		return compressionZstd
	case ".sz", ".snappy":
		return compressionSnappy
	case ".deflate":
		return compressionDeflate
	default:
		return compressionNone
	}
}

// decompress wraps r in a reader for the given compression. The returned
// close function releases the decompressor, not r.
func decompress(compression string, r io.Reader) (io.Reader, func() error, error) {
	nop := func() error { return nil }

	switch compression {
	case compressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}

		return zr, zr.Close, nil
	case compressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}

		return zr, func() error { zr.Close(); return nil }, nil
	case compressionSnappy:
		// Framed snappy streams, as written by snappy.NewBufferedWriter.
		return snappy.NewReader(r), nop, nil
	case compressionDeflate:
		fr := flate.NewReader(r)
		return fr, fr.Close, nil
	default:
		return r, nop, nil
	}
}
