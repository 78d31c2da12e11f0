package decode

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/linkedin/goavro/v2"

	"avro-projector/internal/errs"
	"avro-projector/internal/schema"
)

// Magic starts every object container file.
var Magic = []byte{'O', 'b', 'j', 1}

// IsContainer reports whether r starts with the container magic. It peeks
// and does not consume input.
func IsContainer(r *bufio.Reader) bool {
	head, err := r.Peek(len(Magic))
	return err == nil && bytes.Equal(head, Magic)
}

// Container reads an Avro object container file through goavro. Objects
// are decoded with the writer schema of the header and bound onto the
// schema passed to Decode.
type Container struct {
	ocf    *goavro.OCFReader
	writer *schema.Schema
	blocks int
}

// NewContainer reads the container header from r.
func NewContainer(r io.Reader) (*Container, error) {
	ocf, err := goavro.NewOCFReader(r)
	if err != nil {
		return nil, &errs.DecodeError{Err: fmt.Errorf("failed to read container header: %w", err)}
	}

	writer, err := schema.Parse(ocf.Codec().Schema())
	if err != nil {
		return nil, &errs.DecodeError{Err: fmt.Errorf("failed to parse container schema: %w", err)}
	}

	return &Container{ocf: ocf, writer: writer}, nil
}

// WriterSchema returns the schema embedded in the header.
func (c *Container) WriterSchema() *schema.Schema { return c.writer }

// Codec returns the block compression codec name.
func (c *Container) Codec() string { return c.ocf.CompressionName() }

// Blocks returns the number of blocks read so far.
func (c *Container) Blocks() int { return c.blocks }

// Decode decodes the next object and binds it onto s, which must be the
// writer schema or the writer with reader aliases applied. A corrupt object
// discards the rest of its block.
func (c *Container) Decode(seed any, s *schema.Schema) (any, error) {
	fresh := c.ocf.RemainingBlockItems() == 0

	if !c.ocf.Scan() {
		if err := c.ocf.Err(); err != nil {
			return nil, &errs.DecodeError{Err: fmt.Errorf("block %d: %w", c.blocks+1, err)}
		}

		return nil, io.EOF
	}

	if fresh {
		c.blocks++
	}

	native, err := c.ocf.Read()
	if err != nil {
		c.ocf.SkipThisBlockAndReset()
		return nil, &errs.DecodeError{Err: fmt.Errorf("block %d: %w", c.blocks, err)}
	}

	return bind(native, s, seed)
}
