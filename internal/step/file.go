package step

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/afero"

	"avro-projector/internal/datum"
	"avro-projector/internal/decode"
	"avro-projector/internal/errs"
	"avro-projector/internal/schema"
)

// fileInput is the state of file mode.
type fileInput struct {
	f afero.File
	// release closes the decompressor wrapped around f.
	release func() error
	dec     decode.Decoder
	schema  *schema.Schema
	seed    any
}

func (in *fileInput) close(logger log.Logger) error {
	if in.f == nil {
		return nil
	}

	name := in.f.Name()

	err := in.release()
	if cerr := in.f.Close(); err == nil {
		err = cerr
	}

	*in = fileInput{}

	if err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}

	level.Info(logger).Log("msg", "closed input", "file", name)

	return nil
}

// Open opens the input file and establishes how to decode it. A container
// file supplies its writer schema; the configured reader schema, if any, is
// applied over it. Other files hold concatenated objects in the configured
// encoding and need a reader schema. Files ending in .gz, .zst, .sz or
// .deflate are decompressed first.
func (s *Step) Open() error {
	if s.file.f != nil {
		return errors.New("input is already open")
	}

	name := s.cfg.Input.File

	f, err := s.fs.Open(name)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}

	compression := compressionOf(name)

	r, release, err := decompress(compression, f)
	if err != nil {
		_ = f.Close()
		return &errs.DecodeError{Err: fmt.Errorf("failed to open %s input %s: %w", compression, name, err)}
	}

	in := fileInput{f: f, release: release}

	if err := s.prepare(&in, bufio.NewReader(r)); err != nil {
		_ = in.close(s.logger)
		return err
	}

	if err := s.compile(in.schema, 0); err != nil {
		_ = in.close(s.logger)
		return err
	}

	// The decoder owns the seed from here on.
	in.seed, _ = datum.NewSeed(in.schema)
	s.file = in

	level.Info(s.logger).Log("msg", "opened input", "file", name, "compression", compression, "schema", in.schema.FullName())

	return nil
}

func (s *Step) prepare(in *fileInput, r *bufio.Reader) error {
	if !s.cfg.Input.JSONEncoded && decode.IsContainer(r) {
		c, err := decode.NewContainer(r)
		if err != nil {
			return err
		}

		in.schema, err = schema.Resolve(s.fs, s.cfg.Source(), c.WriterSchema())
		if err != nil {
			return err
		}

		in.dec = c

		return nil
	}

	if s.reader == nil {
		return &errs.SchemaLoadError{
			Source: s.cfg.Input.File,
			Err:    errors.New("file is not a container file and no reader schema is configured"),
		}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", s.cfg.Input.File, err)
	}

	in.schema = s.reader

	if s.cfg.Input.JSONEncoded {
		in.dec = decode.NewTextual(data, s.codecs)
	} else {
		in.dec = decode.NewBinary(data, s.codecs)
	}

	return nil
}

// Next returns the rows of the next object in the file, or io.EOF when
// none is left. An object routed to the error handler yields no rows.
func (s *Step) Next() ([][]any, error) {
	in := &s.file
	if in.dec == nil || s.projector == nil {
		return nil, ErrNotReady
	}

	obj, err := in.dec.Decode(in.seed, in.schema)
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}

	if err == nil {
		var rows [][]any

		rows, err = s.projector.Rows(obj, in.schema, nil, nil)
		if err == nil {
			s.emitted(len(rows))
			return rows, nil
		}
	}

	if s.route(nil, err, errs.IsRowLevel(err)) {
		return [][]any{}, nil
	}

	return nil, err
}
