package step

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-kit/log/level"
	"github.com/spf13/cast"

	"avro-projector/internal/decode"
	"avro-projector/internal/errs"
	"avro-projector/internal/path"
	"avro-projector/internal/schemacache"
)

// nullLookup is the variable value of a null lookup column without a default.
const nullLookup = "null"

// fieldInput is the state of field mode.
type fieldInput struct {
	columns []string
	payload int
	// schemaCol is the per-row schema column, -1 when unused.
	schemaCol int
	lookups   []int
	// fixed is the entry used for every row when rows carry no schema.
	fixed *schemacache.Entry
	// seed is the last decoded object, refilled when the next row has the
	// same schema.
	seed any
}

// Init binds the step to the incoming row layout. Output rows start with
// the incoming columns, followed by one column per leaf.
func (s *Step) Init(columns []string) error {
	in := fieldInput{columns: slices.Clone(columns), schemaCol: -1}

	var err error

	if in.payload, err = column(columns, s.cfg.Input.Field, "input field"); err != nil {
		return err
	}

	if s.cfg.PerRow() {
		if in.schemaCol, err = column(columns, s.cfg.Schema.PerRowField, "schema field"); err != nil {
			return err
		}
	} else {
		in.fixed = schemacache.NewEntry(s.reader)
	}

	for _, l := range s.cfg.Lookups {
		i, err := column(columns, l.Field, "lookup field")
		if err != nil {
			return err
		}

		in.lookups = append(in.lookups, i)
	}

	if err := s.compile(s.reader, len(columns)); err != nil {
		return err
	}

	s.rows = in

	return nil
}

// Process projects the object held by one incoming row. A null payload
// yields the incoming row padded with nulls. A row routed to the error
// handler yields no rows.
func (s *Step) Process(row []any) ([][]any, error) {
	in := &s.rows
	if s.projector == nil || in.columns == nil {
		return nil, ErrNotReady
	}

	if len(row) < len(in.columns) {
		return nil, fmt.Errorf("row has %d values, want %d", len(row), len(in.columns))
	}

	payload := row[in.payload]
	if payload == nil {
		padded := make([]any, s.projector.Compiled().Width())
		copy(padded, row)
		s.emitted(1)

		return [][]any{padded}, nil
	}

	vars := s.variables(row)

	rows, err := s.project(row, payload, vars)
	if err == nil {
		s.emitted(len(rows))
		return rows, nil
	}

	// Schema failures are per row once rows carry their own schema.
	routable := errs.IsRowLevel(err) || (s.cfg.PerRow() && errors.Is(err, errs.ErrSchemaLoad))

	if s.route(row, err, routable) {
		return [][]any{}, nil
	}

	return nil, err
}

// project decodes and projects one payload.
func (s *Step) project(row []any, payload any, vars path.Variables) ([][]any, error) {
	in := &s.rows

	entry := in.fixed
	if in.schemaCol >= 0 {
		key, err := s.schemaKey(row[in.schemaCol], vars)
		if err != nil {
			return nil, err
		}

		if entry, err = s.cache.GetOrResolve(key); err != nil {
			return nil, err
		}

		if strings.TrimSpace(key) == "" {
			level.Debug(s.logger).Log("msg", "row has no schema, using default")
		}
	}

	buf, err := payloadBytes(payload)
	if err != nil {
		return nil, &errs.DecodeError{Err: err}
	}

	obj, err := decode.One(buf, s.cfg.Input.JSONEncoded, in.seed, entry.Schema, s.codecs)
	if err != nil {
		return nil, err
	}

	in.seed = obj

	return s.projector.Rows(obj, entry.Schema, row[:len(in.columns)], vars)
}

// variables reads the lookup columns of row.
func (s *Step) variables(row []any) path.Variables {
	if len(s.cfg.Lookups) == 0 {
		return nil
	}

	vars := make(path.Variables, len(s.cfg.Lookups))

	for i, l := range s.cfg.Lookups {
		v := row[s.rows.lookups[i]]

		switch {
		case v != nil:
			vars.Set(l.Variable, cast.ToString(v))
		case l.Default != "":
			vars.Set(l.Variable, l.Default)
		default:
			vars.Set(l.Variable, nullLookup)
		}
	}

	return vars
}

func (s *Step) schemaKey(v any, vars path.Variables) (string, error) {
	if v == nil {
		return "", nil
	}

	key, err := cast.ToStringE(v)
	if err != nil {
		return "", &errs.SchemaLoadError{Source: "row", Err: err}
	}

	key, err = path.Expand(key, vars)
	if err != nil {
		return "", &errs.SchemaLoadError{Source: "row", Err: err}
	}

	return key, nil
}

func payloadBytes(v any) ([]byte, error) {
	switch t := v.(type) {
	case []byte:
		return t, nil
	case string:
		return []byte(t), nil
	default:
		return nil, fmt.Errorf("payload of type %T is neither bytes nor text", v)
	}
}

func column(columns []string, name, what string) (int, error) {
	i := slices.Index(columns, strings.TrimSpace(name))
	if i < 0 {
		return -1, fmt.Errorf("%s %q is not among the incoming columns", what, name)
	}

	return i, nil
}
