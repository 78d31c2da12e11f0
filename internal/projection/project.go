package projection

import (
	"errors"
	"iter"

	"avro-projector/internal/datum"
	"avro-projector/internal/errs"
	"avro-projector/internal/path"
	"avro-projector/internal/schema"
)

// Options control evaluation.
type Options struct {
	// IgnoreMissing turns missing fields, indices, keys and unresolvable
	// unions into nulls instead of errors.
	IgnoreMissing bool
	// DefaultSchema is used for objects projected without a schema.
	DefaultSchema *schema.Schema
}

// Projector turns decoded objects into rows. It holds no per-object state
// and may be shared between goroutines.
type Projector struct {
	compiled *Compiled
	opts     Options
}

// NewProjector returns a projector for a compiled configuration.
func NewProjector(c *Compiled, opts Options) *Projector {
	return &Projector{compiled: c, opts: opts}
}

// Compiled returns the configuration the projector evaluates.
func (p *Projector) Compiled() *Compiled { return p.compiled }

// Project evaluates every leaf against root and returns its rows. Each row
// holds passthrough in its first Offset columns followed by one column per
// leaf. Without an expansion group there is exactly one row; with one there
// is a row per element of the expanded collection, normal values repeated
// on each.
//
// All values are extracted before Project returns, so an error means the
// object yields no rows at all. Rows are assembled as the sequence is
// consumed.
func (p *Projector) Project(root any, rootSchema *schema.Schema, passthrough []any, vars path.Variables) (iter.Seq[[]any], error) {
	s := rootSchema
	if s == nil {
		s = p.opts.DefaultSchema
	}

	if s == nil {
		own, ok := datum.SchemaOf(root)
		if !ok {
			return nil, &errs.SchemaLoadError{Source: "object", Err: errors.New("no schema to project with")}
		}

		s = own
	}

	w := &walker{ignoreMissing: p.opts.IgnoreMissing, vars: vars}
	rc := cursor{value: root, schema: s}
	c := p.compiled

	normal := make([]any, len(c.Normal))

	for i, l := range c.Normal {
		v, err := w.extract(l, rc)
		if err != nil {
			return nil, err
		}

		normal[i] = v
	}

	var frags [][]any

	if c.Expansion != nil {
		var err error

		frags, err = w.fragments(c.Expansion, rc)
		if err != nil {
			return nil, err
		}
	}

	assemble := func(frag []any) []any {
		row := make([]any, c.Width())
		copy(row[:c.Offset], passthrough)

		for i, l := range c.Normal {
			row[l.Column] = normal[i]
		}

		if c.Expansion != nil {
			for i, m := range c.Expansion.Members {
				row[m.Column] = frag[i]
			}
		}

		return row
	}

	return func(yield func([]any) bool) {
		if c.Expansion == nil {
			yield(assemble(nil))
			return
		}

		for _, f := range frags {
			if !yield(assemble(f)) {
				return
			}
		}
	}, nil
}

// Rows is Project with the rows collected into a slice.
func (p *Projector) Rows(root any, rootSchema *schema.Schema, passthrough []any, vars path.Variables) ([][]any, error) {
	seq, err := p.Project(root, rootSchema, passthrough, vars)
	if err != nil {
		return nil, err
	}

	var rows [][]any
	for row := range seq {
		rows = append(rows, row)
	}

	return rows, nil
}
