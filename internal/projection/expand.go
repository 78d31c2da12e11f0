package projection

import (
	"avro-projector/internal/datum"
	"avro-projector/internal/errs"
	"avro-projector/internal/schema"
)

// fragments evaluates the expansion group: one fragment per element or entry
// of the collection the wildcard selects, each holding the members' values
// in member order.
//
// A null (or, in tolerant mode, missing) value before the wildcard yields a
// single all-null fragment. An empty collection yields none.
func (w *walker) fragments(g *ExpansionGroup, root cursor) ([][]any, error) {
	p, err := g.Prefix.Bind(w.vars)
	if err != nil {
		return nil, err
	}

	last := len(p.Segments) - 1

	c, ok, err := w.walk(root, p.Segments[:last], p)
	if err != nil {
		return nil, err
	}

	if !ok || c.value == nil {
		return [][]any{make([]any, len(g.Members))}, nil
	}

	s := c.schema
	if s.Kind == schema.KindUnion {
		b, ok := datum.SchemaOf(c.value)
		if !ok {
			b, ok = primitiveBranch(s, c.value)
		}

		if !ok || (b.Kind != schema.KindArray && b.Kind != schema.KindMap) {
			return nil, &errs.UnionResolutionError{Path: p.String(), Reason: "no array or map value to expand"}
		}

		s = b
	}

	switch s.Kind {
	case schema.KindArray:
		arr, ok := c.value.(*datum.Array)
		if !ok {
			return nil, mismatch(cursor{value: c.value, schema: s}, p)
		}

		out := make([][]any, 0, len(arr.Items))

		for _, it := range arr.Items {
			frag, err := w.fragment(g, cursor{value: it, schema: s.Items})
			if err != nil {
				return nil, err
			}

			out = append(out, frag)
		}

		return out, nil
	case schema.KindMap:
		m, ok := c.value.(*datum.Map)
		if !ok {
			return nil, mismatch(cursor{value: c.value, schema: s}, p)
		}

		out := make([][]any, 0, m.Len())

		for _, v := range m.Values {
			frag, err := w.fragment(g, cursor{value: v, schema: s.Values})
			if err != nil {
				return nil, err
			}

			out = append(out, frag)
		}

		return out, nil
	case schema.KindUnknown, schema.KindNull, schema.KindBoolean, schema.KindInt, schema.KindLong,
		schema.KindFloat, schema.KindDouble, schema.KindBytes, schema.KindString,
		schema.KindRecord, schema.KindEnum, schema.KindUnion, schema.KindFixed:
		return nil, errs.PathSyntax(p.String(), "wildcard applied to a %s value", s.Kind)
	default:
		return nil, errs.PathSyntax(p.String(), "wildcard applied to a %s value", s.Kind)
	}
}

func (w *walker) fragment(g *ExpansionGroup, el cursor) ([]any, error) {
	frag := make([]any, len(g.Members))

	for i, m := range g.Members {
		v, err := w.extract(m, el)
		if err != nil {
			return nil, err
		}

		frag[i] = v
	}

	return frag, nil
}
