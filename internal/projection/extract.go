package projection

import (
	"fmt"
	"math/big"
	"time"

	"avro-projector/internal/datum"
	"avro-projector/internal/errs"
	"avro-projector/internal/path"
	"avro-projector/internal/schema"
)

// cursor is the position of one evaluation: a decoded value and the schema
// it was decoded with. Cursors are plain values, created per evaluation.
type cursor struct {
	value  any
	schema *schema.Schema
}

// walker evaluates compiled paths against one input object.
type walker struct {
	ignoreMissing bool
	vars          path.Variables
}

// extract evaluates one leaf from root. Unreachable leaves are nil in
// tolerant mode.
func (w *walker) extract(l CompiledLeaf, root cursor) (any, error) {
	p, err := l.Path.Bind(w.vars)
	if err != nil {
		return nil, err
	}

	c, ok, err := w.walk(root, p.Segments, p)
	if err != nil || !ok {
		return nil, err
	}

	return w.leafValue(c, l.Leaf)
}

// walk follows segs from c. It reports false when the walk ended early on a
// null or, in tolerant mode, on something missing.
func (w *walker) walk(c cursor, segs []path.Segment, p path.Path) (cursor, bool, error) {
	for _, seg := range segs {
		var (
			ok  bool
			err error
		)

		c, ok, err = w.step(c, seg, p)
		if err != nil || !ok {
			return cursor{}, false, err
		}
	}

	return c, true, nil
}

func (w *walker) step(c cursor, seg path.Segment, p path.Path) (cursor, bool, error) {
	c, ok, err := w.resolve(c, p)
	if err != nil || !ok {
		return cursor{}, false, err
	}

	switch c.schema.Kind {
	case schema.KindRecord:
		rec, ok := c.value.(*datum.Record)
		if !ok {
			return cursor{}, false, mismatch(c, p)
		}

		if seg.Kind != path.SegmentField {
			return w.missing(seg, p)
		}

		f, ok := rec.Schema.Field(seg.Name)
		if !ok || f.Index >= len(rec.Values) {
			return w.missing(seg, p)
		}

		return cursor{value: rec.Values[f.Index], schema: f.Type}, true, nil
	case schema.KindArray:
		arr, ok := c.value.(*datum.Array)
		if !ok {
			return cursor{}, false, mismatch(c, p)
		}

		i, ok := seg.Index()
		if !ok || i >= len(arr.Items) {
			return w.missing(seg, p)
		}

		return cursor{value: arr.Items[i], schema: c.schema.Items}, true, nil
	case schema.KindMap:
		m, ok := c.value.(*datum.Map)
		if !ok {
			return cursor{}, false, mismatch(c, p)
		}

		if seg.Kind != path.SegmentBracket {
			return w.missing(seg, p)
		}

		v, ok := m.Get(seg.Name)
		if !ok && seg.Name == FirstEntryKey && m.Len() > 0 {
			v, ok = m.Values[0], true
		}

		if !ok {
			return w.missing(seg, p)
		}

		return cursor{value: v, schema: c.schema.Values}, true, nil
	case schema.KindNull:
		return cursor{}, false, nil
	case schema.KindBoolean, schema.KindInt, schema.KindLong, schema.KindFloat, schema.KindDouble,
		schema.KindBytes, schema.KindString, schema.KindEnum, schema.KindFixed, schema.KindUnknown:
		// A leaf value has nothing to step into.
		return w.missing(seg, p)
	case schema.KindUnion:
		return cursor{}, false, &errs.UnionResolutionError{Path: p.String(), Reason: "union left unresolved"}
	default:
		return w.missing(seg, p)
	}
}

// resolve replaces a union schema by the branch the value belongs to. Values
// that carry their schema report it; maps use the union's map branch.
// Reaching a primitive here means the path wants to descend further.
func (w *walker) resolve(c cursor, p path.Path) (cursor, bool, error) {
	if c.value == nil {
		return cursor{}, false, nil
	}

	if c.schema.Kind != schema.KindUnion {
		return c, true, nil
	}

	if s, ok := datum.SchemaOf(c.value); ok {
		return cursor{value: c.value, schema: s}, true, nil
	}

	if _, ok := c.value.(*datum.Map); ok {
		if b, ok := c.schema.Branch(schema.KindMap); ok {
			return cursor{value: c.value, schema: b}, true, nil
		}

		return w.unresolved(p, "union has no map branch")
	}

	return w.unresolved(p, "primitive encountered before expected expansion")
}

// leafValue converts the value a walk ended at.
func (w *walker) leafValue(c cursor, l Leaf) (any, error) {
	if c.value == nil {
		return nil, nil
	}

	s := c.schema
	if s.Kind == schema.KindUnion {
		if own, ok := datum.SchemaOf(c.value); ok {
			s = own
		} else if b, ok := primitiveBranch(s, c.value); ok {
			s = b
		}
	}

	return convert(c.value, s, l)
}

func (w *walker) missing(seg path.Segment, p path.Path) (cursor, bool, error) {
	if w.ignoreMissing {
		return cursor{}, false, nil
	}

	name := seg.Name
	if seg.Kind == path.SegmentWildcard {
		name = "[*]"
	}

	return cursor{}, false, &errs.MissingFieldError{Field: name, Path: p.String()}
}

func (w *walker) unresolved(p path.Path, reason string) (cursor, bool, error) {
	if w.ignoreMissing {
		return cursor{}, false, nil
	}

	return cursor{}, false, &errs.UnionResolutionError{Path: p.String(), Reason: reason}
}

// primitiveBranch picks the union branch matching the Go type of a primitive
// value.
func primitiveBranch(u *schema.Schema, v any) (*schema.Schema, bool) {
	var kinds []schema.Kind

	switch v.(type) {
	case bool:
		kinds = []schema.Kind{schema.KindBoolean}
	case int32:
		kinds = []schema.Kind{schema.KindInt}
	case int64:
		kinds = []schema.Kind{schema.KindLong}
	case float32:
		kinds = []schema.Kind{schema.KindFloat}
	case float64:
		kinds = []schema.Kind{schema.KindDouble}
	case string:
		kinds = []schema.Kind{schema.KindString}
	case []byte:
		kinds = []schema.Kind{schema.KindBytes}
	case *big.Rat:
		kinds = []schema.Kind{schema.KindBytes, schema.KindFixed}
	case time.Time:
		kinds = []schema.Kind{schema.KindLong, schema.KindInt}
	case *datum.Map:
		kinds = []schema.Kind{schema.KindMap}
	default:
		return nil, false
	}

	for _, k := range kinds {
		if b, ok := u.Branch(k); ok {
			return b, true
		}
	}

	return nil, false
}

func mismatch(c cursor, p path.Path) error {
	return &errs.DecodeError{Err: fmt.Errorf("value %T does not match %s schema at %s", c.value, c.schema.Kind, p)}
}
