package projection

import (
	"avro-projector/internal/common"
	"avro-projector/internal/schema"
)

// FirstEntryKey is the map key placeholder written into derived paths. A
// lookup of this key on a map that lacks it selects the first entry.
const FirstEntryKey = "*key*"

const (
	firstIndex   = "[0]"
	firstEntry   = "[" + FirstEntryKey + "]"
	mixedUnion   = "union:primitive/fixed"
	rootPathText = "$"
)

// DeriveLeaves builds one leaf per primitive reachable in s. Arrays are
// entered at their first element and maps at their first entry. A union
// with one primitive branch yields a leaf of that branch's type; several
// primitive branches collapse into one string leaf. Record branches of a
// union are told apart in the leaf name by a [u:Name] suffix. Records that
// contain themselves are entered once per path.
func DeriveLeaves(s *schema.Schema) []Leaf {
	d := &deriver{active: make(map[*schema.Schema]bool)}

	root := rootPathText
	for s.Kind == schema.KindArray || s.Kind == schema.KindMap {
		if s.Kind == schema.KindArray {
			root += firstIndex
			s = s.Items
		} else {
			root += firstEntry
			s = s.Values
		}
	}

	switch s.Kind {
	case schema.KindRecord:
		d.record(root, s, root)
	case schema.KindUnion:
		d.union(root, s, root)
	case schema.KindUnknown, schema.KindNull, schema.KindBoolean, schema.KindInt, schema.KindLong,
		schema.KindFloat, schema.KindDouble, schema.KindBytes, schema.KindString,
		schema.KindEnum, schema.KindFixed, schema.KindArray, schema.KindMap:
		d.leaf(root, s, root)
	}

	return d.leaves
}

type deriver struct {
	leaves []Leaf
	// active holds the records on the current descent.
	active map[*schema.Schema]bool
}

func (d *deriver) leaf(p string, s *schema.Schema, name string) {
	typ, ok := OutputTypeFor(s)
	if !ok {
		return
	}

	l := Leaf{Name: name, Path: p, Type: typ}
	if s.Kind == schema.KindEnum {
		l.Indexed = append([]string(nil), s.Symbols...)
	}

	d.leaves = append(d.leaves, l)
}

func (d *deriver) record(p string, s *schema.Schema, name string) {
	if d.active[s] {
		return
	}

	d.active[s] = true
	defer delete(d.active, s)

	for _, f := range s.Fields {
		fp, fn := p+"."+f.Name, name+"."+f.Name

		switch f.Type.Kind {
		case schema.KindUnion:
			d.union(fp, f.Type, fn)
		case schema.KindRecord:
			d.record(fp, f.Type, fn)
		case schema.KindArray:
			d.array(fp+firstIndex, f.Type, fn+firstIndex)
		case schema.KindMap:
			d.mapValues(fp+firstEntry, f.Type, fn+firstEntry)
		case schema.KindUnknown, schema.KindNull, schema.KindBoolean, schema.KindInt, schema.KindLong,
			schema.KindFloat, schema.KindDouble, schema.KindBytes, schema.KindString,
			schema.KindEnum, schema.KindFixed:
			d.leaf(fp, f.Type, fn)
		}
	}
}

func (d *deriver) union(p string, s *schema.Schema, name string) {
	topLevel := p == rootPathText

	prims := s.PrimitiveBranches()

	switch {
	case common.IsSingle(prims):
		single := prims[0]
		if topLevel {
			name = single.Kind.String()
			if single.Kind.IsNamed() {
				name = single.Name
			}
		}

		d.leaf(p, single, name)
	case len(prims) > 1:
		n := name
		if topLevel {
			n = p + mixedUnion
		}

		d.leaves = append(d.leaves, Leaf{Name: n, Path: p, Type: TypeString})
	}

	for _, b := range s.Branches {
		switch b.Kind {
		case schema.KindRecord:
			d.record(p, b, name+"[u:"+b.Name+"]")
		case schema.KindMap:
			d.mapValues(p+firstEntry, b, name+firstEntry)
		case schema.KindArray:
			d.array(p+firstIndex, b, name+firstIndex)
		case schema.KindUnknown, schema.KindNull, schema.KindBoolean, schema.KindInt, schema.KindLong,
			schema.KindFloat, schema.KindDouble, schema.KindBytes, schema.KindString,
			schema.KindEnum, schema.KindFixed, schema.KindUnion:
		}
	}
}

// array descends into the element schema of s. Nested arrays extend the
// path but not the name.
func (d *deriver) array(p string, s *schema.Schema, name string) {
	el := s.Items

	switch el.Kind {
	case schema.KindUnion:
		d.union(p, el, name)
	case schema.KindArray:
		d.array(p+firstIndex, el, name)
	case schema.KindRecord:
		d.record(p, el, name)
	case schema.KindMap:
		d.mapValues(p+firstEntry, el, name+firstEntry)
	case schema.KindUnknown, schema.KindNull, schema.KindBoolean, schema.KindInt, schema.KindLong,
		schema.KindFloat, schema.KindDouble, schema.KindBytes, schema.KindString,
		schema.KindEnum, schema.KindFixed:
		d.leaf(p, el, name)
	}
}

func (d *deriver) mapValues(p string, s *schema.Schema, name string) {
	v := s.Values

	switch v.Kind {
	case schema.KindUnion:
		d.union(p, v, name)
	case schema.KindArray:
		d.array(p+firstIndex, v, name+firstIndex)
	case schema.KindRecord:
		d.record(p, v, name)
	case schema.KindMap:
		d.mapValues(p+firstEntry, v, name+firstEntry)
	case schema.KindUnknown, schema.KindNull, schema.KindBoolean, schema.KindInt, schema.KindLong,
		schema.KindFloat, schema.KindDouble, schema.KindBytes, schema.KindString,
		schema.KindEnum, schema.KindFixed:
		d.leaf(p, v, name)
	}
}
