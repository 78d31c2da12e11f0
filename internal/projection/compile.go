package projection

import (
	"fmt"
	"slices"

	"avro-projector/internal/errs"
	"avro-projector/internal/path"
	"avro-projector/internal/schema"
)

// Compile parses the leaf paths and partitions them into normal leaves and
// at most one expansion group. With no leaves declared, one leaf per
// reachable primitive of s is derived. Leaf i is placed in column offset+i.
//
// All wildcard paths must share the same prefix up to and including the
// wildcard; the members of the group are rebased onto the element.
func Compile(leaves []Leaf, s *schema.Schema, offset int) (*Compiled, error) {
	if len(leaves) == 0 {
		if s == nil {
			return nil, errs.PathSyntax("", "no fields declared and no schema to derive them from")
		}

		leaves = DeriveLeaves(s)
		if len(leaves) == 0 {
			return nil, errs.PathSyntax("", "schema %s has no primitive leaves", s.FullName())
		}
	}

	c := &Compiled{Leaves: slices.Clone(leaves), Offset: offset}

	for i, l := range leaves {
		p, err := path.Parse(path.CleanseVariables(l.Path))
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", l.Name, err)
		}

		cl := CompiledLeaf{Leaf: l, Path: p, Column: offset + i}

		w := p.WildcardIndex()
		if w < 0 {
			c.Normal = append(c.Normal, cl)
			continue
		}

		prefix := p.Prefix(w)

		switch {
		case c.Expansion == nil:
			c.Expansion = &ExpansionGroup{Prefix: prefix}
		case !c.Expansion.Prefix.Equal(prefix):
			return nil, errs.PathSyntax(l.Path, "multiple different expansions: %s and %s", c.Expansion.Prefix, prefix)
		}

		cl.Path = p.Rebase(w)
		c.Expansion.Members = append(c.Expansion.Members, cl)
	}

	return c, nil
}
