package projection

import (
	"fmt"
	"strings"

	"avro-projector/internal/diagnostic"
	"avro-projector/internal/match"
	"avro-projector/internal/path"
	"avro-projector/internal/schema"
)

// anySchema stands for whatever a placeholder segment selects.
var anySchema = &schema.Schema{Kind: schema.KindUnknown}

// miss describes where a path stops resolving against a schema.
type miss struct {
	reason      string
	suggestions []string
}

// Validate checks compiled paths against a schema without any data.
// Unresolvable paths are warnings, since per-row schemas may differ from s;
// a wildcard that cannot select an array or map is an error.
func Validate(c *Compiled, s *schema.Schema) diagnostic.Diagnostics {
	var d diagnostic.Diagnostics

	for _, l := range c.Normal {
		checkLeaf(&d, l, l.Path.String(), s, l.Path.Segments)
	}

	g := c.Expansion
	if g == nil {
		return d
	}

	prefix := g.Prefix.String()
	last := len(g.Prefix.Segments) - 1

	ends, m := reach(s, g.Prefix.Segments[:last])
	if m != nil {
		d.Add(missDiagnostic(m, "expansion", prefix))
		return d
	}

	var elems []*schema.Schema

	for _, e := range ends {
		elems = append(elems, elements(e)...)
	}

	if len(elems) == 0 {
		d.AddError(diagnostic.CodeWildcardMismatch, "wildcard does not select an array or map", "expansion", prefix)
		return d
	}

	for _, member := range g.Members {
		full := prefix + strings.TrimPrefix(member.Path.String(), "$")

		var (
			found []*schema.Schema
			first *miss
		)

		for _, el := range elems {
			r, mm := reach(el, member.Path.Segments)
			found = append(found, r...)

			if mm != nil && first == nil {
				first = mm
			}
		}

		if len(found) == 0 {
			d.Add(missDiagnostic(first, subject(member), full))
			continue
		}

		checkEnds(&d, member, full, found)
	}

	return d
}

func checkLeaf(d *diagnostic.Diagnostics, l CompiledLeaf, text string, s *schema.Schema, segs []path.Segment) {
	ends, m := reach(s, segs)
	if m != nil {
		d.Add(missDiagnostic(m, subject(l), text))
		return
	}

	checkEnds(d, l, text, ends)
}

func checkEnds(d *diagnostic.Diagnostics, l CompiledLeaf, text string, ends []*schema.Schema) {
	for _, e := range ends {
		if e.Kind == schema.KindUnion {
			checkEnds(d, l, text, e.Branches)
			continue
		}

		switch e.Kind {
		case schema.KindRecord, schema.KindArray, schema.KindMap:
			if l.Leaf.Type != TypeString {
				d.AddWarning(diagnostic.CodePathNotLeaf,
					fmt.Sprintf("path ends at a %s, which only converts to string", e.Kind), subject(l), text)
			}

			return
		case schema.KindUnknown, schema.KindNull, schema.KindBoolean, schema.KindInt, schema.KindLong,
			schema.KindFloat, schema.KindDouble, schema.KindBytes, schema.KindString,
			schema.KindEnum, schema.KindUnion, schema.KindFixed:
		}
	}
}

// elements returns the element schemas a wildcard on s iterates.
func elements(s *schema.Schema) []*schema.Schema {
	switch s.Kind {
	case schema.KindArray:
		return []*schema.Schema{s.Items}
	case schema.KindMap:
		return []*schema.Schema{s.Values}
	case schema.KindUnion:
		var out []*schema.Schema
		for _, b := range s.Branches {
			out = append(out, elements(b)...)
		}

		return out
	case schema.KindUnknown:
		return []*schema.Schema{anySchema}
	case schema.KindNull, schema.KindBoolean, schema.KindInt, schema.KindLong, schema.KindFloat,
		schema.KindDouble, schema.KindBytes, schema.KindString, schema.KindRecord,
		schema.KindEnum, schema.KindFixed:
		return nil
	default:
		return nil
	}
}

// reach returns the schemas segs can end at from s, trying every branch of
// a union. When none, it describes the first place the walk failed.
func reach(s *schema.Schema, segs []path.Segment) ([]*schema.Schema, *miss) {
	if len(segs) == 0 {
		return []*schema.Schema{s}, nil
	}

	seg, rest := segs[0], segs[1:]
	variable := strings.Contains(seg.Name, "${")

	switch s.Kind {
	case schema.KindUnknown:
		return []*schema.Schema{anySchema}, nil
	case schema.KindUnion:
		var (
			out   []*schema.Schema
			first *miss
		)

		for _, b := range s.Branches {
			if b.Kind == schema.KindNull {
				continue
			}

			r, m := reach(b, segs)
			out = append(out, r...)

			if m != nil && first == nil {
				first = m
			}
		}

		if len(out) > 0 {
			return out, nil
		}

		if first == nil {
			first = &miss{reason: "union has only a null branch"}
		}

		return nil, first
	case schema.KindRecord:
		if seg.Kind != path.SegmentField {
			return nil, &miss{reason: fmt.Sprintf("record %s is not indexed with brackets", s.FullName())}
		}

		if variable {
			return []*schema.Schema{anySchema}, nil
		}

		f, ok := s.Field(seg.Name)
		if !ok {
			names := make([]string, len(s.Fields))
			for i, f := range s.Fields {
				names[i] = f.Name
			}

			return nil, &miss{
				reason:      fmt.Sprintf("record %s has no field %q", s.FullName(), seg.Name),
				suggestions: match.Suggest(seg.Name, names, 3),
			}
		}

		return reach(f.Type, rest)
	case schema.KindArray:
		if seg.Kind != path.SegmentBracket {
			return nil, &miss{reason: fmt.Sprintf("array is not accessed with .%s", seg.Name)}
		}

		if _, ok := seg.Index(); !ok && !variable {
			return nil, &miss{reason: fmt.Sprintf("%q is not an array index", seg.Name)}
		}

		return reach(s.Items, rest)
	case schema.KindMap:
		if seg.Kind != path.SegmentBracket {
			return nil, &miss{reason: fmt.Sprintf("map is not accessed with .%s, use [%s]", seg.Name, seg.Name)}
		}

		return reach(s.Values, rest)
	case schema.KindNull, schema.KindBoolean, schema.KindInt, schema.KindLong, schema.KindFloat,
		schema.KindDouble, schema.KindBytes, schema.KindString, schema.KindEnum, schema.KindFixed:
		return nil, &miss{reason: fmt.Sprintf("%s value has no members", s.Kind)}
	default:
		return nil, &miss{reason: "unknown schema"}
	}
}

func missDiagnostic(m *miss, subj, text string) diagnostic.Diagnostic {
	return diagnostic.Diagnostic{
		Severity:    diagnostic.SeverityWarning,
		Code:        diagnostic.CodePathUnresolved,
		Message:     m.reason,
		Subject:     subj,
		Path:        text,
		Suggestions: m.suggestions,
	}
}

func subject(l CompiledLeaf) string {
	return "field " + l.Leaf.Name
}
