package path

import (
	"strconv"
	"strings"
)

// SegmentKind tells how a segment steps into the current value.
type SegmentKind int

const (
	// SegmentField selects a record field (.name).
	SegmentField SegmentKind = iota
	// SegmentBracket selects an array index or a map key ([text]). Which of
	// the two is decided by the schema at the point of evaluation.
	SegmentBracket
	// SegmentWildcard iterates every array element or map entry ([*]).
	SegmentWildcard
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentField:
		return "field"
	case SegmentBracket:
		return "bracket"
	case SegmentWildcard:
		return "wildcard"
	default:
		return "unknown"
	}
}

// Segment is one step of a path.
type Segment struct {
	Kind SegmentKind
	// Name is the unescaped field name or bracket text. Empty for wildcards.
	Name string
}

// Index interprets a bracket segment as a zero-based array index.
func (s Segment) Index() (int, bool) {
	if s.Kind != SegmentBracket {
		return 0, false
	}

	n, err := strconv.Atoi(strings.TrimSpace(s.Name))
	if err != nil || n < 0 {
		return 0, false
	}

	return n, true
}

func (s Segment) String() string {
	switch s.Kind {
	case SegmentField:
		return "." + escape(s.Name)
	case SegmentBracket:
		if s.Name == "*" {
			return `[\*]`
		}

		return "[" + escape(s.Name) + "]"
	case SegmentWildcard:
		return "[*]"
	default:
		return ""
	}
}

// Path is a parsed path expression. The zero value is the root path "$".
// Paths are values: slicing helpers return new paths and never modify the
// receiver's segments.
type Path struct {
	Segments []Segment
}

// Root returns the path "$".
func Root() Path { return Path{} }

// String renders the path in the same grammar Parse accepts.
func (p Path) String() string {
	var sb strings.Builder

	sb.WriteString("$")

	for _, s := range p.Segments {
		sb.WriteString(s.String())
	}

	return sb.String()
}

// Len returns the number of segments.
func (p Path) Len() int { return len(p.Segments) }

// IsRoot reports whether the path has no segments.
func (p Path) IsRoot() bool { return len(p.Segments) == 0 }

// WildcardIndex returns the position of the last wildcard segment, or -1.
func (p Path) WildcardIndex() int {
	for i := len(p.Segments) - 1; i >= 0; i-- {
		if p.Segments[i].Kind == SegmentWildcard {
			return i
		}
	}

	return -1
}

// Prefix returns the path up to and including segment i.
func (p Path) Prefix(i int) Path {
	return Path{Segments: clone(p.Segments[:i+1])}
}

// Rebase returns the path that follows segment i, rooted at "$".
func (p Path) Rebase(i int) Path {
	return Path{Segments: clone(p.Segments[i+1:])}
}

// Equal reports whether two paths have identical segments.
func (p Path) Equal(o Path) bool {
	if len(p.Segments) != len(o.Segments) {
		return false
	}

	for i := range p.Segments {
		if p.Segments[i] != o.Segments[i] {
			return false
		}
	}

	return true
}

// HasVariables reports whether any segment holds a ${...} placeholder.
func (p Path) HasVariables() bool {
	for _, s := range p.Segments {
		if strings.Contains(s.Name, "${") {
			return true
		}
	}

	return false
}

func clone(segs []Segment) []Segment {
	if len(segs) == 0 {
		return nil
	}

	out := make([]Segment, len(segs))
	copy(out, segs)

	return out
}

// escape backslash-escapes the characters that delimit segments. Placeholder
// spans are written verbatim so that they survive a round trip.
func escape(name string) string {
	if !strings.ContainsAny(name, `.[]\`) {
		return name
	}

	var sb strings.Builder

	for i := 0; i < len(name); i++ {
		if end, ok := placeholderEnd(name, i); ok {
			sb.WriteString(name[i:end])
			i = end - 1

			continue
		}

		switch c := name[i]; c {
		case '.', '[', ']', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}

	return sb.String()
}

// placeholderEnd returns the offset just past the ${...} span starting at i,
// honouring nested braces.
func placeholderEnd(s string, i int) (int, bool) {
	if !strings.HasPrefix(s[i:], "${") {
		return 0, false
	}

	depth := 0

	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j + 1, true
			}
		}
	}

	return 0, false
}
