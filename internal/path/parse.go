package path

import (
	"strings"

	"avro-projector/internal/errs"
)

// Parse parses a path expression.
//
// Supported forms: "$", "$.a.b", "$.a[0]", "$.m[key]", "$.a[*].x",
// "$[0].x" (top-level array or map) and chained brackets "$.a[0][1]".
// Within names and bracket text, `\.`, `\[`, `\]` and `\\` stand for the
// literal character. ${...} placeholders are kept verbatim inside a segment;
// Bind substitutes them. A path may hold at most one wildcard.
func Parse(text string) (Path, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Path{}, errs.PathSyntax(text, "empty path")
	}

	if s[0] != '$' || strings.HasPrefix(s, "${") {
		return Path{}, errs.PathSyntax(text, "path must start with $")
	}

	var (
		segments  []Segment
		wildcards int
	)

	i := 1
	for i < len(s) {
		switch s[i] {
		case '.':
			name, next, err := scan(text, s, i+1, false)
			if err != nil {
				return Path{}, err
			}

			if name == "" {
				return Path{}, errs.PathSyntax(text, "empty field name at offset %d", i)
			}

			segments = append(segments, Segment{Kind: SegmentField, Name: name})
			i = next
		case '[':
			if strings.HasPrefix(s[i:], "[*]") {
				wildcards++
				if wildcards > 1 {
					return Path{}, errs.PathSyntax(text, "more than one wildcard")
				}

				segments = append(segments, Segment{Kind: SegmentWildcard})
				i += 3

				continue
			}

			name, next, err := scan(text, s, i+1, true)
			if err != nil {
				return Path{}, err
			}

			if name == "" {
				return Path{}, errs.PathSyntax(text, "empty brackets at offset %d", i)
			}

			segments = append(segments, Segment{Kind: SegmentBracket, Name: name})
			i = next
		default:
			return Path{}, errs.PathSyntax(text, "unexpected %q at offset %d", s[i], i)
		}
	}

	return Path{Segments: segments}, nil
}

// MustParse is like Parse but panics on error. For tests and constants.
func MustParse(text string) Path {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}

	return p
}

// scan reads a field name (bracket == false) or bracket text starting at
// offset i. It returns the unescaped text and the offset of the next
// segment.
func scan(orig, s string, i int, bracket bool) (string, int, error) {
	var sb strings.Builder

	for i < len(s) {
		if end, ok := placeholderEnd(s, i); ok {
			sb.WriteString(s[i:end])
			i = end

			continue
		}

		c := s[i]

		switch {
		case c == '\\':
			if i+1 >= len(s) {
				return "", 0, errs.PathSyntax(orig, "dangling escape at end of path")
			}

			sb.WriteByte(s[i+1])
			i += 2

			continue
		case bracket && c == ']':
			return sb.String(), i + 1, nil
		case bracket && c == '[':
			return "", 0, errs.PathSyntax(orig, "unexpected [ inside brackets at offset %d", i)
		case !bracket && (c == '.' || c == '['):
			return sb.String(), i, nil
		case !bracket && c == ']':
			return "", 0, errs.PathSyntax(orig, "unbalanced ] at offset %d", i)
		}

		sb.WriteByte(c)
		i++
	}

	if bracket {
		return "", 0, errs.PathSyntax(orig, "unclosed bracket")
	}

	return sb.String(), i, nil
}
