package path

import (
	"fmt"
	"strings"

	"github.com/drone/envsubst"

	"avro-projector/internal/errs"
)

// Variables maps placeholder names to values. Names are normalized with
// NormalizeVariableName before lookup.
type Variables map[string]string

// NormalizeVariableName maps a variable name to the form placeholders use
// after CleanseVariables: dots become underscores.
func NormalizeVariableName(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}

// Set stores value under the normalized name.
func (v Variables) Set(name, value string) {
	v[NormalizeVariableName(name)] = value
}

// Lookup returns the value of a normalized variable name.
func (v Variables) Lookup(name string) (string, bool) {
	val, ok := v[NormalizeVariableName(name)]
	return val, ok
}

// CleanseVariables rewrites the variable names inside every ${...}
// placeholder, replacing dots with underscores, so that the dots of
// "${cust.id}" are never read as segment separators. Operators and default
// values following the name are left alone.
func CleanseVariables(text string) string {
	if !strings.Contains(text, "${") {
		return text
	}

	var sb strings.Builder

	for i := 0; i < len(text); i++ {
		end, ok := placeholderEnd(text, i)
		if !ok {
			sb.WriteByte(text[i])
			continue
		}

		span := text[i:end]
		nameEnd := 2

		for nameEnd < len(span) && isNameByte(span[nameEnd]) {
			nameEnd++
		}

		sb.WriteString("${")
		sb.WriteString(NormalizeVariableName(span[2:nameEnd]))
		sb.WriteString(span[nameEnd:])

		i = end - 1
	}

	return sb.String()
}

// VariableNames returns the normalized names of the placeholders in text, in
// order of appearance.
func VariableNames(text string) []string {
	var names []string

	for i := 0; i < len(text); i++ {
		end, ok := placeholderEnd(text, i)
		if !ok {
			continue
		}

		nameEnd := i + 2
		for nameEnd < end && isNameByte(text[nameEnd]) {
			nameEnd++
		}

		names = append(names, NormalizeVariableName(text[i+2:nameEnd]))
		i = end - 1
	}

	return names
}

// Substitute replaces every ${...} placeholder in text with its value and
// escapes the characters of the value that the path grammar treats as
// delimiters. Placeholders support the envsubst operators, for example
// ${name:-default}. Unknown variables expand to the empty string.
func Substitute(text string, vars Variables) (string, error) {
	if !strings.Contains(text, "${") {
		return text, nil
	}

	mapping := func(name string) string {
		v, _ := vars.Lookup(name)
		return v
	}

	var sb strings.Builder

	for i := 0; i < len(text); i++ {
		end, ok := placeholderEnd(text, i)
		if !ok {
			sb.WriteByte(text[i])
			continue
		}

		val, err := envsubst.Eval(text[i:end], mapping)
		if err != nil {
			return "", errs.PathSyntax(text, "bad placeholder %s: %v", text[i:end], err)
		}

		sb.WriteString(escapeValue(val))

		i = end - 1
	}

	return sb.String(), nil
}

// Expand replaces every ${...} placeholder in text with its raw value. It is
// meant for text that is not a path, such as per-row schema keys.
func Expand(text string, vars Variables) (string, error) {
	if !strings.Contains(text, "${") {
		return text, nil
	}

	out, err := envsubst.Eval(CleanseVariables(text), func(name string) string {
		v, _ := vars.Lookup(name)
		return v
	})
	if err != nil {
		return "", fmt.Errorf("failed to expand %q: %w", text, err)
	}

	return out, nil
}

// Bind substitutes the placeholders of p and parses the result. Paths
// without placeholders are returned unchanged.
func (p Path) Bind(vars Variables) (Path, error) {
	if !p.HasVariables() {
		return p, nil
	}

	text, err := Substitute(p.String(), vars)
	if err != nil {
		return Path{}, err
	}

	return Parse(text)
}

func escapeValue(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `.`, `\.`, `[`, `\[`, `]`, `\]`, `*`, `\*`)
	return r.Replace(v)
}

func isNameByte(c byte) bool {
	return c == '_' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
