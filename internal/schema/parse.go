package schema

import (
	"errors"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"avro-projector/internal/errs"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Parse parses an Avro schema from its JSON text.
func Parse(text string) (*Schema, error) {
	return parseSource("inline", []byte(text))
}

func parseSource(source string, data []byte) (*Schema, error) {
	var raw any

	if err := json.Unmarshal(data, &raw); err != nil {
		// A bare primitive name such as string is not valid JSON but is a
		// legal schema.
		name := strings.TrimSpace(string(data))
		if _, ok := kindByName[name]; !ok {
			return nil, &errs.SchemaLoadError{Source: source, Err: fmt.Errorf("invalid schema JSON: %w", err)}
		}

		raw = name
	}

	p := &parser{named: make(map[string]*Schema)}

	s, err := p.parse(raw, "")
	if err != nil {
		return nil, &errs.SchemaLoadError{Source: source, Err: err}
	}

	return s, nil
}

// parser holds the named types seen so far, for references and recursion.
type parser struct {
	named map[string]*Schema
}

func (p *parser) parse(raw any, namespace string) (*Schema, error) {
	switch v := raw.(type) {
	case string:
		return p.parseName(v, namespace)
	case []any:
		return p.parseUnion(v, namespace)
	case map[string]any:
		return p.parseObject(v, namespace)
	default:
		return nil, fmt.Errorf("unexpected schema value %v", raw)
	}
}

func (p *parser) parseName(name, namespace string) (*Schema, error) {
	if k, ok := kindByName[name]; ok {
		return &Schema{Kind: k}, nil
	}

	if s, ok := p.named[qualify(name, namespace)]; ok {
		return s, nil
	}

	if s, ok := p.named[name]; ok {
		return s, nil
	}

	return nil, fmt.Errorf("unknown type %q", name)
}

func (p *parser) parseUnion(branches []any, namespace string) (*Schema, error) {
	if len(branches) == 0 {
		return nil, errors.New("union has no branches")
	}

	u := &Schema{Kind: KindUnion, Branches: make([]*Schema, 0, len(branches))}
	seen := make(map[string]struct{}, len(branches))

	for _, raw := range branches {
		b, err := p.parse(raw, namespace)
		if err != nil {
			return nil, err
		}

		if b.Kind == KindUnion {
			return nil, errors.New("unions may not immediately contain other unions")
		}

		if _, dup := seen[b.TypeName()]; dup {
			return nil, fmt.Errorf("union contains duplicate type %q", b.TypeName())
		}

		seen[b.TypeName()] = struct{}{}
		u.Branches = append(u.Branches, b)
	}

	return u, nil
}

func (p *parser) parseObject(obj map[string]any, namespace string) (*Schema, error) {
	typ, ok := obj["type"]
	if !ok {
		return nil, errors.New(`schema object has no "type"`)
	}

	name, isName := typ.(string)
	if !isName {
		// {"type": {...}} or {"type": [...]} wraps another schema.
		return p.parse(typ, namespace)
	}

	switch name {
	case "record", "error":
		return p.parseRecord(obj, namespace)
	case "enum":
		return p.parseEnum(obj, namespace)
	case "fixed":
		return p.parseFixed(obj, namespace)
	case "array":
		items, ok := obj["items"]
		if !ok {
			return nil, errors.New(`array schema has no "items"`)
		}

		s, err := p.parse(items, namespace)
		if err != nil {
			return nil, fmt.Errorf("array items: %w", err)
		}

		return &Schema{Kind: KindArray, Items: s}, nil
	case "map":
		values, ok := obj["values"]
		if !ok {
			return nil, errors.New(`map schema has no "values"`)
		}

		s, err := p.parse(values, namespace)
		if err != nil {
			return nil, fmt.Errorf("map values: %w", err)
		}

		return &Schema{Kind: KindMap, Values: s}, nil
	}

	s, err := p.parseName(name, namespace)
	if err != nil {
		return nil, err
	}

	if s.Kind.IsPrimitive() && !s.Kind.IsNamed() {
		lt, _ := obj["logicalType"].(string)
		if lt != "" {
			return &Schema{
				Kind:        s.Kind,
				LogicalType: lt,
				Precision:   intProp(obj, "precision"),
				Scale:       intProp(obj, "scale"),
			}, nil
		}
	}

	return s, nil
}

// define registers a named schema, inheriting the enclosing namespace.
func (p *parser) define(s *Schema, obj map[string]any, namespace string) error {
	name, _ := obj["name"].(string)
	if name == "" {
		return fmt.Errorf("%s schema has no name", s.Kind)
	}

	ns, hasNs := obj["namespace"].(string)
	if !hasNs {
		ns = namespace
	}

	if strings.Contains(name, ".") {
		ns, name = splitFullName(name)
	}

	s.Name = name
	s.Namespace = ns
	s.Aliases = stringsProp(obj, "aliases")

	full := s.FullName()
	if _, dup := p.named[full]; dup {
		return fmt.Errorf("type %q is defined more than once", full)
	}

	p.named[full] = s

	return nil
}

func (p *parser) parseRecord(obj map[string]any, namespace string) (*Schema, error) {
	s := &Schema{Kind: KindRecord}
	if err := p.define(s, obj, namespace); err != nil {
		return nil, err
	}

	rawFields, ok := obj["fields"].([]any)
	if !ok {
		return nil, fmt.Errorf("record %q has no fields array", s.FullName())
	}

	seen := make(map[string]struct{}, len(rawFields))

	for _, rf := range rawFields {
		fobj, ok := rf.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("record %q: field is not an object", s.FullName())
		}

		fname, _ := fobj["name"].(string)
		if fname == "" {
			return nil, fmt.Errorf("record %q: field has no name", s.FullName())
		}

		if _, dup := seen[fname]; dup {
			return nil, fmt.Errorf("record %q: duplicate field %q", s.FullName(), fname)
		}

		seen[fname] = struct{}{}

		ftype, ok := fobj["type"]
		if !ok {
			return nil, fmt.Errorf("record %q: field %q has no type", s.FullName(), fname)
		}

		ts, err := p.parse(ftype, s.Namespace)
		if err != nil {
			return nil, fmt.Errorf("record %q field %q: %w", s.FullName(), fname, err)
		}

		def, hasDef := fobj["default"]
		s.Fields = append(s.Fields, &Field{
			Name:       fname,
			Aliases:    stringsProp(fobj, "aliases"),
			Type:       ts,
			Default:    def,
			HasDefault: hasDef,
		})
	}

	s.indexFields()

	return s, nil
}

func (p *parser) parseEnum(obj map[string]any, namespace string) (*Schema, error) {
	s := &Schema{Kind: KindEnum}
	if err := p.define(s, obj, namespace); err != nil {
		return nil, err
	}

	s.Symbols = stringsProp(obj, "symbols")
	if len(s.Symbols) == 0 {
		return nil, fmt.Errorf("enum %q has no symbols", s.FullName())
	}

	return s, nil
}

func (p *parser) parseFixed(obj map[string]any, namespace string) (*Schema, error) {
	s := &Schema{Kind: KindFixed}
	if err := p.define(s, obj, namespace); err != nil {
		return nil, err
	}

	size, ok := obj["size"].(float64)
	if !ok || size < 0 {
		return nil, fmt.Errorf("fixed %q has no valid size", s.FullName())
	}

	s.Size = int(size)
	s.LogicalType, _ = obj["logicalType"].(string)
	s.Precision = intProp(obj, "precision")
	s.Scale = intProp(obj, "scale")

	return s, nil
}

func stringsProp(obj map[string]any, key string) []string {
	raw, ok := obj[key].([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(raw))

	for _, r := range raw {
		if s, ok := r.(string); ok {
			out = append(out, s)
		}
	}

	return out
}

func intProp(obj map[string]any, key string) int {
	f, _ := obj[key].(float64)
	return int(f)
}
