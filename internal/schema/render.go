package schema

// String renders the schema as Avro JSON. Each named type is defined at its
// first occurrence and referenced by full name afterwards, so recursive
// schemas render finitely.
func (s *Schema) String() string {
	data, err := json.Marshal(s.render(make(map[*Schema]bool)))
	if err != nil {
		// Rendered trees only hold strings, numbers, slices and maps.
		return `"null"`
	}

	return string(data)
}

// MarshalJSON renders the schema as Avro JSON.
func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.render(make(map[*Schema]bool)))
}

func (s *Schema) render(defined map[*Schema]bool) any {
	if s.Kind.IsNamed() {
		if defined[s] {
			return s.FullName()
		}

		defined[s] = true
	}

	switch s.Kind {
	case KindNull, KindBoolean, KindInt, KindLong, KindFloat, KindDouble, KindBytes, KindString:
		if s.LogicalType == "" {
			return s.Kind.String()
		}

		out := map[string]any{"type": s.Kind.String(), "logicalType": s.LogicalType}
		addDecimal(out, s)

		return out
	case KindRecord:
		fields := make([]any, 0, len(s.Fields))

		for _, f := range s.Fields {
			fo := map[string]any{"name": f.Name, "type": f.Type.render(defined)}
			if len(f.Aliases) > 0 {
				fo["aliases"] = f.Aliases
			}

			if f.HasDefault {
				fo["default"] = f.Default
			}

			fields = append(fields, fo)
		}

		out := named(s, "record")
		out["fields"] = fields

		return out
	case KindEnum:
		out := named(s, "enum")
		out["symbols"] = s.Symbols

		return out
	case KindFixed:
		out := named(s, "fixed")
		out["size"] = s.Size

		if s.LogicalType != "" {
			out["logicalType"] = s.LogicalType
			addDecimal(out, s)
		}

		return out
	case KindArray:
		return map[string]any{"type": "array", "items": s.Items.render(defined)}
	case KindMap:
		return map[string]any{"type": "map", "values": s.Values.render(defined)}
	case KindUnion:
		branches := make([]any, 0, len(s.Branches))
		for _, b := range s.Branches {
			branches = append(branches, b.render(defined))
		}

		return branches
	case KindUnknown:
		return "null"
	default:
		return "null"
	}
}

func named(s *Schema, typ string) map[string]any {
	out := map[string]any{"type": typ, "name": s.Name}
	if s.Namespace != "" {
		out["namespace"] = s.Namespace
	}

	if len(s.Aliases) > 0 {
		out["aliases"] = s.Aliases
	}

	return out
}

func addDecimal(out map[string]any, s *Schema) {
	if s.LogicalType != "decimal" {
		return
	}

	out["precision"] = s.Precision
	if s.Scale > 0 {
		out["scale"] = s.Scale
	}
}
