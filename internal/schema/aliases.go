package schema

// ApplyAliases reconciles a writer schema with a reader schema. It returns a
// copy of writer in which every named type and record field whose name is
// listed as an alias in reader carries the reader's name instead. The shape
// of writer is untouched, so data encoded with writer decodes with the
// result; renamed fields and types remember their writer name. When reader
// declares no aliases, writer is returned as is.
func ApplyAliases(writer, reader *Schema) *Schema {
	if writer == nil || reader == nil {
		return writer
	}

	a := &aliasSet{
		types:  make(map[string]string),
		fields: make(map[string]map[string]string),
	}
	a.collect(reader, make(map[*Schema]bool))

	if len(a.types) == 0 && len(a.fields) == 0 {
		return writer
	}

	return a.rename(writer, make(map[*Schema]*Schema))
}

// aliasSet maps writer names onto reader names.
type aliasSet struct {
	// types maps an aliased full name to the reader's full name.
	types map[string]string
	// fields maps reader record full name -> field alias -> field name.
	fields map[string]map[string]string
}

func (a *aliasSet) collect(s *Schema, seen map[*Schema]bool) {
	if seen[s] {
		return
	}

	seen[s] = true

	if s.Kind.IsNamed() {
		for _, alias := range s.Aliases {
			a.types[qualify(alias, s.Namespace)] = s.FullName()
		}
	}

	switch s.Kind {
	case KindRecord:
		for _, f := range s.Fields {
			for _, alias := range f.Aliases {
				byAlias, ok := a.fields[s.FullName()]
				if !ok {
					byAlias = make(map[string]string)
					a.fields[s.FullName()] = byAlias
				}

				byAlias[alias] = f.Name
			}

			a.collect(f.Type, seen)
		}
	case KindArray:
		a.collect(s.Items, seen)
	case KindMap:
		a.collect(s.Values, seen)
	case KindUnion:
		for _, b := range s.Branches {
			a.collect(b, seen)
		}
	case KindUnknown, KindNull, KindBoolean, KindInt, KindLong, KindFloat, KindDouble,
		KindBytes, KindString, KindEnum, KindFixed:
	}
}

func (a *aliasSet) rename(s *Schema, done map[*Schema]*Schema) *Schema {
	if c, ok := done[s]; ok {
		return c
	}

	c := &Schema{
		Kind:        s.Kind,
		Name:        s.Name,
		Namespace:   s.Namespace,
		Aliases:     s.Aliases,
		LogicalType: s.LogicalType,
		Precision:   s.Precision,
		Scale:       s.Scale,
		Symbols:     s.Symbols,
		Size:        s.Size,
	}
	done[s] = c

	if s.Kind.IsNamed() {
		if to, ok := a.types[s.FullName()]; ok {
			c.Namespace, c.Name = splitFullName(to)
			c.WriterName = s.FullName()
		}
	}

	switch s.Kind {
	case KindRecord:
		byAlias := a.fields[c.FullName()]
		c.Fields = make([]*Field, len(s.Fields))

		for i, f := range s.Fields {
			name, writerName := f.Name, ""
			if to, ok := byAlias[f.Name]; ok {
				name, writerName = to, f.Name
			}

			c.Fields[i] = &Field{
				Name:       name,
				WriterName: writerName,
				Aliases:    f.Aliases,
				Type:       a.rename(f.Type, done),
				Default:    f.Default,
				HasDefault: f.HasDefault,
			}
		}

		c.indexFields()
	case KindArray:
		c.Items = a.rename(s.Items, done)
	case KindMap:
		c.Values = a.rename(s.Values, done)
	case KindUnion:
		c.Branches = make([]*Schema, len(s.Branches))
		for i, b := range s.Branches {
			c.Branches[i] = a.rename(b, done)
		}
	case KindUnknown, KindNull, KindBoolean, KindInt, KindLong, KindFloat, KindDouble,
		KindBytes, KindString, KindEnum, KindFixed:
	}

	return c
}
