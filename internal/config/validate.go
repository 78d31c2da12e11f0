package config

import (
	"fmt"
	"strings"

	"avro-projector/internal/diagnostic"
	"avro-projector/internal/match"
	"avro-projector/internal/path"
	"avro-projector/internal/projection"
)

// Validate checks the configuration without touching files or data. It
// reports every problem found rather than stopping at the first.
func (c *Config) Validate() *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}

	if c.Version != CurrentVersion {
		res.AddError(diagnostic.CodeConfigVersion,
			fmt.Sprintf("unsupported config version %q (want %q)", c.Version, CurrentVersion), "version", "")
	}

	c.validateInput(res)
	c.validateSchema(res)

	declared := c.validateLookups(res)
	c.validateFields(res, declared)

	return res
}

func (c *Config) validateInput(res *diagnostic.Diagnostics) {
	file, field := strings.TrimSpace(c.Input.File) != "", strings.TrimSpace(c.Input.Field) != ""

	switch {
	case file && field:
		res.AddError(diagnostic.CodeInputMode, "input.file and input.field are mutually exclusive", "input", "")
	case !file && !field:
		res.AddError(diagnostic.CodeInputMode, "one of input.file or input.field is required", "input", "")
	}
}

func (c *Config) validateSchema(res *diagnostic.Diagnostics) {
	s := c.Schema
	hasReader := !c.Source().IsZero()

	if strings.TrimSpace(s.Inline) != "" && strings.TrimSpace(s.File) != "" {
		res.AddError(diagnostic.CodeSchemaSource, "schema.inline and schema.file are mutually exclusive", "schema", "")
	}

	if s.FieldIsPath && !c.PerRow() {
		res.AddError(diagnostic.CodeSchemaSource, "schema.field_is_path requires schema.per_row_field", "schema", "")
	}

	switch c.Mode() {
	case ModeFile:
		if c.PerRow() {
			res.AddError(diagnostic.CodeSchemaSource, "schema.per_row_field requires input.field", "schema", "")
		}

		if c.Input.JSONEncoded && !hasReader {
			res.AddError(diagnostic.CodeSchemaSource, "JSON encoded files need schema.inline or schema.file", "schema", "")
		}
	case ModeField:
		if !hasReader && !c.PerRow() {
			res.AddError(diagnostic.CodeSchemaSource,
				"field input needs schema.inline, schema.file or schema.per_row_field", "schema", "")
		}

		if c.PerRow() && !hasReader && len(c.Fields) == 0 {
			res.AddError(diagnostic.CodeSchemaSource,
				"fields must be declared when rows carry their own schema and no default is set", "fields", "")
		}
	case ModeNone:
	}

	if s.CacheSize < 0 {
		res.AddError(diagnostic.CodeCache, fmt.Sprintf("schema.cache_size must not be negative, got %d", s.CacheSize), "schema", "")
	}

	if !c.CacheEnabled() && (s.StrictOnce || s.CacheSize > 0) {
		res.AddWarning(diagnostic.CodeCache, "cache settings have no effect while schema.cache is off", "schema", "")
	}

	if c.PerRow() && c.Mode() == ModeField && !c.CacheEnabled() {
		res.AddInfo(diagnostic.CodeCache, "every row's schema will be parsed anew", "schema", "")
	}
}

// validateLookups returns the normalized names of the declared variables.
func (c *Config) validateLookups(res *diagnostic.Diagnostics) map[string]bool {
	declared := make(map[string]bool, len(c.Lookups))

	for i, l := range c.Lookups {
		subj := fmt.Sprintf("lookups[%d]", i)

		if strings.TrimSpace(l.Field) == "" {
			res.AddError(diagnostic.CodeLookup, "lookup must name an incoming field", subj, "")
		}

		if strings.TrimSpace(l.Variable) == "" {
			res.AddError(diagnostic.CodeLookup, "lookup must name a variable", subj, "")
			continue
		}

		name := path.NormalizeVariableName(strings.TrimSpace(l.Variable))
		if declared[name] {
			res.AddWarning(diagnostic.CodeLookup, fmt.Sprintf("variable %q is set by more than one lookup", l.Variable), subj, "")
		}

		declared[name] = true
	}

	return declared
}

func (c *Config) validateFields(res *diagnostic.Diagnostics, declared map[string]bool) {
	names := make(map[string]int, len(c.Fields))
	clean := true

	for i, f := range c.Fields {
		subj := fmt.Sprintf("fields[%d]", i)

		if strings.TrimSpace(f.Name) == "" {
			res.AddError(diagnostic.CodeLeafName, "field must have a name", subj, f.Path)
			clean = false
		} else if prev, ok := names[f.Name]; ok {
			res.AddError(diagnostic.CodeLeafDuplicate,
				fmt.Sprintf("field name %q is already used by fields[%d]", f.Name, prev), subj, f.Path)
		} else {
			names[f.Name] = i
		}

		if _, err := projection.ParseOutputType(f.Type); err != nil {
			res.Add(diagnostic.Diagnostic{
				Severity:    diagnostic.SeverityError,
				Code:        diagnostic.CodeLeafType,
				Message:     err.Error(),
				Subject:     subj,
				Path:        f.Path,
				Suggestions: match.Suggest(f.Type, projection.OutputTypeNames(), 1),
			})
			clean = false
		}

		text := strings.TrimSpace(f.Path)
		if text == "" {
			res.AddError(diagnostic.CodePathSyntax, "field must have a path", subj, "")
			clean = false

			continue
		}

		if _, err := path.Parse(path.CleanseVariables(text)); err != nil {
			res.AddError(diagnostic.CodePathSyntax, err.Error(), subj, text)
			clean = false

			continue
		}

		for _, v := range path.VariableNames(text) {
			if !declared[v] {
				res.AddWarning(diagnostic.CodeLookup,
					fmt.Sprintf("placeholder ${%s} is not set by any lookup and expands to an empty string", v), subj, text)
			}
		}
	}

	if !clean || len(c.Fields) == 0 {
		return
	}

	leaves, err := c.Leaves()
	if err != nil {
		return
	}

	if _, err := projection.Compile(leaves, nil, 0); err != nil {
		res.AddError(diagnostic.CodePathExpansion, err.Error(), "fields", "")
	}
}
