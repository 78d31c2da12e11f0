package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"avro-projector/internal/common"
)

// Codes identify the kind of a diagnostic.
const (
	CodeConfigVersion    = "config-version"
	CodeInputMode        = "input-mode"
	CodeSchemaSource     = "schema-source"
	CodeSchemaLoad       = "schema-load"
	CodeLeafName         = "leaf-name"
	CodeLeafDuplicate    = "leaf-duplicate"
	CodeLeafType         = "leaf-type"
	CodePathSyntax       = "path-syntax"
	CodePathExpansion    = "path-expansion"
	CodePathUnresolved   = "path-unresolved"
	CodePathNotLeaf      = "path-not-leaf"
	CodeWildcardMismatch = "wildcard-mismatch"
	CodeLookup           = "lookup"
	CodeCache            = "cache"
)

// Diagnostics holds the outcome of a validation run.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic is a single finding.
type Diagnostic struct {
	Severity Severity
	// Code is one of the Code constants.
	Code    string
	Message string
	// Subject names the configuration element concerned, e.g. "fields[2]".
	Subject string
	// Path is the path expression concerned, if any.
	Path string
	// Suggestions are likely intended alternatives.
	Suggestions []string
}

// Severity of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// Add files a diagnostic under its severity.
func (d *Diagnostics) Add(diag Diagnostic) {
	switch diag.Severity {
	case SeverityError:
		d.Errors = append(d.Errors, diag)
	case SeverityWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
}

// AddError adds an error.
func (d *Diagnostics) AddError(code, message, subject, path string) {
	d.Add(Diagnostic{Severity: SeverityError, Code: code, Message: message, Subject: subject, Path: path})
}

// AddWarning adds a warning.
func (d *Diagnostics) AddWarning(code, message, subject, path string) {
	d.Add(Diagnostic{Severity: SeverityWarning, Code: code, Message: message, Subject: subject, Path: path})
}

// AddInfo adds an informational note.
func (d *Diagnostics) AddInfo(code, message, subject, path string) {
	d.Add(Diagnostic{Severity: SeverityInfo, Code: code, Message: message, Subject: subject, Path: path})
}

// HasErrors reports whether any error was recorded.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge appends all findings of other.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// All returns errors, then warnings, then infos.
func (d *Diagnostics) All() []Diagnostic {
	out := make([]Diagnostic, 0, len(d.Errors)+len(d.Warnings)+len(d.Infos))
	out = append(out, d.Errors...)
	out = append(out, d.Warnings...)

	return append(out, d.Infos...)
}

// Error joins all errors into one, or returns nil.
func (d *Diagnostics) Error() error {
	if !d.HasErrors() {
		return nil
	}

	parts := make([]string, 0, len(d.Errors))
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String formats the diagnostic as "subject path: [code] message".
func (d Diagnostic) String() string {
	var prefix []string
	if d.Subject != "" {
		prefix = append(prefix, d.Subject)
	}

	if d.Path != "" {
		prefix = append(prefix, d.Path)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(d.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(d.Suggestions, ", ") + "?)"
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
