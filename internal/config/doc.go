// Package config defines the YAML configuration of a projection step.
//
// A configuration names where input objects come from (a file, or a column
// of incoming rows), which schema to decode them with, the leaves to
// extract, and the incoming columns exposed to paths as ${variables}.
//
// Key capabilities:
//   - YAML loading through afero with defaults applied
//   - Validation collecting every problem as diagnostics
//   - Conversion of declared fields into projection leaves
package config
