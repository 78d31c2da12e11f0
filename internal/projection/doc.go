// Package projection turns decoded nested records into flat rows.
//
// A configuration is a list of leaves, each naming an output column, a path
// expression and an output type. Compile parses the paths and splits them
// into normal leaves, evaluated once per object, and at most one expansion
// group whose members share a single [*] wildcard. A Projector then yields
// one row per element of the expanded collection, repeating the normal
// values on every row.
//
// Key capabilities:
//   - Record fields, array indices and map keys addressed by path
//   - Union branches resolved from the decoded value
//   - Strict or tolerant handling of missing fields
//   - ${name} placeholders substituted per row from lookup variables
//   - Leaf derivation from a schema when no leaves are declared
//   - Static validation of paths against a schema, with suggestions
package projection
