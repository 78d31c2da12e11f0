// Package schema models Avro schemas and reconciles writer and reader
// schemas.
//
// A Schema is a closed tagged variant: Kind selects which members are
// meaningful (Fields for records, Items for arrays, Values for maps,
// Branches for unions, Symbols for enums, Size for fixed). Code that
// dispatches on a schema switches over every Kind.
//
// Key capabilities:
//   - Parse Avro JSON schema text, including named-type references,
//     namespaces, aliases and recursive records
//   - Render a schema back to canonical JSON
//   - Apply reader aliases to a writer schema (schema evolution by renaming)
//   - Load schemas from files through an afero.Fs
package schema
