// Package path implements the path expressions that bind output columns to
// values inside nested records.
//
// Key capabilities:
//   - Parse "$.a.b[0][key][*].c" into segments, with backslash escapes
//   - Split a path at its wildcard into an expansion prefix and a sub-path
//   - Rewrite and substitute ${variable} placeholders in two passes:
//     CleanseVariables before parsing, Bind (substitute, escape, re-parse)
//     before each evaluation
//
// A bracket segment is neither an index nor a map key until it is evaluated
// against a schema: "[3]" indexes an array but looks up key "3" in a map.
package path
