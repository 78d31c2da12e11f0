// Package diagnostic collects problems found while checking a projection
// configuration, before any input is read.
//
// Key capabilities:
//   - Errors that make a configuration unusable
//   - Warnings for paths that do not resolve against the schema
//   - Suggestions for misspelled field names
package diagnostic
