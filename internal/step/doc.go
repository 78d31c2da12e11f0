// Package step drives projection inside a row-oriented pipeline.
//
// A Step reads encoded objects either from a file (Open, then Next until
// io.EOF) or from a column of incoming rows (Init, then Process per row),
// and turns each object into zero or more output rows.
//
// Key capabilities:
//   - Container files in null, deflate and snappy codecs, and files of
//     concatenated binary or JSON encoded objects
//   - Gzip, zstd, snappy and deflate compressed input files
//   - Reader schemas with aliases applied over a container's writer schema
//   - Per-row schemas through a schema cache, with a default fallback
//   - Lookups exposing incoming columns as path variables
//   - Row-level errors routed to an error handler instead of failing
package step
