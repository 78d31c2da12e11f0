// Package schemacache memoizes per-row schema resolution.
//
// When the active schema varies per input row, each row names its schema by
// a key: the schema text itself or the path of a schema file. The cache maps
// keys to parsed schemas, which callers share read-only.
//
// Key capabilities:
//   - LRU-bounded storage keyed by trimmed schema keys, long texts by digest
//   - Optional compute-once population; concurrent misses may otherwise
//     resolve the same key twice, which is harmless
//   - Fallback to a default schema when a key is empty or fails to resolve
//   - Hit, miss and fallback counters
package schemacache
