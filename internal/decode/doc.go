// Package decode turns encoded bytes into datum objects.
//
// Decoding is delegated to goavro: its codecs for concatenated binary or JSON
// objects and its OCF reader for object container files. This package
// caches codecs per schema and binds goavro natives onto seed objects.
//
// Key capabilities:
//   - Decoder interface driven one top-level object at a time
//   - Binary and JSON decoding of byte buffers
//   - Object container files with the null, deflate and snappy codecs,
//     decoded with the writer schema and bound onto aliased reader names
package decode
