// Package datum holds decoded objects bound to their schemas.
//
// Records, arrays, enums and fixed values carry the concrete schema they
// were decoded with, so union branches can be resolved from the value
// itself. Maps are ordered by key. Primitive values are plain Go values
// (nil, bool, int32, int64, float32, float64, string, []byte, and
// time.Time or *big.Rat for logical types).
package datum
