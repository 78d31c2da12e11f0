package datum

// Native converts a datum value back to plain Go values: records and maps
// become map[string]any, arrays []any, enums their symbol and fixed values
// their bytes. Union values are not tagged.
func Native(v any) any {
	switch t := v.(type) {
	case *Record:
		out := make(map[string]any, len(t.Values))
		for _, f := range t.Schema.Fields {
			if f.Index < len(t.Values) {
				out[f.Name] = Native(t.Values[f.Index])
			}
		}

		return out
	case *Array:
		out := make([]any, len(t.Items))
		for i, it := range t.Items {
			out[i] = Native(it)
		}

		return out
	case *Map:
		out := make(map[string]any, len(t.Keys))
		for i, k := range t.Keys {
			out[k] = Native(t.Values[i])
		}

		return out
	case Enum:
		return t.Symbol
	case Fixed:
		return t.Bytes
	default:
		return v
	}
}
